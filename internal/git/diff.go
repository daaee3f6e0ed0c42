package git

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// parseRawDiff reads `diff-tree --raw -z -M` output. Each record is a
// ":srcmode dstmode srcsha dstsha status" header followed by one path, or by
// the old and new path when the status is a rename. Submodule pointer
// updates are dropped; they have no file content to preview.
func parseRawDiff(out []byte) ([]FileChange, error) {
	fields := bytes.Split(bytes.TrimLeft(out, "\r\n"), []byte{0})
	changes := make([]FileChange, 0, len(fields)/2)

	for i := 0; i < len(fields); {
		header := string(fields[i])
		if header == "" {
			i++
			continue
		}
		if !strings.HasPrefix(header, ":") {
			return nil, fmt.Errorf("unexpected raw diff record %q", header)
		}
		cols := strings.Fields(header[1:])
		if len(cols) != 5 {
			return nil, fmt.Errorf("unexpected raw diff header %q", header)
		}
		srcMode, err := parseGitFileMode(cols[0])
		if err != nil {
			return nil, err
		}
		dstMode, err := parseGitFileMode(cols[1])
		if err != nil {
			return nil, err
		}

		kind := changeKindFromStatus(cols[4])
		paths := 1
		if kind == ChangeKindRenamed {
			paths = 2
		}
		if i+paths >= len(fields) || len(fields[i+paths]) == 0 {
			return nil, fmt.Errorf("raw diff record %q is missing a path", header)
		}

		change := FileChange{Path: string(fields[i+1]), Kind: kind}
		if kind == ChangeKindRenamed {
			change.OldPath, change.Path = change.Path, string(fields[i+2])
		}
		i += 1 + paths

		if isFileMode(srcMode) || isFileMode(dstMode) {
			changes = append(changes, change)
		}
	}
	return changes, nil
}

func isFileMode(m filemode.FileMode) bool {
	return m == filemode.Regular || m == filemode.Executable || m == filemode.Deprecated || m == filemode.Symlink
}

// parseGitFileMode reads an octal mode such as 100644 or 160000.
func parseGitFileMode(s string) (filemode.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return filemode.FileMode(v), nil
}

// changeKindFromStatus maps a raw status letter; type changes count as
// modifications.
func changeKindFromStatus(status string) ChangeKind {
	switch {
	case strings.HasPrefix(status, "A"):
		return ChangeKindAdded
	case strings.HasPrefix(status, "D"):
		return ChangeKindDeleted
	case strings.HasPrefix(status, "R"):
		return ChangeKindRenamed
	default:
		return ChangeKindModified
	}
}

// PathFilter selects files by doublestar include/exclude patterns.
type PathFilter struct {
	Include []string
	Exclude []string
}

// Match reports whether path passes the filter. Excludes win over includes;
// an empty include list accepts everything.
func (f PathFilter) Match(path string) bool {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range f.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}

	for _, pattern := range f.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// Apply returns the changes whose path passes the filter.
func (f PathFilter) Apply(changes []FileChange) []FileChange {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return changes
	}
	out := make([]FileChange, 0, len(changes))
	for _, c := range changes {
		if f.Match(c.Path) {
			out = append(out, c)
		}
	}
	return out
}
