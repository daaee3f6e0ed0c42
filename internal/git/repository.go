package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// defaultBranchCandidates are tried in order when HEAD is detached.
var defaultBranchCandidates = []string{"main", "master", "develop", "trunk"}

// OpenOptions configures a CLIClient.
type OpenOptions struct {
	// Timeout bounds every git invocation. Zero disables the timeout.
	Timeout time.Duration
}

// CLIClient is the production Client. Read-only metadata comes from go-git;
// everything that touches the working tree runs the git executable.
type CLIClient struct {
	path    string
	repo    *gogit.Repository
	timeout time.Duration
}

// Open validates path and returns a client for it. The path must be an
// existing, non-bare git repository.
func Open(path string, opts OpenOptions) (*CLIClient, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, abs)
	}

	repo, err := gogit.PlainOpen(abs)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, abs)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotARepository, abs, err)
	}

	if _, err := repo.Worktree(); err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return nil, fmt.Errorf("%w: %s", ErrBareRepository, abs)
		}
		return nil, fmt.Errorf("open worktree: %w", err)
	}

	return &CLIClient{path: abs, repo: repo, timeout: opts.Timeout}, nil
}

// Path returns the absolute repository path.
func (c *CLIClient) Path() string { return c.path }

// Name returns "owner/repo" from the origin URL, or the directory name.
func (c *CLIClient) Name(_ context.Context) string {
	remote, err := c.repo.Remote("origin")
	if err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			if name := repoNameFromURL(urls[0]); name != "" {
				return name
			}
		}
	}
	return filepath.Base(c.path)
}

var urlSeparators = regexp.MustCompile(`[:/]`)

// repoNameFromURL extracts "owner/repo" from an SSH or HTTPS remote URL.
func repoNameFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")
	if url == "" {
		return ""
	}
	parts := urlSeparators.Split(url, -1)
	if len(parts) < 2 {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// DefaultBranch returns the branch HEAD points at. When HEAD is detached it
// falls back to the first conventional branch name that exists locally.
func (c *CLIClient) DefaultBranch(_ context.Context) (string, error) {
	head, err := c.repo.Storer.Reference(plumbing.HEAD)
	if err == nil && head.Type() == plumbing.SymbolicReference && head.Target().IsBranch() {
		return head.Target().Short(), nil
	}

	iter, err := c.repo.Branches()
	if err != nil {
		return "", fmt.Errorf("list branches: %w", err)
	}
	local := make(map[string]bool)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		local[ref.Name().Short()] = true
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("list branches: %w", err)
	}

	return pickDefaultBranch(local)
}

func pickDefaultBranch(local map[string]bool) (string, error) {
	for _, candidate := range defaultBranchCandidates {
		if local[candidate] {
			return candidate, nil
		}
	}
	return "", ErrNoDefaultBranch
}
