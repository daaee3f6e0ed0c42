package git

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FakeCommit is the metadata FakeClient serves for a SHA.
type FakeCommit struct {
	Message string
	Author  string
	When    time.Time
}

// FakeClient is an in-memory Client for tests. It simulates branch
// histories, remote divergence, conflicting previews and command failures
// without touching disk. The working tree is observable through Head,
// Applied and Conflicted.
type FakeClient struct {
	mu sync.Mutex

	RepoPath string
	RepoName string

	// HeadBranch is the branch HEAD points at; empty means detached.
	HeadBranch string

	Branches map[string][]string // local branch histories, oldest first
	Remote   map[string][]string // remote branch histories, applied by ResetHard("origin/<b>")
	Tags     map[string]string
	Commits  map[string]FakeCommit
	Files    map[string][]FileChange

	// Conflicts marks commits whose preview cannot be applied cleanly.
	Conflicts map[string]bool
	// Failures injects an error for an operation name ("checkout", "reset",
	// "cherry-pick", "abort", "fetch", "clean", "list", "show", "resolve", "count",
	// "default-branch").
	Failures map[string]error

	// Observable working tree.
	Head       string
	Applied    []string
	Conflicted bool
	Fetched    bool
	Calls      []string
}

// NewFakeClient creates a FakeClient whose branch holds the given linear
// history. Commits are dated one hour apart ending at now.
func NewFakeClient(path, branch string, shas ...string) *FakeClient {
	f := &FakeClient{
		RepoPath:   path,
		HeadBranch: branch,
		Branches:   map[string][]string{branch: append([]string(nil), shas...)},
		Remote:     map[string][]string{branch: append([]string(nil), shas...)},
		Tags:       map[string]string{},
		Commits:    map[string]FakeCommit{},
		Files:      map[string][]FileChange{},
		Conflicts:  map[string]bool{},
		Failures:   map[string]error{},
	}
	now := time.Now()
	for i, sha := range shas {
		f.Commits[sha] = FakeCommit{
			Message: fmt.Sprintf("commit %s\n\nbody of %s", sha, sha),
			Author:  "Test Author",
			When:    now.Add(-time.Duration(len(shas)-i) * time.Hour),
		}
	}
	return f
}

func (f *FakeClient) record(op string, args ...string) error {
	f.Calls = append(f.Calls, strings.TrimSpace(op+" "+strings.Join(args, " ")))
	if err := f.Failures[op]; err != nil {
		return &CommandError{Args: append([]string{op}, args...), Output: "injected failure", Err: err}
	}
	return nil
}

// resolve maps a full SHA, unique prefix, tag or branch name to a SHA.
func (f *FakeClient) resolve(ref string) (string, bool) {
	if _, ok := f.Commits[ref]; ok {
		return ref, true
	}
	if sha, ok := f.Tags[ref]; ok {
		return sha, true
	}
	if history, ok := f.Branches[ref]; ok && len(history) > 0 {
		return history[len(history)-1], true
	}
	if len(ref) >= 4 {
		var match string
		for sha := range f.Commits {
			if strings.HasPrefix(sha, ref) {
				if match != "" {
					return "", false
				}
				match = sha
			}
		}
		return match, match != ""
	}
	return "", false
}

// Path returns the configured repository path.
func (f *FakeClient) Path() string { return f.RepoPath }

// Name returns RepoName or the path's base name.
func (f *FakeClient) Name(_ context.Context) string {
	if f.RepoName != "" {
		return f.RepoName
	}
	return filepath.Base(f.RepoPath)
}

// DefaultBranch mirrors CLIClient's symbolic-HEAD-then-candidates rule.
func (f *FakeClient) DefaultBranch(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Failures["default-branch"]; err != nil {
		return "", err
	}
	if f.HeadBranch != "" {
		return f.HeadBranch, nil
	}
	local := make(map[string]bool, len(f.Branches))
	for name := range f.Branches {
		local[name] = true
	}
	return pickDefaultBranch(local)
}

// ListCommits returns a copy of the branch history.
func (f *FakeClient) ListCommits(_ context.Context, branch string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("list", branch); err != nil {
		return nil, err
	}
	history, ok := f.Branches[branch]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
	}
	return append([]string{}, history...), nil
}

// ResolveRef resolves SHAs, prefixes, tags and branch names.
func (f *FakeClient) ResolveRef(_ context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("resolve", ref); err != nil {
		return "", err
	}
	sha, ok := f.resolve(strings.TrimSpace(ref))
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrReferenceNotFound, ref)
	}
	return sha, nil
}

// ShowCommit returns the stored metadata for sha.
func (f *FakeClient) ShowCommit(_ context.Context, sha string) (*Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("show", sha); err != nil {
		return nil, err
	}
	meta, ok := f.Commits[sha]
	if !ok {
		return nil, &CommandError{Args: []string{"show", sha}, Output: "bad object " + sha, Err: ErrReferenceNotFound}
	}
	c := NewCommit(sha, meta.Message, meta.Author, meta.When)
	return &c, nil
}

// Checkout moves Head to ref and discards previewed changes.
func (f *FakeClient) Checkout(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("checkout", ref); err != nil {
		return err
	}
	sha, ok := f.resolve(ref)
	if !ok {
		return &CommandError{Args: []string{"checkout", ref}, Output: "pathspec did not match", Err: ErrReferenceNotFound}
	}
	if _, isBranch := f.Branches[ref]; isBranch {
		f.HeadBranch = ref
	} else {
		f.HeadBranch = ""
	}
	f.Head = sha
	f.Applied = nil
	f.Conflicted = false
	return nil
}

// ResetHard discards previewed changes. "HEAD" keeps Head; "origin/<b>"
// replaces the local history of b with the remote one.
func (f *FakeClient) ResetHard(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("reset", ref); err != nil {
		return err
	}
	switch {
	case ref == "HEAD":
	case strings.Contains(ref, "/"):
		branch := ref[strings.Index(ref, "/")+1:]
		history, ok := f.Remote[branch]
		if !ok {
			return &CommandError{Args: []string{"reset", ref}, Output: "unknown revision", Err: ErrReferenceNotFound}
		}
		f.Branches[branch] = append([]string{}, history...)
		if len(history) > 0 {
			f.Head = history[len(history)-1]
		}
	default:
		sha, ok := f.resolve(ref)
		if !ok {
			return &CommandError{Args: []string{"reset", ref}, Output: "unknown revision", Err: ErrReferenceNotFound}
		}
		f.Head = sha
	}
	f.Applied = nil
	f.Conflicted = false
	return nil
}

// CherryPickNoCommit records sha as previewed, or leaves the tree
// conflicted when sha is in Conflicts or ctx is already done.
func (f *FakeClient) CherryPickNoCommit(ctx context.Context, sha string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("cherry-pick", sha); err != nil {
		f.Conflicted = true
		return err
	}
	if err := ctx.Err(); err != nil {
		f.Conflicted = true
		return &CommandError{Args: []string{"cherry-pick", sha}, Output: "interrupted", Err: err}
	}
	if f.Conflicted || f.Conflicts[sha] {
		f.Conflicted = true
		return &CommandError{Args: []string{"cherry-pick", sha}, Output: "CONFLICT (content): merge conflict", Err: fmt.Errorf("exit status 1")}
	}
	f.Applied = append(f.Applied, sha)
	return nil
}

// AbortCherryPick clears a conflicted state.
func (f *FakeClient) AbortCherryPick(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("abort"); err != nil {
		return err
	}
	if !f.Conflicted {
		return &CommandError{Args: []string{"cherry-pick", "--abort"}, Output: "no cherry-pick or revert in progress", Err: fmt.Errorf("exit status 128")}
	}
	f.Conflicted = false
	f.Applied = nil
	return nil
}

// Fetch marks the remote as fetched.
func (f *FakeClient) Fetch(_ context.Context, remote string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("fetch", remote); err != nil {
		return err
	}
	f.Fetched = true
	return nil
}

// Clean is a no-op beyond recording the call.
func (f *FakeClient) Clean(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("clean")
}

// CountCommitsSince counts branch commits dated at or after since.
func (f *FakeClient) CountCommitsSince(_ context.Context, branch string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("count", branch); err != nil {
		return 0, err
	}
	history, ok := f.Branches[branch]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrBranchNotFound, branch)
	}
	n := 0
	for _, sha := range history {
		if !f.Commits[sha].When.Before(since) {
			n++
		}
	}
	return n, nil
}

// ChangedFiles returns Files[sha] sorted by path.
func (f *FakeClient) ChangedFiles(_ context.Context, sha string) ([]FileChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("diff", sha); err != nil {
		return nil, err
	}
	files := append([]FileChange{}, f.Files[sha]...)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Tree returns a snapshot of the observable working tree.
func (f *FakeClient) Tree() (head string, applied []string, conflicted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Head, append([]string(nil), f.Applied...), f.Conflicted
}

// Push appends commits to the remote history of branch, as if another
// developer had pushed them.
func (f *FakeClient) Push(branch string, when time.Time, shas ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sha := range shas {
		f.Remote[branch] = append(f.Remote[branch], sha)
		f.Commits[sha] = FakeCommit{Message: "commit " + sha, Author: "Upstream", When: when}
	}
}

// Rewrite replaces the remote history of branch, as after a force push.
func (f *FakeClient) Rewrite(branch string, when time.Time, shas ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Remote[branch] = nil
	for _, sha := range shas {
		f.Remote[branch] = append(f.Remote[branch], sha)
		if _, ok := f.Commits[sha]; !ok {
			f.Commits[sha] = FakeCommit{Message: "commit " + sha, Author: "Upstream", When: when}
		}
	}
}
