package git

import (
	"context"
	"time"
)

// Client abstracts every version-control operation the tracker depends on.
// The production implementation shells out to the git executable; FakeClient
// simulates histories, conflicts and remote updates in memory.
type Client interface {
	// Path returns the repository's working directory.
	Path() string

	// Name returns "owner/repo" derived from the origin remote, or the
	// directory name when no remote is configured.
	Name(ctx context.Context) string

	// DefaultBranch returns the symbolic HEAD branch, falling back to
	// main, master, develop or trunk when HEAD is detached.
	DefaultBranch(ctx context.Context) (string, error)

	// ListCommits returns the commit SHAs reachable from branch, oldest first.
	ListCommits(ctx context.Context, branch string) ([]string, error)

	// ResolveRef resolves a SHA, abbreviated SHA or tag to a full commit SHA.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// ShowCommit reads a single commit's metadata.
	ShowCommit(ctx context.Context, sha string) (*Commit, error)

	// Checkout forcibly checks out ref, discarding local modifications.
	Checkout(ctx context.Context, ref string) error

	// ResetHard resets the index and working tree (and the current branch) to ref.
	ResetHard(ctx context.Context, ref string) error

	// CherryPickNoCommit applies the diff of sha on top of the working tree
	// without creating a commit.
	CherryPickNoCommit(ctx context.Context, sha string) error

	// AbortCherryPick abandons an in-progress cherry-pick.
	AbortCherryPick(ctx context.Context) error

	// Fetch downloads objects and refs from remote.
	Fetch(ctx context.Context, remote string) error

	// Clean removes untracked and ignored files and directories.
	Clean(ctx context.Context) error

	// CountCommitsSince counts commits on branch newer than since.
	CountCommitsSince(ctx context.Context, branch string, since time.Time) (int, error)

	// ChangedFiles lists the files touched by sha.
	ChangedFiles(ctx context.Context, sha string) ([]FileChange, error)
}

// Compile-time interface conformance checks.
var (
	_ Client = (*CLIClient)(nil)
	_ Client = (*FakeClient)(nil)
)
