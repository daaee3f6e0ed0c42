// Package reconcile drives a repository's working tree to match the
// reviewer's position and manages the uncommitted preview of the next commit.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/history"
)

var (
	// ErrNotCheckedOut is returned by PreviewNext when no commit is checked out.
	ErrNotCheckedOut = errors.New("no commit is checked out")
	// ErrRemoteSyncFailed wraps any failure of RefreshFromRemote.
	ErrRemoteSyncFailed = errors.New("remote sync failed")
)

// DefaultRollbackTimeout bounds the cleanup after a failed preview. Rollback
// runs even when the caller's context is already canceled.
const DefaultRollbackTimeout = 30 * time.Second

// Options configures a Reconciler.
type Options struct {
	// Remote is the remote fetched by RefreshFromRemote (default "origin").
	Remote string
	// Filter limits the files reported for an applied preview.
	Filter git.PathFilter
	// RollbackTimeout bounds preview rollback (default DefaultRollbackTimeout).
	RollbackTimeout time.Duration
}

// Reconciler is the working-tree state machine of one repository:
// Idle -> CheckedOut(c) -> Previewing(c, next) -> CheckedOut(c).
// Every tree mutation holds the repository's lock from Locks.
type Reconciler struct {
	client git.Client
	index  *history.Index
	locks  *Locks
	opts   Options

	mu    sync.Mutex
	state State
}

// New creates a Reconciler in the Idle state.
func New(client git.Client, index *history.Index, locks *Locks, opts Options) *Reconciler {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.RollbackTimeout <= 0 {
		opts.RollbackTimeout = DefaultRollbackTimeout
	}
	if locks == nil {
		locks = NewLocks()
	}
	return &Reconciler{client: client, index: index, locks: locks, opts: opts}
}

// State returns the current state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reconciler) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Lock acquires the repository lock for a whole operation. Reconciler
// methods called with the returned context do not lock again.
func (r *Reconciler) Lock(ctx context.Context) (context.Context, func(), error) {
	return r.locks.Acquire(ctx, r.client.Path())
}

// Checkout forcibly makes the tree match sha, discarding local and previewed
// modifications. Calling it twice with the same sha is observably a no-op.
func (r *Reconciler) Checkout(ctx context.Context, sha string) error {
	ctx, release, err := r.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()
	return r.checkout(ctx, sha)
}

func (r *Reconciler) checkout(ctx context.Context, sha string) error {
	if err := r.client.Checkout(ctx, sha); err != nil {
		r.setState(State{Kind: Idle})
		return fmt.Errorf("checkout %s: %w", short(sha), err)
	}
	// A staged preview survives checkout of the same commit.
	if err := r.client.ResetHard(ctx, "HEAD"); err != nil {
		r.setState(State{Kind: Idle})
		return fmt.Errorf("reset to %s: %w", short(sha), err)
	}
	r.setState(State{Kind: CheckedOut, Commit: sha})
	return nil
}

// PreviewNext applies the diff of next on top of the checked-out commit
// without committing it. A conflict or interruption is not an error: the
// tree is rolled back to CheckedOut and the preview is reported as skipped.
// Only a failed rollback is returned as an error.
func (r *Reconciler) PreviewNext(ctx context.Context, next string) (Preview, error) {
	ctx, release, err := r.Lock(ctx)
	if err != nil {
		return Preview{}, err
	}
	defer release()
	return r.previewNext(ctx, next)
}

func (r *Reconciler) previewNext(ctx context.Context, next string) (Preview, error) {
	st := r.State()
	switch st.Kind {
	case Idle:
		return Preview{}, ErrNotCheckedOut
	case Previewing:
		if err := r.rollback(ctx); err != nil {
			r.setState(State{Kind: Idle})
			return Preview{}, err
		}
		r.setState(State{Kind: CheckedOut, Commit: st.Commit})
	}

	if err := r.client.CherryPickNoCommit(ctx, next); err != nil {
		if rbErr := r.rollback(ctx); rbErr != nil {
			r.setState(State{Kind: Idle})
			return Preview{Status: PreviewSkipped, Commit: next, Reason: skipReason(ctx, err)}, rbErr
		}
		r.setState(State{Kind: CheckedOut, Commit: st.Commit})
		return Preview{Status: PreviewSkipped, Commit: next, Reason: skipReason(ctx, err)}, nil
	}

	r.setState(State{Kind: Previewing, Commit: st.Commit, Previewed: next})

	preview := Preview{Status: PreviewApplied, Commit: next}
	if files, err := r.client.ChangedFiles(ctx, next); err == nil {
		preview.Files = r.opts.Filter.Apply(files)
	}
	return preview, nil
}

// rollback aborts a half-applied cherry-pick and resets the tree to HEAD.
// It runs detached from ctx cancellation so an abandoned caller never leaves
// a conflicted tree behind.
func (r *Reconciler) rollback(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.RollbackTimeout)
	defer cancel()

	// --abort fails when git never recorded a cherry-pick in progress.
	_ = r.client.AbortCherryPick(ctx)
	if err := r.client.ResetHard(ctx, "HEAD"); err != nil {
		return fmt.Errorf("roll back preview: %w", err)
	}
	return nil
}

func skipReason(ctx context.Context, err error) string {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "preview interrupted"
	}
	var cmdErr *git.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Output != "" {
		line, _, _ := strings.Cut(cmdErr.Output, "\n")
		return "conflicts with the working tree: " + line
	}
	return "conflicts with the working tree"
}

// Sync runs one reconciliation cycle under the repository lock: check out
// current and, when next is non-empty, preview it.
func (r *Reconciler) Sync(ctx context.Context, current, next string) (Preview, error) {
	ctx, release, err := r.Lock(ctx)
	if err != nil {
		return Preview{}, err
	}
	defer release()

	if err := r.checkout(ctx, current); err != nil {
		return Preview{}, err
	}
	if next == "" {
		return Preview{Status: PreviewNone}, nil
	}
	return r.previewNext(ctx, next)
}

// RefreshFromRemote fetches the remote, force-checks-out branch, hard-resets
// it to the remote tip and removes untracked and ignored files. It discards
// all local state and invalidates the history index; callers re-assert the
// recorded position afterwards.
func (r *Reconciler) RefreshFromRemote(ctx context.Context, branch string) error {
	ctx, release, err := r.Lock(ctx)
	if err != nil {
		return err
	}
	defer release()

	defer r.index.Invalidate()
	r.setState(State{Kind: Idle})

	steps := []struct {
		name string
		run  func() error
	}{
		{"fetch " + r.opts.Remote, func() error { return r.client.Fetch(ctx, r.opts.Remote) }},
		{"checkout " + branch, func() error { return r.client.Checkout(ctx, branch) }},
		{"reset to " + r.opts.Remote + "/" + branch, func() error { return r.client.ResetHard(ctx, r.opts.Remote+"/"+branch) }},
		{"clean", func() error { return r.client.Clean(ctx) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRemoteSyncFailed, step.name, err)
		}
	}
	return nil
}
