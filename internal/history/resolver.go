package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/model"
)

// IsLatest reports whether ref is the moving "latest" sentinel. Matching is
// case-insensitive and ignores surrounding whitespace; the empty string
// counts as latest.
func IsLatest(ref string) bool {
	ref = strings.TrimSpace(ref)
	return ref == "" || strings.EqualFold(ref, model.LatestReference)
}

// Resolver maps references to commits on one branch.
type Resolver struct {
	client git.Client
	index  *Index
	branch string
}

// NewResolver creates a Resolver for branch backed by index.
func NewResolver(client git.Client, index *Index, branch string) *Resolver {
	return &Resolver{client: client, index: index, branch: branch}
}

// Position resolves ref to a full SHA and its ordinal in the current
// snapshot. "latest" is re-evaluated against the present tip on every call.
// Commits that exist but are not on the branch have no ordinal and resolve
// to git.ErrReferenceNotFound.
func (r *Resolver) Position(ctx context.Context, ref string) (string, int, error) {
	snap, err := r.index.Load(ctx, r.branch)
	if err != nil {
		return "", 0, err
	}

	if IsLatest(ref) {
		sha, ok := snap.Last()
		if !ok {
			return "", 0, fmt.Errorf("%w: branch %s has no commits", git.ErrReferenceNotFound, r.branch)
		}
		return sha, snap.Len() - 1, nil
	}

	sha, err := r.client.ResolveRef(ctx, ref)
	if err != nil {
		if errors.Is(err, git.ErrReferenceNotFound) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("resolve %q: %w", ref, err)
	}

	idx, ok := snap.IndexOf(sha)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s is not on branch %s", git.ErrReferenceNotFound, ref, r.branch)
	}
	return sha, idx, nil
}

// Resolve is Position plus the commit's metadata.
func (r *Resolver) Resolve(ctx context.Context, ref string) (git.Commit, int, error) {
	sha, idx, err := r.Position(ctx, ref)
	if err != nil {
		return git.Commit{}, 0, err
	}
	commit, err := r.client.ShowCommit(ctx, sha)
	if err != nil {
		return git.Commit{}, 0, fmt.Errorf("read commit %s: %w", sha, err)
	}
	return *commit, idx, nil
}

// Lookup reads a commit's metadata and returns nil when it cannot be read.
func (r *Resolver) Lookup(ctx context.Context, sha string) *git.Commit {
	if sha == "" {
		return nil
	}
	commit, err := r.client.ShowCommit(ctx, sha)
	if err != nil {
		return nil
	}
	return commit
}
