package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/masmgr/gitpace/internal/git"
)

// Index loads branch histories through a git.Client and caches them until
// Invalidate is called. One Index serves one synchronization cycle or engine.
type Index struct {
	client git.Client

	mu    sync.Mutex
	cache map[string]*Snapshot
}

// NewIndex creates an empty Index.
func NewIndex(client git.Client) *Index {
	return &Index{client: client, cache: make(map[string]*Snapshot)}
}

// Load returns the oldest-first history of branch. Repeated calls return the
// same Snapshot until Invalidate.
func (x *Index) Load(ctx context.Context, branch string) (*Snapshot, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if snap, ok := x.cache[branch]; ok {
		return snap, nil
	}

	shas, err := x.client.ListCommits(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", branch, err)
	}

	snap := NewSnapshot(branch, shas)
	x.cache[branch] = snap
	return snap, nil
}

// Invalidate drops every cached snapshot so the next Load re-queries git.
func (x *Index) Invalidate() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.cache = make(map[string]*Snapshot)
}
