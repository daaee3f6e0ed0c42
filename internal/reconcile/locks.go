package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRepositoryBusy is returned when another process keeps the repository
// lock for longer than LeaseOptions.Wait.
var ErrRepositoryBusy = errors.New("repository is locked by another gitpace process")

// Leases is a lock table shared by every process that opens the same store.
// AcquireLock reports false while another owner holds an unexpired lease.
type Leases interface {
	AcquireLock(ctx context.Context, path, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, path, owner string) error
}

// Defaults for LeaseOptions.
const (
	DefaultLeaseTTL  = 10 * time.Minute
	DefaultLeaseWait = 30 * time.Second
	DefaultLeasePoll = 50 * time.Millisecond

	releaseTimeout = 5 * time.Second
)

// LeaseOptions tunes the cross-process side of Locks.
type LeaseOptions struct {
	// TTL bounds how long a crashed holder blocks everyone else.
	TTL time.Duration
	// Wait is how long Acquire polls a lease held elsewhere before giving up
	// with ErrRepositoryBusy.
	Wait time.Duration
	// Poll is the interval between attempts.
	Poll time.Duration
}

func (o LeaseOptions) withDefaults() LeaseOptions {
	if o.TTL <= 0 {
		o.TTL = DefaultLeaseTTL
	}
	if o.Wait <= 0 {
		o.Wait = DefaultLeaseWait
	}
	if o.Poll <= 0 {
		o.Poll = DefaultLeasePoll
	}
	return o
}

// Locks provides one mutual-exclusion scope per repository path. Locks on
// different paths never contend.
//
// Acquire is re-entrant through the returned context: a caller holding the
// lock for a path can pass its context down and nested Acquire calls for the
// same path succeed immediately.
//
// Locks created by NewSharedLocks also take a lease in the shared table, so
// separate processes exclude each other too.
type Locks struct {
	mu   sync.Mutex
	sems map[string]chan struct{}

	leases Leases
	owner  string
	opts   LeaseOptions
}

// NewLocks creates a lock table local to this process.
func NewLocks() *Locks {
	return &Locks{sems: make(map[string]chan struct{})}
}

// NewSharedLocks creates a lock table backed by leases. Each table is its
// own lease owner.
func NewSharedLocks(leases Leases, opts LeaseOptions) *Locks {
	l := NewLocks()
	l.leases = leases
	l.owner = uuid.NewString()
	l.opts = opts.withDefaults()
	return l
}

type heldKey struct {
	locks *Locks
	path  string
}

func lockPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

func (l *Locks) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.sems[key] = s
	}
	return s
}

// Acquire blocks until the lock for path is held or ctx is done. The returned
// context marks the lock as held; release must be called exactly once.
func (l *Locks) Acquire(ctx context.Context, path string) (context.Context, func(), error) {
	key := lockPath(path)
	if l.held(ctx, key) {
		return ctx, func() {}, nil
	}

	s := l.sem(key)
	select {
	case s <- struct{}{}:
	case <-ctx.Done():
		return ctx, func() {}, ctx.Err()
	}

	if l.leases != nil {
		if err := l.lease(ctx, key); err != nil {
			<-s
			return ctx, func() {}, err
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if l.leases != nil {
				// A lease that cannot be dropped expires after TTL.
				rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
				_ = l.leases.ReleaseLock(rctx, key, l.owner)
				cancel()
			}
			<-s
		})
	}
	return context.WithValue(ctx, heldKey{locks: l, path: key}, true), release, nil
}

func (l *Locks) lease(ctx context.Context, key string) error {
	wait := time.NewTimer(l.opts.Wait)
	defer wait.Stop()
	poll := time.NewTicker(l.opts.Poll)
	defer poll.Stop()

	for {
		ok, err := l.leases.AcquireLock(ctx, key, l.owner, l.opts.TTL)
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-poll.C:
		case <-wait.C:
			return fmt.Errorf("%w: %s", ErrRepositoryBusy, key)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// held reports whether ctx carries the lock for path.
func (l *Locks) held(ctx context.Context, path string) bool {
	return ctx.Value(heldKey{locks: l, path: lockPath(path)}) != nil
}
