// Package tracker orchestrates a review session: it resolves the recorded
// position against the branch history, drives the working tree through the
// reconciler, persists each step and assembles the View.
//
// Every operation holds the repository lock for its whole duration. The
// working tree is reconciled first and the store updated second, so a
// failed persist leaves the tree ahead of the record and the next Sync
// puts it back.
package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/masmgr/gitpace/internal/git"
	"github.com/masmgr/gitpace/internal/history"
	"github.com/masmgr/gitpace/internal/model"
	"github.com/masmgr/gitpace/internal/pace"
	"github.com/masmgr/gitpace/internal/reconcile"
)

// Defaults for Options.
const (
	DefaultRemote             = "origin"
	DefaultUpstreamWindowDays = 30
	DefaultPeakWindowDays     = 7
)

// Options configures an Engine.
type Options struct {
	// Remote is fetched by Refresh.
	Remote string
	// UpstreamWindowDays is the window over which branch growth is measured.
	UpstreamWindowDays int
	// PeakWindowDays is the window of the peak review rate.
	PeakWindowDays int
	// HorizonYears bounds chart series.
	HorizonYears int
	// Filter limits the files listed for a preview.
	Filter git.PathFilter
	// Locks serializes engines working on the same repository. When nil,
	// each engine gets its own table backed by the store's leases, which
	// still excludes every other engine and process on that store.
	Locks *reconcile.Locks
	// Now is the clock used for ledger entries and projections.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Remote == "" {
		o.Remote = DefaultRemote
	}
	if o.UpstreamWindowDays <= 0 {
		o.UpstreamWindowDays = DefaultUpstreamWindowDays
	}
	if o.PeakWindowDays <= 0 {
		o.PeakWindowDays = DefaultPeakWindowDays
	}
	if o.HorizonYears <= 0 {
		o.HorizonYears = pace.DefaultHorizonYears
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine runs tracker operations for one Session.
type Engine struct {
	session    Session
	store      Store
	opts       Options
	index      *history.Index
	reconciler *reconcile.Reconciler
	analyzer   *pace.Analyzer
}

// New creates an Engine. The history cache lives as long as the Engine.
func New(session Session, store Store, opts Options) *Engine {
	opts = opts.withDefaults()
	if opts.Locks == nil {
		opts.Locks = reconcile.NewSharedLocks(store, reconcile.LeaseOptions{})
	}
	index := history.NewIndex(session.Client)
	return &Engine{
		session: session,
		store:   store,
		opts:    opts,
		index:   index,
		reconciler: reconcile.New(session.Client, index, opts.Locks, reconcile.Options{
			Remote: opts.Remote,
			Filter: opts.Filter,
		}),
		analyzer: pace.NewAnalyzer(store, session.Client, opts.Now),
	}
}

// Repository returns the engine's copy of the repository record.
func (e *Engine) Repository() model.Repository { return *e.session.Repository }

func (e *Engine) branch() string { return e.session.Repository.DefaultBranch }

func (e *Engine) resolver() *history.Resolver {
	return history.NewResolver(e.session.Client, e.index, e.branch())
}

// Sync rereads the branch history, re-applies the recorded position to the
// working tree and returns the view. Nothing is persisted.
func (e *Engine) Sync(ctx context.Context) (*View, error) {
	ctx, release, err := e.reconciler.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	e.index.Invalidate()
	return e.sync(ctx)
}

// position is the recorded place of the reviewer on a snapshot.
type position struct {
	snap     *history.Snapshot
	progress model.Progress
	index    int
	sha      string
	warning  string
}

// locate loads the history and places the recorded commit on it. An unset
// commit starts at the oldest one. A recorded commit that vanished from the
// branch, after a force push for example, also falls back to the oldest
// commit and is reported through warning; the record is left alone.
func (e *Engine) locate(ctx context.Context) (position, error) {
	progress, err := e.store.Progress(ctx, e.session.Repository.ID)
	if err != nil {
		return position{}, stateError("read progress", err)
	}
	e.session.Repository.Progress = progress

	snap, err := e.index.Load(ctx, e.branch())
	if err != nil {
		return position{}, stateError("read history", err)
	}

	pos := position{snap: snap, progress: progress}
	if snap.Empty() {
		return pos, nil
	}
	if progress.CurrentSHA != "" {
		if idx, ok := snap.IndexOf(progress.CurrentSHA); ok {
			pos.index, pos.sha = idx, progress.CurrentSHA
			return pos, nil
		}
		pos.warning = fmt.Sprintf("recorded commit %s is no longer on %s; showing the oldest commit",
			shortSHA(progress.CurrentSHA), e.branch())
	}
	pos.sha, _ = snap.First()
	return pos, nil
}

func (e *Engine) sync(ctx context.Context) (*View, error) {
	pos, err := e.locate(ctx)
	if err != nil {
		return nil, err
	}
	return e.render(ctx, pos)
}

// render reconciles the tree to pos and builds the view.
func (e *Engine) render(ctx context.Context, pos position) (*View, error) {
	view := &View{
		Repository:   *e.session.Repository,
		CurrentIndex: pos.index,
		TargetIndex:  -1,
		TotalCommits: pos.snap.Len(),
		Preview:      reconcile.Preview{Status: reconcile.PreviewNone},
		Chart:        pace.Chart{Datasets: []pace.Dataset{}},
	}
	if pos.warning != "" {
		view.warn(pos.warning)
	}
	if pos.snap.Empty() {
		view.warn(fmt.Sprintf("branch %s has no commits", pos.snap.Branch()))
		return view, nil
	}

	next, hasNext := pos.snap.At(pos.index + 1)
	view.CanStepForward = hasNext
	view.CanStepBackward = pos.index > 0

	preview, err := e.reconciler.Sync(ctx, pos.sha, next)
	if err != nil {
		return nil, stateError("reconcile working tree", err)
	}
	view.Preview = preview

	resolver := e.resolver()
	view.CurrentCommit = resolver.Lookup(ctx, pos.sha)
	if hasNext {
		view.NextCommit = resolver.Lookup(ctx, next)
	}

	ref := pos.progress.TargetReference
	targetSHA, targetIdx, err := resolver.Position(ctx, ref)
	if err != nil {
		view.warn(fmt.Sprintf("target %q does not resolve on %s: %v", ref, e.branch(), err))
		return view, nil
	}
	view.TargetIndex = targetIdx
	view.TargetCommit = resolver.Lookup(ctx, targetSHA)
	view.Progress = pace.Percentage(pos.index, targetIdx)

	if err := e.fillPace(ctx, view, pos.progress, history.IsLatest(ref)); err != nil {
		return nil, err
	}
	return view, nil
}

func (e *Engine) fillPace(ctx context.Context, view *View, progress model.Progress, latest bool) error {
	repoID := e.session.Repository.ID
	actual, err := e.analyzer.ActualPace(ctx, repoID, progress.PacePeriod)
	if err != nil {
		return stateError("measure pace", err)
	}
	peak, err := e.analyzer.PeakPace(ctx, repoID, e.opts.PeakWindowDays)
	if err != nil {
		return stateError("measure peak pace", err)
	}
	upstream := 0.0
	if latest {
		upstream = e.analyzer.UpstreamPace(ctx, e.branch(), e.opts.UpstreamWindowDays)
	}

	now := e.analyzer.Now()
	view.PeakPace = peak
	view.Pace = pace.Project(pace.Input{
		CurrentIndex:   view.CurrentIndex,
		TargetIndex:    view.TargetIndex,
		IdealPace:      progress.IdealPace,
		ActualPace:     actual,
		UpstreamPace:   upstream,
		TargetIsLatest: latest,
		Now:            now,
	})
	view.Chart = pace.NewChart(view.Pace, now, e.opts.HorizonYears)
	if view.Pace.Ideal.CatchUp == pace.CatchUpInsufficientPace {
		view.warn(fmt.Sprintf("the branch grows %.2f commits/day, at least as fast as the ideal pace; the tip will not be caught up",
			view.Pace.UpstreamPace))
	}
	return nil
}

// StepForward moves the reviewer to the next commit and records a review.
// At the tip it returns the unchanged view.
func (e *Engine) StepForward(ctx context.Context) (*View, error) {
	return e.step(ctx, 1)
}

// StepBackward moves the reviewer to the previous commit and removes the
// newest review. At the oldest commit it returns the unchanged view.
func (e *Engine) StepBackward(ctx context.Context) (*View, error) {
	return e.step(ctx, -1)
}

func (e *Engine) step(ctx context.Context, delta int) (*View, error) {
	ctx, release, err := e.reconciler.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	e.index.Invalidate()
	pos, err := e.locate(ctx)
	if err != nil {
		return nil, err
	}
	if pos.snap.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyHistory, e.branch())
	}

	dest, ok := pos.snap.At(pos.index + delta)
	if !ok {
		return e.render(ctx, pos)
	}

	if err := e.reconciler.Checkout(ctx, dest); err != nil {
		return nil, stateError("move working tree", err)
	}

	repoID := e.session.Repository.ID
	if delta > 0 {
		err = e.store.RecordForward(ctx, repoID, dest, e.opts.Now())
	} else {
		err = e.store.RecordBackward(ctx, repoID, dest)
	}
	if err != nil {
		return nil, stateError("record step", err)
	}

	pos.index += delta
	pos.sha = dest
	pos.warning = ""
	pos.progress.CurrentSHA = dest
	e.session.Repository.Progress = pos.progress
	return e.render(ctx, pos)
}

// Refresh discards every local change, fast-forwards the branch to the
// remote and re-applies the recorded position. The default branch is
// re-detected and persisted when it changed. A failed remote sync leaves
// the store untouched.
func (e *Engine) Refresh(ctx context.Context) (*View, error) {
	ctx, release, err := e.reconciler.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.reconciler.RefreshFromRemote(ctx, e.branch()); err != nil {
		return nil, &StateError{Err: err, Hint: RecoveryHint}
	}

	branch, detectErr := e.session.Client.DefaultBranch(ctx)
	if detectErr == nil && branch != e.branch() {
		if err := e.store.SetDefaultBranch(ctx, e.session.Repository.ID, branch); err != nil {
			return nil, stateError("update default branch", err)
		}
		e.session.Repository.DefaultBranch = branch
	}
	view, err := e.sync(ctx)
	if err != nil {
		return nil, err
	}
	if detectErr != nil {
		view.warn(fmt.Sprintf("could not re-detect the default branch, staying on %s: %v", e.branch(), detectErr))
	}
	return view, nil
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
