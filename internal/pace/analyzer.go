// Package pace turns review events into velocities, finish and catch-up
// projections, and the day-stepped series used for charting.
package pace

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/masmgr/gitpace/internal/model"
)

const day = 24 * time.Hour

// Ledger is the read side of the review log.
type Ledger interface {
	CountReviewsSince(ctx context.Context, repoID int64, since time.Time) (int, error)
	OldestReview(ctx context.Context, repoID int64) (time.Time, bool, error)
	ReviewTimes(ctx context.Context, repoID int64) ([]time.Time, error)
}

// Upstream counts commits landing on a branch. git.Client satisfies it.
type Upstream interface {
	CountCommitsSince(ctx context.Context, branch string, since time.Time) (int, error)
}

// Analyzer computes actual and upstream velocities.
type Analyzer struct {
	ledger   Ledger
	upstream Upstream
	now      func() time.Time
}

// NewAnalyzer creates an Analyzer. now defaults to time.Now.
func NewAnalyzer(ledger Ledger, upstream Upstream, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{ledger: ledger, upstream: upstream, now: now}
}

// Now returns the analyzer's clock reading.
func (a *Analyzer) Now() time.Time { return a.now() }

// ActualPace returns reviews per day over period. Unknown periods and
// windows without reviews yield 0.
func (a *Analyzer) ActualPace(ctx context.Context, repoID int64, period model.PacePeriod) (float64, error) {
	now := a.now()

	var start time.Time
	switch period {
	case model.PacePeriod7Days:
		start = now.Add(-7 * day)
	case model.PacePeriod30Days:
		start = now.Add(-30 * day)
	case model.PacePeriodAll:
		oldest, ok, err := a.ledger.OldestReview(ctx, repoID)
		if err != nil {
			return 0, fmt.Errorf("oldest review: %w", err)
		}
		if !ok {
			return 0, nil
		}
		start = oldest
	default:
		return 0, nil
	}

	count, err := a.ledger.CountReviewsSince(ctx, repoID, start)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	return float64(count) / float64(wholeDays(start, now)), nil
}

// wholeDays is the number of complete days between start and now, at least 1.
func wholeDays(start, now time.Time) int {
	days := int(math.Floor(now.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// UpstreamPace returns commits per day landed on branch over the last
// windowDays. Any failure yields 0.
func (a *Analyzer) UpstreamPace(ctx context.Context, branch string, windowDays int) float64 {
	if windowDays <= 0 || a.upstream == nil {
		return 0
	}
	since := a.now().Add(-time.Duration(windowDays) * day)
	n, err := a.upstream.CountCommitsSince(ctx, branch, since)
	if err != nil || n <= 0 {
		return 0
	}
	return float64(n) / float64(windowDays)
}

// PeakPace returns the highest reviews-per-day rate sustained over any
// windowDays-long window of the review history.
func (a *Analyzer) PeakPace(ctx context.Context, repoID int64, windowDays int) (float64, error) {
	times, err := a.ledger.ReviewTimes(ctx, repoID)
	if err != nil {
		return 0, fmt.Errorf("review times: %w", err)
	}
	return PeakRate(times, windowDays), nil
}
