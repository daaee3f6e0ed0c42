package pace

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/masmgr/gitpace/internal/model"
)

// memLedger is an in-memory Ledger.
type memLedger struct {
	times []time.Time
	err   error
}

func (l *memLedger) CountReviewsSince(_ context.Context, _ int64, since time.Time) (int, error) {
	if l.err != nil {
		return 0, l.err
	}
	n := 0
	for _, t := range l.times {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}

func (l *memLedger) OldestReview(_ context.Context, _ int64) (time.Time, bool, error) {
	if l.err != nil {
		return time.Time{}, false, l.err
	}
	if len(l.times) == 0 {
		return time.Time{}, false, nil
	}
	oldest := l.times[0]
	for _, t := range l.times[1:] {
		if t.Before(oldest) {
			oldest = t
		}
	}
	return oldest, true, nil
}

func (l *memLedger) ReviewTimes(_ context.Context, _ int64) ([]time.Time, error) {
	return l.times, l.err
}

type stubUpstream struct {
	n     int
	err   error
	since time.Time
}

func (u *stubUpstream) CountCommitsSince(_ context.Context, _ string, since time.Time) (int, error) {
	u.since = since
	return u.n, u.err
}

var fixedNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestActualPace_SevenDays(t *testing.T) {
	ledger := &memLedger{}
	for i := 0; i < 10; i++ {
		ledger.times = append(ledger.times, fixedNow.Add(-time.Duration(i*12)*time.Hour))
	}
	a := NewAnalyzer(ledger, nil, clock)

	got, err := a.ActualPace(context.Background(), 1, model.PacePeriod7Days)
	if err != nil {
		t.Fatalf("ActualPace: %v", err)
	}
	if math.Abs(got-10.0/7.0) > 1e-9 {
		t.Fatalf("ActualPace(7-days) = %v, want %v", got, 10.0/7.0)
	}
}

func TestActualPace_Periods(t *testing.T) {
	ledger := &memLedger{times: []time.Time{
		fixedNow.Add(-40 * day),
		fixedNow.Add(-20 * day),
		fixedNow.Add(-2 * day),
	}}
	a := NewAnalyzer(ledger, nil, clock)
	ctx := context.Background()

	tests := []struct {
		period model.PacePeriod
		want   float64
	}{
		{model.PacePeriod7Days, 1.0 / 7.0},
		{model.PacePeriod30Days, 2.0 / 30.0},
		{model.PacePeriodAll, 3.0 / 40.0},
		{model.PacePeriod("fortnight"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, err := a.ActualPace(ctx, 1, tt.period)
			if err != nil {
				t.Fatalf("ActualPace: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ActualPace(%s) = %v, want %v", tt.period, got, tt.want)
			}
		})
	}
}

func TestActualPace_AllTimeFirstDayFloorsToOne(t *testing.T) {
	ledger := &memLedger{times: []time.Time{
		fixedNow.Add(-3 * time.Hour),
		fixedNow.Add(-2 * time.Hour),
		fixedNow.Add(-time.Hour),
	}}
	a := NewAnalyzer(ledger, nil, clock)

	got, err := a.ActualPace(context.Background(), 1, model.PacePeriodAll)
	if err != nil {
		t.Fatalf("ActualPace: %v", err)
	}
	if got != 3 {
		t.Fatalf("ActualPace(all-time) within first day = %v, want 3", got)
	}
}

func TestActualPace_NoReviews(t *testing.T) {
	a := NewAnalyzer(&memLedger{}, nil, clock)
	for _, p := range model.PacePeriods {
		got, err := a.ActualPace(context.Background(), 1, p)
		if err != nil || got != 0 {
			t.Fatalf("ActualPace(%s) = (%v, %v), want 0", p, got, err)
		}
	}
}

func TestActualPace_LedgerError(t *testing.T) {
	a := NewAnalyzer(&memLedger{err: errors.New("disk full")}, nil, clock)
	if _, err := a.ActualPace(context.Background(), 1, model.PacePeriod7Days); err == nil {
		t.Fatal("expected ledger error to propagate")
	}
}

func TestUpstreamPace(t *testing.T) {
	up := &stubUpstream{n: 45}
	a := NewAnalyzer(&memLedger{}, up, clock)

	if got := a.UpstreamPace(context.Background(), "main", 30); got != 1.5 {
		t.Fatalf("UpstreamPace = %v, want 1.5", got)
	}
	if !up.since.Equal(fixedNow.Add(-30 * day)) {
		t.Fatalf("since = %v, want now-30d", up.since)
	}

	up.err = errors.New("git failed")
	if got := a.UpstreamPace(context.Background(), "main", 30); got != 0 {
		t.Fatalf("UpstreamPace on failure = %v, want 0", got)
	}
	if got := a.UpstreamPace(context.Background(), "main", 0); got != 0 {
		t.Fatalf("UpstreamPace with zero window = %v, want 0", got)
	}
}

func TestPeakPace(t *testing.T) {
	base := fixedNow.Add(-60 * day)
	ledger := &memLedger{times: []time.Time{
		base, base.Add(day), base.Add(2 * day), base.Add(3 * day),
		base.Add(30 * day),
	}}
	a := NewAnalyzer(ledger, nil, clock)

	got, err := a.PeakPace(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("PeakPace: %v", err)
	}
	if math.Abs(got-4.0/7.0) > 1e-9 {
		t.Fatalf("PeakPace = %v, want 4/7", got)
	}
}

func TestPeakRate(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		times  []time.Time
		window int
		want   float64
	}{
		{name: "Empty", times: nil, window: 7, want: 0},
		{name: "Single", times: []time.Time{base}, window: 7, want: 1.0 / 7.0},
		{name: "Descending", times: []time.Time{base.Add(2 * day), base.Add(day), base}, window: 7, want: 3.0 / 7.0},
		{name: "Unsorted", times: []time.Time{base.Add(20 * day), base, base.Add(day)}, window: 7, want: 2.0 / 7.0},
		{name: "Default window", times: []time.Time{base}, window: 0, want: 1.0 / 7.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakRate(tt.times, tt.window); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("PeakRate = %v, want %v", got, tt.want)
			}
		})
	}
}
