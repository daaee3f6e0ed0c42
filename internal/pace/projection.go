package pace

import (
	"math"
	"time"
)

// CatchUpStatus says whether a pace outruns the moving branch tip.
type CatchUpStatus string

const (
	// CatchUpNotApplicable is reported for fixed targets.
	CatchUpNotApplicable CatchUpStatus = "not-applicable"
	// CatchUpOnTrack means the net pace is positive and CatchUpDate is set.
	CatchUpOnTrack CatchUpStatus = "on-track"
	// CatchUpInsufficientPace means upstream grows at least as fast as the
	// reviewer reviews; the gap never closes.
	CatchUpInsufficientPace CatchUpStatus = "insufficient-pace"
)

// Input is everything Project needs.
type Input struct {
	CurrentIndex   int
	TargetIndex    int
	IdealPace      float64
	ActualPace     float64
	UpstreamPace   float64
	TargetIsLatest bool
	Now            time.Time
}

// Projection holds the dates derived from one pace.
type Projection struct {
	Pace        float64       `json:"pace"`
	NetPace     float64       `json:"net_pace"`
	FinishDate  *time.Time    `json:"finish_date,omitempty"`
	CatchUpDate *time.Time    `json:"catch_up_date,omitempty"`
	CatchUp     CatchUpStatus `json:"catch_up"`
}

// Data is the complete pace record for a view. The zero value is the empty
// result returned when nothing remains to review.
type Data struct {
	CommitsRemaining int        `json:"commits_remaining"`
	IdealPace        float64    `json:"ideal_pace"`
	ActualPace       float64    `json:"actual_pace"`
	UpstreamPace     float64    `json:"upstream_pace"`
	TargetIsLatest   bool       `json:"target_is_latest"`
	Ideal            Projection `json:"ideal"`
	Actual           Projection `json:"actual"`
}

// Empty reports whether no projection was produced.
func (d Data) Empty() bool { return d.CommitsRemaining <= 0 }

// InsufficientPace reports whether either pace fails to catch up.
func (d Data) InsufficientPace() bool {
	return d.Ideal.CatchUp == CatchUpInsufficientPace || d.Actual.CatchUp == CatchUpInsufficientPace
}

// Project computes finish and catch-up dates for the ideal and actual paces.
// When the target is at or behind the current position the result is empty.
func Project(in Input) Data {
	remaining := in.TargetIndex - in.CurrentIndex
	if remaining <= 0 {
		return Data{}
	}

	upstream := 0.0
	if in.TargetIsLatest {
		upstream = in.UpstreamPace
	}

	return Data{
		CommitsRemaining: remaining,
		IdealPace:        in.IdealPace,
		ActualPace:       in.ActualPace,
		UpstreamPace:     upstream,
		TargetIsLatest:   in.TargetIsLatest,
		Ideal:            project(in.IdealPace, upstream, remaining, in.TargetIsLatest, in.Now),
		Actual:           project(in.ActualPace, upstream, remaining, in.TargetIsLatest, in.Now),
	}
}

func project(pace, upstream float64, remaining int, latest bool, now time.Time) Projection {
	p := Projection{Pace: pace, NetPace: pace, CatchUp: CatchUpNotApplicable}

	if pace > 0 {
		p.FinishDate = daysFrom(now, remaining, pace)
	}

	if !latest {
		return p
	}

	p.NetPace = pace - upstream
	if p.NetPace > 0 {
		p.CatchUpDate = daysFrom(now, remaining, p.NetPace)
		p.CatchUp = CatchUpOnTrack
	} else {
		p.CatchUp = CatchUpInsufficientPace
	}
	return p
}

func daysFrom(now time.Time, remaining int, pace float64) *time.Time {
	d := now.AddDate(0, 0, int(math.Ceil(float64(remaining)/pace)))
	return &d
}

// Percentage is the share of the way from the first commit to the target,
// clamped to [0, 100].
func Percentage(current, target int) float64 {
	if target <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	p := float64(current+1) / float64(target+1) * 100
	return math.Max(0, math.Min(100, p))
}
