package pace

import (
	"math"
	"time"
)

// DefaultHorizonYears bounds every series so tiny paces still terminate.
const DefaultHorizonYears = 5

// Point is one day of a remaining-commits series.
type Point struct {
	Date      time.Time `json:"x"`
	Remaining float64   `json:"y"`
}

// Series returns (date, remaining) pairs starting at (start, initial) and
// stepping one day at a time, subtracting pace each day, until nothing
// remains or horizonYears have elapsed. Reported values never go below 0.
// A non-positive pace yields an empty series.
func Series(pace float64, initial int, start time.Time, horizonYears int) []Point {
	if pace <= 0 {
		return []Point{}
	}
	if horizonYears <= 0 {
		horizonYears = DefaultHorizonYears
	}
	horizon := start.AddDate(horizonYears, 0, 0)

	remaining := float64(initial)
	points := []Point{{Date: start, Remaining: math.Max(0, remaining)}}

	for date := start; remaining > 0; {
		date = date.AddDate(0, 0, 1)
		remaining -= pace
		points = append(points, Point{Date: date, Remaining: math.Max(0, remaining)})
		if !date.Before(horizon) {
			break
		}
	}
	return points
}

// Labels of the chart datasets.
const (
	IdealLabel  = "Ideal Pace"
	ActualLabel = "Actual Pace"
)

// Dataset is one labelled series.
type Dataset struct {
	Label  string  `json:"label"`
	Pace   float64 `json:"pace"`
	Points []Point `json:"data"`
}

// Chart groups the datasets of a pace chart.
type Chart struct {
	Datasets []Dataset `json:"datasets"`
}

// NewChart builds the ideal and actual series for d. Net paces are used when
// the target is latest; datasets whose pace is not positive are omitted.
func NewChart(d Data, start time.Time, horizonYears int) Chart {
	chart := Chart{Datasets: []Dataset{}}
	if d.Empty() {
		return chart
	}

	for _, s := range []struct {
		label string
		proj  Projection
	}{
		{IdealLabel, d.Ideal},
		{ActualLabel, d.Actual},
	} {
		if s.proj.NetPace <= 0 {
			continue
		}
		chart.Datasets = append(chart.Datasets, Dataset{
			Label:  s.label,
			Pace:   s.proj.NetPace,
			Points: Series(s.proj.NetPace, d.CommitsRemaining, start, horizonYears),
		})
	}
	return chart
}
