package pace

import (
	"sort"
	"time"
)

// PeakRate returns (max reviews in any windowDays window) / windowDays.
// windowDays <= 0 defaults to 7.
func PeakRate(reviewTimes []time.Time, windowDays int) float64 {
	if windowDays <= 0 {
		windowDays = 7
	}
	if len(reviewTimes) == 0 {
		return 0
	}

	times := make([]time.Time, len(reviewTimes))
	copy(times, reviewTimes)

	if !isSortedAscending(times) {
		if isSortedDescending(times) {
			reverse(times)
		} else {
			sort.Slice(times, func(i, j int) bool {
				return times[i].Before(times[j])
			})
		}
	}

	window := time.Duration(windowDays) * day
	maxInWindow := 1

	// Two-pointer sliding window.
	left := 0
	for right := 0; right < len(times); right++ {
		for times[right].Sub(times[left]) > window {
			left++
		}
		if n := right - left + 1; n > maxInWindow {
			maxInWindow = n
		}
	}

	return float64(maxInWindow) / float64(windowDays)
}

func isSortedAscending(times []time.Time) bool {
	for i := 1; i < len(times); i++ {
		if times[i].Before(times[i-1]) {
			return false
		}
	}
	return true
}

// Ledgers usually hand back newest first.
func isSortedDescending(times []time.Time) bool {
	for i := 1; i < len(times); i++ {
		if times[i].After(times[i-1]) {
			return false
		}
	}
	return true
}

func reverse(times []time.Time) {
	for i, j := 0, len(times)-1; i < j; i, j = i+1, j-1 {
		times[i], times[j] = times[j], times[i]
	}
}
