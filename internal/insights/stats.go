// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package insights computes statistics and correlation insights over a user's
// activity log. Everything here is pure computation; callers fetch the
// entries and hand them in.
package insights

import (
	"math"
	"time"
)

// Range bounds a computation to a time window. Zero bounds mean unbounded on
// that side.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Bucket selects the reporting period for habit frequency.
type Bucket string

// Supported buckets.
const (
	BucketDaily  Bucket = "daily"
	BucketWeekly Bucket = "weekly"
)

// StateCount summarizes occurrences of a single state.
type StateCount struct {
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
	PerDayAverage float64 `json:"perDayAverage"`
}

// StateStats summarizes state entries over a window.
type StateStats struct {
	TotalEntries int                   `json:"totalEntries"`
	RangeDays    int                   `json:"rangeDays"`
	ByState      map[string]StateCount `json:"byState"`
}

// HabitStat summarizes occurrences of a single habit.
type HabitStat struct {
	HabitID              string  `json:"habitId"`
	Total                int     `json:"total"`
	SuccessRate          float64 `json:"successRate"`
	OccurrencesPerBucket float64 `json:"occurrencesPerBucket"`
}

// HabitFrequency summarizes habit entries over a window.
type HabitFrequency struct {
	RangeDays int         `json:"rangeDays"`
	Bucket    Bucket      `json:"bucket"`
	Habits    []HabitStat `json:"habits"`
}

// rangeDays computes the span of a window in whole days, never less than one.
// When the window is open-ended the observed entry times bound it instead.
func rangeDays(r Range, earliest, latest time.Time) int {
	span := func(a, b time.Time) int {
		days := int(math.Ceil(b.Sub(a).Hours() / 24))
		if days < 1 {
			return 1
		}
		return days
	}
	if !r.Start.IsZero() && !r.End.IsZero() {
		return span(r.Start, r.End)
	}
	if !earliest.IsZero() && !latest.IsZero() {
		return span(earliest, latest)
	}
	return 1
}

// ComputeStateStats tallies state observations within the window.
func ComputeStateStats(observations []StateObservation, r Range) StateStats {
	counts := make(map[string]int)
	total := 0
	var earliest, latest time.Time

	for _, obs := range observations {
		if obs.State == "" || !r.contains(obs.LoggedAt) {
			continue
		}
		if earliest.IsZero() || obs.LoggedAt.Before(earliest) {
			earliest = obs.LoggedAt
		}
		if latest.IsZero() || obs.LoggedAt.After(latest) {
			latest = obs.LoggedAt
		}
		counts[obs.State]++
		total++
	}

	days := rangeDays(r, earliest, latest)

	byState := make(map[string]StateCount, len(counts))
	for state, count := range counts {
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		byState[state] = StateCount{
			Count:         count,
			Percentage:    pct,
			PerDayAverage: float64(count) / float64(days),
		}
	}

	return StateStats{
		TotalEntries: total,
		RangeDays:    days,
		ByState:      byState,
	}
}

// ComputeHabitFrequency tallies habit observations within the window,
// normalized to the requested bucket. An empty bucket defaults to weekly.
func ComputeHabitFrequency(observations []HabitObservation, r Range, bucket Bucket) HabitFrequency {
	if bucket == "" {
		bucket = BucketWeekly
	}

	type tally struct {
		count     int
		successes int
	}
	habits := make(map[string]*tally)
	var order []string
	var earliest, latest time.Time

	for _, obs := range observations {
		if obs.HabitID == "" || !r.contains(obs.LoggedAt) {
			continue
		}
		if earliest.IsZero() || obs.LoggedAt.Before(earliest) {
			earliest = obs.LoggedAt
		}
		if latest.IsZero() || obs.LoggedAt.After(latest) {
			latest = obs.LoggedAt
		}
		t, ok := habits[obs.HabitID]
		if !ok {
			t = &tally{}
			habits[obs.HabitID] = t
			order = append(order, obs.HabitID)
		}
		t.count++
		if obs.Success {
			t.successes++
		}
	}

	days := rangeDays(r, earliest, latest)
	multiplier := 1.0
	if bucket == BucketWeekly {
		multiplier = 7.0
	}

	stats := make([]HabitStat, 0, len(order))
	for _, id := range order {
		t := habits[id]
		rate := 0.0
		if t.count > 0 {
			rate = float64(t.successes) / float64(t.count)
		}
		stats = append(stats, HabitStat{
			HabitID:              id,
			Total:                t.count,
			SuccessRate:          rate,
			OccurrencesPerBucket: float64(t.count) / (float64(days) / multiplier),
		})
	}

	return HabitFrequency{
		RangeDays: days,
		Bucket:    bucket,
		Habits:    stats,
	}
}
