// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package insights

import (
	"sort"
	"time"
)

// DailyAggregate is one calendar day of activity: total servings per food
// group and the day's average state intensities.
type DailyAggregate struct {
	Date           string             `json:"date"`
	FoodServings   map[string]float64 `json:"foodServings"`
	PositiveStates map[string]float64 `json:"positiveStates"`
	NegativeStates map[string]float64 `json:"negativeStates"`
}

// MoodScore is the day's average positive intensity minus its average
// negative intensity. Days with no state observations score zero.
func (d DailyAggregate) MoodScore() float64 {
	return average(d.PositiveStates) - average(d.NegativeStates)
}

func average(m map[string]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}

// dayKey buckets a timestamp into a UTC calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Aggregate groups observations by calendar day, summing meal servings and
// averaging state intensities. Days come back in chronological order.
func Aggregate(obs Observations) []DailyAggregate {
	type accumulator struct {
		servings map[string]float64
		positive map[string][]float64
		negative map[string][]float64
	}

	days := make(map[string]*accumulator)
	day := func(t time.Time) *accumulator {
		key := dayKey(t)
		acc, ok := days[key]
		if !ok {
			acc = &accumulator{
				servings: make(map[string]float64),
				positive: make(map[string][]float64),
				negative: make(map[string][]float64),
			}
			days[key] = acc
		}
		return acc
	}

	for _, meal := range obs.Meals {
		acc := day(meal.LoggedAt)
		for group, portion := range meal.Groups {
			acc.servings[group] += portion.Servings()
		}
	}

	for _, state := range obs.States {
		if len(state.PositiveStates) == 0 && len(state.NegativeStates) == 0 {
			continue
		}
		acc := day(state.LoggedAt)
		for name, value := range state.PositiveStates {
			acc.positive[name] = append(acc.positive[name], value)
		}
		for name, value := range state.NegativeStates {
			acc.negative[name] = append(acc.negative[name], value)
		}
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	aggregates := make([]DailyAggregate, 0, len(keys))
	for _, key := range keys {
		acc := days[key]
		aggregates = append(aggregates, DailyAggregate{
			Date:           key,
			FoodServings:   acc.servings,
			PositiveStates: averageSamples(acc.positive),
			NegativeStates: averageSamples(acc.negative),
		})
	}
	return aggregates
}

func averageSamples(samples map[string][]float64) map[string]float64 {
	averages := make(map[string]float64, len(samples))
	for name, values := range samples {
		var sum float64
		for _, v := range values {
			sum += v
		}
		averages[name] = sum / float64(len(values))
	}
	return averages
}
