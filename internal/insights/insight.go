// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package insights

import (
	"fmt"
	"math"
)

// FallbackInsight is shown when there is not enough logged data to say
// anything meaningful.
const FallbackInsight = "Keep logging your meals and moods to see new insights here!"

// minCorrelationDays is the fewest days of paired data worth correlating.
const minCorrelationDays = 3

// minCorrelationStrength is the weakest correlation worth reporting.
const minCorrelationStrength = 0.5

// Report is the insights API response: a sentence for the user plus the
// per-day data behind it.
type Report struct {
	Insight   string           `json:"insight"`
	ChartData []DailyAggregate `json:"chartData"`
}

// GenerateInsight correlates each food group's daily servings with the daily
// mood score and reports the strongest relationship found. With too little
// data or only weak correlations it falls back to an encouragement line.
func GenerateInsight(days []DailyAggregate) string {
	if len(days) < minCorrelationDays {
		return FallbackInsight
	}

	moods := make([]float64, len(days))
	for i, d := range days {
		moods[i] = d.MoodScore()
	}

	bestGroup := ""
	bestR := 0.0
	for _, group := range FoodGroups {
		servings := make([]float64, len(days))
		for i, d := range days {
			servings[i] = d.FoodServings[group]
		}
		r := pearson(servings, moods)
		if math.Abs(r) > math.Abs(bestR) {
			bestGroup, bestR = group, r
		}
	}

	if bestGroup == "" || math.Abs(bestR) < minCorrelationStrength {
		return FallbackInsight
	}

	if bestR > 0 {
		return fmt.Sprintf("On days you eat more %s, your mood tends to be better.", bestGroup)
	}
	return fmt.Sprintf("On days you eat more %s, your mood tends to be worse.", bestGroup)
}

// BuildReport aggregates observations and generates the insight sentence.
func BuildReport(obs Observations) Report {
	days := Aggregate(obs)
	if len(days) == 0 {
		return Report{Insight: FallbackInsight, ChartData: []DailyAggregate{}}
	}
	return Report{Insight: GenerateInsight(days), ChartData: days}
}

// pearson computes the Pearson correlation coefficient of two equal-length
// series. Degenerate series (zero variance) correlate at zero.
func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
