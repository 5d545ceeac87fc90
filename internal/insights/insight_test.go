// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package insights_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equanimity/equanimity/internal/insights"
)

// correlatedDays builds n days where vegetable servings track the mood score
// with the given sign.
func correlatedDays(n int, sign float64) []insights.DailyAggregate {
	days := make([]insights.DailyAggregate, n)
	for i := range days {
		servings := float64(i + 1)
		days[i] = insights.DailyAggregate{
			Date:           fmt.Sprintf("2026-03-%02d", i+1),
			FoodServings:   map[string]float64{"vegetables": servings},
			PositiveStates: map[string]float64{"calm": 3 + sign*servings},
		}
	}
	return days
}

func TestGenerateInsight(t *testing.T) {
	t.Run("too few days falls back", func(t *testing.T) {
		got := insights.GenerateInsight(correlatedDays(2, 1))
		assert.Equal(t, insights.FallbackInsight, got)
	})

	t.Run("positive correlation", func(t *testing.T) {
		got := insights.GenerateInsight(correlatedDays(5, 1))
		assert.Equal(t, "On days you eat more vegetables, your mood tends to be better.", got)
	})

	t.Run("negative correlation", func(t *testing.T) {
		got := insights.GenerateInsight(correlatedDays(5, -1))
		assert.Equal(t, "On days you eat more vegetables, your mood tends to be worse.", got)
	})

	t.Run("flat data falls back", func(t *testing.T) {
		days := []insights.DailyAggregate{
			{Date: "2026-03-01", FoodServings: map[string]float64{"grains": 2}, PositiveStates: map[string]float64{"calm": 3}},
			{Date: "2026-03-02", FoodServings: map[string]float64{"grains": 2}, PositiveStates: map[string]float64{"calm": 3}},
			{Date: "2026-03-03", FoodServings: map[string]float64{"grains": 2}, PositiveStates: map[string]float64{"calm": 3}},
		}
		got := insights.GenerateInsight(days)
		assert.Equal(t, insights.FallbackInsight, got)
	})

	t.Run("strongest group wins", func(t *testing.T) {
		days := correlatedDays(5, 1)
		for i := range days {
			// fruits barely vary while vegetables track mood exactly
			days[i].FoodServings["fruits"] = 2 + 0.01*float64(i%2)
		}
		got := insights.GenerateInsight(days)
		assert.Contains(t, got, "vegetables")
	})
}

func TestBuildReport(t *testing.T) {
	t.Run("no observations yields fallback with empty chart", func(t *testing.T) {
		report := insights.BuildReport(insights.Observations{})

		assert.Equal(t, insights.FallbackInsight, report.Insight)
		require.NotNil(t, report.ChartData)
		assert.Empty(t, report.ChartData)
	})

	t.Run("chart data carries the daily aggregates", func(t *testing.T) {
		obs := insights.Observations{
			Meals: []insights.MealObservation{
				{LoggedAt: day(1, 8), Groups: map[string]insights.Portion{"fruits": {Fist: 1}}},
				{LoggedAt: day(2, 8), Groups: map[string]insights.Portion{"fruits": {Fist: 2}}},
			},
		}

		report := insights.BuildReport(obs)

		require.Len(t, report.ChartData, 2)
		assert.Equal(t, "2026-03-01", report.ChartData[0].Date)
		assert.Equal(t, insights.FallbackInsight, report.Insight, "two days is below the correlation minimum")
	})
}
