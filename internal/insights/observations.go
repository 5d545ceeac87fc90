// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package insights

import (
	"encoding/json"
	"time"

	"github.com/equanimity/equanimity/internal/profile"
)

// FoodGroups enumerates the tracked food groups in chart order.
var FoodGroups = []string{"vegetables", "protein", "grains", "dairy", "fruits"}

// StateObservation is a decoded state entry. A named state counts once; the
// optional intensity maps feed mood averaging.
type StateObservation struct {
	State          string             `json:"state,omitempty"`
	PositiveStates map[string]float64 `json:"positiveStates,omitempty"`
	NegativeStates map[string]float64 `json:"negativeStates,omitempty"`
	LoggedAt       time.Time          `json:"loggedAt"`
}

// HabitObservation is a decoded habit entry.
type HabitObservation struct {
	HabitID  string    `json:"habitId"`
	Success  bool      `json:"success"`
	LoggedAt time.Time `json:"loggedAt"`
}

// Portion records how many of each hand-measure a meal contained for one food
// group. A fist is a full serving, a palm half, a thumb a quarter.
type Portion struct {
	Fist  float64 `json:"fist"`
	Palm  float64 `json:"palm"`
	Thumb float64 `json:"thumb"`
}

// Servings converts the hand measures into servings.
func (p Portion) Servings() float64 {
	return p.Fist + p.Palm*0.5 + p.Thumb*0.25
}

// MealObservation is a decoded meal entry.
type MealObservation struct {
	Groups   map[string]Portion
	LoggedAt time.Time
}

// Observations holds the decoded view of an activity log.
type Observations struct {
	States []StateObservation
	Habits []HabitObservation
	Meals  []MealObservation
}

// Decode splits activity entries by kind and decodes their payloads. Entries
// whose payload does not parse are skipped rather than failing the whole
// computation; a single bad log line should not break insights.
func Decode(entries []*profile.Entry) Observations {
	var obs Observations
	for _, e := range entries {
		switch e.Kind {
		case profile.EntryKindState:
			var s StateObservation
			if err := json.Unmarshal(e.Payload, &s); err != nil {
				continue
			}
			s.LoggedAt = e.LoggedAt
			obs.States = append(obs.States, s)
		case profile.EntryKindHabit:
			var h HabitObservation
			if err := json.Unmarshal(e.Payload, &h); err != nil {
				continue
			}
			h.LoggedAt = e.LoggedAt
			obs.Habits = append(obs.Habits, h)
		case profile.EntryKindMeal:
			var groups map[string]Portion
			if err := json.Unmarshal(e.Payload, &groups); err != nil {
				continue
			}
			obs.Meals = append(obs.Meals, MealObservation{
				Groups:   groups,
				LoggedAt: e.LoggedAt,
			})
		}
	}
	return obs
}
