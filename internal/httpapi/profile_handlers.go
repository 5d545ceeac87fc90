// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/equanimity/equanimity/internal/profile"
)

type profileResponse struct {
	Username           string   `json:"username"`
	DisplayName        string   `json:"displayName"`
	PositiveHabits     []string `json:"positiveHabits"`
	NegativeHabits     []string `json:"negativeHabits"`
	PositiveStates     []string `json:"positiveStates"`
	NegativeStates     []string `json:"negativeStates"`
	OnboardingComplete bool     `json:"onboardingComplete"`
}

func toProfileResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		Username:           p.Username,
		DisplayName:        p.DisplayName,
		PositiveHabits:     p.PositiveHabits,
		NegativeHabits:     p.NegativeHabits,
		PositiveStates:     p.PositiveStates,
		NegativeStates:     p.NegativeStates,
		OnboardingComplete: p.OnboardingComplete,
	}
}

// handleGetProfile returns the authenticated user's profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := s.bearerUsername(w, r)
	if !ok {
		return
	}

	p, err := s.profiles.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			writeText(w, http.StatusNotFound, "User profile not found.")
			return
		}
		s.logger.Error("profile retrieval failed", "username", username, "error", err)
		writeText(w, http.StatusInternalServerError, "Server error retrieving profile.")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

type onboardingRequest struct {
	DisplayName    *string  `json:"displayName"`
	PositiveStates []string `json:"positiveStates"`
	NegativeStates []string `json:"negativeStates"`
	PositiveHabits []string `json:"positiveHabits"`
	NegativeHabits []string `json:"negativeHabits"`
}

// handleOnboarding applies an onboarding submission to the authenticated
// user's profile.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	username, ok := s.bearerUsername(w, r)
	if !ok {
		return
	}

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	_, err := s.profiles.UpdateOnboarding(r.Context(), username, profile.OnboardingUpdate{
		DisplayName:    req.DisplayName,
		PositiveStates: req.PositiveStates,
		NegativeStates: req.NegativeStates,
		PositiveHabits: req.PositiveHabits,
		NegativeHabits: req.NegativeHabits,
	})
	if err != nil {
		if errors.Is(err, profile.ErrTooFewPositiveStates) {
			writeText(w, http.StatusBadRequest, "Positive states require at least 3 selections.")
			return
		}
		s.logger.Error("onboarding update failed", "username", username, "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to update user profile.")
		return
	}

	writeText(w, http.StatusOK, "Onboarding profile updated successfully.")
}

type logActivityRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// handleLogActivity appends an activity entry to the authenticated user's
// log.
func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	username, ok := s.bearerUsername(w, r)
	if !ok {
		return
	}

	var req logActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if _, err := s.profiles.Log(r.Context(), username, req.Kind, req.Payload); err != nil {
		if errors.Is(err, profile.ErrUnknownEntryKind) {
			writeText(w, http.StatusBadRequest, "Unknown activity kind.")
			return
		}
		s.logger.Error("activity logging failed", "username", username, "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to log user activity.")
		return
	}

	if s.metrics != nil {
		s.metrics.EntriesLoggedTotal.WithLabelValues(req.Kind).Inc()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Activity logged successfully."})
}
