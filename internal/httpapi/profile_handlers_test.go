// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equanimity/equanimity/internal/profile"
)

func requestWithAuth(handler http.Handler, method, path, authorization, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	handler.ServeHTTP(rec, req)
	return rec
}

func onboardedProfile() *profile.Profile {
	p := profile.New("alice")
	display := "Alice"
	p.Apply(profile.OnboardingUpdate{
		DisplayName:    &display,
		PositiveStates: []string{"calm", "focused", "rested"},
		NegativeStates: []string{"anxious"},
		PositiveHabits: []string{"walking"},
		NegativeHabits: []string{"doomscrolling"},
	})
	return p
}

func TestHandleGetProfile(t *testing.T) {
	authSvc := &stubAuth{loginTokenFn: validToken("session-token", "alice")}

	t.Run("returns the profile as JSON", func(t *testing.T) {
		profiles := &stubProfiles{
			getFn: func(_ context.Context, username string) (*profile.Profile, error) {
				assert.Equal(t, "alice", username)
				return onboardedProfile(), nil
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodGet, "/profile", "Bearer session-token", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp["username"])
		assert.Equal(t, "Alice", resp["displayName"])
		assert.Equal(t, true, resp["onboardingComplete"])
		assert.Len(t, resp["positiveStates"], 3)
	})

	t.Run("missing bearer token", func(t *testing.T) {
		srv := newTestServer(t, authSvc, nil, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodGet, "/profile", "", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized: Missing Bearer token.", rec.Body.String())
	})

	t.Run("expired session", func(t *testing.T) {
		srv := newTestServer(t, authSvc, nil, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodGet, "/profile", "Bearer stale-token", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired session.", rec.Body.String())
	})

	t.Run("profile missing", func(t *testing.T) {
		profiles := &stubProfiles{
			getFn: func(context.Context, string) (*profile.Profile, error) {
				return nil, fmt.Errorf("get: %w", profile.ErrNotFound)
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodGet, "/profile", "Bearer session-token", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User profile not found.", rec.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		profiles := &stubProfiles{
			getFn: func(context.Context, string) (*profile.Profile, error) {
				return nil, errors.New("connection refused")
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodGet, "/profile", "Bearer session-token", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleOnboarding(t *testing.T) {
	authSvc := &stubAuth{loginTokenFn: validToken("session-token", "alice")}

	t.Run("applies the submission", func(t *testing.T) {
		profiles := &stubProfiles{
			updateFn: func(_ context.Context, username string, u profile.OnboardingUpdate) (*profile.Profile, error) {
				assert.Equal(t, "alice", username)
				require.NotNil(t, u.DisplayName)
				assert.Equal(t, "Alice", *u.DisplayName)
				assert.Equal(t, []string{"calm", "focused", "rested"}, u.PositiveStates)
				assert.Nil(t, u.NegativeHabits, "omitted fields must stay nil")
				return onboardedProfile(), nil
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		body := `{"displayName":"Alice","positiveStates":["calm","focused","rested"]}`
		rec := requestWithAuth(srv.Handler(), http.MethodPut, "/profile/onboarding", "Bearer session-token", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Onboarding profile updated successfully.", rec.Body.String())
	})

	t.Run("too few positive states", func(t *testing.T) {
		profiles := &stubProfiles{
			updateFn: func(context.Context, string, profile.OnboardingUpdate) (*profile.Profile, error) {
				return nil, fmt.Errorf("update: %w", profile.ErrTooFewPositiveStates)
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		body := `{"positiveStates":["calm"]}`
		rec := requestWithAuth(srv.Handler(), http.MethodPut, "/profile/onboarding", "Bearer session-token", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Positive states require at least 3 selections.", rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, authSvc, nil, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodPut, "/profile/onboarding", "Bearer session-token", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body.", rec.Body.String())
	})

	t.Run("missing bearer token", func(t *testing.T) {
		srv := newTestServer(t, authSvc, nil, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodPut, "/profile/onboarding", "", `{}`)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("update failure", func(t *testing.T) {
		profiles := &stubProfiles{
			updateFn: func(context.Context, string, profile.OnboardingUpdate) (*profile.Profile, error) {
				return nil, errors.New("connection refused")
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodPut, "/profile/onboarding", "Bearer session-token", `{}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to update user profile.", rec.Body.String())
	})
}

func TestHandleLogActivity(t *testing.T) {
	authSvc := &stubAuth{loginTokenFn: validToken("session-token", "alice")}
	loggedAt := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("logs a meal entry", func(t *testing.T) {
		profiles := &stubProfiles{
			logFn: func(_ context.Context, username, kind string, payload json.RawMessage) (*profile.Entry, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "meal", kind)
				assert.JSONEq(t, `{"vegetables":{"fist":1}}`, string(payload))
				return profile.NewEntry(profile.EntryKindMeal, payload, loggedAt)
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		body := `{"kind":"meal","payload":{"vegetables":{"fist":1}}}`
		rec := requestWithAuth(srv.Handler(), http.MethodPost, "/profile/log", "Bearer session-token", body)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Activity logged successfully."}`, rec.Body.String())
	})

	t.Run("unknown activity kind", func(t *testing.T) {
		profiles := &stubProfiles{
			logFn: func(context.Context, string, string, json.RawMessage) (*profile.Entry, error) {
				return nil, fmt.Errorf("log: %w", profile.ErrUnknownEntryKind)
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		body := `{"kind":"nap","payload":{}}`
		rec := requestWithAuth(srv.Handler(), http.MethodPost, "/profile/log", "Bearer session-token", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Unknown activity kind.", rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, authSvc, nil, nil)

		rec := requestWithAuth(srv.Handler(), http.MethodPost, "/profile/log", "Bearer session-token", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		profiles := &stubProfiles{
			logFn: func(context.Context, string, string, json.RawMessage) (*profile.Entry, error) {
				return nil, errors.New("connection refused")
			},
		}
		srv := newTestServer(t, authSvc, profiles, nil)

		body := `{"kind":"meal","payload":{}}`
		rec := requestWithAuth(srv.Handler(), http.MethodPost, "/profile/log", "Bearer session-token", body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to log user activity.", rec.Body.String())
	})
}
