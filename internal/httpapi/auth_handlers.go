// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/equanimity/equanimity/internal/auth"
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 12

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	TermsAccepted bool   `json:"termsAccepted"`
}

// handleRegister creates a new user and returns a session token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if len(req.Password) < MinPasswordLength {
		writeText(w, http.StatusBadRequest, "Password must be at least 12 characters.")
		return
	}
	if !req.TermsAccepted {
		writeText(w, http.StatusBadRequest, "Terms & Conditions must be accepted.")
		return
	}

	token, err := s.auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		if s.metrics != nil {
			s.metrics.RegistrationsTotal.WithLabelValues("success").Inc()
		}
		writeText(w, http.StatusOK, token)
	case errors.Is(err, auth.ErrDuplicateUsername):
		if s.metrics != nil {
			s.metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		}
		writeText(w, http.StatusConflict, "A user with that username already exists.")
	case errors.Is(err, auth.ErrInvalidUsername):
		if s.metrics != nil {
			s.metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		}
		writeText(w, http.StatusBadRequest, "Invalid username.")
	default:
		s.logger.Error("registration failed", "error", err)
		if s.metrics != nil {
			s.metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		writeText(w, http.StatusInternalServerError, "Server error during registration.")
	}
}

// handleCheckAuth authenticates with either a Basic credential pair or a
// Bearer token. Basic auth returns the session token; Bearer auth confirms
// the session is still valid.
func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" {
		writeText(w, http.StatusBadRequest, "Missing Authorization Header")
		return
	}

	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		if _, err := s.auth.LoginWithToken(r.Context(), token); err != nil {
			if errors.Is(err, auth.ErrSessionInvalid) {
				s.recordLogin("token", "invalid")
				writeText(w, http.StatusUnauthorized, "Invalid Session. Please log in again to get a new session ID.")
				return
			}
			s.logger.Error("session check failed", "error", err)
			writeText(w, http.StatusInternalServerError, "Server error during session check.")
			return
		}
		s.recordLogin("token", "success")
		writeText(w, http.StatusOK, "Valid Session")
		return
	}

	username, password, ok := basicCredentials(header)
	if !ok {
		writeText(w, http.StatusBadRequest, "Malformed Authorization Header")
		return
	}

	token, err := s.auth.LoginWithPassword(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recordLogin("password", "invalid")
			writeText(w, http.StatusUnauthorized, "Invalid Credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Server error during login.")
		return
	}

	s.recordLogin("password", "success")
	writeText(w, http.StatusOK, token)
}

// basicCredentials decodes a Basic Authorization header value into a
// username and password.
func basicCredentials(header string) (username, password string, ok bool) {
	encoded, found := strings.CutPrefix(header, "Basic ")
	if !found {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

func (s *Server) recordLogin(method, outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(method, outcome).Inc()
	}
}

// bearerUsername resolves the Bearer token on the request to a username.
// A false return means the response has already been written.
func (s *Server) bearerUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if header == "" || !found {
		writeText(w, http.StatusUnauthorized, "Unauthorized: Missing Bearer token.")
		return "", false
	}

	username, err := s.auth.LoginWithToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionInvalid) {
			writeText(w, http.StatusUnauthorized, "Invalid or expired session.")
			return "", false
		}
		s.logger.Error("session resolution failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Server error during session check.")
		return "", false
	}
	return username, true
}
