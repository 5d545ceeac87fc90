// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/equanimity/equanimity/internal/auth"
)

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)
	return rec
}

func getWithAuth(handler http.Handler, path, authorization string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	handler.ServeHTTP(rec, req)
	return rec
}

func basicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func TestHandleRegister(t *testing.T) {
	const goodBody = `{"username":"alice","password":"longenoughpassword","termsAccepted":true}`

	t.Run("successful registration returns the session token", func(t *testing.T) {
		authSvc := &stubAuth{
			registerFn: func(_ context.Context, username, password string) (string, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "longenoughpassword", password)
				return "session-token", nil
			},
		}
		srv := newTestServer(t, authSvc, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", goodBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "session-token", rec.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, nil, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body.", rec.Body.String())
	})

	t.Run("short password rejected before the auth service", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			registerFn: func(context.Context, string, string) (string, error) {
				t.Fatal("register must not be called")
				return "", nil
			},
		}, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", `{"username":"alice","password":"short","termsAccepted":true}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Password must be at least 12 characters.", rec.Body.String())
	})

	t.Run("unaccepted terms rejected", func(t *testing.T) {
		srv := newTestServer(t, nil, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", `{"username":"alice","password":"longenoughpassword","termsAccepted":false}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Terms & Conditions must be accepted.", rec.Body.String())
	})

	t.Run("duplicate username", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			registerFn: func(context.Context, string, string) (string, error) {
				return "", fmt.Errorf("register: %w", auth.ErrDuplicateUsername)
			},
		}, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", goodBody)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "A user with that username already exists.", rec.Body.String())
	})

	t.Run("invalid username", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			registerFn: func(context.Context, string, string) (string, error) {
				return "", fmt.Errorf("register: %w", auth.ErrInvalidUsername)
			},
		}, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", goodBody)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid username.", rec.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			registerFn: func(context.Context, string, string) (string, error) {
				return "", errors.New("connection refused")
			},
		}, nil, nil)

		rec := postJSON(srv.Handler(), "/auth", goodBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleCheckAuth(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		srv := newTestServer(t, nil, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing Authorization Header", rec.Body.String())
	})

	t.Run("valid bearer token", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			loginTokenFn: validToken("session-token", "alice"),
		}, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", "Bearer session-token")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Valid Session", rec.Body.String())
	})

	t.Run("expired bearer token", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			loginTokenFn: validToken("session-token", "alice"),
		}, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", "Bearer stale-token")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid Session. Please log in again to get a new session ID.", rec.Body.String())
	})

	t.Run("session check failure", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			loginTokenFn: func(context.Context, string) (string, error) {
				return "", errors.New("connection refused")
			},
		}, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", "Bearer session-token")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("valid basic credentials return the session token", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			loginPasswordFn: func(_ context.Context, username, password string) (string, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "longenoughpassword", password)
				return "session-token", nil
			},
		}, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", basicHeader("alice", "longenoughpassword"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "session-token", rec.Body.String())
	})

	t.Run("wrong basic credentials", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			loginPasswordFn: func(context.Context, string, string) (string, error) {
				return "", fmt.Errorf("login: %w", auth.ErrInvalidCredentials)
			},
		}, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", basicHeader("alice", "wrong"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid Credentials", rec.Body.String())
	})

	t.Run("malformed basic header", func(t *testing.T) {
		srv := newTestServer(t, nil, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", "Basic not-base64!!!")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed Authorization Header", rec.Body.String())
	})

	t.Run("basic credentials without a colon", func(t *testing.T) {
		srv := newTestServer(t, nil, nil, nil)

		encoded := base64.StdEncoding.EncodeToString([]byte("no-colon-here"))
		rec := getWithAuth(srv.Handler(), "/auth", "Basic "+encoded)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Malformed Authorization Header", rec.Body.String())
	})

	t.Run("login failure", func(t *testing.T) {
		srv := newTestServer(t, &stubAuth{
			loginPasswordFn: func(context.Context, string, string) (string, error) {
				return "", errors.New("connection refused")
			},
		}, nil, nil)

		rec := getWithAuth(srv.Handler(), "/auth", basicHeader("alice", "longenoughpassword"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
