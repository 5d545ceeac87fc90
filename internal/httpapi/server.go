// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

// Package httpapi exposes the registration, login, profile, and insights
// endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/equanimity/equanimity/internal/observability"
	"github.com/equanimity/equanimity/internal/profile"
)

// AuthService is the authentication surface the API consumes.
type AuthService interface {
	Register(ctx context.Context, username, password string) (string, error)
	LoginWithPassword(ctx context.Context, username, password string) (string, error)
	LoginWithToken(ctx context.Context, token string) (string, error)
}

// ProfileService is the profile surface the API consumes.
type ProfileService interface {
	Get(ctx context.Context, username string) (*profile.Profile, error)
	UpdateOnboarding(ctx context.Context, username string, u profile.OnboardingUpdate) (*profile.Profile, error)
	Log(ctx context.Context, username, kind string, payload json.RawMessage) (*profile.Entry, error)
	Entries(ctx context.Context, username string) ([]*profile.Entry, error)
}

// Server serves the HTTP API.
type Server struct {
	addr       string
	auth       AuthService
	profiles   ProfileService
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a Server. Metrics may be nil when no observability server
// is running.
func NewServer(addr string, auth AuthService, profiles ProfileService, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if auth == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("auth service is required")
	}
	if profiles == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("profile service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:     addr,
		auth:     auth,
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.instrument("root", s.handleRoot))
	mux.HandleFunc("GET /auth", s.instrument("check_auth", s.handleCheckAuth))
	mux.HandleFunc("POST /auth", s.instrument("register", s.handleRegister))
	mux.HandleFunc("GET /profile", s.instrument("get_profile", s.handleGetProfile))
	mux.HandleFunc("PUT /profile/onboarding", s.instrument("onboarding", s.handleOnboarding))
	mux.HandleFunc("POST /profile/log", s.instrument("log_activity", s.handleLogActivity))
	mux.HandleFunc("GET /api/insights", s.instrument("insights", s.handleInsights))

	return mux
}

// Start begins serving the API. It returns an error channel that receives
// any serve error; the channel is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "Equanimity API")
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler to count requests by route and status.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(v)
}
