// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Equanimity Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/equanimity/equanimity/internal/auth"
	authpg "github.com/equanimity/equanimity/internal/auth/postgres"
	"github.com/equanimity/equanimity/internal/config"
	"github.com/equanimity/equanimity/internal/httpapi"
	"github.com/equanimity/equanimity/internal/logging"
	"github.com/equanimity/equanimity/internal/observability"
	"github.com/equanimity/equanimity/internal/profile"
	profilepg "github.com/equanimity/equanimity/internal/profile/postgres"
	"github.com/equanimity/equanimity/internal/store"
	"github.com/equanimity/equanimity/pkg/errutil"
)

// sweepInterval is how often the background reaper removes expired sessions.
// Token reads sweep too, so this only bounds the lifetime of sessions nobody
// touches.
const sweepInterval = time.Hour

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server, serving registration, login, profile,
activity logging, and insights endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("addr", config.DefaultAddr, "HTTP API listen address")
	cmd.Flags().String("metrics_addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database_url", "", "PostgreSQL connection string")
	cmd.Flags().String("log_format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("log_level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.SetDefault(logging.Options{
		Service: "equanimity",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   parseLevel(cfg.LogLevel),
	})

	logger.Info("starting server", "addr", cfg.Addr, "log_format", cfg.LogFormat)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	credentials := authpg.NewCredentialRepository(pool)
	sessions := authpg.NewSessionRepository(pool)
	registrar := authpg.NewRegistrar(pool)
	profiles := profilepg.NewProfileRepository(pool)

	authSvc, err := auth.NewServiceWithLogger(credentials, sessions, registrar, &auth.Argon2idHasher{}, &auth.UUIDTokenGenerator{}, logger)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}

	profileSvc, err := profile.NewServiceWithLogger(profiles, logger)
	if err != nil {
		return fmt.Errorf("failed to create profile service: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		metrics = obsServer.Metrics()
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	}

	apiServer, err := httpapi.NewServer(cfg.Addr, authSvc, profileSvc, metrics, logger)
	if err != nil {
		return fmt.Errorf("failed to create api server: %w", err)
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		if obsServer != nil {
			stopServer(obsServer.Stop, "observability")
		}
		return fmt.Errorf("failed to start api server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	// Background reaper for sessions nobody reads anymore.
	go runSessionSweeper(ctx, sessions, metrics, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Server started")
	logger.Info("server ready", "addr", apiServer.Addr())

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	stopServer(apiServer.Stop, "api")
	if obsServer != nil {
		stopServer(obsServer.Stop, "observability")
	}

	logger.Info("server stopped")
	return nil
}

// runSessionSweeper periodically removes expired sessions until ctx is done.
func runSessionSweeper(ctx context.Context, sessions auth.SessionRepository, metrics *observability.Metrics, logger *slog.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := sessions.SweepExpired(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if metrics != nil {
				metrics.SessionsSweptTotal.Add(float64(swept))
			}
			if swept > 0 {
				logger.Info("swept expired sessions", "count", swept)
			}
		}
	}
}

// monitorServerErrors cancels the run context when a server reports an error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			errutil.LogError(slog.Default().With("server", name), "server failed", err)
			cancel()
		}
	}
}

func stopServer(stop func(context.Context) error, name string) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := stop(shutdownCtx); err != nil {
		slog.Warn("failed to stop server", "server", name, "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
