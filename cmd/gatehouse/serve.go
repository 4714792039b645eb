// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/auth/memory"
	"github.com/gatehouse/gatehouse/internal/auth/postgres"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/gate"
	"github.com/gatehouse/gatehouse/internal/httpapi"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/store"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication server",
		Long: `Start the HTTP authentication server. Without a database URL the
server keeps all state in memory, which is only suitable for development.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	logging.SetDefault("gatehouse", version, cfg.Log.Format, cfg.Log.Level)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var (
		users        auth.UserRepository
		sessions     auth.SessionRepository
		resets       auth.PasswordResetRepository
		sessionCount func() float64
	)
	if cfg.Database.URL == "" {
		slog.Warn("no database configured, state is in memory and lost on restart")
		memSessions := memory.NewSessionStore()
		users = memory.NewUserStore()
		sessions = memSessions
		resets = memory.NewResetStore()
		sessionCount = func() float64 { return float64(memSessions.Len()) }
	} else {
		st, connectErr := store.Connect(ctx, cfg.Database.URL)
		if connectErr != nil {
			return connectErr
		}
		defer st.Close()
		users = postgres.NewUserRepository(st.Pool())
		sessions = postgres.NewSessionRepository(st.Pool())
		resets = postgres.NewResetRepository(st.Pool())
	}

	hasher := auth.NewArgon2idHasher()
	svc, err := auth.NewServiceWithLogger(users, sessions, hasher, slog.Default())
	if err != nil {
		return err
	}
	svc.SetSessionTTL(cfg.Auth.SessionTTL)

	resetSvc, err := auth.NewPasswordResetService(users, resets, hasher)
	if err != nil {
		return err
	}

	policy, err := gate.NewExemptionPolicy(cfg.Auth.ExemptPaths)
	if err != nil {
		return err
	}

	// Readiness flips once the API listener is accepting connections.
	var ready atomic.Bool

	var obs *observability.Server
	var metrics *observability.Metrics
	if cfg.Server.Metrics != "" {
		obs = observability.NewServer(cfg.Server.Metrics, ready.Load, sessionCount)
		metrics = obs.Metrics()
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:       svc,
		Resets:     resetSvc,
		Policy:     policy,
		CookieName: cfg.Auth.CookieName,
		Metrics:    metrics,
		Logger:     slog.Default(),
	})

	listener, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		return oops.Code("LISTEN_FAILED").
			With("addr", cfg.Server.Listen).
			Wrap(err)
	}

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		if srvErr := httpServer.Serve(listener); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			serveErr <- srvErr
		}
	}()

	if obs != nil {
		obsErrCh, startErr := obs.Start()
		if startErr != nil {
			_ = httpServer.Close()
			return startErr
		}
		go func() {
			if obsErr := <-obsErrCh; obsErr != nil {
				slog.Error("observability server error", "error", obsErr)
			}
		}()
		slog.Info("observability server started", "addr", obs.Addr())
	}

	ready.Store(true)
	slog.Info("gatehouse listening",
		"addr", listener.Addr().String(),
		"cookie_name", cfg.Auth.CookieName,
		"exempt_paths", cfg.Auth.ExemptPaths,
	)
	cmd.Println("Gatehouse started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
	case srvErr := <-serveErr:
		slog.Error("http server failed", "error", srvErr)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	ready.Store(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("error shutting down http server", "error", err)
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}
