// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package httpapi exposes the authentication service over HTTP.
//
// The router mounts the public account endpoints and the
// session-protected ones behind the gate middleware. Which paths skip
// authentication is decided entirely by the configured exemption
// policy, not by how the routes are grouped here.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/gate"
	"github.com/gatehouse/gatehouse/internal/observability"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth       *auth.Service
	Resets     *auth.PasswordResetService
	Policy     *gate.ExemptionPolicy
	CookieName string
	Metrics    *observability.Metrics
	Logger     *slog.Logger
}

// NewRouter builds the HTTP API router.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &handler{
		auth:       deps.Auth,
		resets:     deps.Resets,
		cookieName: deps.CookieName,
		metrics:    deps.Metrics,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if deps.Metrics != nil {
		r.Use(requestMetrics(deps.Metrics))
	}
	r.Use(gate.Middleware(deps.Policy, deps.Auth, deps.CookieName, logger))

	r.Get("/", h.home)
	r.Post("/api/users", h.createUser)
	r.Get("/api/users/me", h.currentUser)
	r.Post("/api/auth_session/login", h.login)
	r.Delete("/api/auth_session/logout", h.logout)
	r.Post("/api/reset_password", h.requestReset)
	r.Put("/api/reset_password", h.updatePassword)

	return r
}

// requestMetrics counts finished requests by route pattern and status.
func requestMetrics(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.RequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		})
	}
}
