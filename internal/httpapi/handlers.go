// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/gate"
	"github.com/gatehouse/gatehouse/internal/observability"
)

type handler struct {
	auth       *auth.Service
	resets     *auth.PasswordResetService
	cookieName string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// userResponse is the JSON shape of a user on the wire. The password
// hash never leaves the service.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// GET /
func (h *handler) home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Bienvenue"})
}

// POST /api/users
func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	email, password, ok := h.credentials(w, r)
	if !ok {
		return
	}

	user, err := h.auth.Register(r.Context(), email, password)
	switch {
	case errors.Is(err, auth.ErrDuplicateUser):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "email already registered"})
		return
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid email or password")
		return
	case err != nil:
		h.logger.Error("user registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"email":   user.Email,
		"message": "user created",
	})
}

// POST /api/auth_session/login
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := h.credentials(w, r)
	if !ok {
		return
	}

	user, err := h.auth.UserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			h.countAuthAttempt("unknown_email")
			writeError(w, http.StatusNotFound, "no user found for this email")
			return
		}
		h.logger.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	session, token, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.countAuthAttempt("failure")
			writeError(w, http.StatusUnauthorized, "wrong password")
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.countAuthAttempt("success")
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// DELETE /api/auth_session/logout
func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	token := gate.SessionCookie(r, h.cookieName)
	if token == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{})
}

// GET /api/users/me
func (h *handler) currentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := gate.UserFromContext(r.Context())
	if !ok {
		// Only reachable when the route is exempted by configuration.
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// POST /api/reset_password
func (h *handler) requestReset(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}

	token, err := h.resets.RequestReset(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		h.logger.Error("reset token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"email":       email,
		"reset_token": token,
	})
}

// PUT /api/reset_password
func (h *handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return
	}
	token := r.PostFormValue("reset_token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "reset_token missing")
		return
	}
	newPassword := r.PostFormValue("new_password")
	if newPassword == "" {
		writeError(w, http.StatusBadRequest, "new_password missing")
		return
	}

	// The token must belong to the account named in the request.
	userID, err := h.resets.ValidateToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	user, err := h.auth.UserByEmail(r.Context(), email)
	if err != nil || user.ID.Compare(userID) != 0 {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := h.resets.ResetPassword(r.Context(), token, newPassword); err != nil {
		if errors.Is(err, auth.ErrNotFound) || errors.Is(err, auth.ErrInvalidInput) {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		h.logger.Error("password reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"email":   email,
		"message": "Password updated",
	})
}

// credentials pulls the email/password form fields, writing the 400
// response itself when either is absent.
func (h *handler) credentials(w http.ResponseWriter, r *http.Request) (email, password string, ok bool) {
	email = r.PostFormValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email missing")
		return "", "", false
	}
	password = r.PostFormValue("password")
	if password == "" {
		writeError(w, http.StatusBadRequest, "password missing")
		return "", "", false
	}
	return email, password, true
}

func (h *handler) countAuthAttempt(result string) {
	if h.metrics != nil {
		h.metrics.AuthAttemptsTotal.WithLabelValues(result).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
