package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tellweb/internal/models"
	"tellweb/internal/repositories"
	"tellweb/internal/services"
)

// LicenseWaiter runs the bounded reconciliation poll against the platform.
type LicenseWaiter interface {
	Wait(ctx context.Context, accessToken string) (*models.License, error)
}

type AccountHandler struct {
	Platform services.ProfileFetcher
	Watcher  LicenseWaiter
	Sessions repositories.SessionStore
	Logger   *slog.Logger
}

// Profile handles GET /api/me: fetches the profile with the user's own
// bearer token. A platform 401 means the session expired — the stored tokens
// are cleared and the caller is told to log in again, which is a different
// condition from "license not yet ready".
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	token, sessionID, ok := h.accessToken(r)
	if !ok {
		jsonError(w, "not logged in", http.StatusUnauthorized)
		return
	}

	profile, err := h.Platform.Me(r.Context(), token)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			h.expireSession(r.Context(), w, sessionID)
			return
		}
		h.logger().Error("profile fetch failed", "err", err)
		jsonError(w, "failed to load profile", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// WaitLicense handles GET /api/license/wait, backing the account page's
// "setting up your license" indicator after a checkout redirect-back. It
// answers ready with the license, or pending once the attempt budget is
// spent; the page stays interactive either way.
func (h *AccountHandler) WaitLicense(w http.ResponseWriter, r *http.Request) {
	token, sessionID, ok := h.accessToken(r)
	if !ok {
		jsonError(w, "not logged in", http.StatusUnauthorized)
		return
	}

	license, err := h.Watcher.Wait(r.Context(), token)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "license": license})
	case errors.Is(err, models.ErrLicensePending):
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
	case errors.Is(err, models.ErrUnauthorized):
		h.expireSession(r.Context(), w, sessionID)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Browser went away; nothing to answer.
	default:
		h.logger().Error("license wait failed", "err", err)
		jsonError(w, "failed to check license", http.StatusBadGateway)
	}
}

// accessToken resolves the caller's platform token: an explicit Authorization
// bearer wins, otherwise the session cookie is looked up in the store.
func (h *AccountHandler) accessToken(r *http.Request) (token, sessionID string, ok bool) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimPrefix(auth, "Bearer ")
		if token != "" {
			return token, "", true
		}
	}

	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", "", false
	}
	session, err := h.Sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		return "", "", false
	}
	return session.AccessToken, session.ID, true
}

func (h *AccountHandler) expireSession(ctx context.Context, w http.ResponseWriter, sessionID string) {
	if sessionID != "" {
		if err := h.Sessions.Clear(ctx, sessionID); err != nil {
			h.logger().Error("clear session failed", "err", err)
		}
	}
	clearSessionCookie(w)
	jsonError(w, "session expired", http.StatusUnauthorized)
}

func (h *AccountHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
