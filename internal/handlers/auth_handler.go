package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tellweb/internal/models"
	"tellweb/internal/repositories"
	"tellweb/utils"
)

// SessionCookie is the HttpOnly cookie holding the server-side session id.
const SessionCookie = "tell_session"

// AuthPlatform is the slice of the platform client the login flow proxies to.
type AuthPlatform interface {
	SendMagicLink(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*models.TokenPair, error)
}

type AuthHandler struct {
	Platform   AuthPlatform
	Sessions   repositories.SessionStore
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// SendMagicLink handles POST /api/auth/magic-link. The response is the same
// whether or not the email has an account; existence is the platform's
// secret.
func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		jsonError(w, "email is required", http.StatusBadRequest)
		return
	}

	if err := h.Platform.SendMagicLink(r.Context(), req.Email); err != nil {
		h.logger().Error("send magic link failed", "err", err)
		jsonError(w, "failed to send login code", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyCode handles POST /api/auth/verify: exchanges email+code for a token
// pair, opens a server-side session and returns the tokens to the caller.
func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		jsonError(w, "email and code are required", http.StatusBadRequest)
		return
	}

	tokens, err := h.Platform.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCode) {
			jsonError(w, "invalid code", http.StatusUnauthorized)
			return
		}
		h.logger().Error("verify code failed", "err", err)
		jsonError(w, "login failed", http.StatusBadGateway)
		return
	}

	ttl := utils.SessionTTL(tokens.AccessToken, h.SessionTTL)
	session := models.Session{
		ID:           uuid.NewString(),
		Email:        req.Email,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		CreatedAt:    time.Now(),
	}
	if err := h.Sessions.Set(r.Context(), session, ttl); err != nil {
		h.logger().Error("store session failed", "err", err)
		jsonError(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, tokens)
}

// Logout handles POST /api/auth/logout: clears the session entry and expires
// the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := h.Sessions.Clear(r.Context(), cookie.Value); err != nil {
			h.logger().Error("clear session failed", "err", err)
		}
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
