package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tellweb/internal/models"
	"tellweb/internal/repositories"
)

type stubProfileFetcher struct {
	profile  *models.Profile
	err      error
	gotToken string
}

func (s *stubProfileFetcher) Me(ctx context.Context, accessToken string) (*models.Profile, error) {
	s.gotToken = accessToken
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

type stubWaiter struct {
	license *models.License
	err     error
}

func (s *stubWaiter) Wait(ctx context.Context, accessToken string) (*models.License, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.license, nil
}

func seedSession(t *testing.T, sessions repositories.SessionStore) models.Session {
	t.Helper()
	session := models.Session{ID: "sess_1", Email: "a@b.com", AccessToken: "access-token"}
	if err := sessions.Set(context.Background(), session, time.Hour); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func TestAccountProfile(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		fetcher := &stubProfileFetcher{profile: &models.Profile{Email: "a@b.com"}}
		h := &AccountHandler{Platform: fetcher, Sessions: repositories.NewMemorySessionStore()}

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		rr := httptest.NewRecorder()
		h.Profile(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if fetcher.gotToken != "header-token" {
			t.Errorf("token: got %q", fetcher.gotToken)
		}
	})

	t.Run("session cookie", func(t *testing.T) {
		fetcher := &stubProfileFetcher{profile: &models.Profile{Email: "a@b.com"}}
		sessions := repositories.NewMemorySessionStore()
		seedSession(t, sessions)
		h := &AccountHandler{Platform: fetcher, Sessions: sessions}

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess_1"})
		rr := httptest.NewRecorder()
		h.Profile(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		if fetcher.gotToken != "access-token" {
			t.Errorf("token: got %q", fetcher.gotToken)
		}

		var profile models.Profile
		if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if profile.Email != "a@b.com" {
			t.Errorf("email: got %q", profile.Email)
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		h := &AccountHandler{Platform: &stubProfileFetcher{}, Sessions: repositories.NewMemorySessionStore()}

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rr := httptest.NewRecorder()
		h.Profile(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})
}

func TestAccountProfile_ExpiredSession(t *testing.T) {
	fetcher := &stubProfileFetcher{err: models.ErrUnauthorized}
	sessions := repositories.NewMemorySessionStore()
	seedSession(t, sessions)
	h := &AccountHandler{Platform: fetcher, Sessions: sessions}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess_1"})
	rr := httptest.NewRecorder()
	h.Profile(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rr.Code)
	}
	// The stale session is gone; the next request has to log in again.
	if _, err := sessions.Get(context.Background(), "sess_1"); !errors.Is(err, repositories.ErrSessionNotFound) {
		t.Errorf("stale session kept: %v", err)
	}
	cookie := sessionCookie(t, rr)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("cookie not expired: %+v", cookie)
	}
}

func TestWaitLicense(t *testing.T) {
	newHandler := func(waiter *stubWaiter) (*AccountHandler, repositories.SessionStore) {
		sessions := repositories.NewMemorySessionStore()
		return &AccountHandler{
			Platform: &stubProfileFetcher{},
			Watcher:  waiter,
			Sessions: sessions,
		}, sessions
	}

	request := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/license/wait", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess_1"})
		return req
	}

	t.Run("ready", func(t *testing.T) {
		h, sessions := newHandler(&stubWaiter{license: &models.License{ID: "lic_1", LicenseKey: "key-abc"}})
		seedSession(t, sessions)

		rr := httptest.NewRecorder()
		h.WaitLicense(rr, request())

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		var got struct {
			Status  string          `json:"status"`
			License *models.License `json:"license"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got.Status != "ready" || got.License == nil || got.License.ID != "lic_1" {
			t.Errorf("response: %s", rr.Body.String())
		}
	})

	t.Run("pending", func(t *testing.T) {
		h, sessions := newHandler(&stubWaiter{err: models.ErrLicensePending})
		seedSession(t, sessions)

		rr := httptest.NewRecorder()
		h.WaitLicense(rr, request())

		if rr.Code != http.StatusOK {
			t.Fatalf("status: got %d", rr.Code)
		}
		var got map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got["status"] != "pending" {
			t.Errorf("status field: got %q", got["status"])
		}
	})

	t.Run("expired session", func(t *testing.T) {
		h, sessions := newHandler(&stubWaiter{err: models.ErrUnauthorized})
		seedSession(t, sessions)

		rr := httptest.NewRecorder()
		h.WaitLicense(rr, request())

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})

	t.Run("platform failure", func(t *testing.T) {
		h, sessions := newHandler(&stubWaiter{err: errors.New("boom")})
		seedSession(t, sessions)

		rr := httptest.NewRecorder()
		h.WaitLicense(rr, request())

		if rr.Code != http.StatusBadGateway {
			t.Errorf("status: got %d, want 502", rr.Code)
		}
	})

	t.Run("not logged in", func(t *testing.T) {
		h, _ := newHandler(&stubWaiter{})

		rr := httptest.NewRecorder()
		h.WaitLicense(rr, httptest.NewRequest(http.MethodGet, "/api/license/wait", nil))

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
	})
}
