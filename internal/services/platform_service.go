package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"tellweb/internal/models"
)

type PlatformConfig struct {
	// Base URL of the tell-platform API, e.g. https://api.tell.rs
	BaseURL string

	// Server-held credential for the signup, license and auth endpoints.
	// Never shipped to the browser.
	APIKey string

	Client *http.Client
	Logger *slog.Logger
}

// PlatformService is the client for the platform backend, which owns all
// durable state (customers, licenses, sessions). Every method here is a thin
// authenticated call; nothing is cached or persisted locally.
type PlatformService struct {
	baseURL *url.URL
	apiKey  string

	httpClient *http.Client
	logger     *slog.Logger
}

func NewPlatformService(cfg PlatformConfig) (*PlatformService, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("platform: base_url and api_key are required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &PlatformService{
		baseURL:    u,
		apiKey:     cfg.APIKey,
		httpClient: client,
		logger:     logger,
	}, nil
}

// SignupAck is what the platform returns for a new signup. customer_id is the
// only field this layer needs: it goes into checkout metadata and is the sole
// channel correlating a later webhook back to the signup.
type SignupAck struct {
	CustomerID string `json:"customer_id"`
}

func (s *PlatformService) Signup(ctx context.Context, sub models.SignupSubmission) (*SignupAck, error) {
	var ack SignupAck
	if err := s.call(ctx, http.MethodPost, "/api/v1/signup", s.apiKey, sub, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Me fetches the profile with the end user's own bearer token, not the server
// credential. A 401 maps to models.ErrUnauthorized so callers can tell
// "session expired" apart from "backend down".
func (s *PlatformService) Me(ctx context.Context, accessToken string) (*models.Profile, error) {
	var profile models.Profile
	err := s.call(ctx, http.MethodGet, "/api/v1/me", accessToken, nil, &profile)
	if err != nil {
		var apiErr *PlatformError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, models.ErrUnauthorized
		}
		return nil, err
	}
	return &profile, nil
}

// IssueLicenseRequest mirrors POST /api/v1/licenses. OrderID is forwarded on
// every attempt so the backend can dedup redelivered webhooks by order id.
type IssueLicenseRequest struct {
	Email        string      `json:"email"`
	CustomerName string      `json:"customer_name"`
	CompanyName  string      `json:"company_name"`
	Tier         models.Tier `json:"tier"`
	Months       int         `json:"months"`
	OrderID      string      `json:"order_id"`
}

func (s *PlatformService) IssueLicense(ctx context.Context, req IssueLicenseRequest) (*models.License, error) {
	var lic models.License
	if err := s.call(ctx, http.MethodPost, "/api/v1/licenses", s.apiKey, req, &lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

// RevokeLicenses revokes every license held by the given email. Keyed by
// email, not license id: one cancellation event may revoke several licenses.
func (s *PlatformService) RevokeLicenses(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.call(ctx, http.MethodPost, "/api/v1/licenses/revoke", s.apiKey, body, nil)
}

func (s *PlatformService) SendMagicLink(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return s.call(ctx, http.MethodPost, "/api/v1/auth/magic-link", s.apiKey, body, nil)
}

// VerifyCode exchanges email+code for a token pair. Any 4xx from the platform
// maps to models.ErrInvalidCode; whether the email exists at all is the
// platform's secret to keep.
func (s *PlatformService) VerifyCode(ctx context.Context, email, code string) (*models.TokenPair, error) {
	body := map[string]string{"email": email, "code": code}
	var tokens models.TokenPair
	err := s.call(ctx, http.MethodPost, "/api/v1/auth/verify", s.apiKey, body, &tokens)
	if err != nil {
		var apiErr *PlatformError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return nil, models.ErrInvalidCode
		}
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("platform: verify returned empty access_token")
	}
	return &tokens, nil
}

func (s *PlatformService) call(ctx context.Context, method, endpoint, bearer string, body, out any) error {
	u := *s.baseURL
	u.Path = path.Join(u.Path, endpoint)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("platform %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &PlatformError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// PlatformError carries a non-2xx platform response. Handlers unwrap it with
// errors.As to decide what, if anything, the browser should see; raw bodies
// never leave the server.
type PlatformError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *PlatformError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("platform error: %s", e.Status)
	}
	return fmt.Sprintf("platform error: %s: %s", e.Status, bt)
}
