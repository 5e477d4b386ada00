package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// How far a webhook timestamp may drift before the delivery is rejected.
const webhookTolerance = 5 * time.Minute

var (
	ErrBadSignature     = errors.New("polar: invalid webhook signature")
	ErrMissingSignature = errors.New("polar: missing webhook signature headers")
)

type PolarConfig struct {
	// Polar API base, e.g. https://api.polar.sh or the sandbox host.
	BaseURL string

	// Server-held token for creating hosted checkout sessions.
	AccessToken string

	// Shared secret Polar signs webhook deliveries with.
	WebhookSecret string

	// Where the processor sends the browser after a completed checkout.
	SuccessURL string

	Client *http.Client
	Logger *slog.Logger

	// Overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// PolarService talks to the Polar payment processor: it creates hosted
// checkout sessions (outbound) and authenticates webhook deliveries
// (inbound). It keeps no state of its own; an abandoned checkout simply
// expires on Polar's side.
type PolarService struct {
	baseURL     *url.URL
	accessToken string
	secret      []byte
	successURL  string

	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func NewPolarService(cfg PolarConfig) (*PolarService, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("polar: base_url is required")
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("polar: webhook_secret is required")
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
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &PolarService{
		baseURL:     u,
		accessToken: cfg.AccessToken,
		secret:      decodeWebhookSecret(cfg.WebhookSecret),
		successURL:  cfg.SuccessURL,
		httpClient:  client,
		logger:      logger,
		now:         now,
	}, nil
}

// ------- CHECKOUT -------

type CheckoutParams struct {
	Products      []string
	CustomerEmail string
	CustomerName  string

	// Opaque blob carried through checkout and echoed back in webhooks.
	// This is the only correlation channel back to the originating signup.
	Metadata map[string]any
}

type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckout opens a hosted checkout session and returns the URL the
// browser should be redirected to.
func (s *PolarService) CreateCheckout(ctx context.Context, params CheckoutParams) (*Checkout, error) {
	if len(params.Products) == 0 {
		return nil, fmt.Errorf("polar: at least one product is required")
	}
	if strings.TrimSpace(s.accessToken) == "" {
		return nil, fmt.Errorf("polar: access token not configured")
	}

	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/checkouts/")

	reqBody := map[string]any{
		"products":    params.Products,
		"success_url": s.successURL,
	}
	if params.CustomerEmail != "" {
		reqBody["customer_email"] = params.CustomerEmail
	}
	if params.CustomerName != "" {
		reqBody["customer_name"] = params.CustomerName
	}
	if len(params.Metadata) > 0 {
		reqBody["metadata"] = params.Metadata
	}
	body, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request: %w", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, &PolarError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}

	var out Checkout
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode checkout: %w", err)
	}
	if strings.TrimSpace(out.URL) == "" {
		return nil, fmt.Errorf("polar: checkout response has no url")
	}
	return &out, nil
}

// ------- WEBHOOK VERIFICATION -------

// VerifyWebhook authenticates a delivery per the Standard Webhooks scheme
// Polar uses: HMAC-SHA256 over "{id}.{timestamp}.{body}", base64, compared in
// constant time against every "v1," candidate in the signature header.
// Rejected deliveries are never parsed as business events.
func (s *PolarService) VerifyWebhook(header http.Header, body []byte) error {
	id := header.Get("webhook-id")
	ts := header.Get("webhook-timestamp")
	sigHeader := header.Get("webhook-signature")
	if id == "" || ts == "" || sigHeader == "" {
		return ErrMissingSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	if d := s.now().Sub(time.Unix(unix, 0)); d > webhookTolerance || d < -webhookTolerance {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s.%s.", id, ts)
	mac.Write(body)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(sigHeader) {
		raw, ok := strings.CutPrefix(candidate, "v1,")
		if !ok {
			continue
		}
		sig, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrBadSignature
}

// Secrets come prefixed as whsec_<base64>; older ones are the raw key.
func decodeWebhookSecret(secret string) []byte {
	trimmed := strings.TrimPrefix(secret, "whsec_")
	if decoded, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		return decoded
	}
	return []byte(trimmed)
}

type PolarError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *PolarError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("polar error: %s", e.Status)
	}
	return fmt.Sprintf("polar error: %s: %s", e.Status, bt)
}
