package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

const testWebhookSecret = "whsec_dGVzdC1zZWNyZXQta2V5LTEyMw=="

func newTestPolar(t *testing.T, baseURL string, now func() time.Time) *PolarService {
	t.Helper()
	if baseURL == "" {
		baseURL = "https://sandbox-api.polar.sh"
	}
	svc, err := NewPolarService(PolarConfig{
		BaseURL:       baseURL,
		AccessToken:   "polar-token",
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "https://tell.rs/thanks?tier=pro",
		Now:           now,
	})
	if err != nil {
		t.Fatalf("NewPolarService: %v", err)
	}
	return svc
}

// signWebhook builds the three Standard Webhooks headers for a body, the way
// the processor does on its side.
func signWebhook(id string, ts time.Time, body []byte) http.Header {
	secret, _ := base64.StdEncoding.DecodeString("dGVzdC1zZWNyZXQta2V5LTEyMw==")
	unix := strconv.FormatInt(ts.Unix(), 10)

	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s.%s.", id, unix)
	mac.Write(body)
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	h := http.Header{}
	h.Set("webhook-id", id)
	h.Set("webhook-timestamp", unix)
	h.Set("webhook-signature", "v1,"+sig)
	return h
}

func TestCreateCheckout(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/checkouts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Checkout{ID: "chk_1", URL: "https://polar.sh/checkout/chk_1"})
	}))
	defer srv.Close()

	svc := newTestPolar(t, srv.URL, nil)
	out, err := svc.CreateCheckout(context.Background(), CheckoutParams{
		Products:      []string{"prod-tell-pro"},
		CustomerEmail: "a@b.com",
		CustomerName:  "Ada",
		Metadata:      map[string]any{"customer_id": "cus_1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.URL != "https://polar.sh/checkout/chk_1" {
		t.Errorf("url: got %q", out.URL)
	}
	if gotAuth != "Bearer polar-token" {
		t.Errorf("authorization: got %q", gotAuth)
	}
	if gotBody["success_url"] != "https://tell.rs/thanks?tier=pro" {
		t.Errorf("success_url: got %v", gotBody["success_url"])
	}
	if gotBody["customer_email"] != "a@b.com" {
		t.Errorf("customer_email: got %v", gotBody["customer_email"])
	}
	meta, _ := gotBody["metadata"].(map[string]any)
	if meta["customer_id"] != "cus_1" {
		t.Errorf("metadata: got %v", gotBody["metadata"])
	}
}

func TestCreateCheckout_NoProducts(t *testing.T) {
	svc := newTestPolar(t, "", nil)
	if _, err := svc.CreateCheckout(context.Background(), CheckoutParams{}); err == nil {
		t.Fatal("expected error for empty product list")
	}
}

func TestCreateCheckout_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid product"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	svc := newTestPolar(t, srv.URL, nil)
	_, err := svc.CreateCheckout(context.Background(), CheckoutParams{Products: []string{"nope"}})
	var apiErr *PolarError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected PolarError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d", apiErr.StatusCode)
	}
}

func TestVerifyWebhook(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"type":"order.paid","data":{}}`)
	svc := newTestPolar(t, "", func() time.Time { return now })

	t.Run("valid signature", func(t *testing.T) {
		h := signWebhook("msg_1", now, body)
		if err := svc.VerifyWebhook(h, body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		h := signWebhook("msg_1", now, body)
		err := svc.VerifyWebhook(h, []byte(`{"type":"order.paid","data":{"x":1}}`))
		if !errors.Is(err, ErrBadSignature) {
			t.Fatalf("expected ErrBadSignature, got %v", err)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		err := svc.VerifyWebhook(http.Header{}, body)
		if !errors.Is(err, ErrMissingSignature) {
			t.Fatalf("expected ErrMissingSignature, got %v", err)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		h := signWebhook("msg_1", now.Add(-10*time.Minute), body)
		err := svc.VerifyWebhook(h, body)
		if !errors.Is(err, ErrBadSignature) {
			t.Fatalf("expected ErrBadSignature, got %v", err)
		}
	})

	t.Run("timestamp from the future", func(t *testing.T) {
		h := signWebhook("msg_1", now.Add(10*time.Minute), body)
		err := svc.VerifyWebhook(h, body)
		if !errors.Is(err, ErrBadSignature) {
			t.Fatalf("expected ErrBadSignature, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewPolarService(PolarConfig{
			BaseURL:       "https://sandbox-api.polar.sh",
			WebhookSecret: "whsec_b3RoZXItc2VjcmV0",
			Now:           func() time.Time { return now },
		})
		if err != nil {
			t.Fatalf("NewPolarService: %v", err)
		}
		h := signWebhook("msg_1", now, body)
		if err := other.VerifyWebhook(h, body); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("expected ErrBadSignature, got %v", err)
		}
	})

	t.Run("second candidate matches", func(t *testing.T) {
		h := signWebhook("msg_1", now, body)
		h.Set("webhook-signature", "v1,Zm9yZ2VkCg== "+h.Get("webhook-signature"))
		if err := svc.VerifyWebhook(h, body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("garbage timestamp", func(t *testing.T) {
		h := signWebhook("msg_1", now, body)
		h.Set("webhook-timestamp", "not-a-number")
		if err := svc.VerifyWebhook(h, body); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("expected ErrBadSignature, got %v", err)
		}
	})
}

func TestDecodeWebhookSecret(t *testing.T) {
	decoded := decodeWebhookSecret("whsec_dGVzdA==")
	if string(decoded) != "test" {
		t.Errorf("prefixed secret: got %q", decoded)
	}
	raw := decodeWebhookSecret("not base64!!")
	if string(raw) != "not base64!!" {
		t.Errorf("raw secret fallback: got %q", raw)
	}
}
