package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"tellweb/internal/models"
	"tellweb/internal/repositories"
	"tellweb/internal/services"
)

const maxWebhookBody = 1 << 20

type WebhookVerifier interface {
	VerifyWebhook(header http.Header, body []byte) error
}

// LicensePlatform is the slice of the platform client the webhook receiver
// drives. Both calls must stay safe to repeat: delivery is at-least-once.
type LicensePlatform interface {
	IssueLicense(ctx context.Context, req services.IssueLicenseRequest) (*models.License, error)
	RevokeLicenses(ctx context.Context, email string) error
}

type WebhookHandler struct {
	Polar    WebhookVerifier
	Platform LicensePlatform
	Claims   repositories.ClaimStore
	Logger   *slog.Logger
}

// Receive handles POST /api/webhook/polar. Signature first: a delivery that
// does not authenticate is rejected before its payload is ever interpreted.
// After that the handler always answers 200 — the processor redelivers on
// anything else, and it has no use for our downstream failures; those are
// logged and healed by the redelivery itself (the claim is released so the
// retry repeats the backend call).
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		jsonError(w, "could not read body", http.StatusBadRequest)
		return
	}

	if err := h.Polar.VerifyWebhook(r.Header, body); err != nil {
		if errors.Is(err, services.ErrMissingSignature) || errors.Is(err, services.ErrBadSignature) {
			jsonError(w, "invalid signature", http.StatusForbidden)
			return
		}
		h.logger().Error("webhook verification failed", "err", err)
		jsonError(w, "verification failed", http.StatusInternalServerError)
		return
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		jsonError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case models.EventOrderPaid:
		h.handleOrderPaid(r.Context(), event.Data)
	case models.EventSubscriptionActive:
		h.handleSubscriptionActive(event.Data)
	case models.EventSubscriptionCanceled:
		h.handleSubscriptionCanceled(r.Context(), event.Data)
	default:
		h.logger().Info("webhook: ignoring event", "type", event.Type)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WebhookHandler) handleOrderPaid(ctx context.Context, data json.RawMessage) {
	logger := h.logger().With("event", models.EventOrderPaid)

	var order models.WebhookOrder
	if err := json.Unmarshal(data, &order); err != nil {
		logger.Error("decode order failed", "err", err)
		return
	}
	if order.ID == "" || order.Customer.Email == "" {
		logger.Error("order missing id or customer email", "order_id", order.ID)
		return
	}

	claimed, err := h.Claims.Claim(ctx, "order:"+order.ID)
	if err != nil {
		logger.Error("claim failed", "order_id", order.ID, "err", err)
		return
	}
	if !claimed {
		logger.Info("order already processed", "order_id", order.ID)
		return
	}

	req := services.IssueLicenseRequest{
		Email:        order.Customer.Email,
		CustomerName: customerName(order.Customer),
		CompanyName:  companyName(order.Customer),
		Tier:         models.TierPro,
		Months:       services.ProLicenseMonths,
		OrderID:      order.ID,
	}
	license, err := h.Platform.IssueLicense(ctx, req)
	if err != nil {
		// Give the processor's redelivery another shot at issuance.
		if relErr := h.Claims.Release(ctx, "order:"+order.ID); relErr != nil {
			logger.Error("release claim failed", "order_id", order.ID, "err", relErr)
		}
		logger.Error("issue license failed", "order_id", order.ID, "email", order.Customer.Email, "err", err)
		return
	}
	logger.Info("license issued",
		"order_id", order.ID,
		"email", order.Customer.Email,
		"tier", license.Tier,
		"expires", license.Expires,
	)
}

func (h *WebhookHandler) handleSubscriptionActive(data json.RawMessage) {
	var sub models.WebhookSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		h.logger().Error("decode subscription failed", "event", models.EventSubscriptionActive, "err", err)
		return
	}
	// Informational only: the license was issued on order.paid.
	h.logger().Info("subscription active", "subscription_id", sub.ID)
}

func (h *WebhookHandler) handleSubscriptionCanceled(ctx context.Context, data json.RawMessage) {
	logger := h.logger().With("event", models.EventSubscriptionCanceled)

	var sub models.WebhookSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		logger.Error("decode subscription failed", "err", err)
		return
	}
	if sub.Customer.Email == "" {
		logger.Error("subscription has no customer email, skipping revoke", "subscription_id", sub.ID)
		return
	}

	key := "subscription:" + sub.ID + ":" + sub.Customer.Email
	claimed, err := h.Claims.Claim(ctx, key)
	if err != nil {
		logger.Error("claim failed", "subscription_id", sub.ID, "err", err)
		return
	}
	if !claimed {
		logger.Info("cancellation already processed", "subscription_id", sub.ID)
		return
	}

	if err := h.Platform.RevokeLicenses(ctx, sub.Customer.Email); err != nil {
		if relErr := h.Claims.Release(ctx, key); relErr != nil {
			logger.Error("release claim failed", "subscription_id", sub.ID, "err", relErr)
		}
		logger.Error("revoke licenses failed", "subscription_id", sub.ID, "email", sub.Customer.Email, "err", err)
		return
	}
	logger.Info("licenses revoked", "subscription_id", sub.ID, "email", sub.Customer.Email)
}

func customerName(c models.WebhookCustomer) string {
	if c.Name != "" {
		return c.Name
	}
	if at := strings.Index(c.Email, "@"); at > 0 {
		return c.Email[:at]
	}
	return c.Email
}

func companyName(c models.WebhookCustomer) string {
	if c.Organization != nil && c.Organization.Name != "" {
		return c.Organization.Name
	}
	return c.Name
}

func (h *WebhookHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
