package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"tellweb/internal/services"
)

type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, params services.CheckoutParams) (*services.Checkout, error)
}

type CheckoutHandler struct {
	Polar  CheckoutCreator
	Logger *slog.Logger
}

// Redirect handles GET /api/checkout. It opens a hosted checkout session on
// the processor and 302s the browser there. The metadata query value is the
// opaque blob (customer_id) that the processor echoes back in webhooks; no
// state is kept here, so an abandoned checkout needs no cleanup.
func (h *CheckoutHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products := strings.TrimSpace(q.Get("products"))
	email := strings.TrimSpace(q.Get("customerEmail"))
	if products == "" || email == "" {
		jsonError(w, "products and customerEmail are required", http.StatusBadRequest)
		return
	}

	params := services.CheckoutParams{
		Products:      []string{products},
		CustomerEmail: email,
		CustomerName:  strings.TrimSpace(q.Get("customerName")),
	}
	if raw := q.Get("metadata"); raw != "" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			jsonError(w, "metadata must be a JSON object", http.StatusBadRequest)
			return
		}
		params.Metadata = metadata
	}

	checkout, err := h.Polar.CreateCheckout(r.Context(), params)
	if err != nil {
		h.logger().Error("create checkout failed", "products", products, "err", err)
		jsonError(w, "could not start checkout", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, checkout.URL, http.StatusFound)
}

func (h *CheckoutHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
