package models

import "encoding/json"

// Polar webhook event types handled by the receiver. Anything else is
// acknowledged and ignored.
const (
	EventOrderPaid            = "order.paid"
	EventSubscriptionActive   = "subscription.active"
	EventSubscriptionCanceled = "subscription.canceled"
)

// WebhookEvent is the envelope Polar posts to the webhook endpoint. Data is
// kept raw until the type is known.
type WebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebhookCustomer is the customer record echoed back inside webhook payloads.
type WebhookCustomer struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Organization *WebhookOrganization `json:"organization,omitempty"`
}

type WebhookOrganization struct {
	Name string `json:"name"`
}

// WebhookOrder is the payload of an order.paid event.
type WebhookOrder struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Customer  WebhookCustomer `json:"customer"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

// WebhookSubscription is the payload of subscription.* events.
type WebhookSubscription struct {
	ID       string          `json:"id"`
	Customer WebhookCustomer `json:"customer"`
}
