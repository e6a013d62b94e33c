// Package events publishes domain events to interested consumers
// (fulfillment, analytics). Publishing is fire and forget: a missing or
// unhealthy broker never affects the request that produced the event.
package events

import "context"

// Subject names.
const (
	SubjectOrderCreated = "orders.created"
)

// OrderCreated is emitted once per order, after the payment webhook has
// committed the order transaction.
type OrderCreated struct {
	OrderID           string `json:"orderId"`
	OrderNumber       string `json:"orderNumber"`
	ProviderSessionID string `json:"providerSessionId"`
	TotalCents        int64  `json:"totalCents"`
	Currency          string `json:"currency"`
	ItemCount         int    `json:"itemCount"`
	CustomerEmail     string `json:"customerEmail,omitempty"`
}

// Publisher sends domain events. Implementations: NATSPublisher,
// NoopPublisher.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, ev OrderCreated) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
