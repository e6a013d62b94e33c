package domain

import (
	"context"
	"time"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. Cancelled is terminal; the forward path is
// pending, paid, shipped, delivered. Cancel is allowed until shipment.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusShipped || to == OrderStatusCancelled
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	}
	return false
}

// Order is a completed checkout captured from a payment event. Monetary
// fields are integer cents in the order's currency.
type Order struct {
	ID                string
	OrderNumber       string
	ProviderSessionID string
	Status            OrderStatus
	CustomerEmail     string
	SubtotalCents     int64
	ShippingCents     int64
	DiscountCents     int64
	TotalCents        int64
	Currency          string
	CouponCode        string
	TrackingNumber    string
	Items             []OrderItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderItem snapshots a purchased line at payment time.
type OrderItem struct {
	ID             string
	OrderID        string
	ProductID      string
	VariantID      string
	Slug           string
	Title          string
	SKU            string
	UnitPriceCents int64
	Quantity       int32
	Attributes     map[string]string
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status *OrderStatus
	Email  string
	Limit  int32
	Offset int32
}

// MarkShippedParams carries the shipment update for an order.
type MarkShippedParams struct {
	OrderID        string
	TrackingNumber string
}

// OrderService manages the order lifecycle driven by payment events and
// admin actions.
type OrderService interface {
	// CreateFromPaymentCompleted turns a completed-payment event into an
	// order exactly once per provider session. A replayed event returns
	// ErrPaymentAlreadyProcessed.
	CreateFromPaymentCompleted(ctx context.Context, ev PaymentCompletedEvent) (*Order, error)

	// Get loads an order by ID.
	Get(ctx context.Context, id string) (*Order, error)

	// GetByNumber loads an order by its human-facing order number.
	GetByNumber(ctx context.Context, orderNumber string) (*Order, error)

	// GetByProviderSession loads an order by the payment session that
	// created it, for post-checkout confirmation pages.
	GetByProviderSession(ctx context.Context, sessionID string) (*Order, error)

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter OrderFilter) ([]Order, error)

	// UpdateStatus moves an order along the status machine. Setting the
	// current status again is a no-op success.
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error

	// MarkShipped records a tracking number and moves the order to
	// shipped. Repeating the call with the same tracking number is a
	// no-op success.
	MarkShipped(ctx context.Context, params MarkShippedParams) error
}

// PaymentCompletedEvent is the provider-neutral payload a billing
// webhook produces when a checkout session is paid.
type PaymentCompletedEvent struct {
	SessionID        string
	CustomerEmail    string
	AmountTotalCents int64
	Currency         string
	CartKey          string
	CouponCode       string
	ShippingCents    int64
	DiscountCents    int64
	LineItems        []PaymentLineItem
}

// PaymentLineItem is one purchased line as reported by the provider.
type PaymentLineItem struct {
	ProductID      string
	VariantID      string
	Slug           string
	Title          string
	SKU            string
	UnitPriceCents int64
	Quantity       int32
	Attributes     map[string]string
}

// Order-related sentinel errors.
var (
	ErrOrderNotFound = &Error{Code: ENOTFOUND, Message: "Order not found"}

	// ErrPaymentAlreadyProcessed marks a replayed payment event. Webhook
	// handlers treat it as success so the provider stops retrying.
	ErrPaymentAlreadyProcessed = &Error{Code: ECONFLICT, Message: "Payment already processed"}

	ErrInvalidStatusTransition = &Error{Code: ECONFLICT, Message: "Invalid order status transition"}
)
