// Package billing abstracts the payment provider. Provider shapes stay
// behind this boundary; the rest of the system sees checkout sessions
// going out and typed payment events coming in.
package billing

import (
	"context"

	"github.com/insany/shop/internal/domain"
)

// Provider defines the interface for payment processing.
// Implementations: StripeProvider, MockProvider.
type Provider interface {
	// CreateCheckoutSession creates a hosted payment session for the
	// given cart snapshot and returns the redirect target.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// VerifyWebhookSignature verifies that a webhook request is
	// authentic. Called before any payload parsing.
	VerifyWebhookSignature(payload []byte, signature string) error

	// ParseEvent converts a verified webhook payload into a typed
	// event. Event types the system does not act on come back as
	// UnknownEvent, never as an error.
	ParseEvent(ctx context.Context, payload []byte) (Event, error)
}

// CreateCheckoutSessionParams contains everything needed to open a
// hosted checkout for the current cart.
type CreateCheckoutSessionParams struct {
	// LineItems snapshot the cart at checkout time.
	LineItems []SessionLineItem

	// Currency code (ISO 4217 lowercase), e.g. "brl".
	Currency string

	// CustomerEmail prefills the payment page when known.
	CustomerEmail string

	// SuccessURL and CancelURL are the post-payment redirect targets.
	SuccessURL string
	CancelURL  string

	// ShippingName and ShippingCents describe the selected rate.
	ShippingName  string
	ShippingCents int64

	// DiscountCents is the already-computed coupon discount; CouponCode
	// is carried for the order record.
	DiscountCents int64
	CouponCode    string

	// CartKey identifies the originating cart so the webhook can clear
	// it after payment.
	CartKey string
}

// SessionLineItem is one purchasable line sent to the provider.
type SessionLineItem struct {
	ProductID      string
	VariantID      string
	Slug           string
	SKU            string
	Title          string
	UnitPriceCents int64
	Quantity       int32
	Attributes     map[string]string
}

// CheckoutSession is the created hosted session.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a typed payment event produced from a webhook payload.
type Event interface {
	isEvent()
}

// PaymentCompleted signals a paid checkout session.
type PaymentCompleted struct {
	domain.PaymentCompletedEvent
}

func (PaymentCompleted) isEvent() {}

// PaymentFailed signals a failed or expired payment attempt.
type PaymentFailed struct {
	SessionID string
	Reason    string
}

func (PaymentFailed) isEvent() {}

// UnknownEvent is any provider event the system does not act on.
type UnknownEvent struct {
	Type string
}

func (UnknownEvent) isEvent() {}
