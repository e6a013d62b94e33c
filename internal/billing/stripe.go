package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/insany/shop/internal/domain"
)

// Metadata keys written onto sessions and products so webhook parsing
// can reconstruct the order without touching the catalog.
const (
	metaCartKey    = "cart_key"
	metaCouponCode = "coupon_code"
	metaShipping   = "shipping_cents"
	metaDiscount   = "discount_cents"
	metaProductID  = "product_id"
	metaVariantID  = "variant_id"
	metaSlug       = "slug"
	metaSKU        = "sku"
	metaAttributes = "attributes"
)

// StripeProvider implements Provider using Stripe Checkout.
type StripeProvider struct {
	client        *client.API
	webhookSecret string
}

// NewStripeProvider creates a Stripe-backed billing provider.
func NewStripeProvider(apiKey, webhookSecret string) (*StripeProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe api key is required")
	}
	if webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeProvider{client: sc, webhookSecret: webhookSecret}, nil
}

// CreateCheckoutSession opens a hosted Checkout session. Line prices
// are sent as ad-hoc price_data so the catalog never has to be mirrored
// into Stripe; the discount becomes a one-off amount-off coupon.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	const op = "billing.stripe.create_checkout_session"

	if len(params.LineItems) == 0 {
		return nil, domain.Invalid(op, "Checkout requires at least one line item")
	}
	currency := strings.ToLower(params.Currency)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, li := range params.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Title),
			Metadata: map[string]string{
				metaProductID: li.ProductID,
				metaVariantID: li.VariantID,
				metaSlug:      li.Slug,
				metaSKU:       li.SKU,
			},
		}
		if len(li.Attributes) > 0 {
			attrs, err := json.Marshal(li.Attributes)
			if err == nil {
				productData.Metadata[metaAttributes] = string(attrs)
			}
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(li.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(li.UnitPriceCents),
				ProductData: productData,
			},
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	if params.CustomerEmail != "" {
		sessionParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	sessionParams.AddMetadata(metaCartKey, params.CartKey)
	sessionParams.AddMetadata(metaCouponCode, params.CouponCode)
	sessionParams.AddMetadata(metaShipping, fmt.Sprintf("%d", params.ShippingCents))
	sessionParams.AddMetadata(metaDiscount, fmt.Sprintf("%d", params.DiscountCents))

	if params.ShippingName != "" {
		sessionParams.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{
				ShippingRateData: &stripe.CheckoutSessionShippingOptionShippingRateDataParams{
					DisplayName: stripe.String(params.ShippingName),
					Type:        stripe.String("fixed_amount"),
					FixedAmount: &stripe.CheckoutSessionShippingOptionShippingRateDataFixedAmountParams{
						Amount:   stripe.Int64(params.ShippingCents),
						Currency: stripe.String(currency),
					},
				},
			},
		}
	}

	if params.DiscountCents > 0 {
		c, err := p.client.Coupons.New(&stripe.CouponParams{
			AmountOff: stripe.Int64(params.DiscountCents),
			Currency:  stripe.String(currency),
			Duration:  stripe.String(string(stripe.CouponDurationOnce)),
			Name:      stripe.String(strings.ToUpper(params.CouponCode)),
		})
		if err != nil {
			return nil, domain.WrapError(err, domain.EPAYMENT, op, "Unable to start checkout. Please try again.")
		}
		sessionParams.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(c.ID)},
		}
	}

	sess, err := p.client.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "Unable to start checkout. Please try again.")
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header against the
// endpoint secret.
func (p *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	const op = "billing.stripe.verify_webhook"
	if _, err := webhook.ConstructEvent(payload, signature, p.webhookSecret); err != nil {
		return domain.WrapError(err, domain.EUNAUTHORIZED, op, "Invalid webhook signature")
	}
	return nil
}

// ParseEvent converts a verified webhook payload into a typed event.
// Completed sessions are re-fetched with line items expanded because
// the webhook payload does not include them.
func (p *StripeProvider) ParseEvent(ctx context.Context, payload []byte) (Event, error) {
	const op = "billing.stripe.parse_event"

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, op, "Malformed webhook payload")
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, domain.WrapError(err, domain.EINVALID, op, "Malformed checkout session payload")
		}
		return p.completedEvent(ctx, sess.ID)

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, domain.WrapError(err, domain.EINVALID, op, "Malformed checkout session payload")
		}
		return PaymentFailed{SessionID: sess.ID, Reason: "session_expired"}, nil

	default:
		return UnknownEvent{Type: string(event.Type)}, nil
	}
}

func (p *StripeProvider) completedEvent(ctx context.Context, sessionID string) (Event, error) {
	const op = "billing.stripe.fetch_session"

	getParams := &stripe.CheckoutSessionParams{}
	getParams.AddExpand("line_items")
	getParams.AddExpand("line_items.data.price.product")
	sess, err := p.client.CheckoutSessions.Get(sessionID, getParams)
	if err != nil {
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "Unable to load checkout session")
	}

	ev := domain.PaymentCompletedEvent{
		SessionID:        sess.ID,
		AmountTotalCents: sess.AmountTotal,
		Currency:         strings.ToUpper(string(sess.Currency)),
		CartKey:          sess.Metadata[metaCartKey],
		CouponCode:       sess.Metadata[metaCouponCode],
		ShippingCents:    parseCentsMeta(sess.Metadata[metaShipping]),
		DiscountCents:    parseCentsMeta(sess.Metadata[metaDiscount]),
	}
	if sess.CustomerDetails != nil {
		ev.CustomerEmail = sess.CustomerDetails.Email
	}
	if ev.CustomerEmail == "" {
		ev.CustomerEmail = sess.CustomerEmail
	}

	if sess.LineItems != nil {
		for _, li := range sess.LineItems.Data {
			item := domain.PaymentLineItem{
				Title:    li.Description,
				Quantity: int32(li.Quantity),
			}
			if li.Price != nil {
				item.UnitPriceCents = li.Price.UnitAmount
				if li.Price.Product != nil {
					meta := li.Price.Product.Metadata
					item.ProductID = meta[metaProductID]
					item.VariantID = meta[metaVariantID]
					item.Slug = meta[metaSlug]
					item.SKU = meta[metaSKU]
					if raw := meta[metaAttributes]; raw != "" {
						var attrs map[string]string
						if err := json.Unmarshal([]byte(raw), &attrs); err == nil {
							item.Attributes = attrs
						}
					}
				}
			}
			ev.LineItems = append(ev.LineItems, item)
		}
	}

	return PaymentCompleted{PaymentCompletedEvent: ev}, nil
}

func parseCentsMeta(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
		n = n*10 + int64(s[i]-'0')
	}
	return n
}
