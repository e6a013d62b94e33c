package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/billing"
	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/price"
	"github.com/insany/shop/internal/shipping"
	"github.com/insany/shop/internal/telemetry"
)

// Quote is the price breakdown shown before payment. All figures are
// integer cents.
type Quote struct {
	SubtotalCents int64              `json:"subtotalCents"`
	ShippingCents int64              `json:"shippingCents"`
	DiscountCents int64              `json:"discountCents"`
	TotalCents    int64              `json:"totalCents"`
	Currency      string             `json:"currency"`
	ShippingRate  shipping.Rate      `json:"shippingRate"`
	Coupon        price.CouponResult `json:"coupon"`
}

// CreateSessionParams carries checkout input from the handler.
type CreateSessionParams struct {
	Lines         []domain.CartLine
	CouponCode    string
	ServiceCode   string
	CustomerEmail string
	CartKey       string
}

// CheckoutService quotes carts and opens hosted payment sessions.
type CheckoutService interface {
	// QuoteRates returns the shipping options for a cart.
	QuoteRates(ctx context.Context, lines []domain.CartLine) ([]shipping.Rate, error)

	// Quote computes the full price breakdown for a cart with an
	// optional coupon and shipping service.
	Quote(ctx context.Context, lines []domain.CartLine, couponCode, serviceCode string) (*Quote, error)

	// CreateSession opens a hosted payment session for the cart.
	CreateSession(ctx context.Context, params CreateSessionParams) (*billing.CheckoutSession, error)
}

type checkoutService struct {
	billingProvider  billing.Provider
	shippingProvider shipping.Provider
	couponRules      []price.Rule
	baseURL          string
	currency         string
	logger           zerolog.Logger
}

// NewCheckoutService creates the checkout service. currency is the
// store currency (ISO 4217), baseURL the public origin for redirect
// URLs.
func NewCheckoutService(
	billingProvider billing.Provider,
	shippingProvider shipping.Provider,
	couponRules []price.Rule,
	baseURL, currency string,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		billingProvider:  billingProvider,
		shippingProvider: shippingProvider,
		couponRules:      couponRules,
		baseURL:          strings.TrimRight(baseURL, "/"),
		currency:         currency,
		logger:           logger.With().Str("service", "checkout").Logger(),
	}
}

func (s *checkoutService) QuoteRates(ctx context.Context, lines []domain.CartLine) ([]shipping.Rate, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	return s.shippingProvider.GetRates(ctx, rateParams(lines))
}

func (s *checkoutService) Quote(ctx context.Context, lines []domain.CartLine, couponCode, serviceCode string) (*Quote, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	var subtotal int64
	for _, l := range lines {
		subtotal += l.LineTotalCents()
	}

	rates, err := s.shippingProvider.GetRates(ctx, rateParams(lines))
	if err != nil {
		return nil, err
	}
	rate, err := shipping.PickRate(rates, serviceCode)
	if err != nil {
		return nil, err
	}

	coupon := price.Apply(s.couponRules, couponCode, subtotal)
	shippingCents := rate.CostCents
	if coupon.FreeShipping {
		shippingCents = 0
	}

	return &Quote{
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		DiscountCents: coupon.DiscountCents,
		TotalCents:    price.OrderTotal(subtotal, shippingCents, coupon.DiscountCents),
		Currency:      s.currency,
		ShippingRate:  rate,
		Coupon:        coupon,
	}, nil
}

// CreateSession quotes the cart and opens the provider session. A
// provider failure surfaces as one generic retryable payment error; the
// cause stays in the logs.
func (s *checkoutService) CreateSession(ctx context.Context, params CreateSessionParams) (*billing.CheckoutSession, error) {
	const op = "checkout.create_session"

	quote, err := s.Quote(ctx, params.Lines, params.CouponCode, params.ServiceCode)
	if err != nil {
		return nil, err
	}

	lineItems := make([]billing.SessionLineItem, 0, len(params.Lines))
	for _, l := range params.Lines {
		lineItems = append(lineItems, billing.SessionLineItem{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Slug:           l.Slug,
			Title:          l.Title,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       int32(l.Quantity),
			Attributes:     l.Attributes,
		})
	}

	couponCode := ""
	if quote.Coupon.Valid {
		couponCode = quote.Coupon.Code
	}

	sess, err := s.billingProvider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		LineItems:     lineItems,
		Currency:      strings.ToLower(quote.Currency),
		CustomerEmail: params.CustomerEmail,
		SuccessURL:    s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.baseURL + "/cart",
		ShippingName:  quote.ShippingRate.ServiceName,
		ShippingCents: quote.ShippingCents,
		DiscountCents: quote.DiscountCents,
		CouponCode:    couponCode,
		CartKey:       params.CartKey,
	})
	if err != nil {
		telemetry.CheckoutSessions.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Msg("checkout session creation failed")
		if domain.IsCode(err, domain.EINVALID) {
			return nil, err
		}
		return nil, ErrCheckoutFailed
	}

	telemetry.CheckoutSessions.WithLabelValues("created").Inc()
	s.logger.Info().Str("session_id", sess.ID).Int64("total_cents", quote.TotalCents).Msg("checkout session created")
	return sess, nil
}

func rateParams(lines []domain.CartLine) shipping.RateParams {
	var subtotal int64
	count := 0
	for _, l := range lines {
		subtotal += l.LineTotalCents()
		count += l.Quantity
	}
	return shipping.RateParams{SubtotalCents: subtotal, ItemCount: count}
}
