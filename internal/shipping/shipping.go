// Package shipping quotes delivery rates for checkout.
package shipping

import (
	"context"
	"time"

	"github.com/insany/shop/internal/domain"
)

// Provider defines the interface for shipping rate calculation.
// Implementations: FlatRateProvider, MockProvider.
type Provider interface {
	// GetRates returns the shipping options for a quote request,
	// cheapest first.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}

// RateParams contains the information needed to quote shipping.
type RateParams struct {
	PostalCode    string
	Country       string
	SubtotalCents int64
	ItemCount     int
}

// Rate is one quoted shipping option.
type Rate struct {
	ServiceName           string
	ServiceCode           string
	CostCents             int64
	EstimatedDaysMin      int
	EstimatedDaysMax      int
	EstimatedDeliveryDate time.Time
}

// Shipping-related errors.
var (
	ErrNoRates        = &domain.Error{Code: domain.ENOTFOUND, Message: "No shipping rates available"}
	ErrUnknownService = &domain.Error{Code: domain.EINVALID, Message: "Unknown shipping service"}
)
