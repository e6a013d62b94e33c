package shipping

import (
	"context"
	"sort"
	"time"
)

// FlatRateProvider returns predefined flat-rate shipping options.
// Rates come from configuration; no carrier integration.
type FlatRateProvider struct {
	rates []FlatRate
}

// FlatRate defines a single flat-rate shipping option. A positive
// FreeOverCents makes the rate free once the subtotal reaches it.
type FlatRate struct {
	ServiceName   string
	ServiceCode   string
	CostCents     int64
	DaysMin       int
	DaysMax       int
	FreeOverCents int64
}

// NewFlatRateProvider creates a new flat-rate shipping provider.
func NewFlatRateProvider(rates []FlatRate) Provider {
	return &FlatRateProvider{rates: rates}
}

// GetRates converts the configured flat rates to quoted rates, applying
// free-over thresholds against the subtotal. Cheapest first.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if len(p.rates) == 0 {
		return nil, ErrNoRates
	}

	result := make([]Rate, len(p.rates))
	for i, fr := range p.rates {
		cost := fr.CostCents
		if fr.FreeOverCents > 0 && params.SubtotalCents >= fr.FreeOverCents {
			cost = 0
		}
		result[i] = Rate{
			ServiceName:           fr.ServiceName,
			ServiceCode:           fr.ServiceCode,
			CostCents:             cost,
			EstimatedDaysMin:      fr.DaysMin,
			EstimatedDaysMax:      fr.DaysMax,
			EstimatedDeliveryDate: time.Now().AddDate(0, 0, fr.DaysMax),
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CostCents < result[j].CostCents
	})
	return result, nil
}

// PickRate selects the requested service from quoted rates, or the
// cheapest one when no service is requested.
func PickRate(rates []Rate, serviceCode string) (Rate, error) {
	if len(rates) == 0 {
		return Rate{}, ErrNoRates
	}
	if serviceCode == "" {
		return rates[0], nil
	}
	for _, r := range rates {
		if r.ServiceCode == serviceCode {
			return r, nil
		}
	}
	return Rate{}, ErrUnknownService
}
