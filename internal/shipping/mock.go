package shipping

import "context"

// MockProvider implements Provider with a func field so tests control
// the quoted rates per call.
type MockProvider struct {
	GetRatesFunc func(ctx context.Context, params RateParams) ([]Rate, error)
}

func (m *MockProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if m.GetRatesFunc != nil {
		return m.GetRatesFunc(ctx, params)
	}
	return []Rate{{ServiceName: "Standard", ServiceCode: "standard", CostCents: 1500, EstimatedDaysMin: 3, EstimatedDaysMax: 7}}, nil
}
