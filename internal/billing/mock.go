package billing

import "context"

// MockProvider implements Provider with func fields so tests control
// each call.
type MockProvider struct {
	CreateCheckoutSessionFunc  func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)
	VerifyWebhookSignatureFunc func(payload []byte, signature string) error
	ParseEventFunc             func(ctx context.Context, payload []byte) (Event, error)
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}
	return &CheckoutSession{ID: "cs_test_mock", URL: "https://checkout.example.com/cs_test_mock"}, nil
}

func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string) error {
	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature)
	}
	return nil
}

func (m *MockProvider) ParseEvent(ctx context.Context, payload []byte) (Event, error) {
	if m.ParseEventFunc != nil {
		return m.ParseEventFunc(ctx, payload)
	}
	return UnknownEvent{Type: "mock.event"}, nil
}
