package webhook

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/insany/shop/internal/billing"
	"github.com/insany/shop/internal/domain"
)

// mockOrderService implements domain.OrderService with func fields.
type mockOrderService struct {
	createFunc func(ctx context.Context, ev domain.PaymentCompletedEvent) (*domain.Order, error)
}

func (m *mockOrderService) CreateFromPaymentCompleted(ctx context.Context, ev domain.PaymentCompletedEvent) (*domain.Order, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ev)
	}
	return &domain.Order{ID: "o1", OrderNumber: "INS-TEST", Status: domain.OrderStatusPaid}, nil
}

func (m *mockOrderService) Get(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderService) GetByNumber(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderService) GetByProviderSession(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderService) List(context.Context, domain.OrderFilter) ([]domain.Order, error) {
	return nil, nil
}

func (m *mockOrderService) UpdateStatus(context.Context, string, domain.OrderStatus) error {
	return nil
}

func (m *mockOrderService) MarkShipped(context.Context, domain.MarkShippedParams) error {
	return nil
}

func postWebhook(h *StripeHandler, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(`{"type":"checkout.session.completed"}`)))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func completedProvider(orders *mockOrderService) (*billing.MockProvider, *StripeHandler) {
	provider := &billing.MockProvider{
		ParseEventFunc: func(context.Context, []byte) (billing.Event, error) {
			return billing.PaymentCompleted{PaymentCompletedEvent: domain.PaymentCompletedEvent{
				SessionID: "cs_1",
				LineItems: []domain.PaymentLineItem{{Title: "Tee", UnitPriceCents: 9900, Quantity: 1}},
			}}, nil
		},
	}
	return provider, NewStripeHandler(provider, orders)
}

func TestHandleWebhookMissingSignature(t *testing.T) {
	_, h := completedProvider(&mockOrderService{})

	rec := postWebhook(h, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleWebhookInvalidSignature(t *testing.T) {
	created := false
	orders := &mockOrderService{
		createFunc: func(context.Context, domain.PaymentCompletedEvent) (*domain.Order, error) {
			created = true
			return nil, nil
		},
	}
	provider, h := completedProvider(orders)
	provider.VerifyWebhookSignatureFunc = func([]byte, string) error {
		return domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid webhook signature")
	}

	rec := postWebhook(h, "t=1,v1=bad")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if created {
		t.Error("order must not be created on signature failure")
	}
}

func TestHandleWebhookPaymentCompleted(t *testing.T) {
	var got domain.PaymentCompletedEvent
	orders := &mockOrderService{
		createFunc: func(_ context.Context, ev domain.PaymentCompletedEvent) (*domain.Order, error) {
			got = ev
			return &domain.Order{ID: "o1", OrderNumber: "INS-ABC123"}, nil
		},
	}
	_, h := completedProvider(orders)

	rec := postWebhook(h, "t=1,v1=good")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got.SessionID != "cs_1" {
		t.Errorf("session id = %q, want cs_1", got.SessionID)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("INS-ABC123")) {
		t.Error("response should carry the order number")
	}
}

func TestHandleWebhookDuplicateIsSilentSuccess(t *testing.T) {
	orders := &mockOrderService{
		createFunc: func(context.Context, domain.PaymentCompletedEvent) (*domain.Order, error) {
			return nil, domain.ErrPaymentAlreadyProcessed
		},
	}
	_, h := completedProvider(orders)

	rec := postWebhook(h, "t=1,v1=good")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 so the provider stops retrying", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("already_processed")) {
		t.Errorf("body = %s, want already_processed marker", rec.Body.String())
	}
}

func TestHandleWebhookOrderCreationFailureRetries(t *testing.T) {
	orders := &mockOrderService{
		createFunc: func(context.Context, domain.PaymentCompletedEvent) (*domain.Order, error) {
			return nil, domain.Internal(errors.New("db down"), "order.create", "Unable to create order")
		},
	}
	_, h := completedProvider(orders)

	rec := postWebhook(h, "t=1,v1=good")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 so the provider redelivers", rec.Code)
	}
}

func TestHandleWebhookUnknownEventIgnored(t *testing.T) {
	provider := &billing.MockProvider{
		ParseEventFunc: func(context.Context, []byte) (billing.Event, error) {
			return billing.UnknownEvent{Type: "customer.created"}, nil
		},
	}
	h := NewStripeHandler(provider, &mockOrderService{})

	rec := postWebhook(h, "t=1,v1=good")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandleWebhookParseFailureAcknowledged(t *testing.T) {
	provider := &billing.MockProvider{
		ParseEventFunc: func(context.Context, []byte) (billing.Event, error) {
			return nil, domain.Errorf(domain.EINVALID, "", "Malformed webhook payload")
		},
	}
	h := NewStripeHandler(provider, &mockOrderService{})

	rec := postWebhook(h, "t=1,v1=good")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (verified but unusable payloads are not redelivered)", rec.Code)
	}
}
