package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/events"
)

// memOrderStore simulates the unique constraint on provider_session_id.
type memOrderStore struct {
	mu     sync.Mutex
	orders map[string]*domain.Order // keyed by provider session id
	nextID int
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: make(map[string]*domain.Order)}
}

func (m *memOrderStore) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.orders[order.ProviderSessionID]; ok {
		return existing, false, nil
	}
	m.nextID++
	order.ID = string(rune('a' + m.nextID))
	m.orders[order.ProviderSessionID] = &order
	return &order, true, nil
}

func (m *memOrderStore) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memOrderStore) GetOrderByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memOrderStore) GetOrderByProviderSession(_ context.Context, sessionID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[sessionID]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memOrderStore) ListOrders(_ context.Context, _ domain.OrderFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrderStore) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

func (m *memOrderStore) MarkOrderShipped(_ context.Context, id, tracking string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o.Status = domain.OrderStatusShipped
			o.TrackingNumber = tracking
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.OrderCreated
	fail   error
}

func (p *capturingPublisher) PublishOrderCreated(_ context.Context, ev events.OrderCreated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, ev)
	return nil
}

type capturingCleaner struct {
	deleted []string
	fail    error
}

func (c *capturingCleaner) Delete(_ context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return c.fail
}

func completedEvent(sessionID string) domain.PaymentCompletedEvent {
	return domain.PaymentCompletedEvent{
		SessionID:        sessionID,
		CustomerEmail:    "buyer@example.com",
		AmountTotalCents: 21400,
		Currency:         "BRL",
		CartKey:          "cart:v2:sess-1",
		ShippingCents:    1500,
		LineItems: []domain.PaymentLineItem{
			{ProductID: "p1", VariantID: "v1", Slug: "tee", Title: "Tee", SKU: "TS-M", UnitPriceCents: 9950, Quantity: 2},
		},
	}
}

func TestCreateFromPaymentCompleted(t *testing.T) {
	store := newMemOrderStore()
	pub := &capturingPublisher{}
	cleaner := &capturingCleaner{}
	svc := NewOrderService(store, pub, cleaner, zerolog.Nop())

	order, err := svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_1"))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(19900), order.SubtotalCents)
	assert.Equal(t, int64(21400), order.TotalCents)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int32(2), order.Items[0].Quantity)

	require.Len(t, pub.events, 1)
	assert.Equal(t, order.OrderNumber, pub.events[0].OrderNumber)
	assert.Equal(t, []string{"cart:v2:sess-1"}, cleaner.deleted)
}

func TestCreateFromPaymentCompletedDuplicateYieldsOneOrder(t *testing.T) {
	store := newMemOrderStore()
	pub := &capturingPublisher{}
	svc := NewOrderService(store, pub, nil, zerolog.Nop())

	_, err := svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_dup"))
	require.NoError(t, err)

	_, err = svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_dup"))
	assert.ErrorIs(t, err, domain.ErrPaymentAlreadyProcessed)

	orders, _ := store.ListOrders(context.Background(), domain.OrderFilter{})
	assert.Len(t, orders, 1, "replayed event must not create a second order")
	assert.Len(t, pub.events, 1, "replayed event must not publish again")
}

func TestCreateFromPaymentCompletedRaceLosesGracefully(t *testing.T) {
	// The store-level conflict path: the lookup misses but the insert
	// collides, as happens with two concurrent webhook deliveries.
	store := newMemOrderStore()
	_, _, err := store.CreateOrder(context.Background(), domain.Order{ProviderSessionID: "cs_race"})
	require.NoError(t, err)

	svc := NewOrderService(&raceStore{memOrderStore: store}, nil, nil, zerolog.Nop())
	_, err = svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_race"))
	assert.ErrorIs(t, err, domain.ErrPaymentAlreadyProcessed)
}

// raceStore hides the existing order from lookups so the service takes
// the insert path and hits the conflict.
type raceStore struct {
	*memOrderStore
}

func (r *raceStore) GetOrderByProviderSession(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func TestCreateFromPaymentCompletedValidation(t *testing.T) {
	svc := NewOrderService(newMemOrderStore(), nil, nil, zerolog.Nop())

	_, err := svc.CreateFromPaymentCompleted(context.Background(), domain.PaymentCompletedEvent{})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	ev := completedEvent("cs_x")
	ev.LineItems = nil
	_, err = svc.CreateFromPaymentCompleted(context.Background(), ev)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestCreateFromPaymentCompletedCartCleanupFailureIsTolerated(t *testing.T) {
	store := newMemOrderStore()
	cleaner := &capturingCleaner{fail: errors.New("redis down")}
	svc := NewOrderService(store, nil, cleaner, zerolog.Nop())

	_, err := svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_2"))
	assert.NoError(t, err)
}

func TestCreateFromPaymentCompletedPublishFailureIsTolerated(t *testing.T) {
	store := newMemOrderStore()
	pub := &capturingPublisher{fail: errors.New("nats down")}
	svc := NewOrderService(store, pub, nil, zerolog.Nop())

	order, err := svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_3"))
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestUpdateStatus(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store, nil, nil, zerolog.Nop())
	order, err := svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_4"))
	require.NoError(t, err)

	t.Run("valid transition", func(t *testing.T) {
		err := svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
		assert.NoError(t, err)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		err := svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
		assert.NoError(t, err)
	})

	t.Run("illegal transition", func(t *testing.T) {
		err := svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusPaid)
		assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		err := svc.UpdateStatus(context.Background(), order.ID, "teleported")
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})

	t.Run("missing order", func(t *testing.T) {
		err := svc.UpdateStatus(context.Background(), "nope", domain.OrderStatusPaid)
		assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	})
}

func TestMarkShipped(t *testing.T) {
	store := newMemOrderStore()
	svc := NewOrderService(store, nil, nil, zerolog.Nop())
	order, err := svc.CreateFromPaymentCompleted(context.Background(), completedEvent("cs_5"))
	require.NoError(t, err)

	params := domain.MarkShippedParams{OrderID: order.ID, TrackingNumber: "BR123456789"}

	require.NoError(t, svc.MarkShipped(context.Background(), params))

	t.Run("same tracking number is a no-op", func(t *testing.T) {
		assert.NoError(t, svc.MarkShipped(context.Background(), params))
	})

	t.Run("different tracking number conflicts", func(t *testing.T) {
		err := svc.MarkShipped(context.Background(), domain.MarkShippedParams{OrderID: order.ID, TrackingNumber: "BR000"})
		assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	})

	t.Run("tracking number required", func(t *testing.T) {
		err := svc.MarkShipped(context.Background(), domain.MarkShippedParams{OrderID: order.ID, TrackingNumber: "  "})
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	})
}
