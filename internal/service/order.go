package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/events"
	"github.com/insany/shop/internal/price"
	"github.com/insany/shop/internal/telemetry"
)

// OrderStore is the storage surface the order service needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, bool, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	GetOrderByProviderSession(ctx context.Context, sessionID string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	MarkOrderShipped(ctx context.Context, id, trackingNumber string) error
}

// CartCleaner removes a cart after its payment completed. Failures are
// tolerable; the cart expires on its own.
type CartCleaner interface {
	Delete(ctx context.Context, sessionID string) error
}

type orderService struct {
	store     OrderStore
	publisher events.Publisher
	carts     CartCleaner
	logger    zerolog.Logger
}

// NewOrderService creates the order service. publisher and carts may be
// noop implementations.
func NewOrderService(store OrderStore, publisher events.Publisher, carts CartCleaner, logger zerolog.Logger) domain.OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &orderService{
		store:     store,
		publisher: publisher,
		carts:     carts,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// CreateFromPaymentCompleted turns a paid checkout session into an
// order exactly once. The lookup is a fast path; the real guarantee is
// the unique constraint behind the store's idempotent insert, so two
// concurrent deliveries of the same event still produce one order.
func (s *orderService) CreateFromPaymentCompleted(ctx context.Context, ev domain.PaymentCompletedEvent) (*domain.Order, error) {
	const op = "order.create_from_payment"

	if ev.SessionID == "" {
		return nil, domain.Invalid(op, "Payment event has no session id")
	}
	if len(ev.LineItems) == 0 {
		return nil, domain.Invalid(op, "Payment event has no line items")
	}

	if _, err := s.store.GetOrderByProviderSession(ctx, ev.SessionID); err == nil {
		return nil, domain.ErrPaymentAlreadyProcessed
	} else if !domain.IsCode(err, domain.ENOTFOUND) {
		return nil, domain.Internal(err, op, "Unable to check for existing order")
	}

	order := domain.Order{
		OrderNumber:       newOrderNumber(),
		ProviderSessionID: ev.SessionID,
		Status:            domain.OrderStatusPaid,
		CustomerEmail:     ev.CustomerEmail,
		ShippingCents:     ev.ShippingCents,
		DiscountCents:     ev.DiscountCents,
		Currency:          ev.Currency,
		CouponCode:        ev.CouponCode,
	}
	for _, li := range ev.LineItems {
		order.SubtotalCents += li.UnitPriceCents * int64(li.Quantity)
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:      li.ProductID,
			VariantID:      li.VariantID,
			Slug:           li.Slug,
			Title:          li.Title,
			SKU:            li.SKU,
			UnitPriceCents: li.UnitPriceCents,
			Quantity:       li.Quantity,
			Attributes:     li.Attributes,
		})
	}
	order.TotalCents = ev.AmountTotalCents
	if order.TotalCents == 0 {
		order.TotalCents = price.OrderTotal(order.SubtotalCents, order.ShippingCents, order.DiscountCents)
	}

	created, wasCreated, err := s.store.CreateOrder(ctx, order)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to create order")
	}
	if !wasCreated {
		return nil, domain.ErrPaymentAlreadyProcessed
	}

	telemetry.OrdersCreated.Inc()
	telemetry.OrderValueCents.Observe(float64(created.TotalCents))
	telemetry.RevenueCents.Add(float64(created.TotalCents))
	s.logger.Info().
		Str("order_id", created.ID).
		Str("order_number", created.OrderNumber).
		Int64("total_cents", created.TotalCents).
		Msg("order created")

	// Best effort: the cart key expires on its own if this fails.
	if s.carts != nil && ev.CartKey != "" {
		if err := s.carts.Delete(ctx, ev.CartKey); err != nil {
			s.logger.Debug().Err(err).Str("cart_key", ev.CartKey).Msg("cart cleanup failed")
		}
	}

	// Fire and forget.
	if err := s.publisher.PublishOrderCreated(ctx, events.OrderCreated{
		OrderID:           created.ID,
		OrderNumber:       created.OrderNumber,
		ProviderSessionID: created.ProviderSessionID,
		TotalCents:        created.TotalCents,
		Currency:          created.Currency,
		ItemCount:         len(created.Items),
		CustomerEmail:     created.CustomerEmail,
	}); err != nil {
		s.logger.Warn().Err(err).Str("order_id", created.ID).Msg("order created event not published")
	}

	return created, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.Internal(err, "order.get", "Unable to load order")
	}
	return o, nil
}

func (s *orderService) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	o, err := s.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.Internal(err, "order.get_by_number", "Unable to load order")
	}
	return o, nil
}

func (s *orderService) GetByProviderSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	o, err := s.store.GetOrderByProviderSession(ctx, sessionID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.Internal(err, "order.get_by_session", "Unable to load order")
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "Unable to load orders")
	}
	return orders, nil
}

// UpdateStatus moves an order along the status machine. Setting the
// current status again is a no-op success.
func (s *orderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const op = "order.update_status"

	if !domain.ValidOrderStatus(status) {
		return domain.Invalid(op, "Unknown order status")
	}

	o, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return err
		}
		return domain.Internal(err, op, "Unable to load order")
	}

	if o.Status == status {
		return nil
	}
	if !domain.CanTransition(o.Status, status) {
		return domain.ErrInvalidStatusTransition
	}

	if err := s.store.UpdateOrderStatus(ctx, id, status); err != nil {
		return domain.Internal(err, op, "Unable to update order status")
	}
	s.logger.Info().Str("order_id", id).Str("status", string(status)).Msg("order status updated")
	return nil
}

// MarkShipped records the tracking number and moves the order to
// shipped. Repeating the call with the same tracking number is a no-op
// success so a double-submitted fulfillment form does not error.
func (s *orderService) MarkShipped(ctx context.Context, params domain.MarkShippedParams) error {
	const op = "order.mark_shipped"

	tracking := strings.TrimSpace(params.TrackingNumber)
	if tracking == "" {
		return domain.Invalid(op, "Tracking number is required")
	}

	o, err := s.store.GetOrderByID(ctx, params.OrderID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return err
		}
		return domain.Internal(err, op, "Unable to load order")
	}

	if o.Status == domain.OrderStatusShipped {
		if o.TrackingNumber == tracking {
			return nil
		}
		return domain.Conflict(op, "Order already shipped with a different tracking number")
	}
	if !domain.CanTransition(o.Status, domain.OrderStatusShipped) {
		return domain.ErrInvalidStatusTransition
	}

	if err := s.store.MarkOrderShipped(ctx, params.OrderID, tracking); err != nil {
		return domain.Internal(err, op, "Unable to mark order shipped")
	}
	s.logger.Info().Str("order_id", params.OrderID).Str("tracking_number", tracking).Msg("order shipped")
	return nil
}

func newOrderNumber() string {
	id := uuid.New().String()
	return "INS-" + strings.ToUpper(id[:8])
}
