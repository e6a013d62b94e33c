package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/insany/shop/internal/domain"
)

// CreateOrder inserts an order with its item snapshots in one
// transaction and decrements variant stock. The unique constraint on
// provider_session_id makes the insert idempotent: a concurrent or
// replayed insert for the same session hits ON CONFLICT DO NOTHING, and
// the existing order is returned with created=false.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, bool, error) {
	var out *domain.Order
	created := false

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		insertOrder := `
			INSERT INTO orders (order_number, provider_session_id, status, customer_email,
				subtotal_cents, shipping_cents, discount_cents, total_cents, currency,
				coupon_code, tracking_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '')
			ON CONFLICT (provider_session_id) DO NOTHING
			RETURNING id, created_at, updated_at`

		var id string
		err := tx.QueryRow(ctx, insertOrder,
			order.OrderNumber, order.ProviderSessionID, order.Status, order.CustomerEmail,
			order.SubtotalCents, order.ShippingCents, order.DiscountCents, order.TotalCents,
			order.Currency, order.CouponCode,
		).Scan(&id, &order.CreatedAt, &order.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race or a replay: the order already exists.
			existing, err := s.getOrderByProviderSessionTx(ctx, tx, order.ProviderSessionID)
			if err != nil {
				return err
			}
			out = existing
			return nil
		}
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		created = true
		order.ID = id

		insertItem := `
			INSERT INTO order_items (order_id, product_id, variant_id, slug, title, sku,
				unit_price_cents, quantity, attributes)
			VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9)
			RETURNING id`
		decrementStock := `
			UPDATE variants SET stock_quantity = GREATEST(stock_quantity - $2, 0)
			WHERE id = $1`

		for i := range order.Items {
			it := &order.Items[i]
			it.OrderID = id
			if err := tx.QueryRow(ctx, insertItem,
				id, it.ProductID, it.VariantID, it.Slug, it.Title, it.SKU,
				it.UnitPriceCents, it.Quantity, it.Attributes,
			).Scan(&it.ID); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			if it.VariantID != "" {
				if _, err := tx.Exec(ctx, decrementStock, it.VariantID, it.Quantity); err != nil {
					return fmt.Errorf("decrement stock: %w", err)
				}
			}
		}

		out = &order
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

// GetOrderByID loads an order with its items.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.getOrder(ctx, "id = $1", id)
}

// GetOrderByNumber loads an order by its human-facing number.
func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.getOrder(ctx, "order_number = $1", orderNumber)
}

// GetOrderByProviderSession loads an order by the payment session that
// created it.
func (s *Store) GetOrderByProviderSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	return s.getOrder(ctx, "provider_session_id = $1", sessionID)
}

const orderColumns = `id, order_number, provider_session_id, status, customer_email,
	subtotal_cents, shipping_cents, discount_cents, total_cents, currency,
	COALESCE(coupon_code, ''), COALESCE(tracking_number, ''), created_at, updated_at`

func (s *Store) getOrder(ctx context.Context, where string, arg any) (*domain.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE " + where

	var o domain.Order
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&o.ID, &o.OrderNumber, &o.ProviderSessionID, &o.Status, &o.CustomerEmail,
		&o.SubtotalCents, &o.ShippingCents, &o.DiscountCents, &o.TotalCents, &o.Currency,
		&o.CouponCode, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := s.listOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *Store) getOrderByProviderSessionTx(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE provider_session_id = $1"

	var o domain.Order
	err := tx.QueryRow(ctx, query, sessionID).Scan(
		&o.ID, &o.OrderNumber, &o.ProviderSessionID, &o.Status, &o.CustomerEmail,
		&o.SubtotalCents, &o.ShippingCents, &o.DiscountCents, &o.TotalCents, &o.Currency,
		&o.CouponCode, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order in tx: %w", err)
	}
	return &o, nil
}

func (s *Store) listOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, COALESCE(product_id::text, ''), COALESCE(variant_id::text, ''),
		       slug, title, COALESCE(sku, ''), unit_price_cents, quantity, attributes
		FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID,
			&it.Slug, &it.Title, &it.SKU, &it.UnitPriceCents, &it.Quantity, &it.Attributes); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOrders returns order headers matching the filter, newest first.
// Items are not loaded for listings.
func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	query := "SELECT " + orderColumns + ` FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2 = '' OR customer_email = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	var status *string
	if filter.Status != nil {
		st := string(*filter.Status)
		status = &st
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, query, status, filter.Email, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.ProviderSessionID, &o.Status, &o.CustomerEmail,
			&o.SubtotalCents, &o.ShippingCents, &o.DiscountCents, &o.TotalCents, &o.Currency,
			&o.CouponCode, &o.TrackingNumber, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus sets a new status.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// MarkOrderShipped records the tracking number and moves to shipped.
func (s *Store) MarkOrderShipped(ctx context.Context, id, trackingNumber string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, tracking_number = $3, updated_at = now() WHERE id = $1`,
		id, domain.OrderStatusShipped, trackingNumber)
	if err != nil {
		return fmt.Errorf("mark order shipped: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
