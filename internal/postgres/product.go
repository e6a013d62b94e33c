package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/insany/shop/internal/domain"
)

const uniqueViolation = "23505"

// ListProducts returns catalog list items. Guest traffic sees active
// products only; admin passes an explicit status filter or none.
func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductListItem, error) {
	query := `
		SELECT p.id, p.slug, p.title, p.status,
		       COALESCE(MIN(pi.url), '') AS image_url,
		       COALESCE(MIN(v.price_cents), 0) AS min_price,
		       COALESCE(MIN(v.currency), '') AS currency
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_images pi ON pi.product_id = p.id AND pi.is_primary
		LEFT JOIN variants v ON v.product_id = p.id AND v.is_active
		WHERE ($1 = '' OR c.slug = $1)
		  AND (($2::text IS NULL AND p.status = 'active') OR p.status = $2)
		GROUP BY p.id, p.slug, p.title, p.status, p.created_at
		ORDER BY p.created_at DESC`

	var status *string
	if filter.Status != nil {
		st := string(*filter.Status)
		status = &st
	}

	rows, err := s.pool.Query(ctx, query, filter.CategorySlug, status)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []domain.ProductListItem
	for rows.Next() {
		var it domain.ProductListItem
		if err := rows.Scan(&it.ID, &it.Slug, &it.Title, &it.Status, &it.PrimaryImageURL, &it.MinPriceCents, &it.Currency); err != nil {
			return nil, fmt.Errorf("scan product list item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetProductBySlug loads the product row only.
func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `
		SELECT id, slug, title, description, status, COALESCE(category_id::text, ''), created_at, updated_at
		FROM products WHERE slug = $1`

	var p domain.Product
	err := s.pool.QueryRow(ctx, query, slug).Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Status, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return &p, nil
}

// GetProductByID loads the product row only.
func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, slug, title, description, status, COALESCE(category_id::text, ''), created_at, updated_at
		FROM products WHERE id = $1`

	var p domain.Product
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Slug, &p.Title, &p.Description, &p.Status, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return &p, nil
}

// ListOptions loads a product's options with their values, both in
// display order.
func (s *Store) ListOptions(ctx context.Context, productID string) ([]domain.Option, error) {
	query := `
		SELECT o.id, o.slug, o.name, o.position, ov.id, ov.slug, ov.label, ov.position
		FROM options o
		JOIN option_values ov ON ov.option_id = o.id
		WHERE o.product_id = $1
		ORDER BY o.position, ov.position`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		var val domain.OptionValue
		if err := rows.Scan(&opt.ID, &opt.Slug, &opt.Name, &opt.Position, &val.ID, &val.Slug, &val.Label, &val.Position); err != nil {
			return nil, fmt.Errorf("scan option row: %w", err)
		}
		if n := len(options); n > 0 && options[n-1].ID == opt.ID {
			options[n-1].Values = append(options[n-1].Values, val)
			continue
		}
		opt.Values = []domain.OptionValue{val}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// ListVariants loads a product's variants with their attribute maps.
func (s *Store) ListVariants(ctx context.Context, productID string) ([]domain.Variant, error) {
	query := `
		SELECT id, product_id, sku, price_cents, currency, stock_quantity, stock_reserved, is_active, attributes
		FROM variants WHERE product_id = $1 ORDER BY sku`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.Currency, &v.StockQuantity, &v.StockReserved, &v.IsActive, &v.Attributes); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

// GetVariant loads a single variant.
func (s *Store) GetVariant(ctx context.Context, id string) (*domain.Variant, error) {
	query := `
		SELECT id, product_id, sku, price_cents, currency, stock_quantity, stock_reserved, is_active, attributes
		FROM variants WHERE id = $1`

	var v domain.Variant
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.Currency, &v.StockQuantity, &v.StockReserved, &v.IsActive, &v.Attributes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return &v, nil
}

// ListImages loads a product's images in display order.
func (s *Store) ListImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	query := `
		SELECT id, product_id, url, COALESCE(alt_text, ''), position, is_primary
		FROM product_images WHERE product_id = $1 ORDER BY position`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []domain.ProductImage
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.Position, &img.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// InsertProduct creates a product row.
func (s *Store) InsertProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	query := `
		INSERT INTO products (slug, title, description, status, category_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
		RETURNING id, slug, title, description, status, COALESCE(category_id::text, ''), created_at, updated_at`

	var p domain.Product
	err := s.pool.QueryRow(ctx, query,
		params.Slug, params.Title, params.Description, params.Status, params.CategoryID,
	).Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Status, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicateSlug
	}
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// UpdateProduct applies partial updates. COALESCE keeps untouched
// columns at their current value.
func (s *Store) UpdateProduct(ctx context.Context, id string, params domain.UpdateProductParams) error {
	query := `
		UPDATE products SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			category_id = COALESCE(NULLIF($5, '')::uuid, category_id),
			updated_at = now()
		WHERE id = $1`

	var status *string
	if params.Status != nil {
		st := string(*params.Status)
		status = &st
	}
	categoryID := ""
	if params.CategoryID != nil {
		categoryID = *params.CategoryID
	}

	tag, err := s.pool.Exec(ctx, query, id, params.Title, params.Description, status, categoryID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// InsertVariant creates a variant row. The unique indexes on sku and
// (product_id, attributes) surface duplicates as domain conflicts.
func (s *Store) InsertVariant(ctx context.Context, params domain.CreateVariantParams) (*domain.Variant, error) {
	query := `
		INSERT INTO variants (product_id, sku, price_cents, currency, stock_quantity, attributes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, product_id, sku, price_cents, currency, stock_quantity, stock_reserved, is_active, attributes`

	var v domain.Variant
	err := s.pool.QueryRow(ctx, query,
		params.ProductID, params.SKU, params.PriceCents, params.Currency, params.StockQuantity, params.Attributes,
	).Scan(&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.Currency, &v.StockQuantity, &v.StockReserved, &v.IsActive, &v.Attributes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "variants_sku_key" {
				return nil, domain.ErrDuplicateSKU
			}
			return nil, domain.ErrDuplicateVariant
		}
		return nil, fmt.Errorf("insert variant: %w", err)
	}
	return &v, nil
}

// AdjustInventory moves stock counters and returns the updated variant.
// The check constraints keep counters from going negative.
func (s *Store) AdjustInventory(ctx context.Context, params domain.AdjustInventoryParams) (*domain.Variant, error) {
	query := `
		UPDATE variants SET
			stock_quantity = stock_quantity + $2,
			stock_reserved = stock_reserved + $3
		WHERE id = $1
		RETURNING id, product_id, sku, price_cents, currency, stock_quantity, stock_reserved, is_active, attributes`

	var v domain.Variant
	err := s.pool.QueryRow(ctx, query, params.VariantID, params.QuantityDelta, params.ReservedDelta).Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.PriceCents, &v.Currency, &v.StockQuantity, &v.StockReserved, &v.IsActive, &v.Attributes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("adjust inventory: %w", err)
	}
	return &v, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
