package domain

import (
	"context"
	"time"
)

// ProductStatus is the lifecycle state of a catalog product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// ValidProductStatus reports whether s is a known status.
func ValidProductStatus(s ProductStatus) bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// Product is a catalog entity. Variants carry the purchasable
// configurations; Options define the axes a variant is chosen along.
type Product struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Status      ProductStatus
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups products for storefront navigation.
type Category struct {
	ID   string
	Slug string
	Name string
}

// ProductImage is an image attached to a product, ordered by Position.
type ProductImage struct {
	ID        string
	ProductID string
	URL       string
	AltText   string
	Position  int32
	IsPrimary bool
}

// Option is a selectable attribute of a product, e.g. "size".
type Option struct {
	ID       string
	Slug     string
	Name     string
	Position int32
	Values   []OptionValue
}

// OptionValue is one choice for an Option, e.g. "M".
type OptionValue struct {
	ID       string
	Slug     string
	Label    string
	Position int32
}

// Variant is a purchasable configuration of a product. Attributes maps
// option slug to value slug and must cover every option of the product
// exactly once; no two variants of a product share the same combination.
type Variant struct {
	ID            string
	ProductID     string
	SKU           string
	PriceCents    int64
	Currency      string
	StockQuantity int32
	StockReserved int32
	IsActive      bool
	Attributes    map[string]string
}

// Available is the purchasable unit count, clamped at zero for display.
func (v Variant) Available() int32 {
	if avail := v.StockQuantity - v.StockReserved; avail > 0 {
		return avail
	}
	return 0
}

// ProductDetail aggregates a product with its options, variants, and images.
type ProductDetail struct {
	Product  Product
	Options  []Option
	Variants []Variant
	Images   []ProductImage
}

// ProductListItem is the minimal projection for listing pages.
type ProductListItem struct {
	ID              string
	Slug            string
	Title           string
	Status          ProductStatus
	PrimaryImageURL string
	MinPriceCents   int64
	Currency        string
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategorySlug string
	Status       *ProductStatus
}

// CreateProductParams carries admin input for creating a product.
type CreateProductParams struct {
	Slug        string
	Title       string
	Description string
	Status      ProductStatus
	CategoryID  string
}

// UpdateProductParams carries optional updates; nil means no change.
type UpdateProductParams struct {
	Title       *string
	Description *string
	Status      *ProductStatus
	CategoryID  *string
}

// CreateVariantParams carries admin input for creating a variant.
// Attributes must name a value for every option of the product.
type CreateVariantParams struct {
	ProductID     string
	SKU           string
	PriceCents    int64
	Currency      string
	StockQuantity int32
	Attributes    map[string]string
}

// AdjustInventoryParams changes stock counters for a variant.
type AdjustInventoryParams struct {
	VariantID     string
	QuantityDelta int32
	ReservedDelta int32
}

// ProductService provides catalog operations for storefront and admin.
type ProductService interface {
	// ListProducts returns active products, optionally filtered.
	ListProducts(ctx context.Context, filter ProductFilter) ([]ProductListItem, error)

	// GetProductDetail loads a product with options, variants, and images.
	GetProductDetail(ctx context.Context, slug string) (*ProductDetail, error)

	// GetVariant loads a single variant by ID.
	GetVariant(ctx context.Context, variantID string) (*Variant, error)

	// CreateProduct creates a catalog product (admin).
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)

	// UpdateProduct applies partial updates to a product (admin).
	UpdateProduct(ctx context.Context, id string, params UpdateProductParams) error

	// ArchiveProduct soft-deletes a product by setting status archived.
	ArchiveProduct(ctx context.Context, id string) error

	// CreateVariant creates a variant, enforcing that its attribute
	// combination is unique among the product's variants.
	CreateVariant(ctx context.Context, params CreateVariantParams) (*Variant, error)

	// AdjustInventory moves stock counters for a variant.
	AdjustInventory(ctx context.Context, params AdjustInventoryParams) (*Variant, error)
}

// Product-related sentinel errors.
var (
	ErrProductNotFound     = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrVariantNotFound     = &Error{Code: ENOTFOUND, Message: "Variant not found"}
	ErrDuplicateSlug       = &Error{Code: ECONFLICT, Message: "Product slug already exists"}
	ErrDuplicateSKU        = &Error{Code: ECONFLICT, Message: "SKU already exists"}
	ErrDuplicateVariant    = &Error{Code: ECONFLICT, Message: "A variant with this option combination already exists"}
	ErrIncompleteSelection = &Error{Code: EINVALID, Message: "Variant must carry a value for every product option"}
)
