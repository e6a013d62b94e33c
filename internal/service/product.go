package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/domain"
)

// ProductStore is the storage surface the product service needs.
type ProductStore interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductListItem, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ListOptions(ctx context.Context, productID string) ([]domain.Option, error)
	ListVariants(ctx context.Context, productID string) ([]domain.Variant, error)
	ListImages(ctx context.Context, productID string) ([]domain.ProductImage, error)
	GetVariant(ctx context.Context, id string) (*domain.Variant, error)
	InsertProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, params domain.UpdateProductParams) error
	InsertVariant(ctx context.Context, params domain.CreateVariantParams) (*domain.Variant, error)
	AdjustInventory(ctx context.Context, params domain.AdjustInventoryParams) (*domain.Variant, error)
}

type productService struct {
	store  ProductStore
	logger zerolog.Logger
}

// NewProductService creates the catalog service.
func NewProductService(store ProductStore, logger zerolog.Logger) domain.ProductService {
	return &productService{
		store:  store,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

func (s *productService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductListItem, error) {
	items, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return nil, domain.Internal(err, "product.list", "Unable to load products")
	}
	return items, nil
}

func (s *productService) GetProductDetail(ctx context.Context, slug string) (*domain.ProductDetail, error) {
	const op = "product.detail"

	p, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.Internal(err, op, "Unable to load product")
	}
	// Archived products disappear from the storefront but stay
	// addressable by ID for admin.
	if p.Status == domain.ProductStatusArchived {
		return nil, ErrProductArchived
	}

	options, err := s.store.ListOptions(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to load product options")
	}
	variants, err := s.store.ListVariants(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to load product variants")
	}
	images, err := s.store.ListImages(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to load product images")
	}

	return &domain.ProductDetail{
		Product:  *p,
		Options:  options,
		Variants: variants,
		Images:   images,
	}, nil
}

func (s *productService) GetVariant(ctx context.Context, variantID string) (*domain.Variant, error) {
	v, err := s.store.GetVariant(ctx, variantID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.Internal(err, "product.get_variant", "Unable to load variant")
	}
	return v, nil
}

func (s *productService) CreateProduct(ctx context.Context, params domain.CreateProductParams) (*domain.Product, error) {
	const op = "product.create"

	params.Slug = strings.TrimSpace(strings.ToLower(params.Slug))
	if params.Slug == "" || params.Title == "" {
		return nil, domain.Invalid(op, "Slug and title are required")
	}
	if params.Status == "" {
		params.Status = domain.ProductStatusDraft
	}
	if !domain.ValidProductStatus(params.Status) {
		return nil, domain.Invalid(op, "Unknown product status")
	}

	p, err := s.store.InsertProduct(ctx, params)
	if err != nil {
		if domain.IsCode(err, domain.ECONFLICT) {
			return nil, err
		}
		return nil, domain.Internal(err, op, "Unable to create product")
	}
	s.logger.Info().Str("product_id", p.ID).Str("slug", p.Slug).Msg("product created")
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, params domain.UpdateProductParams) error {
	const op = "product.update"

	if params.Status != nil && !domain.ValidProductStatus(*params.Status) {
		return domain.Invalid(op, "Unknown product status")
	}
	if err := s.store.UpdateProduct(ctx, id, params); err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return err
		}
		return domain.Internal(err, op, "Unable to update product")
	}
	return nil
}

func (s *productService) ArchiveProduct(ctx context.Context, id string) error {
	archived := domain.ProductStatusArchived
	return s.UpdateProduct(ctx, id, domain.UpdateProductParams{Status: &archived})
}

func (s *productService) CreateVariant(ctx context.Context, params domain.CreateVariantParams) (*domain.Variant, error) {
	const op = "product.create_variant"

	if params.SKU == "" {
		return nil, domain.Invalid(op, "SKU is required")
	}
	if params.PriceCents < 0 {
		return nil, domain.Invalid(op, "Price cannot be negative")
	}
	if params.Currency == "" {
		params.Currency = "BRL"
	}

	// Every product option must be covered exactly once.
	options, err := s.store.ListOptions(ctx, params.ProductID)
	if err != nil {
		return nil, domain.Internal(err, op, "Unable to load product options")
	}
	if len(params.Attributes) != len(options) {
		return nil, domain.ErrIncompleteSelection
	}
	for _, opt := range options {
		val, ok := params.Attributes[opt.Slug]
		if !ok {
			return nil, domain.ErrIncompleteSelection
		}
		if !optionHasValue(opt, val) {
			return nil, domain.Invalid(op, "Unknown value for option "+opt.Slug)
		}
	}

	v, err := s.store.InsertVariant(ctx, params)
	if err != nil {
		if domain.IsCode(err, domain.ECONFLICT) {
			return nil, err
		}
		return nil, domain.Internal(err, op, "Unable to create variant")
	}
	s.logger.Info().Str("variant_id", v.ID).Str("sku", v.SKU).Msg("variant created")
	return v, nil
}

func (s *productService) AdjustInventory(ctx context.Context, params domain.AdjustInventoryParams) (*domain.Variant, error) {
	v, err := s.store.AdjustInventory(ctx, params)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, err
		}
		return nil, domain.Internal(err, "product.adjust_inventory", "Unable to adjust inventory")
	}
	return v, nil
}

func optionHasValue(opt domain.Option, valueSlug string) bool {
	for _, v := range opt.Values {
		if v.Slug == valueSlug {
			return true
		}
	}
	return false
}
