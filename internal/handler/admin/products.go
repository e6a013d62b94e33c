// Package admin holds the back-office JSON handlers. Authentication is
// terminated upstream; these handlers assume an authorized caller.
package admin

import (
	"net/http"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
)

// ProductHandler serves catalog management endpoints.
type ProductHandler struct {
	products domain.ProductService
}

// NewProductHandler creates an admin product handler.
func NewProductHandler(products domain.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type createProductRequest struct {
	Slug        string `json:"slug" validate:"required,max=200"`
	Title       string `json:"title" validate:"required,max=500"`
	Description string `json:"description" validate:"max=10000"`
	Status      string `json:"status" validate:"omitempty,oneof=draft active archived"`
	CategoryID  string `json:"categoryId" validate:"omitempty,uuid"`
}

// Create handles POST /admin/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	p, err := h.products.CreateProduct(r.Context(), domain.CreateProductParams{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.ProductStatus(req.Status),
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, p)
}

type updateProductRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=500"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft active archived"`
	CategoryID  *string `json:"categoryId" validate:"omitempty,uuid"`
}

// Update handles PATCH /admin/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req updateProductRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	params := domain.UpdateProductParams{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.Status != nil {
		st := domain.ProductStatus(*req.Status)
		params.Status = &st
	}

	if err := h.products.UpdateProduct(r.Context(), id, params); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Archive handles DELETE /admin/products/{id}. Products are archived,
// never hard-deleted, because order snapshots reference them.
func (h *ProductHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := h.products.ArchiveProduct(r.Context(), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// List handles GET /admin/products?status=...
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{CategorySlug: r.URL.Query().Get("category")}
	if st := r.URL.Query().Get("status"); st != "" {
		status := domain.ProductStatus(st)
		if !domain.ValidProductStatus(status) {
			handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Unknown product status"))
			return
		}
		filter.Status = &status
	}

	items, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"products": items})
}

type createVariantRequest struct {
	SKU           string            `json:"sku" validate:"required,max=100"`
	PriceCents    int64             `json:"priceCents" validate:"min=0"`
	Currency      string            `json:"currency" validate:"omitempty,len=3"`
	StockQuantity int32             `json:"stockQuantity" validate:"min=0"`
	Attributes    map[string]string `json:"attributes"`
}

// CreateVariant handles POST /admin/products/{id}/variants.
func (h *ProductHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req createVariantRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	v, err := h.products.CreateVariant(r.Context(), domain.CreateVariantParams{
		ProductID:     productID,
		SKU:           req.SKU,
		PriceCents:    req.PriceCents,
		Currency:      req.Currency,
		StockQuantity: req.StockQuantity,
		Attributes:    req.Attributes,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, v)
}

type adjustInventoryRequest struct {
	QuantityDelta int32 `json:"quantityDelta"`
	ReservedDelta int32 `json:"reservedDelta"`
}

// AdjustInventory handles POST /admin/variants/{id}/inventory.
func (h *ProductHandler) AdjustInventory(w http.ResponseWriter, r *http.Request) {
	variantID, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req adjustInventoryRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	v, err := h.products.AdjustInventory(r.Context(), domain.AdjustInventoryParams{
		VariantID:     variantID,
		QuantityDelta: req.QuantityDelta,
		ReservedDelta: req.ReservedDelta,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, v)
}
