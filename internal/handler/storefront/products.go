// Package storefront holds the guest-facing JSON handlers.
package storefront

import (
	"net/http"
	"net/url"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/price"
	"github.com/insany/shop/internal/variant"
)

// ProductHandler serves the catalog read endpoints.
type ProductHandler struct {
	products domain.ProductService
	locale   string
}

// NewProductHandler creates a product handler. locale drives price
// formatting in list/detail payloads.
func NewProductHandler(products domain.ProductService, locale string) *ProductHandler {
	return &ProductHandler{products: products, locale: locale}
}

type productListItem struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	ImageURL       string `json:"imageUrl,omitempty"`
	FromPriceCents int64  `json:"fromPriceCents"`
	FromPrice      string `json:"fromPrice"`
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.products.ListProducts(r.Context(), domain.ProductFilter{
		CategorySlug: r.URL.Query().Get("category"),
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]productListItem, 0, len(items))
	for _, it := range items {
		out = append(out, productListItem{
			ID:             it.ID,
			Slug:           it.Slug,
			Title:          it.Title,
			ImageURL:       it.PrimaryImageURL,
			FromPriceCents: it.MinPriceCents,
			FromPrice:      price.Format(it.MinPriceCents, h.locale, it.Currency),
		})
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"products": out})
}

type variantView struct {
	ID         string            `json:"id"`
	SKU        string            `json:"sku"`
	PriceCents int64             `json:"priceCents"`
	Price      string            `json:"price"`
	Currency   string            `json:"currency"`
	Available  int32             `json:"available"`
	Attributes map[string]string `json:"attributes"`
}

type resolveView struct {
	Selected     *variantView               `json:"selected"`
	Availability map[string]map[string]bool `json:"availability"`
}

// Detail handles GET /products/{slug}. Query parameters select option
// values; the response carries the resolver output for that selection.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	slug, err := handler.PathValue(r, "slug")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	detail, err := h.products.GetProductDetail(r.Context(), slug)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	variants := make([]variantView, 0, len(detail.Variants))
	for _, v := range detail.Variants {
		variants = append(variants, h.variantView(v))
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"product":  detail.Product,
		"options":  detail.Options,
		"variants": variants,
		"images":   detail.Images,
		"resolve":  h.resolve(detail, r.URL.Query()),
	})
}

// Resolve handles GET /products/{slug}/resolve. Pure selection
// resolution for option pickers.
func (h *ProductHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	slug, err := handler.PathValue(r, "slug")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	detail, err := h.products.GetProductDetail(r.Context(), slug)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, h.resolve(detail, r.URL.Query()))
}

func (h *ProductHandler) resolve(detail *domain.ProductDetail, query url.Values) resolveView {
	sel := variant.Selection{}
	for _, opt := range detail.Options {
		if v := query.Get(opt.Slug); v != "" {
			sel[opt.Slug] = v
		}
	}

	res := variant.Resolve(detail.Options, detail.Variants, sel)
	view := resolveView{Availability: res.Availability}
	if res.Selected != nil {
		vv := h.variantView(*res.Selected)
		view.Selected = &vv
	}
	return view
}

func (h *ProductHandler) variantView(v domain.Variant) variantView {
	return variantView{
		ID:         v.ID,
		SKU:        v.SKU,
		PriceCents: v.PriceCents,
		Price:      price.Format(v.PriceCents, h.locale, v.Currency),
		Currency:   v.Currency,
		Available:  v.Available(),
		Attributes: v.Attributes,
	}
}
