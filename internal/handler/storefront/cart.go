package storefront

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/cart"
	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/price"
	"github.com/insany/shop/internal/telemetry"
)

// CartHandler handles all cart routes. A fresh Store is hydrated per
// request; the persister is the durable state.
type CartHandler struct {
	persister cart.Persister
	products  domain.ProductService
	locale    string
	secure    bool
	logger    zerolog.Logger
}

// NewCartHandler creates a cart handler.
func NewCartHandler(persister cart.Persister, products domain.ProductService, locale string, secure bool, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		persister: persister,
		products:  products,
		locale:    locale,
		secure:    secure,
		logger:    logger,
	}
}

func (h *CartHandler) store(ctx context.Context, sessionID string) *cart.Store {
	s := cart.NewStore(sessionID, h.persister, h.logger)
	s.Hydrate(ctx)
	return s
}

type cartView struct {
	Lines         []domain.CartLine `json:"lines"`
	Count         int               `json:"count"`
	SubtotalCents int64             `json:"subtotalCents"`
	Subtotal      string            `json:"subtotal"`
}

func (h *CartHandler) view(s *cart.Store) cartView {
	return cartView{
		Lines:         s.Lines(),
		Count:         s.Count(),
		SubtotalCents: s.SubtotalCents(),
		Subtotal:      price.Format(s.SubtotalCents(), h.locale),
	}
}

// View handles GET /cart.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r)
	if sessionID == "" {
		handler.RespondJSON(w, http.StatusOK, cartView{Lines: []domain.CartLine{}})
		return
	}
	handler.RespondJSON(w, http.StatusOK, h.view(h.store(r.Context(), sessionID)))
}

type addToCartRequest struct {
	VariantID string `json:"variantId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Slug      string `json:"slug" validate:"omitempty,max=200"`
	Title     string `json:"title" validate:"omitempty,max=500"`
	ImageURL  string `json:"imageUrl" validate:"omitempty,url"`
}

// Add handles POST /cart/items. The client supplies display fields for
// the snapshot; price, currency, and attributes always come from the
// catalog so a tampered payload cannot change what is charged.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	v, err := h.products.GetVariant(r.Context(), req.VariantID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessionID := EnsureSession(w, r, h.secure)
	s := h.store(r.Context(), sessionID)

	title := req.Title
	if title == "" {
		title = v.SKU
	}
	line := domain.CartLine{
		ProductID:      v.ProductID,
		VariantID:      v.ID,
		Slug:           req.Slug,
		Title:          title,
		UnitPriceCents: v.PriceCents,
		Currency:       v.Currency,
		Quantity:       req.Quantity,
		ImageURL:       req.ImageURL,
		Attributes:     v.Attributes,
	}
	if err := s.AddItem(r.Context(), line); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	telemetry.CartOperations.WithLabelValues("add").Inc()
	handler.RespondJSON(w, http.StatusOK, h.view(s))
}

type updateLineRequest struct {
	Op string `json:"op" validate:"required,oneof=increment decrement"`
}

// UpdateLine handles PATCH /cart/items/{lineId}.
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := handler.PathValue(r, "lineId")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req updateLineRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessionID := SessionID(r)
	if sessionID == "" {
		handler.ErrorResponse(w, r, domain.NotFound("cart.update", "Cart line", lineID))
		return
	}
	s := h.store(r.Context(), sessionID)

	switch req.Op {
	case "increment":
		err = s.Increment(r.Context(), lineID)
	case "decrement":
		err = s.Decrement(r.Context(), lineID)
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	telemetry.CartOperations.WithLabelValues(req.Op).Inc()
	handler.RespondJSON(w, http.StatusOK, h.view(s))
}

// RemoveLine handles DELETE /cart/items/{lineId}.
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := handler.PathValue(r, "lineId")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	sessionID := SessionID(r)
	if sessionID == "" {
		handler.RespondJSON(w, http.StatusOK, cartView{Lines: []domain.CartLine{}})
		return
	}
	s := h.store(r.Context(), sessionID)
	s.Remove(r.Context(), lineID)

	telemetry.CartOperations.WithLabelValues("remove").Inc()
	handler.RespondJSON(w, http.StatusOK, h.view(s))
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionID(r)
	if sessionID != "" {
		s := h.store(r.Context(), sessionID)
		s.Clear(r.Context())
		telemetry.CartOperations.WithLabelValues("clear").Inc()
	}
	handler.RespondJSON(w, http.StatusOK, cartView{Lines: []domain.CartLine{}})
}
