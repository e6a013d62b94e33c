package storefront

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/cart"
	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/service"
)

// CheckoutHandler serves quoting and session creation.
type CheckoutHandler struct {
	checkout  service.CheckoutService
	persister cart.Persister
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(checkout service.CheckoutService, persister cart.Persister, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, persister: persister, logger: logger}
}

func (h *CheckoutHandler) lines(r *http.Request) ([]domain.CartLine, string) {
	sessionID := SessionID(r)
	if sessionID == "" {
		return nil, ""
	}
	s := cart.NewStore(sessionID, h.persister, h.logger)
	s.Hydrate(r.Context())
	return s.Lines(), sessionID
}

type quoteRequest struct {
	CouponCode  string `json:"couponCode" validate:"omitempty,max=64"`
	ServiceCode string `json:"serviceCode" validate:"omitempty,max=64"`
}

// Quote handles POST /checkout/quote.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	lines, _ := h.lines(r)
	quote, err := h.checkout.Quote(r.Context(), lines, req.CouponCode, req.ServiceCode)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, quote)
}

// Rates handles GET /checkout/rates.
func (h *CheckoutHandler) Rates(w http.ResponseWriter, r *http.Request) {
	lines, _ := h.lines(r)
	rates, err := h.checkout.QuoteRates(r.Context(), lines)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

type createSessionRequest struct {
	CouponCode  string `json:"couponCode" validate:"omitempty,max=64"`
	ServiceCode string `json:"serviceCode" validate:"omitempty,max=64"`
	Email       string `json:"email" validate:"omitempty,email"`
}

// CreateSession handles POST /checkout/session. The response carries
// the provider URL the client redirects to.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	lines, cartKey := h.lines(r)
	sess, err := h.checkout.CreateSession(r.Context(), service.CreateSessionParams{
		Lines:         lines,
		CouponCode:    req.CouponCode,
		ServiceCode:   req.ServiceCode,
		CustomerEmail: req.Email,
		CartKey:       cartKey,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]string{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}
