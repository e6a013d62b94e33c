package storefront

import (
	"net/http"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/price"
)

// OrderHandler serves the post-checkout confirmation lookup.
type OrderHandler struct {
	orders domain.OrderService
	locale string
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders domain.OrderService, locale string) *OrderHandler {
	return &OrderHandler{orders: orders, locale: locale}
}

// Confirmation handles GET /orders/confirmation?session_id=...
// The success redirect lands here; the order may lag the redirect by a
// webhook delivery, so 404 means "not yet", and clients poll.
func (h *OrderHandler) Confirmation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Missing session_id"))
		return
	}

	order, err := h.orders.GetByProviderSession(r.Context(), sessionID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]any{
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
		"totalCents":  order.TotalCents,
		"total":       price.Format(order.TotalCents, h.locale, order.Currency),
		"currency":    order.Currency,
		"items":       order.Items,
	})
}
