package admin

import (
	"net/http"
	"strconv"

	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
)

// OrderHandler serves order management endpoints.
type OrderHandler struct {
	orders domain.OrderService
}

// NewOrderHandler creates an admin order handler.
func NewOrderHandler(orders domain.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /admin/orders?status=&email=&limit=&offset=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{Email: q.Get("email")}

	if st := q.Get("status"); st != "" {
		status := domain.OrderStatus(st)
		if !domain.ValidOrderStatus(status) {
			handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Unknown order status"))
			return
		}
		filter.Status = &status
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = int32(limit)
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = int32(offset)
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// Detail handles GET /admin/orders/{id}.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, order)
}

// DetailByNumber handles GET /admin/orders/number/{number}, the lookup
// support staff use when a customer quotes their order number.
func (h *OrderHandler) DetailByNumber(w http.ResponseWriter, r *http.Request) {
	number, err := handler.PathValue(r, "number")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.GetByNumber(r.Context(), number)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

// UpdateStatus handles POST /admin/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type shipRequest struct {
	TrackingNumber string `json:"trackingNumber" validate:"required,max=100"`
}

// Ship handles POST /admin/orders/{id}/ship. Re-submitting the same
// tracking number succeeds without a second transition.
func (h *OrderHandler) Ship(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathValue(r, "id")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	var req shipRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.orders.MarkShipped(r.Context(), domain.MarkShippedParams{
		OrderID:        id,
		TrackingNumber: req.TrackingNumber,
	}); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "shipped"})
}
