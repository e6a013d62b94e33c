// Package routes maps URLs to handlers. Route registration is split by
// surface: storefront, admin, webhooks.
package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/handler/admin"
	"github.com/insany/shop/internal/handler/storefront"
	"github.com/insany/shop/internal/handler/webhook"
	"github.com/insany/shop/internal/router"
)

// Deps carries the handlers each surface needs.
type Deps struct {
	Products      *storefront.ProductHandler
	Cart          *storefront.CartHandler
	Checkout      *storefront.CheckoutHandler
	Wishlist      *storefront.WishlistHandler
	Orders        *storefront.OrderHandler
	Webhook       *webhook.StripeHandler
	AdminProducts *admin.ProductHandler
	AdminOrders   *admin.OrderHandler
}

// Register wires every route onto the router.
func Register(r *router.Router, deps Deps) {
	registerSystem(r)
	registerStorefront(r, deps)
	registerWebhooks(r, deps)
	registerAdmin(r, deps)
}

func registerSystem(r *router.Router) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle(http.MethodGet, "/metrics", promhttp.Handler())
}
