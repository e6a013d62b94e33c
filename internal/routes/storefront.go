package routes

import "github.com/insany/shop/internal/router"

func registerStorefront(r *router.Router, deps Deps) {
	// Catalog
	r.Get("/products", deps.Products.List)
	r.Get("/products/{slug}", deps.Products.Detail)
	r.Get("/products/{slug}/resolve", deps.Products.Resolve)

	// Cart
	r.Get("/cart", deps.Cart.View)
	r.Delete("/cart", deps.Cart.Clear)
	r.Post("/cart/items", deps.Cart.Add)
	r.Patch("/cart/items/{lineId}", deps.Cart.UpdateLine)
	r.Delete("/cart/items/{lineId}", deps.Cart.RemoveLine)

	// Wishlist
	r.Get("/wishlist", deps.Wishlist.View)
	r.Post("/wishlist", deps.Wishlist.Add)
	r.Delete("/wishlist/{slug}", deps.Wishlist.Remove)
	r.Post("/wishlist/sync", deps.Wishlist.Sync)
	r.Post("/wishlist/merge", deps.Wishlist.Merge)

	// Checkout
	r.Get("/checkout/rates", deps.Checkout.Rates)
	r.Post("/checkout/quote", deps.Checkout.Quote)
	r.Post("/checkout/session", deps.Checkout.CreateSession)

	// Order confirmation polling after Stripe redirects back
	r.Get("/orders/confirmation", deps.Orders.Confirmation)
}
