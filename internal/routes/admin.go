package routes

import "github.com/insany/shop/internal/router"

func registerAdmin(r *router.Router, deps Deps) {
	r.Get("/admin/products", deps.AdminProducts.List)
	r.Post("/admin/products", deps.AdminProducts.Create)
	r.Patch("/admin/products/{id}", deps.AdminProducts.Update)
	r.Delete("/admin/products/{id}", deps.AdminProducts.Archive)
	r.Post("/admin/products/{id}/variants", deps.AdminProducts.CreateVariant)
	r.Post("/admin/variants/{id}/inventory", deps.AdminProducts.AdjustInventory)

	r.Get("/admin/orders", deps.AdminOrders.List)
	r.Get("/admin/orders/{id}", deps.AdminOrders.Detail)
	r.Get("/admin/orders/number/{number}", deps.AdminOrders.DetailByNumber)
	r.Post("/admin/orders/{id}/status", deps.AdminOrders.UpdateStatus)
	r.Post("/admin/orders/{id}/ship", deps.AdminOrders.Ship)
}
