package routes

import "github.com/insany/shop/internal/router"

func registerWebhooks(r *router.Router, deps Deps) {
	r.Post("/webhooks/stripe", deps.Webhook.HandleWebhook)
}
