// Package telemetry holds the business-level Prometheus metrics. HTTP
// plumbing metrics live in the middleware package.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics, registered on the default registry at init.
var (
	CartOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_cart_operations_total",
		Help: "Cart mutations by operation.",
	}, []string{"operation"})

	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_checkout_sessions_total",
		Help: "Checkout sessions by outcome.",
	}, []string{"outcome"})

	WebhooksReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_webhooks_received_total",
		Help: "Payment webhooks received, before verification.",
	})

	WebhooksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_webhooks_processed_total",
		Help: "Payment webhooks by processing result.",
	}, []string{"result"})

	WebhookDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_webhook_duration_seconds",
		Help:    "Webhook processing latency.",
		Buckets: prometheus.DefBuckets,
	})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_created_total",
		Help: "Orders created from completed payments.",
	})

	OrderValueCents = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_order_value_cents",
		Help:    "Order totals in cents.",
		Buckets: prometheus.ExponentialBuckets(500, 2.5, 10),
	})

	RevenueCents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shop_revenue_cents_total",
		Help: "Accumulated order revenue in cents.",
	})
)
