// Package webhook receives payment provider callbacks.
package webhook

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/insany/shop/internal/billing"
	"github.com/insany/shop/internal/domain"
	"github.com/insany/shop/internal/handler"
	"github.com/insany/shop/internal/telemetry"
)

// maxPayloadBytes caps webhook bodies; Stripe events are small.
const maxPayloadBytes = 1 << 20

// StripeHandler handles Stripe webhook events.
type StripeHandler struct {
	provider billing.Provider
	orders   domain.OrderService
}

// NewStripeHandler creates a Stripe webhook handler.
func NewStripeHandler(provider billing.Provider, orders domain.OrderService) *StripeHandler {
	return &StripeHandler{provider: provider, orders: orders}
}

// HandleWebhook processes incoming events. Signature failures are
// rejected with 401 so the provider retries; once verified, the
// response is 200 regardless of what the event was, because a non-2xx
// would make the provider redeliver an event we cannot use.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := zerolog.Ctx(r.Context()).With().Str("handler", "stripe_webhook").Logger()

	telemetry.WebhooksReceived.Inc()
	defer func() {
		telemetry.WebhookDuration.Observe(time.Since(start).Seconds())
	}()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		telemetry.WebhooksProcessed.WithLabelValues("rejected").Inc()
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Missing signature"))
		return
	}
	if err := h.provider.VerifyWebhookSignature(payload, signature); err != nil {
		logger.Warn().Err(err).Msg("webhook signature verification failed")
		telemetry.WebhooksProcessed.WithLabelValues("rejected").Inc()
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid signature"))
		return
	}

	event, err := h.provider.ParseEvent(r.Context(), payload)
	if err != nil {
		logger.Error().Err(err).Msg("webhook event parsing failed")
		telemetry.WebhooksProcessed.WithLabelValues("failed").Inc()
		// Parsing failures after a valid signature are our problem, not
		// the provider's; 200 stops redelivery of a payload we will
		// never understand.
		handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	switch ev := event.(type) {
	case billing.PaymentCompleted:
		h.handlePaymentCompleted(w, r, ev)

	case billing.PaymentFailed:
		logger.Info().Str("session_id", ev.SessionID).Str("reason", ev.Reason).Msg("payment failed")
		telemetry.WebhooksProcessed.WithLabelValues("processed").Inc()
		handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})

	case billing.UnknownEvent:
		logger.Debug().Str("type", ev.Type).Msg("ignoring webhook event")
		telemetry.WebhooksProcessed.WithLabelValues("ignored").Inc()
		handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})

	default:
		telemetry.WebhooksProcessed.WithLabelValues("ignored").Inc()
		handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
	}
}

func (h *StripeHandler) handlePaymentCompleted(w http.ResponseWriter, r *http.Request, ev billing.PaymentCompleted) {
	logger := zerolog.Ctx(r.Context())

	order, err := h.orders.CreateFromPaymentCompleted(r.Context(), ev.PaymentCompletedEvent)
	if err != nil {
		// A replayed delivery is success from the provider's point of
		// view: the order exists.
		if errors.Is(err, domain.ErrPaymentAlreadyProcessed) {
			telemetry.WebhooksProcessed.WithLabelValues("duplicate").Inc()
			handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "already_processed"})
			return
		}
		logger.Error().Err(err).Str("session_id", ev.SessionID).Msg("order creation from webhook failed")
		telemetry.WebhooksProcessed.WithLabelValues("failed").Inc()
		// Non-2xx so the provider retries; order creation is
		// idempotent, so the retry is safe.
		handler.ErrorResponse(w, r, err)
		return
	}

	telemetry.WebhooksProcessed.WithLabelValues("processed").Inc()
	handler.RespondJSON(w, http.StatusOK, map[string]string{
		"status":      "processed",
		"orderNumber": order.OrderNumber,
	})
}
