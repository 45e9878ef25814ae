package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orderrelay/orderrelay/internal/logging"
	"github.com/orderrelay/orderrelay/internal/observability"
	"github.com/orderrelay/orderrelay/internal/shopify"
)

type webhookResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId,omitempty"`
}

// OrderWebhook accepts a Shopify order webhook for topic. The order is
// acknowledged before printing; printing continues on a detached context
// bounded by the print timeout.
func (h *Handlers) OrderWebhook(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := h.loggerFromContext(ctx).With("topic", topic)
		r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

		payload, err := shopify.ReadWebhookPayload(r, h.config.ShopifyWebhookSecret)
		if err != nil {
			observability.CountWebhook(ctx, topic, observability.WebhookRejected)
			if errors.Is(err, shopify.ErrInvalidSignature) {
				logger.Warn("rejected Shopify webhook with invalid signature", "error", err)
				h.writeError(w, r, http.StatusUnauthorized, "Invalid webhook signature")
				return
			}
			logger.Error("failed to read Shopify webhook payload", "error", err)
			h.writeError(w, r, http.StatusBadRequest, "Invalid webhook")
			return
		}

		var order shopify.Order
		if err := json.Unmarshal(payload, &order); err != nil {
			observability.CountWebhook(ctx, topic, observability.WebhookRejected)
			logger.Error("failed to decode Shopify order payload", "error", err)
			h.writeError(w, r, http.StatusBadRequest, "Invalid order payload")
			return
		}

		webhookID := r.Header.Get(shopify.HeaderWebhookID)
		claimed, err := h.webhookLedger.Claim(ctx, webhookID)
		if err != nil {
			// A cache failure counts as a first delivery.
			logger.Error("failed to record webhook delivery", "webhook_id", webhookID, "error", err)
			claimed = true
		}
		if !claimed {
			observability.CountWebhook(ctx, topic, observability.WebhookDuplicate)
			args := []any{"webhook_id", webhookID, "order_id", order.IDString()}
			if seen, ok := h.webhookLedger.FirstSeen(ctx, webhookID); ok {
				args = append(args, "first_seen", seen)
			}
			logger.Info("webhook already processed", args...)
			h.writeJSON(w, r, http.StatusOK, webhookResponse{Status: "duplicate", OrderID: order.IDString()})
			return
		}

		observability.CountWebhook(ctx, topic, observability.WebhookAccepted)
		h.printService.Remember(order)
		logger.Info("order webhook accepted", "webhook_id", webhookID, "order_id", order.IDString(), "order_name", order.DisplayName())

		printCtx := logging.WithOrder(context.WithoutCancel(ctx), logger, order.IDString(), order.DisplayName())
		h.goBackground(func() {
			h.printWebhookOrder(printCtx, order)
		})

		h.writeJSON(w, r, http.StatusOK, webhookResponse{Status: "accepted", OrderID: order.IDString()})
	}
}

func (h *Handlers) printWebhookOrder(ctx context.Context, order shopify.Order) {
	ctx, cancel := context.WithTimeout(ctx, h.printTimeout)
	defer cancel()

	logger := h.loggerFromContext(ctx)
	result, err := h.printService.HandleWebhookOrder(ctx, &order)
	if err != nil {
		logger.Error("failed to print webhook order", "error", err)
		return
	}
	logger.Info("webhook order printed", "jobs", len(result.Jobs), "delivery_type", result.DeliveryType)
}
