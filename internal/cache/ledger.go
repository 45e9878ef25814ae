package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const DefaultWebhookTTL = 24 * time.Hour

// WebhookLedger records which webhook deliveries have been accepted so that
// retried deliveries are acknowledged without printing twice.
type WebhookLedger struct {
	provider Provider
	source   string
	ttl      time.Duration
}

func NewWebhookLedger(provider Provider, source string, ttl time.Duration) *WebhookLedger {
	if ttl <= 0 {
		ttl = DefaultWebhookTTL
	}
	return &WebhookLedger{provider: provider, source: source, ttl: ttl}
}

func WebhookKey(source, deliveryID string) string {
	return fmt.Sprintf("webhook:%s:%s", source, deliveryID)
}

// Claim marks deliveryID as processed. It returns false when the delivery was
// already claimed. A blank id is always claimable since it cannot be tracked.
func (l *WebhookLedger) Claim(ctx context.Context, deliveryID string) (bool, error) {
	deliveryID = strings.TrimSpace(deliveryID)
	if l == nil || l.provider == nil || deliveryID == "" {
		return true, nil
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	return l.provider.SetIfAbsent(ctx, WebhookKey(l.source, deliveryID), stamp, l.ttl)
}

// FirstSeen returns when deliveryID was claimed, if the claim is still held.
func (l *WebhookLedger) FirstSeen(ctx context.Context, deliveryID string) (time.Time, bool) {
	deliveryID = strings.TrimSpace(deliveryID)
	if l == nil || l.provider == nil || deliveryID == "" {
		return time.Time{}, false
	}
	stamp, err := l.provider.Get(ctx, WebhookKey(l.source, deliveryID))
	if err != nil {
		return time.Time{}, false
	}
	seen, err := time.Parse(time.RFC3339, stamp)
	return seen, err == nil
}
