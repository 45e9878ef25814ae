package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	HeaderHMAC       = "X-Shopify-Hmac-Sha256"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
)

var ErrInvalidSignature = errors.New("webhook signature verification failed")

// ValidateWebhookSignature checks a base64 HMAC-SHA256 of payload against signature.
func ValidateWebhookSignature(payload []byte, signature, secret string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	if secret == "" {
		return fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}

	return nil
}

// ReadWebhookPayload reads the request body and verifies its signature.
// Errors wrap ErrInvalidSignature when the request is not authentic.
func ReadWebhookPayload(r *http.Request, secret string) ([]byte, error) {
	signature := r.Header.Get(HeaderHMAC)
	if signature == "" {
		return nil, fmt.Errorf("%w: missing %s header", ErrInvalidSignature, HeaderHMAC)
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	if err := ValidateWebhookSignature(payload, signature, secret); err != nil {
		return nil, err
	}

	return payload, nil
}
