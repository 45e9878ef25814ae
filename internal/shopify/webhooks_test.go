package shopify

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
)

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateWebhookSignature(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"id":1}`)
	secret := "whsec"

	tests := []struct {
		name      string
		signature string
		secret    string
		wantErr   bool
	}{
		{name: "valid", signature: sign(payload, secret), secret: secret},
		{name: "wrong secret", signature: sign(payload, "other"), secret: secret, wantErr: true},
		{name: "missing signature", signature: "", secret: secret, wantErr: true},
		{name: "missing secret", signature: sign(payload, secret), secret: "", wantErr: true},
		{name: "garbage", signature: "not-base64", secret: secret, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateWebhookSignature(payload, tc.signature, tc.secret)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidSignature) {
					t.Fatalf("ValidateWebhookSignature() error = %v, want ErrInvalidSignature", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateWebhookSignature() error = %v", err)
			}
		})
	}
}

func TestReadWebhookPayload(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"id":99,"name":"#1099"}`)

	req := httptest.NewRequest("POST", "/webhooks/orders/create", bytes.NewReader(payload))
	req.Header.Set(HeaderHMAC, sign(payload, "s3cret"))
	got, err := ReadWebhookPayload(req, "s3cret")
	if err != nil {
		t.Fatalf("ReadWebhookPayload() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %s, want %s", got, payload)
	}

	unsigned := httptest.NewRequest("POST", "/webhooks/orders/create", bytes.NewReader(payload))
	if _, err := ReadWebhookPayload(unsigned, "s3cret"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("ReadWebhookPayload() error = %v, want ErrInvalidSignature", err)
	}
}

func TestTextUnmarshal(t *testing.T) {
	t.Parallel()

	var item LineItem
	if err := json.Unmarshal([]byte(`{"price":12.5,"properties":[{"name":"a","value":null},{"name":"b","value":"x"},{"name":"c","value":false}]}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if item.Price != "12.5" {
		t.Fatalf("Price = %q, want %q", item.Price, "12.5")
	}
	want := []Text{"", "x", "false"}
	for i, prop := range item.Properties {
		if prop.Value != want[i] {
			t.Fatalf("property %d = %q, want %q", i, prop.Value, want[i])
		}
	}
}
