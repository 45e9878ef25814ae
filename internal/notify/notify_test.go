package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	resend "github.com/resend/resend-go/v3"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.sent = append(f.sent, params)
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "email_1"}, nil
}

func TestResendNotifier_PrintFailed(t *testing.T) {
	t.Parallel()

	fake := &fakeSender{}
	notifier, err := newResendNotifier(fake, "relay@example.com", []string{" ops@example.com ", ""})
	if err != nil {
		t.Fatalf("newResendNotifier() error = %v", err)
	}

	err = notifier.PrintFailed(t.Context(), Failure{
		OrderID:     "450789469",
		OrderNumber: "#1001",
		Stage:       "invoice",
		Err:         errors.New("printnode API returned status 503"),
		At:          time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("PrintFailed() error = %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(fake.sent))
	}

	email := fake.sent[0]
	if email.Subject != "Print failed for order #1001" {
		t.Fatalf("Subject = %q", email.Subject)
	}
	if len(email.To) != 1 || email.To[0] != "ops@example.com" {
		t.Fatalf("To = %v", email.To)
	}
	for _, want := range []string{"#1001 (id 450789469)", "Stage:  invoice", "status 503"} {
		if !strings.Contains(email.Text, want) {
			t.Fatalf("expected body to contain %q, got %q", want, email.Text)
		}
	}
}

func TestResendNotifier_SendError(t *testing.T) {
	t.Parallel()

	fake := &fakeSender{err: errors.New("rate limited")}
	notifier, err := newResendNotifier(fake, "relay@example.com", []string{"ops@example.com"})
	if err != nil {
		t.Fatalf("newResendNotifier() error = %v", err)
	}
	if err := notifier.PrintFailed(t.Context(), Failure{OrderID: "1"}); err == nil {
		t.Fatal("expected send error")
	}
}

func TestNewResendNotifier_RequiresConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewResendNotifier("", "a@example.com", []string{"b@example.com"}); err == nil {
		t.Fatal("expected error without API key")
	}
	if _, err := newResendNotifier(&fakeSender{}, "", []string{"b@example.com"}); err == nil {
		t.Fatal("expected error without sender")
	}
	if _, err := newResendNotifier(&fakeSender{}, "a@example.com", nil); err == nil {
		t.Fatal("expected error without recipients")
	}
}
