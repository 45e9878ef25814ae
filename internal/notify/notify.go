// Package notify alerts shop staff when an automatic print fails.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	resend "github.com/resend/resend-go/v3"
)

// Failure describes a print that did not reach the printer.
type Failure struct {
	OrderID     string
	OrderNumber string
	Stage       string
	Err         error
	At          time.Time
}

type Notifier interface {
	PrintFailed(ctx context.Context, failure Failure) error
}

// Nop drops every alert.
type Nop struct{}

func (Nop) PrintFailed(context.Context, Failure) error { return nil }

type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier emails alerts through Resend.
type ResendNotifier struct {
	emails sender
	from   string
	to     []string
}

func NewResendNotifier(apiKey, from string, to []string) (*ResendNotifier, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend API key is required")
	}
	client := resend.NewClient(apiKey)
	return newResendNotifier(client.Emails, from, to)
}

func newResendNotifier(emails sender, from string, to []string) (*ResendNotifier, error) {
	recipients := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if strings.TrimSpace(from) == "" || len(recipients) == 0 {
		return nil, errors.New("alert email sender and recipients are required")
	}
	return &ResendNotifier{emails: emails, from: from, to: recipients}, nil
}

func (n *ResendNotifier) PrintFailed(ctx context.Context, failure Failure) error {
	if failure.At.IsZero() {
		failure.At = time.Now()
	}

	var body bytes.Buffer
	if err := alertTemplate.Execute(&body, alertView{
		Failure: failure,
		Error:   errorText(failure.Err),
		When:    failure.At.UTC().Format(time.RFC1123),
	}); err != nil {
		return fmt.Errorf("failed to render alert email: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: Subject(failure),
		Text:    body.String(),
	}
	if _, err := n.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send alert via resend: %w", err)
	}
	return nil
}

// Subject is the alert email subject line.
func Subject(failure Failure) string {
	name := failure.OrderNumber
	if name == "" {
		name = failure.OrderID
	}
	return fmt.Sprintf("Print failed for order %s", name)
}

type alertView struct {
	Failure
	Error string
	When  string
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

var alertTemplate = template.Must(template.New("alert").Parse(alertText))

const alertText = `An order could not be printed automatically.

Order:  {{.OrderNumber}}{{if .OrderID}} (id {{.OrderID}}){{end}}
Stage:  {{.Stage}}
Time:   {{.When}}
Error:  {{.Error}}

Reprint it from the dashboard once the printer is back online.
`
