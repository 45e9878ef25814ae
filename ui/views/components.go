// Package views renders the operator dashboard.
package views

import (
	"context"
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

type ButtonVariant string

const (
	ButtonPrimary   ButtonVariant = "primary"
	ButtonSecondary ButtonVariant = "secondary"
)

const buttonBase = "inline-flex items-center rounded-md px-3 py-2 text-sm font-semibold shadow-sm"

var buttonVariants = map[ButtonVariant]string{
	ButtonPrimary:   "bg-indigo-600 text-white hover:bg-indigo-500",
	ButtonSecondary: "bg-white text-gray-900 ring-1 ring-inset ring-gray-300 hover:bg-gray-50",
}

// ButtonClass merges the variant classes with any caller overrides.
func ButtonClass(variant ButtonVariant, extra ...string) string {
	args := append([]string{buttonBase, buttonVariants[variant]}, extra...)
	return twmerge.Merge(args...)
}

var deliveryBadgeClasses = map[string]string{
	"shipping":       "bg-blue-50 text-blue-700",
	"local-delivery": "bg-amber-50 text-amber-700",
	"pickup":         "bg-green-50 text-green-700",
	"in-store":       "bg-gray-100 text-gray-700",
}

// DeliveryBadgeClass styles a delivery type pill.
func DeliveryBadgeClass(deliveryType string) string {
	return twmerge.Merge(
		"inline-flex rounded-full px-2 py-0.5 text-xs font-medium bg-gray-100 text-gray-700",
		deliveryBadgeClasses[deliveryType],
	)
}

// Flash is a one-line status message.
type Flash struct {
	Message string
	Error   bool
}

func flashClass(f Flash) string {
	if f.Error {
		return twmerge.Merge("rounded-md p-3 text-sm", "bg-red-50 text-red-800")
	}
	return twmerge.Merge("rounded-md p-3 text-sm", "bg-green-50 text-green-800")
}

// page accumulates escaped markup for a component.
type page struct {
	b strings.Builder
}

func (p *page) raw(parts ...string) {
	for _, part := range parts {
		p.b.WriteString(part)
	}
}

func (p *page) text(s string) {
	p.b.WriteString(templ.EscapeString(s))
}

func (p *page) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, p.b.String())
	return err
}

func attr(s string) string {
	return templ.EscapeString(s)
}

// Layout wraps body in the dashboard shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var head page
		head.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		head.text(title)
		head.raw(` · Order Relay</title>`,
			`<script src="https://cdn.tailwindcss.com"></script></head>`,
			`<body class="min-h-full bg-gray-50 text-gray-900">`,
			`<header class="border-b border-gray-200 bg-white"><div class="mx-auto max-w-6xl px-4 py-3 flex items-center justify-between">`,
			`<a href="/dashboard" class="text-lg font-bold">Order Relay</a>`,
			`<a href="/health" class="text-sm text-gray-500">health</a></div></header>`,
			`<main class="mx-auto max-w-6xl px-4 py-6">`)
		if err := head.writeTo(w); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// NotFoundPage is shown for unknown routes and missing orders.
func NotFoundPage() templ.Component {
	return Layout("Not found", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var p page
		p.raw(`<div class="py-16 text-center"><h1 class="text-2xl font-bold">Not found</h1>`,
			`<p class="mt-2 text-gray-600">The page or order you asked for does not exist.</p>`,
			`<a class="`, attr(ButtonClass(ButtonSecondary, "mt-6")), `" href="/dashboard">Back to orders</a></div>`)
		return p.writeTo(w)
	}))
}
