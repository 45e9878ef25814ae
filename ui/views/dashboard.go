package views

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
)

// OrderRow is one line of the order list.
type OrderRow struct {
	ID           string
	Name         string
	Date         string
	Customer     string
	DeliveryType string
	DeliveryDate string
	HasGift      bool
}

type DashboardProps struct {
	Query             string
	Orders            []OrderRow
	PrinterConfigured bool
	Flash             *Flash
}

func DashboardPage(props DashboardProps) templ.Component {
	return Layout("Orders", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var p page

		p.raw(`<div class="flex items-center justify-between gap-4">`,
			`<h1 class="text-2xl font-bold">Orders</h1>`,
			`<form method="get" action="/dashboard" class="flex gap-2">`,
			`<input type="search" name="q" placeholder="#1001" value="`, attr(props.Query),
			`" class="rounded-md border border-gray-300 px-3 py-2 text-sm">`,
			`<button type="submit" class="`, attr(ButtonClass(ButtonSecondary)), `">Search</button></form></div>`)

		if !props.PrinterConfigured {
			p.raw(`<p class="`, attr(flashClass(Flash{Error: true})), ` mt-4">Invoice printer is not configured. Previews still work.</p>`)
		}
		if props.Flash != nil && props.Flash.Message != "" {
			p.raw(`<p class="`, attr(flashClass(*props.Flash)), ` mt-4">`)
			p.text(props.Flash.Message)
			p.raw(`</p>`)
		}

		if len(props.Orders) == 0 {
			p.raw(`<p class="mt-8 text-gray-600">`)
			if props.Query != "" {
				p.raw(`No orders match `)
				p.text(strconv.Quote(props.Query))
				p.raw(`.`)
			} else {
				p.raw(`No recent orders yet.`)
			}
			p.raw(`</p>`)
			return p.writeTo(w)
		}

		p.raw(`<table class="mt-6 w-full divide-y divide-gray-200 bg-white text-sm shadow-sm"><thead><tr class="text-left text-gray-500">`,
			`<th class="px-3 py-2">Order</th><th class="px-3 py-2">Date</th><th class="px-3 py-2">Customer</th>`,
			`<th class="px-3 py-2">Delivery</th><th class="px-3 py-2">Delivery date</th><th class="px-3 py-2"></th></tr></thead><tbody>`)
		for _, row := range props.Orders {
			href := "/dashboard/orders/" + url.PathEscape(row.ID)
			p.raw(`<tr class="border-t border-gray-100"><td class="px-3 py-2 font-semibold"><a class="text-indigo-600" href="`, attr(href), `">`)
			p.text(row.Name)
			p.raw(`</a>`)
			if row.HasGift {
				p.raw(` <span class="text-xs text-pink-600">gift</span>`)
			}
			p.raw(`</td><td class="px-3 py-2">`)
			p.text(row.Date)
			p.raw(`</td><td class="px-3 py-2">`)
			p.text(row.Customer)
			p.raw(`</td><td class="px-3 py-2"><span class="`, attr(DeliveryBadgeClass(row.DeliveryType)), `">`)
			p.text(row.DeliveryType)
			p.raw(`</span></td><td class="px-3 py-2">`)
			p.text(row.DeliveryDate)
			p.raw(`</td><td class="px-3 py-2 text-right"><a class="`, attr(ButtonClass(ButtonSecondary, "py-1")), `" href="`, attr(href), `">Open</a></td></tr>`)
		}
		p.raw(`</tbody></table>`)

		return p.writeTo(w)
	}))
}
