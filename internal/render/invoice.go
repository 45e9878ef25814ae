// Package render turns OrderData into print-ready HTML documents.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/orderrelay/orderrelay/internal/orders"
	"github.com/orderrelay/orderrelay/internal/profile"
)

const printedAtLayout = "Jan 2, 2006 3:04 PM MST"

type topRightKind int

const (
	topRightNone topRightKind = iota
	topRightShipping
	topRightCity
	topRightPickup
)

// invoiceLayout holds the per-delivery-type display rules.
type invoiceLayout struct {
	Badge          string
	RecipientLabel string
	DateLabel      string
	FeeLabel       string
	TopRightLabel  string
	TopRight       topRightKind
	ShowAddress    bool
	ShowGiver      bool
	ShowDateBar    bool
}

var invoiceLayouts = map[orders.DeliveryType]invoiceLayout{
	orders.DeliveryShipping: {
		Badge:          "SHIPPING",
		RecipientLabel: "Recipient — Ship To",
		DateLabel:      "Ship Date",
		FeeLabel:       "Shipping",
		TopRightLabel:  "Shipping To",
		TopRight:       topRightShipping,
		ShowAddress:    true,
		ShowGiver:      true,
		ShowDateBar:    true,
	},
	orders.DeliveryLocalDelivery: {
		Badge:          "LOCAL DELIVERY",
		RecipientLabel: "Recipient — Deliver To",
		DateLabel:      "Delivery Date",
		FeeLabel:       "Delivery",
		TopRightLabel:  "Delivering To",
		TopRight:       topRightCity,
		ShowAddress:    true,
		ShowGiver:      true,
		ShowDateBar:    true,
	},
	orders.DeliveryPickup: {
		Badge:          "PICKUP",
		RecipientLabel: "Customer Picking Up",
		DateLabel:      "Ready for Pickup",
		TopRightLabel:  "Pickup Location",
		TopRight:       topRightPickup,
		ShowGiver:      true,
		ShowDateBar:    true,
	},
	orders.DeliveryInStore: {
		Badge:          "IN STORE",
		RecipientLabel: "Customer",
	},
}

func layoutFor(deliveryType orders.DeliveryType) invoiceLayout {
	if layout, ok := invoiceLayouts[deliveryType]; ok {
		return layout
	}
	return invoiceLayouts[orders.DeliveryShipping]
}

// InvoiceOptions carries the inputs that are not part of the order.
type InvoiceOptions struct {
	Shop *profile.Shop
	// PrintedAt is stamped in the footer. Zero means now.
	PrintedAt time.Time
}

type invoiceView struct {
	Data   orders.OrderData
	Layout invoiceLayout
	Shop   *profile.Shop

	TopRightShipping bool
	TopRightCity     bool
	TopRightPickup   bool
	CityUpper        string

	AddressLines []string
	Items        []invoiceItem

	Subtotal string
	Fee      string
	ShowFee  bool
	Tax      string
	Total    string

	GiftMessageLines []string
	Instructions     []string
	BabyGender       *babyGenderView

	GridClass string
	PrintedAt string
}

type invoiceItem struct {
	Title     string
	Variant   string
	SKU       string
	Quantity  int
	UnitPrice string
}

type babyGenderView struct {
	Class string
	Icon  string
	Label string
}

// Invoice renders the 8.5x11in invoice for an order.
func Invoice(data orders.OrderData, opts InvoiceOptions) (string, error) {
	view := newInvoiceView(data, opts)

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.String(), nil
}

func newInvoiceView(data orders.OrderData, opts InvoiceOptions) invoiceView {
	shop := opts.Shop
	if shop == nil {
		shop = profile.Default()
	}
	printedAt := opts.PrintedAt
	if printedAt.IsZero() {
		printedAt = time.Now()
	}

	layout := layoutFor(data.DeliveryType)
	fee := orders.ParseCents(data.DeliveryFee)

	view := invoiceView{
		Data:             data,
		Layout:           layout,
		Shop:             shop,
		TopRightShipping: layout.TopRight == topRightShipping,
		TopRightCity:     layout.TopRight == topRightCity,
		TopRightPickup:   layout.TopRight == topRightPickup,
		CityUpper:        strings.ToUpper(data.Recipient.City),
		Subtotal:         money(data.Subtotal),
		Fee:              money(data.DeliveryFee),
		ShowFee:          layout.FeeLabel != "" && fee > 0,
		Tax:              money(data.TotalTax),
		Total:            "$" + data.GrandTotal(),
		GridClass:        "content-grid",
		PrintedAt:        printedAt.In(shop.Location()).Format(printedAtLayout),
	}
	if data.DeliveryType == orders.DeliveryInStore {
		view.GridClass = "content-grid-single"
	}
	if layout.ShowAddress {
		view.AddressLines = addressLines(data.Recipient)
	}
	for _, item := range data.Items {
		view.Items = append(view.Items, invoiceItem{
			Title:     item.Title,
			Variant:   item.Variant,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
		})
	}
	if data.HasGiftMessage() {
		view.GiftMessageLines = splitLines(data.GiftMessage)
	}
	if strings.TrimSpace(data.SpecialInstructions) != "" {
		view.Instructions = splitLines(data.SpecialInstructions)
	}
	view.BabyGender = babyGender(data.BabyGender)

	return view
}

func addressLines(r orders.Recipient) []string {
	var lines []string
	if r.Address1 != "" {
		lines = append(lines, r.Address1)
	}
	if r.Address2 != "" {
		lines = append(lines, r.Address2)
	}
	if r.City != "" || r.Province != "" || r.Zip != "" {
		lines = append(lines, r.City+", "+r.Province+" "+r.Zip)
	}
	return lines
}

func babyGender(value string) *babyGenderView {
	label := strings.ToUpper(strings.TrimSpace(value))
	switch label {
	case "":
		return nil
	case "BOY":
		return &babyGenderView{Class: "baby-gender-boy", Icon: "👶💙", Label: label}
	case "GIRL":
		return &babyGenderView{Class: "baby-gender-girl", Icon: "👶💗", Label: label}
	default:
		return &babyGenderView{Class: "baby-gender-other", Icon: "👶", Label: label}
	}
}

func money(value string) string {
	return "$" + orders.FormatCents(orders.ParseCents(value))
}

// splitLines breaks text on newlines so templates can join with <br>.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(invoiceHTML))

const warningTriangle = `<svg class="warning-triangle" width="30" height="30" viewBox="0 0 24 24" fill="none"><path d="M12 2L1 21h22L12 2z" fill="#fff" stroke="#fff" stroke-width="1"/><path d="M12 9v5" stroke="#000" stroke-width="2.5" stroke-linecap="round"/><circle cx="12" cy="17" r="1.2" fill="#000"/></svg>`

const invoiceHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Invoice {{.Data.OrderNumber}}</title>
<style>
@import url('https://fonts.googleapis.com/css2?family=Manrope:wght@400;500;600;700;800&display=swap');
@page { size: 8.5in 11in; margin: 0; }
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: Manrope, -apple-system, sans-serif; font-size: 11px; line-height: 1.3; color: #000; background: #fff; }
.invoice-page { width: 8.5in; min-height: 11in; padding: 0.35in 0.5in; }
.header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 12px; padding-bottom: 10px; border-bottom: 2px solid #000; }
.delivery-badge { display: inline-block; padding: 8px 16px; font-size: 18px; font-weight: 800; letter-spacing: 1px; border: 3px solid #000; }
.order-number-header { font-size: 26px; font-weight: 800; text-align: center; }
.top-right { text-align: right; }
.top-right-label { font-size: 9px; font-weight: 600; text-transform: uppercase; letter-spacing: 1.5px; margin-bottom: 2px; }
.city-name { font-size: 24px; font-weight: 800; }
.shipping-destination { font-size: 16px; font-weight: 800; }
.shipping-state { font-size: 11px; margin-top: 2px; }
.shipping-service { display: inline-block; margin-top: 4px; padding: 3px 6px; font-size: 11px; font-weight: 700; background: #000; color: #fff; }
.pickup-location { font-size: 12px; font-weight: 700; }
.pickup-address { font-size: 10px; margin-top: 3px; }
.date-bar { display: flex; justify-content: flex-end; padding: 8px 0; margin-bottom: 10px; border-bottom: 1px solid #000; }
.delivery-date { text-align: right; }
.delivery-date-label { font-size: 9px; font-weight: 600; text-transform: uppercase; letter-spacing: 1px; }
.delivery-day { font-size: 14px; font-weight: 800; margin-top: 2px; }
.delivery-date-value { font-size: 13px; font-weight: 700; }
.banner { display: inline-block; padding: 10px 14px; margin: 0 8px 12px 0; background: #000; color: #fff; }
.banner-label { font-size: 9px; font-weight: 600; text-transform: uppercase; letter-spacing: 1.5px; margin-bottom: 2px; }
.banner-value { font-size: 18px; font-weight: 800; text-transform: uppercase; }
.baby-gender-boy { background: #1565C0; }
.baby-gender-girl { background: #D81B60; }
.baby-gender-other { background: #000; }
.content-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 14px; margin-bottom: 12px; }
.content-grid-single { display: block; margin-bottom: 12px; }
.content-grid-single .info-card { max-width: 50%; }
.info-card { border: 1px solid #000; padding: 10px; }
.info-card-header { font-size: 9px; font-weight: 700; text-transform: uppercase; letter-spacing: 2px; margin-bottom: 6px; padding-bottom: 6px; border-bottom: 1px solid #000; }
.recipient-card { border: 3px solid #000; }
.recipient-name { font-size: 15px; font-weight: 800; margin-bottom: 6px; }
.recipient-phone { display: inline-block; border: 2px solid #000; padding: 3px 8px; margin-bottom: 6px; font-size: 12px; font-weight: 700; letter-spacing: 0.5px; }
.recipient-address { font-size: 11px; line-height: 1.4; }
.giver-name { font-size: 13px; font-weight: 700; margin-bottom: 4px; }
.giver-detail { font-size: 10px; margin-bottom: 2px; }
.special-instructions-alert { border: 4px solid #000; margin-bottom: 14px; }
.alert-header { display: flex; align-items: center; justify-content: center; gap: 10px; padding: 10px 16px; background: #000; color: #fff; }
.alert-header-text { font-size: 20px; font-weight: 800; letter-spacing: 2px; }
.warning-triangle { flex-shrink: 0; }
.alert-body { padding: 14px 16px; font-size: 15px; font-weight: 700; line-height: 1.5; }
.items-section { margin-bottom: 12px; }
.items-header { font-size: 9px; font-weight: 700; text-transform: uppercase; letter-spacing: 2px; margin-bottom: 6px; }
.items-table { width: 100%; border-collapse: collapse; }
.items-table th { text-align: left; padding: 6px 8px; font-size: 9px; font-weight: 700; text-transform: uppercase; letter-spacing: 0.5px; border-top: 2px solid #000; border-bottom: 1px solid #000; }
.items-table th:last-child, .items-table td:last-child { text-align: right; }
.items-table td { padding: 6px 8px; font-size: 11px; border-bottom: 1px solid #ccc; }
.items-table td.item-name { font-size: 15px; font-weight: 800; }
.items-table tbody tr:last-child td { border-bottom: 2px solid #000; }
.variant-tag { display: inline-block; margin-left: 6px; padding: 2px 6px; font-size: 10px; font-weight: 700; text-transform: uppercase; vertical-align: middle; background: #000; color: #fff; }
.totals-section { max-width: 280px; margin: 0 0 12px auto; padding: 10px; border: 2px solid #000; }
.totals-row { display: flex; justify-content: space-between; padding: 3px 0; }
.totals-total { font-size: 14px; font-weight: 800; border-top: 1px solid #000; margin-top: 6px; padding-top: 6px; }
.gift-message-section { border: 2px solid #000; padding: 10px; margin-bottom: 12px; background: #fafafa; }
.gift-message-header { font-size: 10px; font-weight: 800; text-transform: uppercase; letter-spacing: 1.5px; margin-bottom: 6px; }
.gift-message-content { font-size: 12px; line-height: 1.5; font-style: italic; margin-bottom: 6px; }
.gift-message-from { font-size: 11px; font-weight: 700; text-align: right; }
.no-gift-message-section { border: 2px dashed #999; padding: 10px; margin-bottom: 12px; text-align: center; }
.no-gift-message { font-size: 14px; font-weight: 800; letter-spacing: 2px; color: #666; }
.footer { display: flex; justify-content: space-between; align-items: center; margin-top: 12px; padding-top: 8px; border-top: 1px solid #000; }
.logo-area { font-size: 11px; font-weight: 700; letter-spacing: 0.5px; }
.print-timestamp { font-size: 9px; }
</style>
</head>
<body>
<div class="invoice-page">
<div class="header">
<div class="delivery-badge">{{.Layout.Badge}}</div>
<div class="order-number-header">{{.Data.OrderNumber}}</div>
{{- if .TopRightShipping}}
<div class="top-right shipping-info"><div class="top-right-label">{{.Layout.TopRightLabel}}</div><div class="shipping-destination">{{.CityUpper}}</div><div class="shipping-state">{{.Data.Recipient.Province}}</div>{{with .Data.ShippingMethod}}<div class="shipping-service">{{.}}</div>{{end}}</div>
{{- else if .TopRightCity}}
<div class="top-right city-badge"><div class="top-right-label">{{.Layout.TopRightLabel}}</div><div class="city-name">{{.CityUpper}}</div></div>
{{- else if .TopRightPickup}}
<div class="top-right pickup-info"><div class="top-right-label">{{.Layout.TopRightLabel}}</div><div class="pickup-location">{{.Shop.Pickup.Name}}</div><div class="pickup-address">{{range $i, $line := .Shop.Pickup.AddressLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div></div>
{{- end}}
</div>
{{- if .Layout.ShowDateBar}}
<div class="date-bar"><div class="delivery-date"><div class="delivery-date-label">{{.Layout.DateLabel}}</div>{{with .Data.DeliveryDayOfWeek}}<div class="delivery-day">{{.}}</div>{{end}}<div class="delivery-date-value">{{.Data.DeliveryDate}}</div></div></div>
{{- end}}
{{- with .Data.Occasion}}
<div class="banner occasion-section"><div class="banner-label">Occasion</div><div class="banner-value">{{.}}</div></div>
{{- end}}
{{- with .BabyGender}}
<div class="banner baby-gender-section {{.Class}}"><div class="banner-label">Baby Gender</div><div class="banner-value">{{.Icon}} {{.Label}}</div></div>
{{- end}}
<div class="{{.GridClass}}">
<div class="info-card recipient-card"><div class="info-card-header">{{.Layout.RecipientLabel}}</div><div class="recipient-name">{{.Data.Recipient.Name}}</div>{{with .Data.Recipient.Phone}}<div class="recipient-phone">☎ {{.}}</div>{{end}}{{if .AddressLines}}<div class="recipient-address">{{range $i, $line := .AddressLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>{{end}}</div>
{{- if .Layout.ShowGiver}}
<div class="info-card giver-card"><div class="info-card-header">Gift From</div><div class="giver-name">{{.Data.Giver.Name}}</div>{{with .Data.Giver.Email}}<div class="giver-detail">{{.}}</div>{{end}}{{with .Data.Giver.Phone}}<div class="giver-detail">{{.}}</div>{{end}}</div>
{{- end}}
</div>
{{- if .Instructions}}
<div class="special-instructions-alert"><div class="alert-header">` + warningTriangle + `<span class="alert-header-text">SPECIAL INSTRUCTIONS</span>` + warningTriangle + `</div><div class="alert-body">{{range $i, $line := .Instructions}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div></div>
{{- end}}
<div class="items-section"><div class="items-header">Order Items</div>
<table class="items-table"><thead><tr><th>Item</th><th>SKU</th><th>Qty</th><th>Price</th></tr></thead><tbody>
{{- range .Items}}
<tr><td class="item-name">{{.Title}}{{with .Variant}} <span class="variant-tag">{{.}}</span>{{end}}</td><td>{{.SKU}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td></tr>
{{- end}}
</tbody></table></div>
<div class="totals-section">
<div class="totals-row"><span>Subtotal:</span><span>{{.Subtotal}}</span></div>
{{- if .ShowFee}}
<div class="totals-row"><span>{{.Layout.FeeLabel}}:</span><span>{{.Fee}}</span></div>
{{- end}}
<div class="totals-row"><span>Tax:</span><span>{{.Tax}}</span></div>
<div class="totals-row totals-total"><span>Total:</span><span>{{.Total}}</span></div>
</div>
{{- if .GiftMessageLines}}
<div class="gift-message-section"><div class="gift-message-header">🎁 Gift Card Included</div><div class="gift-message-content">"{{range $i, $line := .GiftMessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}"</div>{{with .Data.GiftSender}}<div class="gift-message-from">— {{.}}</div>{{end}}</div>
{{- else}}
<div class="no-gift-message-section"><div class="no-gift-message">NO GIFT MESSAGE</div></div>
{{- end}}
<div class="footer"><div class="logo-area">{{.Shop.Name}}</div><div class="print-timestamp">Printed: {{.PrintedAt}}</div></div>
</div>
</body>
</html>
`
