package views

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/orderrelay/orderrelay/internal/orders"
)

type OrderPageProps struct {
	ID   string
	Data orders.OrderData
	// Form holds the submitted override fields. They are echoed into the
	// inputs and forwarded to the preview frames.
	Form  url.Values
	Flash *Flash
}

type formField struct {
	name, label, value string
	multiline          bool
}

func formValue(form url.Values, key, fallback string) string {
	if v := strings.TrimSpace(form.Get(key)); v != "" {
		return v
	}
	return fallback
}

func OrderPage(props OrderPageProps) templ.Component {
	data := props.Data
	return Layout("Order "+data.OrderNumber, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var p page
		base := "/dashboard/orders/" + url.PathEscape(props.ID)
		query := ""
		if encoded := props.Form.Encode(); encoded != "" {
			query = "?" + encoded
		}

		p.raw(`<div class="flex items-center justify-between"><div><h1 class="text-2xl font-bold">`)
		p.text(data.OrderNumber)
		p.raw(`</h1><p class="text-sm text-gray-500">`)
		p.text(data.OrderDate)
		p.raw(` · <span class="`, attr(DeliveryBadgeClass(string(data.DeliveryType))), `">`)
		p.text(string(data.DeliveryType))
		p.raw(`</span></p></div><a class="`, attr(ButtonClass(ButtonSecondary)), `" href="/dashboard">All orders</a></div>`)

		if props.Flash != nil && props.Flash.Message != "" {
			p.raw(`<p class="`, attr(flashClass(*props.Flash)), ` mt-4">`)
			p.text(props.Flash.Message)
			p.raw(`</p>`)
		}

		p.raw(`<div class="mt-6 grid grid-cols-1 gap-6 lg:grid-cols-3">`,
			`<form method="post" action="`, attr(base+"/print"), `" class="space-y-3 rounded-lg bg-white p-4 shadow-sm">`,
			`<h2 class="font-semibold">Edit before printing</h2>`)

		fields := []formField{
			{name: "recipient_name", label: "Recipient", value: formValue(props.Form, "recipient_name", data.Recipient.Name)},
			{name: "recipient_phone", label: "Phone", value: formValue(props.Form, "recipient_phone", data.Recipient.Phone)},
			{name: "address1", label: "Address", value: formValue(props.Form, "address1", data.Recipient.Address1)},
			{name: "address2", label: "Address 2", value: formValue(props.Form, "address2", data.Recipient.Address2)},
			{name: "city_state_zip", label: "City, State ZIP", value: formValue(props.Form, "city_state_zip", data.Recipient.CityStateZip())},
			{name: "delivery_date", label: "Delivery date", value: formValue(props.Form, "delivery_date", data.DeliveryDate)},
			{name: "gift_receiver", label: "Gift to", value: formValue(props.Form, "gift_receiver", data.GiftReceiver)},
			{name: "gift_sender", label: "Gift from", value: formValue(props.Form, "gift_sender", data.GiftSender)},
			{name: "gift_message", label: "Gift message", value: formValue(props.Form, "gift_message", data.GiftMessage), multiline: true},
			{name: "special_instructions", label: "Special instructions", value: formValue(props.Form, "special_instructions", data.SpecialInstructions), multiline: true},
		}
		for _, f := range fields {
			writeField(&p, f)
		}

		p.raw(`<details class="text-sm"><summary class="cursor-pointer font-medium">Gift card style</summary><div class="mt-2 space-y-3">`)
		for _, f := range []formField{
			{name: "font_family", label: "Font family", value: props.Form.Get("font_family")},
			{name: "font_size", label: "Font size (pt)", value: props.Form.Get("font_size")},
			{name: "font_weight", label: "Font weight", value: props.Form.Get("font_weight")},
			{name: "font_style", label: "Font style", value: props.Form.Get("font_style")},
			{name: "name_top", label: "Name top (in or px)", value: props.Form.Get("name_top")},
			{name: "message_top", label: "Message top (in or px)", value: props.Form.Get("message_top")},
		} {
			writeField(&p, f)
		}
		p.raw(`</div></details>`)

		p.raw(`<div class="flex flex-wrap gap-2 pt-2">`,
			`<button type="submit" formmethod="get" formaction="`, attr(base), `" class="`, attr(ButtonClass(ButtonSecondary)), `">Update preview</button>`,
			`<button type="submit" name="document" value="invoice" class="`, attr(ButtonClass(ButtonPrimary)), `">Print invoice</button>`,
			`<button type="submit" name="document" value="giftcard" class="`, attr(ButtonClass(ButtonPrimary, "bg-pink-600 hover:bg-pink-500")), `">Print gift card</button>`,
			`</div></form>`)

		p.raw(`<div class="lg:col-span-2 space-y-6">`,
			`<section><h2 class="font-semibold">Invoice</h2><iframe title="Invoice preview" class="mt-2 h-[700px] w-full rounded border border-gray-200 bg-white" src="`,
			attr(base+"/invoice"+query), `"></iframe></section>`,
			`<section><h2 class="font-semibold">Gift card</h2><iframe title="Gift card preview" class="mt-2 h-[820px] w-[420px] rounded border border-gray-200 bg-white" src="`,
			attr(base+"/giftcard"+query), `"></iframe></section></div></div>`)

		return p.writeTo(w)
	}))
}

func writeField(p *page, f formField) {
	p.raw(`<label class="block text-sm"><span class="text-gray-600">`)
	p.text(f.label)
	p.raw(`</span>`)
	if f.multiline {
		p.raw(`<textarea rows="3" name="`, attr(f.name), `" class="mt-1 block w-full rounded-md border border-gray-300 px-2 py-1">`)
		p.text(f.value)
		p.raw(`</textarea>`)
	} else {
		p.raw(`<input type="text" name="`, attr(f.name), `" value="`, attr(f.value), `" class="mt-1 block w-full rounded-md border border-gray-300 px-2 py-1">`)
	}
	p.raw(`</label>`)
}
