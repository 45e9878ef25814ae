package services

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orderrelay/orderrelay/internal/orders"
	"github.com/orderrelay/orderrelay/internal/render"
)

var (
	formValidator  = validator.New()
	cityStateZipRe = regexp.MustCompile(`^(.*?),\s*([A-Za-z .]+?)\s+(\d{5}(?:-\d{4})?)$`)
)

// Overrides are dashboard edits applied on top of extracted order data.
// Nil fields leave the extracted value untouched.
type Overrides struct {
	RecipientName       *string
	RecipientPhone      *string
	Address1            *string
	Address2            *string
	CityStateZip        *string
	GiftMessage         *string
	GiftSender          *string
	GiftReceiver        *string
	SpecialInstructions *string
	DeliveryDate        *string

	Style render.GiftCardStyle
}

func (o Overrides) IsZero() bool {
	return o.RecipientName == nil && o.RecipientPhone == nil &&
		o.Address1 == nil && o.Address2 == nil &&
		o.CityStateZip == nil &&
		o.GiftMessage == nil && o.GiftSender == nil && o.GiftReceiver == nil &&
		o.SpecialInstructions == nil && o.DeliveryDate == nil &&
		o.Style.IsZero()
}

// Apply returns data with the overrides written over it.
func (o Overrides) Apply(data orders.OrderData) orders.OrderData {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&data.Recipient.Name, o.RecipientName)
	set(&data.Recipient.Phone, o.RecipientPhone)
	set(&data.Recipient.Address1, o.Address1)
	set(&data.Recipient.Address2, o.Address2)
	set(&data.GiftMessage, o.GiftMessage)
	set(&data.GiftSender, o.GiftSender)
	set(&data.GiftReceiver, o.GiftReceiver)
	set(&data.SpecialInstructions, o.SpecialInstructions)

	// Both fields come back prefilled, so only an edited value is re-parsed.
	if o.CityStateZip != nil && *o.CityStateZip != data.Recipient.CityStateZip() {
		r := &data.Recipient
		r.City, r.Province, r.Zip = ParseCityStateZip(*o.CityStateZip)
	}
	if o.DeliveryDate != nil && *o.DeliveryDate != data.DeliveryDate {
		data.DeliveryDate, data.DeliveryDayOfWeek = orders.DeliveryDate(*o.DeliveryDate, "")
	}
	return data
}

// ParseCityStateZip splits "Miami, FL 33179". Input that does not match is
// returned whole as the city with an empty state and zip.
func ParseCityStateZip(value string) (city, province, zip string) {
	value = strings.TrimSpace(value)
	m := cityStateZipRe.FindStringSubmatch(value)
	if m == nil {
		return value, "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), m[3]
}

// OverridesFromForm reads dashboard form or query values. Blank fields are
// ignored. Style fields that fail validation are dropped so the computed
// default applies.
func OverridesFromForm(values url.Values) Overrides {
	var o Overrides

	text := func(key string) *string {
		v := strings.TrimSpace(values.Get(key))
		if v == "" {
			return nil
		}
		return &v
	}

	o.RecipientName = text("recipient_name")
	o.RecipientPhone = text("recipient_phone")
	o.Address1 = text("address1")
	o.Address2 = text("address2")
	o.CityStateZip = text("city_state_zip")
	o.GiftMessage = text("gift_message")
	o.GiftSender = text("gift_sender")
	o.GiftReceiver = text("gift_receiver")
	o.SpecialInstructions = text("special_instructions")
	o.DeliveryDate = text("delivery_date")

	o.Style = styleFromForm(values)
	return o
}

func styleFromForm(values url.Values) render.GiftCardStyle {
	var style render.GiftCardStyle

	if v := strings.TrimSpace(values.Get("font_family")); v != "" &&
		formValidator.Var(v, "max=100,excludesall=;{}<>") == nil {
		style.FontFamily = v
	}
	if v := strings.TrimSpace(values.Get("font_size")); v != "" {
		if size, err := strconv.ParseFloat(v, 64); err == nil && formValidator.Var(size, "gt=0,lte=72") == nil {
			style.FontSize = size
		}
	}
	if v := strings.ToLower(strings.TrimSpace(values.Get("font_weight"))); v != "" &&
		formValidator.Var(v, "oneof=normal bold bolder lighter 100 200 300 400 500 600 700 800 900") == nil {
		style.FontWeight = v
	}
	if v := strings.ToLower(strings.TrimSpace(values.Get("font_style"))); v != "" &&
		formValidator.Var(v, "oneof=normal italic oblique") == nil {
		style.FontStyle = v
	}
	if l, ok := lengthFromForm(values.Get("name_top")); ok {
		style.NameTop = l
	}
	if l, ok := lengthFromForm(values.Get("message_top")); ok {
		style.MessageTop = l
	}
	return style
}

// lengthFromForm accepts a length that stays on the 8.5in card.
func lengthFromForm(value string) (render.Length, bool) {
	if strings.TrimSpace(value) == "" {
		return 0, false
	}
	l, err := render.ParseLength(value)
	if err != nil || formValidator.Var(l.Inches(), "gte=0,lte=8.5") != nil {
		return 0, false
	}
	return l, true
}
