package shopify

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Order is the subset of a Shopify Admin API order read by the relay.
// Every field tolerates absence in the payload.
type Order struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	OrderNumber     int64          `json:"order_number"`
	CreatedAt       string         `json:"created_at"`
	SourceName      string         `json:"source_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	Note            string         `json:"note"`
	TotalTax        Text           `json:"total_tax"`
	ShippingAddress *Address       `json:"shipping_address"`
	BillingAddress  *Address       `json:"billing_address"`
	Customer        *Customer      `json:"customer"`
	LineItems       []LineItem     `json:"line_items"`
	ShippingLines   []ShippingLine `json:"shipping_lines"`
	NoteAttributes  []Attribute    `json:"note_attributes"`
	CartAttributes  []Attribute    `json:"cart_attributes"`
}

type Address struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LineItem struct {
	Title        string      `json:"title"`
	VariantTitle string      `json:"variant_title"`
	SKU          string      `json:"sku"`
	Quantity     Count       `json:"quantity"`
	Price        Text        `json:"price"`
	Properties   []Attribute `json:"properties"`
}

type ShippingLine struct {
	Title string `json:"title"`
	Price Text   `json:"price"`
}

// Attribute is a free-form name/value pair (note attribute, cart attribute or
// line item property).
type Attribute struct {
	Name  string `json:"name"`
	Value Text   `json:"value"`
}

// Text decodes any JSON scalar into its string form. Storefront apps write
// numbers and booleans into attribute values, and null shows up for blanks.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*t = ""
		return nil
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		*t = Text(trimmed)
		return nil
	}
}

func (t Text) String() string {
	return string(t)
}

// Count decodes a quantity sent as a number, a numeric string or null.
// Anything unparsable decodes as zero.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(t.String()), 64)
	if err != nil || n < 0 {
		*c = 0
		return nil
	}
	*c = Count(n)
	return nil
}

// IDString returns the numeric order id as used in Admin API paths.
func (o *Order) IDString() string {
	if o == nil || o.ID == 0 {
		return ""
	}
	return strconv.FormatInt(o.ID, 10)
}

// DisplayName returns the order name (e.g. "#1001"), falling back to the
// order number.
func (o *Order) DisplayName() string {
	if o == nil {
		return ""
	}
	if name := strings.TrimSpace(o.Name); name != "" {
		return name
	}
	return "#" + strconv.FormatInt(o.OrderNumber, 10)
}

// PrimaryShippingLine returns the first shipping line or a zero value.
func (o *Order) PrimaryShippingLine() ShippingLine {
	if o == nil || len(o.ShippingLines) == 0 {
		return ShippingLine{}
	}
	return o.ShippingLines[0]
}
