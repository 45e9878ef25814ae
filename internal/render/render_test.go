package render

import (
	"strings"
	"testing"
	"time"

	"github.com/orderrelay/orderrelay/internal/orders"
	"github.com/orderrelay/orderrelay/internal/profile"
	"github.com/orderrelay/orderrelay/internal/shopify"
)

var fixedPrintTime = time.Date(2025, time.February, 13, 20, 30, 0, 0, time.UTC)

func sampleData(deliveryType orders.DeliveryType) orders.OrderData {
	return orders.OrderData{
		OrderNumber:       "#1001",
		OrderDate:         "Feb 10, 2025",
		DeliveryType:      deliveryType,
		DeliveryDate:      "FEB 14, 2025",
		DeliveryDayOfWeek: "FRIDAY",
		Recipient: orders.Recipient{
			Name:     "Pat Doe",
			Phone:    "305-555-0101",
			Address1: "12 Ocean Dr",
			Address2: "Apt 4",
			City:     "Miami Beach",
			Province: "FL",
			Zip:      "33139",
		},
		Giver:          orders.Giver{Name: "Sam Roe", Email: "sam@example.com"},
		Items:          []orders.Item{{Title: "Truffles", Variant: "Vegan", SKU: "TR-1", Quantity: 2, UnitPrice: "10.00"}},
		GiftSender:     "Sam Roe",
		GiftReceiver:   "Pat Doe",
		ShippingMethod: "UPS Ground",
		Subtotal:       "20.00",
		TotalTax:       "1.40",
		DeliveryFee:    "15.00",
	}
}

func renderInvoice(t *testing.T, data orders.OrderData) string {
	t.Helper()
	html, err := Invoice(data, InvoiceOptions{Shop: profile.Default(), PrintedAt: fixedPrintTime})
	if err != nil {
		t.Fatalf("Invoice() error = %v", err)
	}
	return html
}

func TestInvoice_LayoutPerDeliveryType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		deliveryType orders.DeliveryType
		contains     []string
		excludes     []string
	}{
		{
			deliveryType: orders.DeliveryShipping,
			contains:     []string{"SHIPPING", "Recipient — Ship To", "Shipping To", "MIAMI BEACH", "UPS Ground", "Ship Date", "12 Ocean Dr", "Gift From", "Shipping:</span><span>$15.00"},
		},
		{
			deliveryType: orders.DeliveryLocalDelivery,
			contains:     []string{"LOCAL DELIVERY", "Recipient — Deliver To", "Delivering To", `<div class="city-name">MIAMI BEACH</div>`, "Delivery Date", "12 Ocean Dr", "Gift From", "Delivery:</span><span>$15.00"},
		},
		{
			deliveryType: orders.DeliveryPickup,
			contains:     []string{"PICKUP", "Customer Picking Up", "Pickup Location", "The Sweet Tooth", "18435 NE 19th Ave<br>North Miami Beach, FL 33179", "Ready for Pickup", "Gift From"},
			excludes:     []string{"12 Ocean Dr", "Shipping:", "Delivery:"},
		},
		{
			deliveryType: orders.DeliveryInStore,
			contains:     []string{"IN STORE", `<div class="info-card-header">Customer</div>`, `class="content-grid-single"`},
			excludes:     []string{"12 Ocean Dr", "Gift From", `class="date-bar"`, "Shipping:", "Delivery:", `class="top-right`},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.deliveryType.String(), func(t *testing.T) {
			t.Parallel()
			html := renderInvoice(t, sampleData(tc.deliveryType))
			for _, want := range tc.contains {
				if !strings.Contains(html, want) {
					t.Fatalf("expected invoice to contain %q", want)
				}
			}
			for _, unwanted := range tc.excludes {
				if strings.Contains(html, unwanted) {
					t.Fatalf("expected invoice to omit %q", unwanted)
				}
			}
		})
	}
}

func TestInvoice_Totals(t *testing.T) {
	t.Parallel()

	html := renderInvoice(t, sampleData(orders.DeliveryShipping))
	for _, want := range []string{"$20.00", "$1.40", "Total:</span><span>$36.40"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected invoice to contain %q", want)
		}
	}

	data := sampleData(orders.DeliveryShipping)
	data.DeliveryFee = "0.00"
	html = renderInvoice(t, data)
	if strings.Contains(html, "Shipping:") {
		t.Fatal("expected zero fee row to be hidden")
	}
}

func TestInvoice_GiftMessagePlaceholder(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryShipping)
	data.GiftMessage = "   "
	html := renderInvoice(t, data)
	if !strings.Contains(html, "NO GIFT MESSAGE") {
		t.Fatal("expected NO GIFT MESSAGE placeholder")
	}
	if strings.Contains(html, "Gift Card Included") {
		t.Fatal("unexpected gift message block")
	}

	data.GiftMessage = "Happy\nBirthday"
	html = renderInvoice(t, data)
	if strings.Contains(html, "NO GIFT MESSAGE") {
		t.Fatal("unexpected placeholder when message is present")
	}
	if !strings.Contains(html, `"Happy<br>Birthday"`) || !strings.Contains(html, "— Sam Roe") {
		t.Fatal("expected gift message block with sender")
	}
}

func TestInvoice_EscapesValues(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryShipping)
	data.Recipient.Name = `<script>alert("x")</script>`
	data.SpecialInstructions = "Ring <b>twice</b>"
	html := renderInvoice(t, data)
	if strings.Contains(html, "<script>alert") || strings.Contains(html, "<b>twice") {
		t.Fatal("expected interpolated values to be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Fatal("expected escaped recipient name")
	}
}

func TestInvoice_Banners(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryShipping)
	data.Occasion = "Birthday"
	data.BabyGender = " girl "
	data.SpecialInstructions = "No nuts\n\nCall first"
	html := renderInvoice(t, data)

	for _, want := range []string{"Occasion", "Birthday", "baby-gender-girl", "👶💗 GIRL", "SPECIAL INSTRUCTIONS", "No nuts<br><br>Call first", `<span class="variant-tag">Vegan</span>`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected invoice to contain %q", want)
		}
	}
}

func TestInvoice_Deterministic(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryLocalDelivery)
	first := renderInvoice(t, data)
	second := renderInvoice(t, data)
	if first != second {
		t.Fatal("expected identical output for identical input")
	}
	if !strings.Contains(first, "Printed: Feb 13, 2025 3:30 PM EST") {
		t.Fatal("expected print timestamp in shop timezone")
	}
}

func TestInvoice_POSScenario(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		Name:       "#2001",
		SourceName: "shopify_pos",
		BillingAddress: &shopify.Address{
			Name:     "Walk In",
			Address1: "1 Counter St",
			City:     "Miami",
		},
	}
	data := orders.Extract(order)
	html := renderInvoice(t, data)
	if !strings.Contains(html, "Walk In") {
		t.Fatal("expected billing-derived recipient")
	}
	if strings.Contains(html, "Gift From") || strings.Contains(html, `class="recipient-address"`) {
		t.Fatal("expected in-store invoice to omit giver card and address")
	}
}

func TestInvoice_LocalDeliveryScenario(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		Name:            "#2002",
		ShippingLines:   []shopify.ShippingLine{{Title: "Local Delivery - Same Day"}},
		ShippingAddress: &shopify.Address{City: "Aventura"},
	}
	html := renderInvoice(t, orders.Extract(order))
	if !strings.Contains(html, `<div class="city-name">AVENTURA</div>`) {
		t.Fatal("expected upper-cased city in top-right block")
	}
}

func TestGiftCard_Truncation(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryShipping)
	data.GiftMessage = strings.Repeat("a", 350)
	html, err := GiftCard(data, GiftCardStyle{})
	if err != nil {
		t.Fatalf("GiftCard() error = %v", err)
	}
	if !strings.Contains(html, ">"+strings.Repeat("a", 300)+"<") {
		t.Fatal("expected exactly 300 message characters")
	}
	if strings.Contains(html, strings.Repeat("a", 301)) {
		t.Fatal("message was not truncated")
	}

	short := strings.Repeat("b", 120)
	if got := TruncateMessage(short); got != short {
		t.Fatalf("TruncateMessage() changed a short message")
	}
	long := strings.Repeat("é", 310)
	once := TruncateMessage(long)
	if len([]rune(once)) != 300 || TruncateMessage(once) != once {
		t.Fatal("expected rune-based, idempotent truncation")
	}
}

func TestGiftCard_FontScale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		length int
		want   string
	}{
		{length: 50, want: "font-size: 10.2pt; line-height: 1.5;"},
		{length: 100, want: "font-size: 10.2pt; line-height: 1.5;"},
		{length: 101, want: "font-size: 9.5pt; line-height: 1.45;"},
		{length: 200, want: "font-size: 9pt; line-height: 1.4;"},
		{length: 250, want: "font-size: 8.5pt; line-height: 1.35;"},
		{length: 260, want: "font-size: 8pt; line-height: 1.3;"},
		{length: 900, want: "font-size: 8pt; line-height: 1.3;"},
	}

	for _, tc := range tests {
		data := sampleData(orders.DeliveryShipping)
		data.GiftMessage = strings.Repeat("m", tc.length)
		html, err := GiftCard(data, GiftCardStyle{})
		if err != nil {
			t.Fatalf("GiftCard() error = %v", err)
		}
		if !strings.Contains(html, tc.want) {
			t.Fatalf("length %d: expected %q", tc.length, tc.want)
		}
	}

	previous := ScaleForLength(0).FontSize
	for n := 1; n <= 400; n++ {
		size := ScaleForLength(n).FontSize
		if size > previous {
			t.Fatalf("font size increased at length %d", n)
		}
		previous = size
	}
}

func TestGiftCard_StyleOverrides(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryShipping)
	data.GiftMessage = "Hi"
	style := GiftCardStyle{
		FontFamily: "Georgia, serif</style>",
		FontSize:   11,
		FontWeight: "600",
		FontStyle:  "italic",
		NameTop:    Pixels(96),
		MessageTop: Length(5.25),
	}
	html, err := GiftCard(data, style)
	if err != nil {
		t.Fatalf("GiftCard() error = %v", err)
	}
	for _, want := range []string{
		"font-family: Georgia, serifstyle;",
		".top-section { top: 1in; }",
		".message-section { top: 5.25in; }",
		"font-weight: 600; font-style: italic;",
		"font-size: 11pt; line-height: 1.5;",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected gift card to contain %q", want)
		}
	}
	if strings.Count(html, "</style>") != 1 {
		t.Fatal("style override escaped the style block")
	}
}

func TestGiftCard_RecipientAndSender(t *testing.T) {
	t.Parallel()

	data := sampleData(orders.DeliveryShipping)
	data.GiftReceiver = ""
	data.GiftSender = " "
	data.GiftMessage = "Line one\nLine two"
	html, err := GiftCard(data, GiftCardStyle{})
	if err != nil {
		t.Fatalf("GiftCard() error = %v", err)
	}
	for _, want := range []string{
		`<div class="recipient-name">Pat Doe</div>`,
		"12 Ocean Dr, Apt 4<br>Miami Beach, FL 33139",
		"Line one<br>Line two",
		".top-section { top: 0.5in; }",
		".message-section { top: 4.8in; }",
		"font-family: Arial, sans-serif;",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected gift card to contain %q", want)
		}
	}
	if strings.Contains(html, `class="gift-sender"`) {
		t.Fatal("expected sender line to be omitted")
	}
}

func TestParseLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Length
		ok   bool
	}{
		{in: "1.5in", want: 1.5, ok: true},
		{in: "48px", want: 0.5, ok: true},
		{in: " 2 ", want: 2, ok: true},
		{in: "", ok: false},
		{in: "-1in", ok: false},
		{in: "wide", ok: false},
	}
	for _, tc := range tests {
		got, err := ParseLength(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseLength(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseLength(%q) expected error", tc.in)
		}
	}
	if got := Length(0.5).Pixels(); got != 48 {
		t.Fatalf("Pixels() = %v, want 48", got)
	}
}
