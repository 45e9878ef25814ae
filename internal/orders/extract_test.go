package orders

import (
	"strings"
	"testing"

	"github.com/orderrelay/orderrelay/internal/shopify"
)

func TestClassifyDelivery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		shipping string
		method   string
		want     DeliveryType
	}{
		{name: "default shipping", shipping: "UPS Ground", want: DeliveryShipping},
		{name: "no shipping line", want: DeliveryShipping},
		{name: "local delivery line", shipping: "Local Delivery - Same Day", want: DeliveryLocalDelivery},
		{name: "delivery word only", shipping: "Courier DELIVERY", want: DeliveryLocalDelivery},
		{name: "pickup line", shipping: "Store Pickup", want: DeliveryPickup},
		{name: "pick up spaced", shipping: "Pick Up in store", want: DeliveryPickup},
		{name: "pos wins over shipping line", source: "pos", shipping: "Local Delivery", want: DeliveryInStore},
		{name: "shopify_pos wins over method", source: "shopify_pos", method: "Pickup", want: DeliveryInStore},
		{name: "method forces pickup", shipping: "Local Delivery", method: "Curbside pick up", want: DeliveryPickup},
		{name: "method forces delivery", shipping: "Standard", method: "Home Delivery", want: DeliveryLocalDelivery},
		{name: "unrelated method keeps heuristic", shipping: "Standard", method: "Ground", want: DeliveryShipping},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order := &shopify.Order{SourceName: tc.source}
			if tc.shipping != "" {
				order.ShippingLines = []shopify.ShippingLine{{Title: tc.shipping}}
			}
			notes := NewNotes(KeyDeliveryMethod, tc.method)

			got := ClassifyDelivery(order, notes)
			if got != tc.want {
				t.Fatalf("ClassifyDelivery() = %q, want %q", got, tc.want)
			}
			if !got.Valid() {
				t.Fatalf("ClassifyDelivery() returned invalid type %q", got)
			}
		})
	}
}

func TestExtract_SkipsTipItems(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		LineItems: []shopify.LineItem{
			{Title: "Dark Chocolate Bark", Quantity: 2, Price: "12.50"},
			{Title: "Tip", Quantity: 1, Price: "5.00", Properties: attrs("Special Note", "tip note")},
			{Title: "Driver TIP jar", Price: "3"},
			{Title: "Sea Salt Caramels", Price: "8"},
		},
	}

	data := Extract(order)
	if len(data.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(data.Items))
	}
	for _, item := range data.Items {
		if strings.Contains(strings.ToLower(item.Title), "tip") {
			t.Fatalf("unexpected tip item %q", item.Title)
		}
	}
	if data.Subtotal != "33.00" {
		t.Fatalf("Subtotal = %q, want %q", data.Subtotal, "33.00")
	}
	if data.Items[1].Quantity != 1 {
		t.Fatalf("default quantity = %d, want 1", data.Items[1].Quantity)
	}
	if data.Items[1].UnitPrice != "8.00" {
		t.Fatalf("UnitPrice = %q, want %q", data.Items[1].UnitPrice, "8.00")
	}
	if strings.Contains(data.SpecialInstructions, "tip note") {
		t.Fatalf("instructions read from tip item: %q", data.SpecialInstructions)
	}
}

func TestExtract_SpecialInstructionsDedup(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		Note: "Leave at the side door",
		NoteAttributes: attrs(
			"Special Instructions", "Leave at the side door",
			"Delivery Instructions", "Call on arrival",
			"Packing instructions", "side door",
			"Other Instruction", "No nuts please",
		),
		LineItems: []shopify.LineItem{{
			Title:      "Gift Box",
			Properties: attrs("Special request", "No nuts please", "Item note", "Extra ribbon"),
		}},
	}

	data := Extract(order)
	want := "Leave at the side door\n\nDELIVERY: Call on arrival\n\nNo nuts please\n\nExtra ribbon"
	if data.SpecialInstructions != want {
		t.Fatalf("SpecialInstructions = %q, want %q", data.SpecialInstructions, want)
	}
	if strings.Count(data.SpecialInstructions, "Leave at the side door") != 1 {
		t.Fatalf("expected note text exactly once, got %q", data.SpecialInstructions)
	}
}

func TestExtract_DeliveryInstructionRepeatingNote(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		Note:           "Leave at door",
		NoteAttributes: attrs("Delivery Instructions", "Leave at door", "Delivery instructions", "Ring twice"),
	}

	data := Extract(order)
	want := "Leave at door\n\nDELIVERY: Ring twice"
	if data.SpecialInstructions != want {
		t.Fatalf("SpecialInstructions = %q, want %q", data.SpecialInstructions, want)
	}
}

func TestExtract_POSInStore(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		Name:          "#1042",
		SourceName:    "shopify_pos",
		ShippingLines: []shopify.ShippingLine{{Title: "Local Delivery"}},
		BillingAddress: &shopify.Address{
			Name:     "Maria Lopez",
			Address1: "100 Main St",
			City:     "Aventura",
			Province: "FL",
			Zip:      "33180",
			Phone:    "305-555-0100",
		},
		Customer: &shopify.Customer{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com"},
	}

	data := Extract(order)
	if data.DeliveryType != DeliveryInStore {
		t.Fatalf("DeliveryType = %q, want %q", data.DeliveryType, DeliveryInStore)
	}
	if !data.IsPOS {
		t.Fatal("expected IsPOS")
	}
	if data.Recipient.Name != "Maria Lopez" || data.Recipient.Address1 != "100 Main St" {
		t.Fatalf("Recipient = %+v, want billing-derived recipient", data.Recipient)
	}
	if data.Recipient.Phone != "305-555-0100" {
		t.Fatalf("Recipient.Phone = %q", data.Recipient.Phone)
	}
}

func TestExtract_POSWithoutBillingStreet(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		SourceName:     "pos",
		BillingAddress: &shopify.Address{City: "Miami"},
		Customer:       &shopify.Customer{FirstName: "Ana", LastName: "Ruiz", Phone: "555"},
	}

	data := Extract(order)
	if data.Recipient.City != "" {
		t.Fatalf("Recipient.City = %q, want empty", data.Recipient.City)
	}
	if data.Recipient.Name != "Ana Ruiz" {
		t.Fatalf("Recipient.Name = %q, want %q", data.Recipient.Name, "Ana Ruiz")
	}
	if data.Recipient.Phone != "555" {
		t.Fatalf("Recipient.Phone = %q, want %q", data.Recipient.Phone, "555")
	}
}

func TestExtract_GiftFallbacks(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		ShippingAddress: &shopify.Address{FirstName: "Lee", City: "Doral"},
		BillingAddress:  &shopify.Address{FirstName: "Kim", LastName: "Park", Phone: "111"},
		Customer:        &shopify.Customer{LastName: "Chen", Phone: "222"},
		Email:           "order@example.com",
	}

	data := Extract(order)
	if data.Recipient.Name != "Lee Chen" {
		t.Fatalf("Recipient.Name = %q, want %q", data.Recipient.Name, "Lee Chen")
	}
	if data.Giver.Name != "Kim Park" {
		t.Fatalf("Giver.Name = %q, want %q", data.Giver.Name, "Kim Park")
	}
	if data.Giver.Email != "order@example.com" {
		t.Fatalf("Giver.Email = %q", data.Giver.Email)
	}
	if data.Giver.Phone != "111" {
		t.Fatalf("Giver.Phone = %q", data.Giver.Phone)
	}
	if data.GiftReceiver != data.Recipient.Name {
		t.Fatalf("GiftReceiver = %q, want recipient name %q", data.GiftReceiver, data.Recipient.Name)
	}
	if data.GiftSender != data.Giver.Name {
		t.Fatalf("GiftSender = %q, want giver name %q", data.GiftSender, data.Giver.Name)
	}
	if data.HasGiftMessage() {
		t.Fatal("expected no gift message")
	}
}

func TestExtract_GiftSenderAlias(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		NoteAttributes: attrs("GiftMessageFrom", "Jane", "Gift Message", "Love you"),
		BillingAddress: &shopify.Address{Name: "Billing Person"},
	}

	data := Extract(order)
	if data.GiftSender != "Jane" {
		t.Fatalf("GiftSender = %q, want %q", data.GiftSender, "Jane")
	}
	if data.Giver.Name != "Jane" {
		t.Fatalf("Giver.Name = %q, want %q", data.Giver.Name, "Jane")
	}
	if data.GiftMessage != "Love you" {
		t.Fatalf("GiftMessage = %q", data.GiftMessage)
	}
}

func TestExtract_LocalDeliveryScenario(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		OrderNumber:     1001,
		CreatedAt:       "2025-02-10T09:15:00-05:00",
		ShippingLines:   []shopify.ShippingLine{{Title: "Local Delivery - Same Day", Price: "15.00"}},
		ShippingAddress: &shopify.Address{Name: "Pat Doe", City: "Miami Beach", Province: "FL"},
		TotalTax:        "2.10",
		LineItems:       []shopify.LineItem{{Title: "Truffles", Quantity: 3, Price: "10.00"}},
		NoteAttributes:  attrs("Delivery Date", "2025-02-14"),
	}

	data := Extract(order)
	if data.DeliveryType != DeliveryLocalDelivery {
		t.Fatalf("DeliveryType = %q, want %q", data.DeliveryType, DeliveryLocalDelivery)
	}
	if data.OrderNumber != "#1001" {
		t.Fatalf("OrderNumber = %q, want %q", data.OrderNumber, "#1001")
	}
	if data.OrderDate != "Feb 10, 2025" {
		t.Fatalf("OrderDate = %q, want %q", data.OrderDate, "Feb 10, 2025")
	}
	if data.DeliveryDate != "FEB 14, 2025" || data.DeliveryDayOfWeek != "FRIDAY" {
		t.Fatalf("delivery = %q %q, want FEB 14, 2025 FRIDAY", data.DeliveryDate, data.DeliveryDayOfWeek)
	}
	if data.DeliveryFee != "15.00" || data.TotalTax != "2.10" || data.Subtotal != "30.00" {
		t.Fatalf("totals = %q/%q/%q", data.Subtotal, data.DeliveryFee, data.TotalTax)
	}
	if got := data.GrandTotal(); got != "47.10" {
		t.Fatalf("GrandTotal() = %q, want %q", got, "47.10")
	}
}

func TestExtract_OccasionAndBabyGender(t *testing.T) {
	t.Parallel()

	order := &shopify.Order{
		LineItems: []shopify.LineItem{
			{Title: "Plain Box"},
			{Title: "Baby Box", Properties: attrs("_occasion", "", "Baby Gender", "Girl")},
			{Title: "Party Box", Properties: attrs("Order Occasion", "Birthday")},
		},
		NoteAttributes: attrs("Occasion", "Anniversary", "Baby Gender", "Boy"),
	}

	data := Extract(order)
	if data.Occasion != "Birthday" {
		t.Fatalf("Occasion = %q, want %q", data.Occasion, "Birthday")
	}
	if data.BabyGender != "Girl" {
		t.Fatalf("BabyGender = %q, want %q", data.BabyGender, "Girl")
	}

	fallback := Extract(&shopify.Order{NoteAttributes: attrs("Occasion", "Anniversary")})
	if fallback.Occasion != "Anniversary" {
		t.Fatalf("fallback Occasion = %q, want %q", fallback.Occasion, "Anniversary")
	}
}

func TestExtract_EmptyOrder(t *testing.T) {
	t.Parallel()

	data := Extract(nil)
	if data.DeliveryType != DeliveryShipping {
		t.Fatalf("DeliveryType = %q, want %q", data.DeliveryType, DeliveryShipping)
	}
	if data.DeliveryDate != DateTBD {
		t.Fatalf("DeliveryDate = %q, want %q", data.DeliveryDate, DateTBD)
	}
	if data.TotalTax != "0.00" || data.DeliveryFee != "0.00" || data.Subtotal != "0.00" {
		t.Fatalf("totals = %q/%q/%q, want zeros", data.Subtotal, data.DeliveryFee, data.TotalTax)
	}
}

func TestDeliveryDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw, day         string
		wantDate, wantDay string
	}{
		{raw: "", wantDate: "TBD"},
		{raw: "2025-02-14", wantDate: "FEB 14, 2025", wantDay: "FRIDAY"},
		{raw: "2025-02-14", day: "Sat", wantDate: "FEB 14, 2025", wantDay: "SAT"},
		{raw: "02/14/2025", wantDate: "FEB 14, 2025", wantDay: "FRIDAY"},
		{raw: "2/3/2025", wantDate: "FEB 3, 2025", wantDay: "MONDAY"},
		{raw: "February 14, 2025", wantDate: "FEB 14, 2025", wantDay: "FRIDAY"},
		{raw: "2025-02-14T00:00:00-05:00", wantDate: "FEB 14, 2025", wantDay: "FRIDAY"},
		{raw: "next tuesday", day: "Tuesday", wantDate: "next tuesday", wantDay: "Tuesday"},
	}

	for _, tc := range tests {
		gotDate, gotDay := DeliveryDate(tc.raw, tc.day)
		if gotDate != tc.wantDate || gotDay != tc.wantDay {
			t.Fatalf("DeliveryDate(%q, %q) = (%q, %q), want (%q, %q)", tc.raw, tc.day, gotDate, gotDay, tc.wantDate, tc.wantDay)
		}
	}
}

func TestCents(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":        "0.00",
		"abc":     "0.00",
		"1":       "1.00",
		"12.5":    "12.50",
		"0.125":   "0.13",
		"-3.2":    "-3.20",
		"1000.99": "1000.99",
	}
	for in, want := range tests {
		if got := FormatCents(ParseCents(in)); got != want {
			t.Fatalf("FormatCents(ParseCents(%q)) = %q, want %q", in, got, want)
		}
	}
}

func TestRecipient_CityStateZip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Recipient
		want string
	}{
		{in: Recipient{City: "Miami", Province: "FL", Zip: "33101"}, want: "Miami, FL 33101"},
		{in: Recipient{City: "Toronto", Province: "ON", Zip: "M5V 2T6"}, want: "Toronto, ON M5V 2T6"},
		{in: Recipient{City: "Miami"}, want: "Miami"},
		{in: Recipient{}, want: ""},
	}
	for _, tc := range tests {
		if got := tc.in.CityStateZip(); got != tc.want {
			t.Fatalf("CityStateZip(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
