package orders

import (
	"math"
	"strconv"
	"strings"

	"github.com/orderrelay/orderrelay/internal/shopify"
)

const zeroMoney = "0.00"

// OrderData is the print-ready projection of one order.
type OrderData struct {
	OrderNumber       string
	OrderDate         string
	DeliveryType      DeliveryType
	DeliveryDate      string
	DeliveryDayOfWeek string

	Recipient Recipient
	Giver     Giver
	Items     []Item

	GiftMessage  string
	GiftSender   string
	GiftReceiver string

	SpecialInstructions string
	ShippingMethod      string
	IsPOS               bool

	Subtotal    string
	TotalTax    string
	DeliveryFee string

	Occasion   string
	BabyGender string
}

type Recipient struct {
	Name     string
	Phone    string
	Address1 string
	Address2 string
	City     string
	Province string
	Zip      string
	Country  string
}

// CityStateZip formats the locality line the dashboard edits, e.g.
// "Miami, FL 33101".
func (r Recipient) CityStateZip() string {
	line := r.City
	if r.Province != "" {
		line += ", " + r.Province
	}
	if r.Zip != "" {
		line += " " + r.Zip
	}
	return strings.TrimSpace(line)
}

type Giver struct {
	Name  string
	Email string
	Phone string
}

type Item struct {
	Title     string
	Variant   string
	SKU       string
	Quantity  int
	UnitPrice string
}

// HasGiftMessage reports whether a non-blank gift message is present.
func (d OrderData) HasGiftMessage() bool {
	return strings.TrimSpace(d.GiftMessage) != ""
}

// GrandTotal is subtotal + delivery fee + tax.
func (d OrderData) GrandTotal() string {
	return FormatCents(ParseCents(d.Subtotal) + ParseCents(d.DeliveryFee) + ParseCents(d.TotalTax))
}

var (
	occasionPropertyNames   = []string{"_occasion", "occasion", "order occasion"}
	occasionNoteKeys        = []string{"Occasion", "occasion", "Order Occasion", "_Occasion"}
	babyGenderPropertyNames = []string{"baby gender", "_baby gender", "baby_gender"}
	babyGenderNoteKeys      = []string{"Baby Gender", "baby gender", "_Baby Gender", "baby_gender"}
)

// Extract builds OrderData from a raw order. It never fails: missing data
// resolves to empty strings or documented defaults.
func Extract(order *shopify.Order) OrderData {
	if order == nil {
		order = &shopify.Order{}
	}
	notes := NotesFromOrder(order)
	return ExtractWithNotes(order, notes)
}

// ExtractWithNotes builds OrderData using an already merged and normalized
// note map.
func ExtractWithNotes(order *shopify.Order, notes Notes) OrderData {
	if order == nil {
		order = &shopify.Order{}
	}

	deliveryType := ClassifyDelivery(order, notes)
	shippingLine := order.PrimaryShippingLine()

	data := OrderData{
		OrderNumber:    order.DisplayName(),
		OrderDate:      OrderDate(order.CreatedAt),
		DeliveryType:   deliveryType,
		ShippingMethod: shippingLine.Title,
		IsPOS:          IsPOSSource(order.SourceName),
		TotalTax:       moneyOrZero(order.TotalTax.String()),
		DeliveryFee:    moneyOrZero(shippingLine.Price.String()),
		GiftMessage:    notes.Get(KeyGiftMessage),
	}

	data.DeliveryDate, data.DeliveryDayOfWeek = DeliveryDate(notes.Get(KeyDeliveryDate), notes.Get(KeyDeliveryDay))
	data.Recipient = resolveRecipient(order, deliveryType)
	data.Giver = resolveGiver(order, notes)

	data.GiftSender = firstNonBlank(notes.Get(KeyGiftSender), data.Giver.Name)
	data.GiftReceiver = firstNonBlank(notes.Get(KeyGiftReceiver), data.Recipient.Name)

	var subtotal int64
	for _, lineItem := range order.LineItems {
		if IsTipItem(lineItem.Title) {
			continue
		}
		item := toItem(lineItem)
		subtotal += ParseCents(item.UnitPrice) * int64(item.Quantity)
		data.Items = append(data.Items, item)

		if data.Occasion == "" {
			data.Occasion = propertyValue(lineItem.Properties, occasionPropertyNames)
		}
		if data.BabyGender == "" {
			data.BabyGender = propertyValue(lineItem.Properties, babyGenderPropertyNames)
		}
	}
	data.Subtotal = FormatCents(subtotal)

	if data.Occasion == "" {
		data.Occasion = noteValue(notes, occasionNoteKeys)
	}
	if data.BabyGender == "" {
		data.BabyGender = noteValue(notes, babyGenderNoteKeys)
	}

	data.SpecialInstructions = SpecialInstructions(order, notes)

	return data
}

func toItem(lineItem shopify.LineItem) Item {
	quantity := int(lineItem.Quantity)
	if quantity <= 0 {
		quantity = 1
	}
	return Item{
		Title:     lineItem.Title,
		Variant:   lineItem.VariantTitle,
		SKU:       lineItem.SKU,
		Quantity:  quantity,
		UnitPrice: FormatCents(ParseCents(lineItem.Price.String())),
	}
}

// addressSource picks the address the recipient is read from. In-store
// orders use the billing address only when it has a street line.
func addressSource(order *shopify.Order, deliveryType DeliveryType) shopify.Address {
	if deliveryType == DeliveryInStore {
		if order.BillingAddress != nil && strings.TrimSpace(order.BillingAddress.Address1) != "" {
			return *order.BillingAddress
		}
		return shopify.Address{}
	}
	if order.ShippingAddress != nil {
		return *order.ShippingAddress
	}
	return shopify.Address{}
}

func resolveRecipient(order *shopify.Order, deliveryType DeliveryType) Recipient {
	addr := addressSource(order, deliveryType)
	customer := shopify.Customer{}
	if order.Customer != nil {
		customer = *order.Customer
	}

	return Recipient{
		Name:     resolveName(addr, customer),
		Phone:    firstNonBlank(addr.Phone, customer.Phone),
		Address1: addr.Address1,
		Address2: addr.Address2,
		City:     addr.City,
		Province: addr.Province,
		Zip:      addr.Zip,
		Country:  addr.Country,
	}
}

func resolveName(addr shopify.Address, customer shopify.Customer) string {
	if name := strings.TrimSpace(addr.Name); name != "" {
		return name
	}
	if strings.TrimSpace(customer.FirstName) != "" && strings.TrimSpace(customer.LastName) != "" {
		return strings.TrimSpace(customer.FirstName) + " " + strings.TrimSpace(customer.LastName)
	}
	first := firstNonBlank(addr.FirstName, customer.FirstName)
	last := firstNonBlank(addr.LastName, customer.LastName)
	return strings.TrimSpace(first + " " + last)
}

func resolveGiver(order *shopify.Order, notes Notes) Giver {
	billing := shopify.Address{}
	if order.BillingAddress != nil {
		billing = *order.BillingAddress
	}
	customer := shopify.Customer{}
	if order.Customer != nil {
		customer = *order.Customer
	}

	return Giver{
		Name: firstNonBlank(
			notes.Get(KeyGiftSender),
			billing.Name,
			strings.TrimSpace(billing.FirstName+" "+billing.LastName),
		),
		Email: firstNonBlank(customer.Email, order.Email),
		Phone: firstNonBlank(billing.Phone, customer.Phone),
	}
}

func propertyValue(props []shopify.Attribute, names []string) string {
	for _, prop := range props {
		name := strings.TrimSpace(prop.Name)
		for _, candidate := range names {
			if !strings.EqualFold(name, candidate) {
				continue
			}
			if value := strings.TrimSpace(prop.Value.String()); value != "" {
				return value
			}
		}
	}
	return ""
}

func noteValue(notes Notes, keys []string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(notes.Get(key)); value != "" {
			return value
		}
	}
	return ""
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func moneyOrZero(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return zeroMoney
	}
	return value
}

// ParseCents parses a decimal amount into cents. Invalid input is zero.
func ParseCents(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Round(f * 100))
}

// FormatCents renders cents with two decimals.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + twoDigits(cents%100)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
