package orders

import (
	"strings"

	"github.com/orderrelay/orderrelay/internal/shopify"
)

type DeliveryType string

const (
	DeliveryShipping      DeliveryType = "shipping"
	DeliveryLocalDelivery DeliveryType = "local-delivery"
	DeliveryPickup        DeliveryType = "pickup"
	DeliveryInStore       DeliveryType = "in-store"
)

func (d DeliveryType) Valid() bool {
	switch d {
	case DeliveryShipping, DeliveryLocalDelivery, DeliveryPickup, DeliveryInStore:
		return true
	default:
		return false
	}
}

func (d DeliveryType) String() string {
	return string(d)
}

// Term tables. Matching is case-insensitive substring containment.
var (
	posSourceNames     = []string{"pos", "shopify_pos"}
	localDeliveryTerms = []string{"local", "delivery"}
	pickupTerms        = []string{"pickup", "pick up"}
	deliveryTerms      = []string{"delivery"}
	tipTerms           = []string{"tip"}
	giftPropertyTerms  = []string{"gift"}
	instructionTerms   = []string{"special", "instruction", "note"}
	catchAllNoteTerms  = []string{"instruction"}
)

func containsAny(value string, terms []string) bool {
	lower := strings.ToLower(value)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// IsPOSSource reports whether source_name marks a point-of-sale order.
func IsPOSSource(sourceName string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sourceName))
	for _, name := range posSourceNames {
		if normalized == name {
			return true
		}
	}
	return false
}

// IsTipItem reports whether a line item title names a tip.
func IsTipItem(title string) bool {
	return containsAny(title, tipTerms)
}

// IsGiftPropertyName reports whether a line item property carries gift data.
func IsGiftPropertyName(name string) bool {
	return containsAny(name, giftPropertyTerms)
}

// IsInstructionProperty reports whether a line item property holds
// instructions for staff.
func IsInstructionProperty(name string) bool {
	return containsAny(name, instructionTerms)
}

func isInstructionNoteKey(key string) bool {
	return containsAny(key, catchAllNoteTerms)
}

// ClassifyShippingLine applies the shipping line heuristic alone.
func ClassifyShippingLine(title string) DeliveryType {
	switch {
	case containsAny(title, localDeliveryTerms):
		return DeliveryLocalDelivery
	case containsAny(title, pickupTerms):
		return DeliveryPickup
	default:
		return DeliveryShipping
	}
}

// applyDeliveryMethod lets a Delivery Method note override the heuristic.
func applyDeliveryMethod(current DeliveryType, method string) DeliveryType {
	switch {
	case method == "":
		return current
	case containsAny(method, pickupTerms):
		return DeliveryPickup
	case containsAny(method, deliveryTerms):
		return DeliveryLocalDelivery
	default:
		return current
	}
}

// ClassifyDelivery returns the delivery type for an order. Point-of-sale
// orders are always in-store; otherwise the shipping line heuristic runs and
// the Delivery Method note may override it.
func ClassifyDelivery(order *shopify.Order, notes Notes) DeliveryType {
	if order == nil {
		return DeliveryShipping
	}
	if IsPOSSource(order.SourceName) {
		// Delivery Method notes are not consulted for POS orders.
		return DeliveryInStore
	}
	classified := ClassifyShippingLine(order.PrimaryShippingLine().Title)
	return applyDeliveryMethod(classified, notes.Get(KeyDeliveryMethod))
}
