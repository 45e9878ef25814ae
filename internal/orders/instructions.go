package orders

import (
	"strings"

	"github.com/orderrelay/orderrelay/internal/shopify"
)

const deliveryInstructionPrefix = "DELIVERY: "

var (
	specialInstructionKeys  = []string{"Special Instructions", "special instructions"}
	deliveryInstructionKeys = []string{"Delivery Instructions", "Delivery instructions", "delivery instructions", "DeliveryInstructions"}
)

// instructionSet keeps instruction strings in first-seen order and drops any
// candidate already contained in a retained string.
type instructionSet struct {
	parts []string
}

func (s *instructionSet) add(text string) {
	s.addLabeled("", text)
}

// addLabeled dedups on the bare text so a label never lets a repeat through.
func (s *instructionSet) addLabeled(label, text string) {
	text = strings.TrimSpace(text)
	if text == "" || s.contains(text) {
		return
	}
	s.parts = append(s.parts, label+text)
}

func (s *instructionSet) contains(text string) bool {
	for _, part := range s.parts {
		if strings.Contains(part, text) {
			return true
		}
	}
	return false
}

func (s *instructionSet) String() string {
	return strings.Join(s.parts, "\n\n")
}

// SpecialInstructions gathers instruction text from the order note, the
// instruction note keys, any other note key naming instructions, and
// instruction-like line item properties. Tip items are not consulted.
func SpecialInstructions(order *shopify.Order, notes Notes) string {
	var set instructionSet
	if order == nil {
		return ""
	}

	set.add(order.Note)

	for _, key := range specialInstructionKeys {
		set.add(notes.Get(key))
	}
	for _, key := range deliveryInstructionKeys {
		set.addLabeled(deliveryInstructionPrefix, notes.Get(key))
	}

	seen := make(map[string]struct{}, len(specialInstructionKeys)+len(deliveryInstructionKeys))
	for _, key := range specialInstructionKeys {
		seen[key] = struct{}{}
	}
	for _, key := range deliveryInstructionKeys {
		seen[key] = struct{}{}
	}
	for _, key := range notes.Keys() {
		if _, ok := seen[key]; ok || !isInstructionNoteKey(key) {
			continue
		}
		set.add(notes.Get(key))
	}

	for _, item := range order.LineItems {
		if IsTipItem(item.Title) {
			continue
		}
		for _, prop := range item.Properties {
			if IsInstructionProperty(prop.Name) {
				set.add(prop.Value.String())
			}
		}
	}

	return set.String()
}
