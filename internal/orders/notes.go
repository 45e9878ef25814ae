package orders

import (
	"strings"
	"unicode"

	"github.com/orderrelay/orderrelay/internal/shopify"
)

// Canonical note keys.
const (
	KeyGiftMessage          = "Gift Message"
	KeyGiftSender           = "Gift Sender"
	KeyGiftReceiver         = "Gift Receiver"
	KeyGiftWrap             = "Gift Wrap"
	KeyDeliveryMethod       = "Delivery Method"
	KeyDeliveryDate         = "Delivery Date"
	KeyDeliveryDay          = "Delivery Day"
	KeySpecialInstructions  = "Special Instructions"
	KeyDeliveryInstructions = "Delivery Instructions"
)

// Notes is an insertion-ordered name/value map built from an order's
// attributes. The zero value is an empty, usable map.
type Notes struct {
	keys   []string
	values map[string]string
}

// Get returns the value for key, or "" when absent.
func (n Notes) Get(key string) string {
	return n.values[key]
}

// Has reports whether key is present, even with a blank value.
func (n Notes) Has(key string) bool {
	_, ok := n.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (n Notes) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

func (n Notes) Len() int {
	return len(n.keys)
}

func (n Notes) clone() Notes {
	out := Notes{
		keys:   make([]string, len(n.keys)),
		values: make(map[string]string, len(n.values)),
	}
	copy(out.keys, n.keys)
	for k, v := range n.values {
		out.values[k] = v
	}
	return out
}

func (n *Notes) set(key, value string) {
	if n.values == nil {
		n.values = map[string]string{}
	}
	if _, exists := n.values[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

// fill sets key only when it is absent or empty.
func (n *Notes) fill(key, value string) {
	if key == "" || n.values[key] != "" {
		return
	}
	n.set(key, value)
}

// NewNotes builds Notes from alternating key/value pairs. Intended for tests
// and manual construction; a trailing odd key is ignored.
func NewNotes(pairs ...string) Notes {
	var n Notes
	for i := 0; i+1 < len(pairs); i += 2 {
		n.set(pairs[i], pairs[i+1])
	}
	return n
}

// MergeNotes folds attribute sources into one mapping. Sources are listed
// from highest to lowest precedence: a key already holding a non-empty value
// is never replaced by a later source.
func MergeNotes(sources ...[]shopify.Attribute) Notes {
	var merged Notes
	for _, source := range sources {
		for _, attr := range source {
			merged.fill(attr.Name, attr.Value.String())
		}
	}
	return merged
}

// NotesFromOrder merges an order's attribute sources with the precedence
// note attributes > cart attributes > gift line item properties, then
// normalizes the gift fields.
func NotesFromOrder(order *shopify.Order) Notes {
	if order == nil {
		return NormalizeGiftFields(Notes{})
	}
	merged := MergeNotes(
		order.NoteAttributes,
		order.CartAttributes,
		giftProperties(order.LineItems),
	)
	return NormalizeGiftFields(merged)
}

func giftProperties(items []shopify.LineItem) []shopify.Attribute {
	var out []shopify.Attribute
	for _, item := range items {
		for _, prop := range item.Properties {
			if IsGiftPropertyName(prop.Name) {
				out = append(out, prop)
			}
		}
	}
	return out
}

type giftField struct {
	key       string
	aliases   []string
	normalize func(string) string
}

// giftFields lists, per canonical key, the folded aliases tried in order when
// the canonical key is missing or blank.
var giftFields = []giftField{
	{key: KeyGiftMessage, aliases: []string{"giftmessage", "giftmessagetext"}},
	{key: KeyGiftSender, aliases: []string{"giftsender", "giftmessagefrom", "giftfrom"}},
	{key: KeyGiftReceiver, aliases: []string{"giftreceiver", "giftmessageto", "giftto"}},
	{key: KeyGiftWrap, aliases: []string{"giftwrap", "giftmessageisgift", "isgift"}, normalize: normalizeTruthy},
}

var truthyValues = map[string]struct{}{
	"true": {},
	"1":    {},
	"yes":  {},
	"Yes":  {},
}

func normalizeTruthy(value string) string {
	if _, ok := truthyValues[value]; ok {
		return "true"
	}
	return value
}

// NormalizeGiftFields returns a copy of notes in which every canonical gift
// key is present. Blank canonical values are resolved through the alias
// table; unresolved fields become "".
func NormalizeGiftFields(notes Notes) Notes {
	out := notes.clone()
	index := foldedIndex(notes)

	for _, field := range giftFields {
		if strings.TrimSpace(out.Get(field.key)) != "" {
			continue
		}
		value := ""
		for _, alias := range field.aliases {
			if v := index[alias]; v != "" {
				value = v
				break
			}
		}
		if field.normalize != nil {
			value = field.normalize(value)
		}
		out.set(field.key, value)
	}

	return out
}

// foldedIndex maps folded keys to the first non-empty value seen for them.
func foldedIndex(notes Notes) map[string]string {
	index := make(map[string]string, notes.Len())
	for _, key := range notes.keys {
		folded := FoldKey(key)
		if index[folded] == "" {
			index[folded] = notes.values[key]
		}
	}
	return index
}

// FoldKey lower-cases key and strips whitespace, underscores and hyphens.
func FoldKey(key string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			return -1
		}
		return unicode.ToLower(r)
	}, key)
}
