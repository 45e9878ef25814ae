package orders

import (
	"strings"
	"time"
)

const (
	// DateTBD is shown when an order has no delivery date.
	DateTBD = "TBD"

	orderDateLayout    = "Jan 2, 2006"
	deliveryDateLayout = "Jan 2, 2006"
)

// deliveryDateLayouts are tried in order. Parsed values keep their calendar
// date; no timezone conversion happens.
var deliveryDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
}

func parseDeliveryDate(raw string) (time.Time, bool) {
	for _, layout := range deliveryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DeliveryDate formats a Delivery Date note value. A parsable date becomes
// "JAN 2, 2006" with an upper-cased day of week (explicitDay wins over the
// derived one). Unparsable input passes through with explicitDay as given.
// Blank input yields "TBD".
func DeliveryDate(raw, explicitDay string) (date, dayOfWeek string) {
	raw = strings.TrimSpace(raw)
	explicitDay = strings.TrimSpace(explicitDay)
	if raw == "" {
		return DateTBD, explicitDay
	}

	parsed, ok := parseDeliveryDate(raw)
	if !ok {
		return raw, explicitDay
	}

	day := explicitDay
	if day == "" {
		day = parsed.Weekday().String()
	}
	return strings.ToUpper(parsed.Format(deliveryDateLayout)), strings.ToUpper(day)
}

// OrderDate formats an order's created_at timestamp for display.
func OrderDate(createdAt string) string {
	createdAt = strings.TrimSpace(createdAt)
	if createdAt == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}
	return t.Format(orderDateLayout)
}
