package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const pixelsPerInch = 96

// Length is a physical length in inches.
type Length float64

// Pixels converts a CSS pixel count to a Length.
func Pixels(px float64) Length {
	return Length(px / pixelsPerInch)
}

func (l Length) Inches() float64 {
	return float64(l)
}

func (l Length) Pixels() float64 {
	return float64(l) * pixelsPerInch
}

// String renders the length as a CSS value in inches, e.g. "0.5in".
func (l Length) String() string {
	return formatNumber(float64(l)) + "in"
}

// ParseLength accepts "1.5in", "120px" or a bare number of inches.
func ParseLength(value string) (Length, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, fmt.Errorf("empty length")
	}

	unit := "in"
	number := value
	switch {
	case strings.HasSuffix(value, "px"):
		unit = "px"
		number = strings.TrimSuffix(value, "px")
	case strings.HasSuffix(value, "in"):
		number = strings.TrimSuffix(value, "in")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(number), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid length %q", value)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative length %q", value)
	}
	if unit == "px" {
		return Pixels(f), nil
	}
	return Length(f), nil
}

// GiftCardStyle overrides the gift card typography and block positions.
// Zero-valued fields use the computed defaults.
type GiftCardStyle struct {
	FontFamily string
	// FontSize is in points.
	FontSize   float64
	FontWeight string
	FontStyle  string
	NameTop    Length
	MessageTop Length
}

// Gift card defaults.
const (
	DefaultGiftCardFont       = "Arial, sans-serif"
	DefaultGiftCardFontWeight = "bold"
	DefaultGiftCardFontStyle  = "normal"
	DefaultNameTop            = Length(0.5)
	DefaultMessageTop         = Length(4.8)

	// MaxGiftMessageLength is the number of characters printed on a card.
	MaxGiftMessageLength = 300
)

// IsZero reports whether no override is set.
func (s GiftCardStyle) IsZero() bool {
	return s == GiftCardStyle{}
}

// MessageScale is the font size (pt) and line height used for a message.
type MessageScale struct {
	FontSize   float64
	LineHeight float64
}

// messageScales is ordered by MaxLength; the last entry catches the rest.
var messageScales = []struct {
	MaxLength int
	Scale     MessageScale
}{
	{MaxLength: 100, Scale: MessageScale{FontSize: 10.2, LineHeight: 1.5}},
	{MaxLength: 150, Scale: MessageScale{FontSize: 9.5, LineHeight: 1.45}},
	{MaxLength: 200, Scale: MessageScale{FontSize: 9, LineHeight: 1.4}},
	{MaxLength: 250, Scale: MessageScale{FontSize: 8.5, LineHeight: 1.35}},
	{MaxLength: math.MaxInt, Scale: MessageScale{FontSize: 8, LineHeight: 1.3}},
}

// ScaleForLength returns the message scale for a message of n characters.
func ScaleForLength(n int) MessageScale {
	for _, step := range messageScales {
		if n <= step.MaxLength {
			return step.Scale
		}
	}
	return messageScales[len(messageScales)-1].Scale
}

// TruncateMessage cuts message to MaxGiftMessageLength characters.
func TruncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= MaxGiftMessageLength {
		return message
	}
	return string(runes[:MaxGiftMessageLength])
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
