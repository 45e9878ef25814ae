package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/orderrelay/orderrelay/internal/orders"
)

type giftCardView struct {
	ReceiverName string
	AddressLine1 string
	AddressLine2 string
	MessageLines []string
	Sender       string
	CSS          template.CSS
}

// GiftCard renders the 4.2x8.5in fold-over gift card. Style fields left at
// their zero value fall back to the defaults and the message-length scale.
func GiftCard(data orders.OrderData, style GiftCardStyle) (string, error) {
	message := TruncateMessage(strings.ReplaceAll(data.GiftMessage, "\r\n", "\n"))

	view := giftCardView{
		ReceiverName: firstNonBlank(data.GiftReceiver, data.Recipient.Name),
		AddressLine1: joinNonEmpty(", ", data.Recipient.Address1, data.Recipient.Address2),
		Sender:       strings.TrimSpace(data.GiftSender),
		CSS:          giftCardCSS(style, len([]rune(message))),
	}
	if data.Recipient.City != "" {
		view.AddressLine2 = data.Recipient.City + ", " + data.Recipient.Province + " " + data.Recipient.Zip
	}
	if message != "" {
		view.MessageLines = strings.Split(message, "\n")
	}

	var buf bytes.Buffer
	if err := giftCardTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render gift card: %w", err)
	}
	return buf.String(), nil
}

// giftCardCSS builds the style-dependent rules. Every value is either numeric
// or passed through a character allow-list before being marked safe.
func giftCardCSS(style GiftCardStyle, messageLength int) template.CSS {
	scale := ScaleForLength(messageLength)

	family := sanitizeCSS(style.FontFamily, isFontFamilyRune)
	if family == "" {
		family = DefaultGiftCardFont
	}
	weight := sanitizeCSS(style.FontWeight, isKeywordRune)
	if weight == "" {
		weight = DefaultGiftCardFontWeight
	}
	fontStyle := sanitizeCSS(style.FontStyle, isKeywordRune)
	if fontStyle == "" {
		fontStyle = DefaultGiftCardFontStyle
	}
	size := scale.FontSize
	if style.FontSize > 0 {
		size = style.FontSize
	}
	nameTop := DefaultNameTop
	if style.NameTop > 0 {
		nameTop = style.NameTop
	}
	messageTop := DefaultMessageTop
	if style.MessageTop > 0 {
		messageTop = style.MessageTop
	}

	var b strings.Builder
	fmt.Fprintf(&b, "body { font-family: %s; }\n", family)
	fmt.Fprintf(&b, ".top-section { top: %s; }\n", nameTop)
	fmt.Fprintf(&b, ".message-section { top: %s; }\n", messageTop)
	fmt.Fprintf(&b, ".recipient-name, .recipient-address, .gift-message, .gift-sender { font-weight: %s; font-style: %s; }\n", weight, fontStyle)
	fmt.Fprintf(&b, ".gift-message { font-size: %spt; line-height: %s; }\n", formatNumber(size), formatNumber(scale.LineHeight))
	return template.CSS(b.String())
}

func sanitizeCSS(value string, allowed func(rune) bool) string {
	value = strings.TrimSpace(value)
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, value))
}

func isKeywordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
}

func isFontFamilyRune(r rune) bool {
	return isKeywordRune(r) || r == ' ' || r == ',' || r == '\'' || r == '"' || r == '.'
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

var giftCardTemplate = template.Must(template.New("giftcard").Parse(giftCardHTML))

const giftCardHTML = `<!DOCTYPE html>
<html dir="ltr">
<head>
<meta charset="UTF-8">
<title>Gift Card</title>
<style>
@page { size: 4.2in 8.5in; margin: 0; }
* { margin: 0; padding: 0; box-sizing: border-box; }
html, body { width: 4.2in; height: 8.5in; overflow: hidden; background: #fff; color: #000; }
.card { position: relative; width: 4.2in; height: 8.5in; overflow: hidden; }
.top-section { position: absolute; left: 0; right: 0; padding: 0 0.3in; text-align: center; overflow: hidden; max-height: 4in; }
.recipient-name { font-size: 14pt; margin-bottom: 16px; overflow: hidden; }
.recipient-address { font-size: 12pt; line-height: 1.4; overflow: hidden; }
.message-section { position: absolute; left: 0; right: 0; bottom: 0.3in; padding: 0 0.4in; text-align: center; overflow: hidden; }
.gift-message { overflow: hidden; overflow-wrap: break-word; }
.gift-sender { margin-top: 16px; font-size: 12pt; overflow: hidden; }
{{.CSS}}
</style>
</head>
<body>
<div class="card">
<div class="top-section">
<div class="recipient-name">{{.ReceiverName}}</div>
<div class="recipient-address">{{.AddressLine1}}{{with .AddressLine2}}<br>{{.}}{{end}}</div>
</div>
<div class="message-section">
<div class="gift-message">{{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
{{- with .Sender}}
<div class="gift-sender">{{.}}</div>
{{- end}}
</div>
</div>
</body>
</html>
`
