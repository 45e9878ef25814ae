// Package pdf converts rendered HTML documents to PDF bytes.
package pdf

import (
	"context"
	"fmt"
)

// PageSize is a physical page size in inches.
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	Letter   = PageSize{Name: "letter", Width: 8.5, Height: 11}
	GiftCard = PageSize{Name: "giftcard", Width: 4.2, Height: 8.5}
)

func (p PageSize) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid page size %q: %vx%v", p.Name, p.Width, p.Height)
	}
	return nil
}

// Converter renders an HTML document to a PDF of the given page size with
// zero margins.
type Converter interface {
	Render(ctx context.Context, html string, size PageSize) ([]byte, error)
}
