package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

var ErrConverterClosed = errors.New("pdf converter is closed")

type ChromeOptions struct {
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// ChromeConverter renders through one headless Chrome process, opening a new
// tab per document. The browser starts on first use.
type ChromeConverter struct {
	opts ChromeOptions

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closed        bool
}

func NewChromeConverter(opts ChromeOptions) *ChromeConverter {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRenderTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ChromeConverter{opts: opts}
}

func (c *ChromeConverter) browser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConverterClosed
	}
	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.NoSandbox, chromedp.DisableGPU)
	if c.opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	c.browserCtx = browserCtx
	c.cancelBrowser = cancelBrowser
	c.cancelAlloc = cancelAlloc
	c.opts.Logger.Info("headless chrome started")
	return browserCtx, nil
}

func (c *ChromeConverter) Render(ctx context.Context, html string, size PageSize) ([]byte, error) {
	if err := size.Validate(); err != nil {
		return nil, err
	}
	browserCtx, err := c.browser()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.opts.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var out []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPaperWidth(size.Width).
				WithPaperHeight(size.Height).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("pdf render canceled: %w", ctxErr)
		}
		return nil, fmt.Errorf("pdf render failed: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("pdf render returned no data")
	}
	return out, nil
}

// Close stops the browser. Subsequent renders fail with ErrConverterClosed.
func (c *ChromeConverter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.cancelBrowser != nil {
		c.cancelBrowser()
		c.cancelAlloc()
		c.browserCtx = nil
		c.cancelBrowser = nil
		c.cancelAlloc = nil
	}
	return nil
}
