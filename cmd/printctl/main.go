package main

// printctl is the operator tool: it lists PrintNode printers and renders or
// prints a single order for testing a printer setup.

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/orderrelay/orderrelay/internal/logging"
	"github.com/orderrelay/orderrelay/internal/observability"
	"github.com/orderrelay/orderrelay/internal/orders"
	"github.com/orderrelay/orderrelay/internal/pdf"
	"github.com/orderrelay/orderrelay/internal/printnode"
	"github.com/orderrelay/orderrelay/internal/profile"
	"github.com/orderrelay/orderrelay/internal/render"
	"github.com/orderrelay/orderrelay/internal/services"
	"github.com/orderrelay/orderrelay/internal/shopify"
)

// cliConfig is the subset of the server environment printctl needs.
type cliConfig struct {
	ShopifyStoreURL            string        `env:"SHOPIFY_STORE_URL"`
	ShopifyAPIToken            string        `env:"SHOPIFY_API_TOKEN"`
	PrintNodeAPIKey            string        `env:"PRINTNODE_API_KEY"`
	PrintNodeInvoicePrinterID  int64         `env:"PRINTNODE_INVOICE_PRINTER_ID"`
	PrintNodeGiftCardPrinterID int64         `env:"PRINTNODE_GIFTCARD_PRINTER_ID"`
	ShopProfilePath            string        `env:"SHOP_PROFILE_PATH"`
	ChromePath                 string        `env:"CHROME_PATH"`
	PDFTimeout                 time.Duration `env:"PDF_TIMEOUT" envDefault:"30s"`
	LogLevel                   slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
}

const usage = `usage: printctl <command> [flags]

commands:
  printers   list PrintNode computers and printers
  render     render an order to HTML or PDF, optionally sending it to a printer
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "printctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	logger := logging.New(os.Stderr, logging.Options{Level: cfg.LogLevel})

	switch args[0] {
	case "printers":
		return listPrinters(ctx, cfg, out)
	case "render":
		return renderOrder(ctx, cfg, logger, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listPrinters(ctx context.Context, cfg cliConfig, out io.Writer) error {
	if strings.TrimSpace(cfg.PrintNodeAPIKey) == "" {
		return errors.New("PRINTNODE_API_KEY is required")
	}
	client := printnode.NewClient(cfg.PrintNodeAPIKey, observability.NewHTTPClient(30*time.Second))

	account, err := client.Whoami(ctx)
	if err != nil {
		return err
	}
	computers, err := client.Computers(ctx)
	if err != nil {
		return err
	}
	printers, err := client.Printers(ctx)
	if err != nil {
		return err
	}

	return writePrinters(out, account, computers, printers)
}

func writePrinters(out io.Writer, account *printnode.Account, computers []printnode.Computer, printers []printnode.Printer) error {
	fmt.Fprintf(out, "Account: %s (%s)\n\n", account.Email, account.State)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPUTER ID\tNAME\tSTATE")
	for _, c := range computers {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.State)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "PRINTER ID\tNAME\tCOMPUTER\tSTATE\tDEFAULT")
	for _, p := range printers {
		def := ""
		if p.Default {
			def = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Computer.Name, p.State, def)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nSet PRINTNODE_INVOICE_PRINTER_ID and PRINTNODE_GIFTCARD_PRINTER_ID to the ids above.")
	return nil
}

type renderFlags struct {
	orderID  string
	file     string
	document string
	output   string
	html     bool
	print    bool
}

func parseRenderFlags(args []string) (renderFlags, error) {
	var f renderFlags
	set := flag.NewFlagSet("render", flag.ContinueOnError)
	set.StringVar(&f.orderID, "order", "", "Shopify order id (default: most recent order)")
	set.StringVar(&f.file, "file", "", "read the order from a JSON file instead of Shopify")
	set.StringVar(&f.document, "doc", "invoice", "document to render: invoice or giftcard")
	set.StringVar(&f.output, "out", "", "output path (default: <doc>-<order>.pdf or .html)")
	set.BoolVar(&f.html, "html", false, "write HTML instead of PDF")
	set.BoolVar(&f.print, "print", false, "send the PDF to the configured printer")
	if err := set.Parse(args); err != nil {
		return f, err
	}
	if f.html && f.print {
		return f, errors.New("-html and -print cannot be combined")
	}
	return f, nil
}

func renderOrder(ctx context.Context, cfg cliConfig, logger *slog.Logger, args []string, out io.Writer) error {
	flags, err := parseRenderFlags(args)
	if err != nil {
		return err
	}
	doc, err := services.ParseDocument(flags.document)
	if err != nil {
		return err
	}

	order, err := loadOrder(ctx, cfg, logger, flags)
	if err != nil {
		return err
	}

	shop := profile.Default()
	if cfg.ShopProfilePath != "" {
		if shop, err = profile.Load(cfg.ShopProfilePath); err != nil {
			return err
		}
	}

	data := orders.Extract(order)
	html, size, err := renderDocument(data, doc, shop)
	if err != nil {
		return err
	}

	path := flags.output
	if path == "" {
		ext := ".pdf"
		if flags.html {
			ext = ".html"
		}
		path = fmt.Sprintf("%s-%s%s", doc, strings.TrimPrefix(data.OrderNumber, "#"), ext)
	}

	if flags.html {
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s (%s, %s)\n", path, data.OrderNumber, data.DeliveryType)
		return nil
	}

	converter := pdf.NewChromeConverter(pdf.ChromeOptions{
		ExecPath: cfg.ChromePath,
		Timeout:  cfg.PDFTimeout,
		Logger:   logger,
	})
	defer converter.Close()

	content, err := converter.Render(ctx, html, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s (%s, %s, %d bytes)\n", path, data.OrderNumber, data.DeliveryType, len(content))

	if !flags.print {
		return nil
	}

	printerID := cfg.PrintNodeInvoicePrinterID
	if doc == services.DocumentGiftCard {
		printerID = cfg.PrintNodeGiftCardPrinterID
	}
	if printerID == 0 || cfg.PrintNodeAPIKey == "" {
		return fmt.Errorf("no PrintNode printer configured for %s", doc)
	}
	client := printnode.NewClient(cfg.PrintNodeAPIKey, observability.NewHTTPClient(30*time.Second))
	jobID, err := client.SubmitJob(ctx, printnode.Job{
		PrinterID: printerID,
		Title:     fmt.Sprintf("Test %s %s", doc, data.OrderNumber),
		PDF:       content,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Submitted print job %d to printer %d\n", jobID, printerID)
	return nil
}

func loadOrder(ctx context.Context, cfg cliConfig, logger *slog.Logger, flags renderFlags) (*shopify.Order, error) {
	if flags.file != "" {
		raw, err := os.ReadFile(filepath.Clean(flags.file))
		if err != nil {
			return nil, err
		}
		return decodeOrderFile(raw)
	}

	if cfg.ShopifyStoreURL == "" || cfg.ShopifyAPIToken == "" {
		return nil, errors.New("SHOPIFY_STORE_URL and SHOPIFY_API_TOKEN are required without -file")
	}
	client := shopify.NewClient(cfg.ShopifyStoreURL, cfg.ShopifyAPIToken, observability.NewHTTPClient(30*time.Second), logger)

	if flags.orderID != "" {
		return client.FetchOrder(ctx, flags.orderID)
	}
	list, err := client.RecentOrders(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.New("no orders found")
	}
	return &list[0], nil
}

// decodeOrderFile accepts a bare order or a webhook-style {"order": {...}}.
func decodeOrderFile(raw []byte) (*shopify.Order, error) {
	var wrapped struct {
		Order *shopify.Order `json:"order"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Order != nil {
		return wrapped.Order, nil
	}
	var order shopify.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order file: %w", err)
	}
	return &order, nil
}

func renderDocument(data orders.OrderData, doc services.Document, shop *profile.Shop) (string, pdf.PageSize, error) {
	if doc == services.DocumentGiftCard {
		html, err := render.GiftCard(data, render.GiftCardStyle{})
		return html, pdf.GiftCard, err
	}
	html, err := render.Invoice(data, render.InvoiceOptions{Shop: shop, PrintedAt: time.Now()})
	return html, pdf.Letter, err
}
