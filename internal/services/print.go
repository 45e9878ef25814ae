package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/orderrelay/orderrelay/internal/logging"
	"github.com/orderrelay/orderrelay/internal/notify"
	"github.com/orderrelay/orderrelay/internal/observability"
	"github.com/orderrelay/orderrelay/internal/orders"
	"github.com/orderrelay/orderrelay/internal/pdf"
	"github.com/orderrelay/orderrelay/internal/printnode"
	"github.com/orderrelay/orderrelay/internal/profile"
	"github.com/orderrelay/orderrelay/internal/recent"
	"github.com/orderrelay/orderrelay/internal/render"
	"github.com/orderrelay/orderrelay/internal/shopify"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrUnknownDocument    = errors.New("unknown document")
	ErrPrinterUnavailable = errors.New("printer not configured")
)

const (
	DefaultRecentPrintCount = 5
	MaxRecentPrintCount     = 50
)

// Document names a printable artifact.
type Document string

const (
	DocumentInvoice  Document = "invoice"
	DocumentGiftCard Document = "giftcard"
)

func ParseDocument(value string) (Document, error) {
	switch Document(strings.ToLower(strings.TrimSpace(value))) {
	case DocumentInvoice, "":
		return DocumentInvoice, nil
	case DocumentGiftCard, "gift-card", "gift_card":
		return DocumentGiftCard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDocument, value)
	}
}

type OrderSource interface {
	FetchOrder(ctx context.Context, orderID string) (*shopify.Order, error)
	SearchOrders(ctx context.Context, query string) ([]shopify.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]shopify.Order, error)
}

type JobSubmitter interface {
	SubmitJob(ctx context.Context, job printnode.Job) (int64, error)
}

// Printers holds PrintNode printer ids. Zero means not configured.
type Printers struct {
	Invoice  int64
	GiftCard int64
}

func (p Printers) For(doc Document) int64 {
	if doc == DocumentGiftCard {
		return p.GiftCard
	}
	return p.Invoice
}

type PrintService struct {
	source    OrderSource
	converter pdf.Converter
	submitter JobSubmitter
	recent    *recent.Buffer
	printers  Printers
	shop      *profile.Shop
	notifier  notify.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewPrintService(source OrderSource, converter pdf.Converter, submitter JobSubmitter, buffer *recent.Buffer, printers Printers, shop *profile.Shop, notifier notify.Notifier, logger *slog.Logger) *PrintService {
	if shop == nil {
		shop = profile.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PrintService{
		source:    source,
		converter: converter,
		submitter: submitter,
		recent:    buffer,
		printers:  printers,
		shop:      shop,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PrintService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// PrinterConfigured reports whether the invoice printer is set.
func (s *PrintService) PrinterConfigured() bool {
	return s.printers.Invoice != 0
}

// JobResult is the outcome of one document.
type JobResult struct {
	Document  Document `json:"document"`
	PrinterID int64    `json:"printerId,omitempty"`
	JobID     int64    `json:"jobId,omitempty"`
	Skipped   bool     `json:"skipped,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type PrintResult struct {
	OrderID      string              `json:"orderId"`
	OrderNumber  string              `json:"orderNumber"`
	DeliveryType orders.DeliveryType `json:"deliveryType"`
	Jobs         []JobResult         `json:"jobs"`
	Error        string              `json:"error,omitempty"`
}

// PrintOptions selects what PrintOrder sends. With no documents listed the
// invoice is printed, plus the gift card when a message exists.
type PrintOptions struct {
	Documents []Document
	Overrides Overrides
}

// PrintOrder renders and submits the documents for one order. Documents
// whose printer is not configured are skipped. The first failure stops the
// run and is returned alongside the partial result.
func (s *PrintService) PrintOrder(ctx context.Context, order *shopify.Order, opts PrintOptions) (*PrintResult, error) {
	span := sentry.StartSpan(
		ctx,
		"service.print.print_order",
		sentry.WithOpName("service.print"),
		sentry.WithDescription("PrintOrder"),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	defer span.Finish()
	ctx = span.Context()

	if order == nil {
		return nil, ErrOrderNotFound
	}

	logger := s.loggerFromContext(ctx).With("order_id", order.IDString(), "order_name", order.DisplayName())
	meter := observability.MeterFromContext(ctx)

	data := opts.Overrides.Apply(orders.Extract(order))
	result := &PrintResult{
		OrderID:      order.IDString(),
		OrderNumber:  data.OrderNumber,
		DeliveryType: data.DeliveryType,
	}

	documents := opts.Documents
	if len(documents) == 0 {
		documents = []Document{DocumentInvoice}
		if data.HasGiftMessage() {
			documents = append(documents, DocumentGiftCard)
		}
	}

	for _, doc := range documents {
		printerID := s.printers.For(doc)
		if printerID == 0 {
			logger.Warn("printer not configured, skipping document", "document", doc)
			result.Jobs = append(result.Jobs, JobResult{Document: doc, Skipped: true})
			continue
		}

		jobID, err := s.printDocument(ctx, data, doc, opts.Overrides.Style, printerID)
		if err != nil {
			meter.Count("print.job.failed", 1, sentry.WithAttributes(
				attribute.String("document", string(doc)),
			))
			logger.Error("failed to print document", "document", doc, "error", err)
			result.Jobs = append(result.Jobs, JobResult{Document: doc, PrinterID: printerID, Error: err.Error()})
			result.Error = err.Error()
			return result, fmt.Errorf("print %s for order %s: %w", doc, data.OrderNumber, err)
		}

		meter.Count("print.job.submitted", 1, sentry.WithAttributes(
			attribute.String("document", string(doc)),
			attribute.String("delivery_type", string(data.DeliveryType)),
		))
		logger.Info("print job submitted", "document", doc, "printer_id", printerID, "job_id", jobID)
		result.Jobs = append(result.Jobs, JobResult{Document: doc, PrinterID: printerID, JobID: jobID})
	}

	return result, nil
}

func (s *PrintService) printDocument(ctx context.Context, data orders.OrderData, doc Document, style render.GiftCardStyle, printerID int64) (int64, error) {
	if s.converter == nil || s.submitter == nil {
		return 0, ErrPrinterUnavailable
	}

	html, size, err := s.render(data, doc, style)
	if err != nil {
		return 0, err
	}

	content, err := s.converter.Render(ctx, html, size)
	if err != nil {
		return 0, fmt.Errorf("convert %s to pdf: %w", doc, err)
	}

	jobID, err := s.submitter.SubmitJob(ctx, printnode.Job{
		PrinterID: printerID,
		Title:     jobTitle(doc, data.OrderNumber),
		PDF:       content,
	})
	if err != nil {
		return 0, fmt.Errorf("submit %s: %w", doc, err)
	}
	return jobID, nil
}

func (s *PrintService) render(data orders.OrderData, doc Document, style render.GiftCardStyle) (string, pdf.PageSize, error) {
	switch doc {
	case DocumentInvoice:
		html, err := render.Invoice(data, render.InvoiceOptions{Shop: s.shop, PrintedAt: s.now()})
		return html, pdf.Letter, err
	case DocumentGiftCard:
		html, err := render.GiftCard(data, style)
		return html, pdf.GiftCard, err
	default:
		return "", pdf.PageSize{}, fmt.Errorf("%w: %q", ErrUnknownDocument, doc)
	}
}

func jobTitle(doc Document, orderNumber string) string {
	if doc == DocumentGiftCard {
		return "Gift Card " + orderNumber
	}
	return "Invoice " + orderNumber
}

// Order returns an order from the recent buffer, fetching it upstream on a
// miss.
func (s *PrintService) Order(ctx context.Context, orderID string) (*shopify.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	if s.recent != nil {
		if order, ok := s.recent.Get(orderID); ok {
			return &order, nil
		}
	}
	return s.fetch(ctx, orderID)
}

func (s *PrintService) fetch(ctx context.Context, orderID string) (*shopify.Order, error) {
	if s.source == nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.source.FetchOrder(ctx, orderID)
	if errors.Is(err, shopify.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	s.remember(*order)
	return order, nil
}

// Remember adds order to the recent buffer.
func (s *PrintService) Remember(order shopify.Order) {
	s.remember(order)
}

func (s *PrintService) remember(order shopify.Order) {
	if s.recent != nil {
		s.recent.Remember(order)
	}
}

// PrintOrderByID fetches a fresh copy of the order and prints it.
func (s *PrintService) PrintOrderByID(ctx context.Context, orderID string) (*PrintResult, error) {
	order, err := s.fetch(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return nil, err
	}
	return s.PrintOrder(ctx, order, PrintOptions{})
}

// PrintRecent prints the latest count orders one after another. A failure
// on one order is recorded in its result and does not stop the rest.
func (s *PrintService) PrintRecent(ctx context.Context, count int) ([]PrintResult, error) {
	if count <= 0 {
		count = DefaultRecentPrintCount
	}
	if count > MaxRecentPrintCount {
		count = MaxRecentPrintCount
	}
	if s.source == nil {
		return nil, ErrOrderNotFound
	}

	list, err := s.source.RecentOrders(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}

	results := make([]PrintResult, 0, len(list))
	for i := range list {
		order := list[i]
		s.remember(order)
		result, err := s.PrintOrder(ctx, &order, PrintOptions{})
		if result == nil {
			result = &PrintResult{OrderID: order.IDString(), OrderNumber: order.DisplayName()}
		}
		if err != nil && result.Error == "" {
			result.Error = err.Error()
		}
		results = append(results, *result)
	}
	return results, nil
}

// Search looks orders up upstream and remembers the matches.
func (s *PrintService) Search(ctx context.Context, query string) ([]shopify.Order, error) {
	if s.source == nil {
		return nil, ErrOrderNotFound
	}
	list, err := s.source.SearchOrders(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	for _, order := range list {
		s.remember(order)
	}
	return list, nil
}

// Recent lists orders for the dashboard, preferring the in-memory buffer and
// falling back to the upstream list when it is empty.
func (s *PrintService) Recent(ctx context.Context, limit int) ([]shopify.Order, error) {
	if s.recent != nil && s.recent.Len() > 0 {
		return s.recent.List(limit), nil
	}
	if s.source == nil {
		return []shopify.Order{}, nil
	}
	list, err := s.source.RecentOrders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	for _, order := range list {
		s.remember(order)
	}
	return list, nil
}

// OrderData extracts an order and applies overrides.
func (s *PrintService) OrderData(ctx context.Context, orderID string, overrides Overrides) (*shopify.Order, orders.OrderData, error) {
	order, err := s.Order(ctx, orderID)
	if err != nil {
		return nil, orders.OrderData{}, err
	}
	return order, overrides.Apply(orders.Extract(order)), nil
}

// Preview renders a document as HTML without printing it.
func (s *PrintService) Preview(ctx context.Context, orderID string, doc Document, overrides Overrides) (string, error) {
	_, data, err := s.OrderData(ctx, orderID, overrides)
	if err != nil {
		return "", err
	}
	html, _, err := s.render(data, doc, overrides.Style)
	return html, err
}

// Reprint prints a single document with overrides applied.
func (s *PrintService) Reprint(ctx context.Context, orderID string, doc Document, overrides Overrides) (*PrintResult, error) {
	order, err := s.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if doc != DocumentInvoice && doc != DocumentGiftCard {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocument, doc)
	}
	return s.PrintOrder(ctx, order, PrintOptions{Documents: []Document{doc}, Overrides: overrides})
}

// HandleWebhookOrder prints an order delivered by webhook and alerts staff
// when it fails.
func (s *PrintService) HandleWebhookOrder(ctx context.Context, order *shopify.Order) (*PrintResult, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.remember(*order)

	result, err := s.PrintOrder(ctx, order, PrintOptions{})
	if err == nil {
		return result, nil
	}

	stage := "print"
	if result != nil && len(result.Jobs) > 0 {
		stage = string(result.Jobs[len(result.Jobs)-1].Document)
	}
	failure := notify.Failure{
		OrderID:     order.IDString(),
		OrderNumber: order.DisplayName(),
		Stage:       stage,
		Err:         err,
		At:          s.now(),
	}
	if notifyErr := s.notifier.PrintFailed(ctx, failure); notifyErr != nil {
		s.loggerFromContext(ctx).Warn("failed to send print failure alert", "order_id", order.IDString(), "error", notifyErr)
	}
	return result, err
}
