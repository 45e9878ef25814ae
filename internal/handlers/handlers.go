package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/orderrelay/orderrelay/internal/cache"
	"github.com/orderrelay/orderrelay/internal/config"
	"github.com/orderrelay/orderrelay/internal/logging"
	"github.com/orderrelay/orderrelay/internal/services"
)

const (
	maxWebhookBodyBytes = 1 << 20 // 1 MB
	maxFormBodyBytes    = 64 << 10

	defaultPrintTimeout = 2 * time.Minute
)

// Handlers provides the HTTP handlers for the order relay.
type Handlers struct {
	config        *config.Config
	printService  *services.PrintService
	webhookLedger *cache.WebhookLedger
	printTimeout  time.Duration
	background    func(func())
	inflight      sync.WaitGroup
	logger        *slog.Logger
}

type Dependencies struct {
	Config        *config.Config
	PrintService  *services.PrintService
	WebhookLedger *cache.WebhookLedger
	Logger        *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.PrintService == nil {
		return nil, fmt.Errorf("handlers dependencies: printService is required")
	}
	if deps.WebhookLedger == nil {
		return nil, fmt.Errorf("handlers dependencies: webhookLedger is required")
	}

	printTimeout := deps.Config.PrintTimeout
	if printTimeout <= 0 {
		printTimeout = defaultPrintTimeout
	}

	return &Handlers{
		config:        deps.Config,
		printService:  deps.PrintService,
		webhookLedger: deps.WebhookLedger,
		printTimeout:  printTimeout,
		background:    func(fn func()) { go fn() },
		logger:        logger.With("component", "handlers"),
	}, nil
}

// goBackground runs fn through the background runner and tracks it for Wait.
func (h *Handlers) goBackground(fn func()) {
	h.inflight.Add(1)
	h.background(func() {
		defer h.inflight.Done()
		fn()
	})
}

// Wait blocks until accepted webhook prints finish or ctx is done. Those
// orders were already acknowledged, so Shopify will not redeliver them.
func (h *Handlers) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	printer := "not configured"
	if h.printService != nil && h.printService.PrinterConfigured() {
		printer = "configured"
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"printer": printer,
	})
}

type rootResponse struct {
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// Root describes the service and its endpoints.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, rootResponse{
		Name:   "Order Relay",
		Status: "running",
		Endpoints: map[string]string{
			"health":        "GET /health",
			"webhookCreate": "POST /webhooks/orders/create",
			"webhookPaid":   "POST /webhooks/orders/paid",
			"printOrder":    "GET /print/{orderID}",
			"printRecent":   "GET /print-recent/{count}",
			"dashboard":     "GET /dashboard",
		},
	})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, errorResponse{Error: msg})
}
