package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/orderrelay/orderrelay/internal/config"
	"github.com/orderrelay/orderrelay/internal/handlers"
	"github.com/orderrelay/orderrelay/internal/services"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// print-recent renders and submits orders one by one
		WriteTimeout:   5 * time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.MetricsContext)
	r.HandleFunc("/", h.Root).Methods("GET").Name("root")
	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	r.HandleFunc("/webhooks/orders/create", h.OrderWebhook("orders/create")).Methods("POST").Name("webhooks.orders.create")
	r.HandleFunc("/webhooks/orders/paid", h.OrderWebhook("orders/paid")).Methods("POST").Name("webhooks.orders.paid")

	r.HandleFunc("/print/{orderID}", h.PrintOrder).Methods("GET").Name("print.order")
	r.HandleFunc("/print-recent", h.PrintRecent).Methods("GET").Name("print.recent")
	r.HandleFunc("/print-recent/{count}", h.PrintRecent).Methods("GET").Name("print.recent.count")

	// 404 handler - must be last
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	dashboard := r.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(h.RequireSameOrigin)
	dashboard.HandleFunc("", h.Dashboard).Methods("GET").Name("dashboard")
	dashboard.HandleFunc("/orders/{orderID}", h.DashboardOrder).Methods("GET").Name("dashboard.order")
	dashboard.HandleFunc("/orders/{orderID}/invoice", h.DashboardPreview(services.DocumentInvoice)).Methods("GET").Name("dashboard.order.invoice")
	dashboard.HandleFunc("/orders/{orderID}/giftcard", h.DashboardPreview(services.DocumentGiftCard)).Methods("GET").Name("dashboard.order.giftcard")
	dashboard.HandleFunc("/orders/{orderID}/print", h.DashboardPrint).Methods("POST").Name("dashboard.order.print")

	return r
}
