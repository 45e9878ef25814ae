package main

// Order Relay receives Shopify order webhooks and prints invoices and gift cards.

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orderrelay/orderrelay/app"
	"github.com/orderrelay/orderrelay/server"
)

// shutdownTimeout bounds the HTTP drain plus any webhook prints still running.
const shutdownTimeout = 2 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	application, err := app.New()
	if err != nil {
		fallbackLogger.Error("failed to initialize app", "error", err)
		return 1
	}
	defer application.Close()

	srv, err := server.New(application.Config, application.Logger, application.Handlers)
	if err != nil {
		fallbackLogger.Error("failed to initialize server", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	code := 0
	select {
	case err := <-serverErr:
		if err != nil {
			application.Logger.Error("server failed", "error", err)
			code = 1
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Close(shutdownCtx); err != nil {
		application.Logger.Error("server forced to shutdown", "error", err)
		code = 1
	}

	// The Chrome converter closes with the app, so accepted prints finish first.
	if err := application.Handlers.Wait(shutdownCtx); err != nil {
		application.Logger.Error("webhook prints still running at shutdown", "error", err)
		code = 1
	}
	return code
}
