package handlers

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/orderrelay/orderrelay/internal/logging"
	"github.com/orderrelay/orderrelay/internal/shopify"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// RequestLogger injects a request-scoped logger tagged with the order and
// webhook being handled, then logs and meters the completed request.
func (h *Handlers) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := requestIDFromRequest(r)
		w.Header().Set("X-Request-ID", requestID)

		logger := requestLogger(h.logger, r, requestID)
		ctx := logging.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.code()
		elapsed := time.Since(start)
		recordRequestMetrics(r, status, elapsed)

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case isQuietPath(r.URL.Path):
			level = slog.LevelDebug
		}
		logger.Log(ctx, level, "request completed",
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"bytes", rec.bytes,
		)
	})
}

// requestLogger tags the base logger with request identity plus the order id
// from the route and the Shopify webhook headers when present.
func requestLogger(base *slog.Logger, r *http.Request, requestID string) *slog.Logger {
	args := []any{
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_ip", clientIP(r),
	}
	if route := routeLabel(r); route != "" {
		args = append(args, "route", route)
	}
	if orderID := strings.TrimSpace(mux.Vars(r)["orderID"]); orderID != "" {
		args = append(args, "order_id", orderID)
	}
	for _, hdr := range []struct{ header, key string }{
		{shopify.HeaderTopic, "topic"},
		{shopify.HeaderWebhookID, "webhook_id"},
		{shopify.HeaderShopDomain, "shop_domain"},
	} {
		if v := strings.TrimSpace(r.Header.Get(hdr.header)); v != "" {
			args = append(args, hdr.key, v)
		}
	}
	return base.With(args...)
}

func recordRequestMetrics(r *http.Request, status int, elapsed time.Duration) {
	route := routeLabel(r)
	if route == "" {
		route = "unknown"
	}
	attrs := []attribute.Builder{
		attribute.String("http.method", r.Method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	}

	ctx := r.Context()
	meter := sentry.NewMeter(ctx).WithCtx(ctx)
	meter.Count("http.server.requests", 1, sentry.WithAttributes(attrs...))
	meter.Distribution("http.server.duration", float64(elapsed.Milliseconds()),
		sentry.WithUnit(sentry.UnitMillisecond),
		sentry.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.status_class", fmt.Sprintf("%dxx", status/100)),
		),
	)
	if status >= http.StatusInternalServerError {
		meter.Count("http.server.errors", 1, sentry.WithAttributes(attrs...))
	}
}

// isQuietPath matches health probes and the preview iframes, which reload on
// every form edit.
func isQuietPath(path string) bool {
	if path == "/health" {
		return true
	}
	return strings.HasPrefix(path, "/dashboard/orders/") &&
		(strings.HasSuffix(path, "/invoice") || strings.HasSuffix(path, "/giftcard"))
}

func requestIDFromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
		return id
	}
	return uuid.NewString()
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func routeLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	if name := route.GetName(); name != "" {
		return name
	}
	if template, err := route.GetPathTemplate(); err == nil {
		return template
	}
	return ""
}
