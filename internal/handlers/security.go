package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/orderrelay/orderrelay/internal/observability"
)

const dashboardPrefix = "/dashboard"

// dashboardCSP admits the tailwind script, the invoice's Google font and the
// same-origin preview frames.
const dashboardCSP = "default-src 'self'; " +
	"script-src https://cdn.tailwindcss.com; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"font-src https://fonts.gstatic.com; " +
	"img-src 'self' data:; " +
	"frame-src 'self'; frame-ancestors 'self'; form-action 'self'"

// SecurityHeaders sets baseline headers. Dashboard pages show customer
// addresses and gift messages, so they also get a CSP and are never cached.
func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "SAMEORIGIN")
		headers.Set("Referrer-Policy", "same-origin")
		headers.Set("Cross-Origin-Opener-Policy", "same-origin")

		if isDashboardPath(r.URL.Path) {
			headers.Set("Content-Security-Policy", dashboardCSP)
			headers.Set("Cache-Control", "no-store")
		}

		next.ServeHTTP(w, r)
	})
}

// RequireSameOrigin only lets the dashboard print form trigger a reprint:
// POSTs need an Origin on this relay's host or a Referer from a dashboard
// page. Webhooks are authenticated by HMAC instead.
func (h *Handlers) RequireSameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		meter := observability.MeterFromContext(r.Context())
		meter.Count("dashboard.origin.checked", 1)

		if reason := h.rejectReprint(r); reason != "" {
			meter.Count("dashboard.origin.blocked", 1, sentry.WithAttributes(attribute.String("reason", reason)))
			h.loggerFromContext(r.Context()).Warn("blocked dashboard request",
				"reason", reason,
				"origin", r.Header.Get("Origin"),
				"referer", r.Referer(),
			)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rejectReprint returns why r may not change state, or "" when it may.
func (h *Handlers) rejectReprint(r *http.Request) string {
	if r.Header.Get("Sec-Fetch-Site") == "cross-site" {
		return "cross_site_fetch"
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	referer := strings.TrimSpace(r.Referer())
	if origin == "" && referer == "" {
		return "missing_origin_and_referer"
	}

	if origin != "" {
		u, err := url.Parse(origin)
		if err != nil || !h.relayHost(r, u.Hostname()) {
			return "foreign_origin"
		}
	}
	if referer != "" {
		u, err := url.Parse(referer)
		if err != nil || !h.relayHost(r, u.Hostname()) {
			return "foreign_referer"
		}
		if !isDashboardPath(u.Path) {
			return "referer_outside_dashboard"
		}
	}
	return ""
}

// relayHost reports whether host is the host this request was served on or
// the public BASE_URL host behind a proxy.
func (h *Handlers) relayHost(r *http.Request, host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	served := r.Host
	if hostOnly, _, err := net.SplitHostPort(served); err == nil {
		served = hostOnly
	}
	if host == strings.ToLower(served) {
		return true
	}
	if h.config == nil || h.config.BaseURL == "" {
		return false
	}
	base, err := url.Parse(h.config.BaseURL)
	return err == nil && host == strings.ToLower(base.Hostname())
}

func isDashboardPath(path string) bool {
	return path == dashboardPrefix || strings.HasPrefix(path, dashboardPrefix+"/")
}
