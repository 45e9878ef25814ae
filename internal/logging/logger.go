package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
)

// Options selects the log output. Format is "json" or "text".
type Options struct {
	Level  slog.Level
	Format string
	Sentry bool
}

// New builds the process logger. With Sentry enabled, warnings become
// Sentry logs and errors become events, alongside the local output.
func New(w io.Writer, opts Options) *slog.Logger {
	var local slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		local = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	default:
		local = tint.NewHandler(w, &tint.Options{Level: opts.Level})
	}

	if !opts.Sentry {
		return slog.New(local)
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn},
	}.NewSentryHandler(context.Background())

	return slog.New(Tee(local, remote, slog.LevelWarn))
}
