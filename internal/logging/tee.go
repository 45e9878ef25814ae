package logging

import (
	"context"
	"errors"
	"log/slog"
)

const redacted = "[redacted]"

// privateKeys name attributes carrying customer text that stays in local
// logs and never reaches the remote sink.
var privateKeys = map[string]struct{}{
	"gift_message":         {},
	"gift_sender":          {},
	"gift_receiver":        {},
	"recipient_name":       {},
	"recipient_phone":      {},
	"email":                {},
	"phone":                {},
	"address1":             {},
	"address2":             {},
	"special_instructions": {},
	"query":                {},
}

// Tee writes every record to local and records at or above remoteLevel to
// remote, with private attributes redacted from the remote copy.
func Tee(local, remote slog.Handler, remoteLevel slog.Level) slog.Handler {
	if remote == nil {
		return local
	}
	return teeHandler{local: local, remote: remote, remoteLevel: remoteLevel}
}

type teeHandler struct {
	local       slog.Handler
	remote      slog.Handler
	remoteLevel slog.Level
}

func (h teeHandler) remoteEnabled(ctx context.Context, level slog.Level) bool {
	return level >= h.remoteLevel && h.remote.Enabled(ctx, level)
}

func (h teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.local.Enabled(ctx, level) || h.remoteEnabled(ctx, level)
}

func (h teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var err error
	if h.local.Enabled(ctx, record.Level) {
		err = h.local.Handle(ctx, record)
	}
	if h.remoteEnabled(ctx, record.Level) {
		scrubbed := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
		record.Attrs(func(a slog.Attr) bool {
			scrubbed.AddAttrs(redact(a))
			return true
		})
		err = errors.Join(err, h.remote.Handle(ctx, scrubbed))
	}
	return err
}

func (h teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = redact(a)
	}
	return teeHandler{
		local:       h.local.WithAttrs(attrs),
		remote:      h.remote.WithAttrs(scrubbed),
		remoteLevel: h.remoteLevel,
	}
}

func (h teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{
		local:       h.local.WithGroup(name),
		remote:      h.remote.WithGroup(name),
		remoteLevel: h.remoteLevel,
	}
}

func redact(a slog.Attr) slog.Attr {
	if _, ok := privateKeys[a.Key]; ok {
		return slog.String(a.Key, redacted)
	}
	if a.Value.Kind() != slog.KindGroup {
		return a
	}
	group := a.Value.Group()
	scrubbed := make([]any, len(group))
	for i, member := range group {
		scrubbed[i] = redact(member)
	}
	return slog.Group(a.Key, scrubbed...)
}
