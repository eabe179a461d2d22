package ui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bamsammich/dcp/internal/event"
)

// MultiHandler fans a record out to several slog handlers.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler that forwards to every h.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any handler accepts level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: hs}
}

// LogEvent records ev on logger as a "dcp.event" record. Failures are
// logged at warn level, everything else at debug.
func LogEvent(ctx context.Context, logger *slog.Logger, ev event.Event) {
	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.String("path", ev.Path),
	}
	switch ev.Type {
	case event.RunStarted, event.RunFinished:
		attrs = append(attrs, slog.String("src", ev.SrcPath), slog.String("dst", ev.DstPath))
	case event.FileCopied, event.FileOverwritten:
		attrs = append(attrs, slog.Int64("bytes", ev.Size))
	case event.FileSkipped:
		attrs = append(attrs, slog.String("reason", ev.Reason.String()))
	case event.FileFailed, event.DirFailed:
		level = slog.LevelWarn
	case event.DirCreated, event.DirExists, event.Flush:
	}
	if ev.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	logger.LogAttrs(ctx, level, "dcp.event", attrs...)
}
