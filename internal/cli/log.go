package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Drew 3 histograms (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// =============================================================================
// Observability hooks
// =============================================================================

// logHooks writes session, source and render events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnCanvasOpen(name string) {
	h.logger.Debug("canvas opened", "canvas", name)
}

func (h logHooks) OnDraw(expr, object string, entries int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("draw failed", "expr", expr, "error", err)
		return
	}
	h.logger.Debug("draw", "expr", expr, "object", object, "entries", entries, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnCleanup(canvases, objects int) {
	if canvases+objects > 0 {
		h.logger.Debug("cleanup", "canvases", canvases, "objects", objects)
	}
}

func (h logHooks) OnSourceLoad(_ context.Context, path string, cached bool, events int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "path", path, "error", err)
		return
	}
	h.logger.Debug("source loaded", "path", path, "cached", cached, "events", events, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("export started", "formats", formats)
}

func (h logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("export finished", "formats", formats, "took", d.Round(time.Millisecond), "error", err)
}
