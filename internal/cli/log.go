package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
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

// done logs msg along with the elapsed time since progress was created.
// Example output: "Saved conv.dlg (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports codec events to a logger.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoad(_ context.Context, ev observability.LoadEvent) {
	if ev.Err != nil {
		h.logger.Debug("load failed", "bytes", ev.Bytes, "err", ev.Err)
		return
	}
	h.logger.Debug("loaded", "bytes", ev.Bytes, "entries", ev.Entries, "replies", ev.Replies,
		"starts", ev.Starts, "diagnostics", ev.Diagnostics, "took", ev.Duration)
}

func (h *logHooks) OnSave(_ context.Context, ev observability.SaveEvent) {
	if ev.Err != nil {
		h.logger.Debug("save failed", "err", ev.Err)
		return
	}
	h.logger.Debug("saved", "bytes", ev.Bytes, "structs", ev.Structs, "fields", ev.Fields,
		"pointers", ev.LogicalPointers, "physical", ev.PhysicalPointers, "took", ev.Duration)
}

func (h *logHooks) OnDelete(_ context.Context, ev observability.DeleteEvent) {
	h.logger.Debug("deleted", "policy", ev.Policy, "removed", ev.Removed,
		"preserved", ev.Preserved, "promoted", ev.Promoted)
}

// timingHooks records how long the last load and save took.
type timingHooks struct {
	observability.NoopCodecHooks
	load, save time.Duration
}

func (h *timingHooks) OnLoad(_ context.Context, ev observability.LoadEvent) { h.load = ev.Duration }

func (h *timingHooks) OnSave(_ context.Context, ev observability.SaveEvent) { h.save = ev.Duration }
