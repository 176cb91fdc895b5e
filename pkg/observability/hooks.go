// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation of the dialog codec without
// adding hard dependencies on specific observability backends. Hooks are
// passed to the codec explicitly through its options; there is no global
// registry, so two codecs in one process can report to different sinks.
//
// # Usage
//
// Implement [CodecHooks] (embedding [NoopCodecHooks] to pick only the events
// you need) and hand it to the codec:
//
//	type saveCounter struct {
//	    observability.NoopCodecHooks
//	    saves int
//	}
//
//	func (c *saveCounter) OnSave(ctx context.Context, ev observability.SaveEvent) { c.saves++ }
//
//	data, err := dlg.Save(d, dlg.WithHooks(&saveCounter{}))
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Codec Events
// =============================================================================

// LoadEvent describes one completed (or failed) load.
type LoadEvent struct {
	Bytes       int
	Entries     int
	Replies     int
	Starts      int
	Diagnostics int
	Duration    time.Duration
	Err         error
}

// SaveEvent describes one completed (or failed) save.
type SaveEvent struct {
	Bytes            int
	Structs          int
	Fields           int
	LogicalPointers  int
	PhysicalPointers int
	Duration         time.Duration
	Err              error
}

// DeleteEvent describes one deletion operation on a dialogue.
type DeleteEvent struct {
	Policy    string
	Removed   int
	Preserved int
	Promoted  int
}

// =============================================================================
// Codec Hooks
// =============================================================================

// CodecHooks receives events from the dialog codec.
type CodecHooks interface {
	// OnLoad is called after a file has been parsed and linked.
	OnLoad(ctx context.Context, ev LoadEvent)

	// OnSave is called after a dialogue has been flattened and serialized.
	OnSave(ctx context.Context, ev SaveEvent)

	// OnDelete is called after nodes have been removed from a dialogue.
	OnDelete(ctx context.Context, ev DeleteEvent)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopCodecHooks is a no-op implementation of CodecHooks.
type NoopCodecHooks struct{}

func (NoopCodecHooks) OnLoad(context.Context, LoadEvent)     {}
func (NoopCodecHooks) OnSave(context.Context, SaveEvent)     {}
func (NoopCodecHooks) OnDelete(context.Context, DeleteEvent) {}

// OrNoop returns h, or NoopCodecHooks if h is nil.
func OrNoop(h CodecHooks) CodecHooks {
	if h == nil {
		return NoopCodecHooks{}
	}
	return h
}

// =============================================================================
// Fan-out
// =============================================================================

// Multi forwards every event to each of its hooks in order.
type Multi []CodecHooks

func (m Multi) OnLoad(ctx context.Context, ev LoadEvent) {
	for _, h := range m {
		h.OnLoad(ctx, ev)
	}
}

func (m Multi) OnSave(ctx context.Context, ev SaveEvent) {
	for _, h := range m {
		h.OnSave(ctx, ev)
	}
}

func (m Multi) OnDelete(ctx context.Context, ev DeleteEvent) {
	for _, h := range m {
		h.OnDelete(ctx, ev)
	}
}
