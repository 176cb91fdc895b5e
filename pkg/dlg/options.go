package dlg

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

// Options configures loading, saving, and editing. Use the With functions
// rather than filling the struct directly.
type Options struct {
	Logger       *log.Logger
	Encoding     gff.Encoding
	Hooks        observability.CodecHooks
	DeletePolicy DeletePolicy

	// CompactPointers shares one physical struct among pointers with the
	// same target and link flag. On by default.
	CompactPointers bool

	// RejectConflicts makes Save fail instead of dropping the condition
	// or comment of a pointer that shares a struct with a differing twin.
	RejectConflicts bool
}

// Option mutates Options.
type Option func(*Options)

var discard = log.New(io.Discard)

func newOptions(opts []Option) Options {
	o := Options{
		Logger:          discard,
		Hooks:           observability.NoopCodecHooks{},
		CompactPointers: true,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = discard
	}
	o.Hooks = observability.OrNoop(o.Hooks)
	return o
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithEncoding selects the on-disk string encoding.
func WithEncoding(e gff.Encoding) Option {
	return func(o *Options) { o.Encoding = e }
}

// WithHooks installs observability hooks.
func WithHooks(h observability.CodecHooks) Option {
	return func(o *Options) { o.Hooks = h }
}

// WithDeletePolicy sets the policy stored on loaded or created dialogues.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(o *Options) { o.DeletePolicy = p }
}

// WithCompactPointers toggles pointer struct sharing on save.
func WithCompactPointers(on bool) Option {
	return func(o *Options) { o.CompactPointers = on }
}

// WithRejectConflicts makes Save return a POINTER_CONFLICT error when two
// pointers sharing a struct disagree on condition or comment.
func WithRejectConflicts(on bool) Option {
	return func(o *Options) { o.RejectConflicts = on }
}
