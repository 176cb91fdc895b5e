package dlg

import (
	"context"
	"fmt"
	"time"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

// SaveStats describes one save.
type SaveStats struct {
	Bytes            int
	Structs          int
	Fields           int
	LogicalPointers  int
	PhysicalPointers int
	Allocations      []gff.Allocation
	Diagnostics      []Diagnostic
}

// CompactionRatio returns physical/logical pointer structs.
func (s SaveStats) CompactionRatio() float64 {
	if s.LogicalPointers == 0 {
		return 1
	}
	return float64(s.PhysicalPointers) / float64(s.LogicalPointers)
}

// Conflicts returns the diagnostics for pointer payloads dropped by
// compaction.
func (s SaveStats) Conflicts() []Diagnostic {
	var out []Diagnostic
	for _, dg := range s.Diagnostics {
		if dg.Code == cerrors.ErrCodePointerConflict {
			out = append(out, dg)
		}
	}
	return out
}

// Load parses a dialog file.
func Load(data []byte, opts ...Option) (*Dialogue, error) {
	return LoadContext(context.Background(), data, opts...)
}

// LoadContext parses a dialog file; ctx is handed to the hooks.
func LoadContext(ctx context.Context, data []byte, opts ...Option) (*Dialogue, error) {
	o := newOptions(opts)
	start := time.Now()
	d, err := load(data, o)

	ev := observability.LoadEvent{Bytes: len(data), Duration: time.Since(start), Err: err}
	if d != nil {
		ev.Entries, ev.Replies, ev.Starts = len(d.Entries), len(d.Replies), len(d.Starts)
		ev.Diagnostics = len(d.Diagnostics)
	}
	o.Hooks.OnLoad(ctx, ev)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("dialog loaded", "bytes", len(data), "entries", ev.Entries, "replies", ev.Replies,
		"starts", ev.Starts, "diagnostics", ev.Diagnostics, "took", ev.Duration)
	return d, nil
}

func load(data []byte, o Options) (*Dialogue, error) {
	f, err := gff.Read(data, gff.ReadOptions{Encoding: o.Encoding})
	if err != nil {
		return nil, err
	}
	if f.FileType != FileType {
		return nil, cerrors.New(cerrors.ErrCodeWrongFormat, "file type %q is not a dialog", f.FileType)
	}
	return Build(f, withOptions(o))
}

// withOptions passes an already resolved Options value on.
func withOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// Save serializes d.
//
// With pointer compaction on, pointers with the same target and link flag
// share one struct. If their conditions, condition parameters, or link
// comments differ, only the first in conversation order is written; each
// dropped payload is reported as a POINTER_CONFLICT diagnostic in
// [SaveStats], or fails the save under [WithRejectConflicts].
func Save(d *Dialogue, opts ...Option) ([]byte, error) {
	data, _, err := SaveContext(context.Background(), d, opts...)
	return data, err
}

// SaveContext serializes d and reports statistics; ctx is handed to the
// hooks. The output depends only on d and the options.
func SaveContext(ctx context.Context, d *Dialogue, opts ...Option) ([]byte, SaveStats, error) {
	o := newOptions(opts)
	start := time.Now()
	data, stats, err := save(d, o)
	o.Hooks.OnSave(ctx, observability.SaveEvent{
		Bytes:            len(data),
		Structs:          stats.Structs,
		Fields:           stats.Fields,
		LogicalPointers:  stats.LogicalPointers,
		PhysicalPointers: stats.PhysicalPointers,
		Duration:         time.Since(start),
		Err:              err,
	})
	if err != nil {
		return nil, stats, err
	}
	o.Logger.Debug("dialog saved", "bytes", len(data), "structs", stats.Structs, "fields", stats.Fields,
		"pointers", stats.LogicalPointers, "pointer_structs", stats.PhysicalPointers,
		"ratio", stats.CompactionRatio())
	return data, stats, nil
}

func save(d *Dialogue, o Options) ([]byte, SaveStats, error) {
	fl, err := Flatten(d, withOptions(o))
	if err != nil {
		return nil, SaveStats{}, err
	}
	stats := SaveStats{
		Structs:          len(fl.File.Structs),
		Fields:           fl.File.FieldCount(),
		LogicalPointers:  fl.LogicalPointers,
		PhysicalPointers: fl.PhysicalPointers,
		Diagnostics:      fl.Diagnostics,
	}
	if n := len(stats.Conflicts()); n > 0 && o.RejectConflicts {
		return nil, stats, cerrors.New(cerrors.ErrCodePointerConflict,
			"%d pointer(s) would lose their condition or comment, first at %s", n, stats.Conflicts()[0].Owner)
	}
	w := gff.NewWriter(gff.WriteOptions{Encoding: o.Encoding, Plan: fl.Plan})
	data, err := w.Write(fl.File)
	if err != nil {
		code := cerrors.GetCode(err)
		if code == "" {
			code = cerrors.ErrCodeInternal
		}
		return nil, stats, cerrors.Wrap(code, err, "write dialog")
	}
	stats.Bytes = len(data)
	stats.Allocations = w.Tracker().Allocations()
	for _, r := range w.Replacements() {
		dg := lossyText(fl, r, o.Encoding)
		o.Logger.Warn("dialog save", "code", dg.Code, "at", dg.Owner, "msg", dg.Message)
		stats.Diagnostics = append(stats.Diagnostics, dg)
	}
	return data, stats, nil
}

// lossyText reports a string that lost characters to the file encoding.
// Strings outside entry and reply structs are reported against StartRef.
func lossyText(fl *Flattened, r gff.Replacement, enc gff.Encoding) Diagnostic {
	owner, ok := fl.Nodes[r.Struct]
	if !ok {
		owner = StartRef
	}
	what := r.Label
	if _, isLoc := fl.File.Structs[r.Struct].Get(r.Label).(gff.LocString); isLoc {
		l, g := gff.SplitSubstringID(r.ID)
		what = fmt.Sprintf("%s (language %d, gender %d)", r.Label, l, g)
	}
	return diagf(cerrors.ErrCodeLossyText, owner, -1,
		"%s has characters %s cannot store; they were replaced", what, enc.Name())
}
