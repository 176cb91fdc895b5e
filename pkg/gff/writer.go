package gff

import (
	"encoding/binary"
	"fmt"
	"math"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// noFields is written as the data word of a struct without fields.
const noFields uint32 = 0xFFFFFFFF

// PlanStep places the fields of one struct in the field array.
type PlanStep struct {
	Struct  uint32
	Purpose string
}

// Plan fixes the order in which struct fields are allocated. Structs are
// laid out in step order; structs without a step follow in index order.
// The struct array itself is always written in index order.
type Plan struct {
	Steps []PlanStep
}

// Add appends a step for struct i.
func (p *Plan) Add(i uint32, purpose string) {
	p.Steps = append(p.Steps, PlanStep{Struct: i, Purpose: purpose})
}

// WriteOptions configures a [Writer].
type WriteOptions struct {
	// Encoding encodes string payloads. The zero value uses DefaultEncoding.
	Encoding Encoding

	// Plan orders field allocation. Nil lays fields out in struct order.
	Plan *Plan
}

// Replacement records a string whose characters the encoding could not all
// represent.
type Replacement struct {
	Struct uint32
	Label  string
	ID     uint32 // substring id for localized strings, otherwise 0
	Text   string
}

// Writer serializes a [File] in two passes. A Writer may be reused; each call
// to Write starts a fresh layout.
type Writer struct {
	opts    WriteOptions
	tracker *FieldIndexTracker
	lossy   []Replacement
}

// NewWriter returns a writer with the given options.
func NewWriter(opts WriteOptions) *Writer {
	return &Writer{opts: opts}
}

// Write serializes f with the given options.
func Write(f *File, opts WriteOptions) ([]byte, error) {
	return NewWriter(opts).Write(f)
}

// Tracker returns the field index tracker used by the most recent Write.
func (w *Writer) Tracker() *FieldIndexTracker { return w.tracker }

// Replacements lists the strings the most recent Write could not encode
// without replacing characters, in field order.
func (w *Writer) Replacements() []Replacement { return w.lossy }

// layout is the result of the first pass: every record and block contents,
// with all offsets final.
type layout struct {
	structs      []byte
	fields       []byte
	labels       []byte
	labelCount   uint32
	fieldData    []byte
	fieldIndices []byte
	listIndices  []byte
	structCount  uint32
	fieldCount   uint32
}

// Write serializes f. The output depends only on f and the writer's options.
func (w *Writer) Write(f *File) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	w.tracker = NewFieldIndexTracker()
	w.lossy = nil
	lay, err := w.layout(f)
	if err != nil {
		return nil, err
	}
	return w.emit(f, lay), nil
}

// order returns the field allocation order, validating the plan.
func (w *Writer) order(f *File) ([]PlanStep, error) {
	n := uint32(len(f.Structs))
	seen := make([]bool, n)
	var steps []PlanStep
	if w.opts.Plan != nil {
		for _, st := range w.opts.Plan.Steps {
			if st.Struct >= n {
				return nil, cerrors.New(cerrors.ErrCodeInternal, "plan step %q names struct %d of %d", st.Purpose, st.Struct, n)
			}
			if seen[st.Struct] {
				return nil, cerrors.New(cerrors.ErrCodeInternal, "plan places struct %d twice (%q)", st.Struct, st.Purpose)
			}
			seen[st.Struct] = true
			steps = append(steps, st)
		}
	}
	for i := uint32(0); i < n; i++ {
		if !seen[i] {
			purpose := "struct"
			if i == 0 {
				purpose = "root"
			}
			steps = append(steps, PlanStep{Struct: i, Purpose: purpose})
		}
	}
	return steps, nil
}

func (w *Writer) layout(f *File) (*layout, error) {
	steps, err := w.order(f)
	if err != nil {
		return nil, err
	}

	// Field index ranges, in plan order.
	start := make([]uint32, len(f.Structs))
	for _, st := range steps {
		a := w.tracker.Allocate(uint32(len(f.Structs[st.Struct].Fields)), st.Purpose)
		start[st.Struct] = a.Start
	}
	if err := w.tracker.Audit(); err != nil {
		return nil, err
	}

	lay := &layout{
		structCount: uint32(len(f.Structs)),
		fieldCount:  w.tracker.Next(),
	}
	fields := make([]Field, lay.fieldCount)
	owners := make([]uint32, lay.fieldCount)
	for si := range f.Structs {
		for k, fld := range f.Structs[si].Fields {
			fields[start[si]+uint32(k)] = fld
			owners[start[si]+uint32(k)] = uint32(si)
		}
	}

	// Labels are interned in field order.
	labelIdx := make(map[string]uint32)
	for _, fld := range fields {
		if _, ok := labelIdx[fld.Label]; ok {
			continue
		}
		labelIdx[fld.Label] = lay.labelCount
		lay.labelCount++
		var rec [labelSize]byte
		copy(rec[:], fld.Label)
		lay.labels = append(lay.labels, rec[:]...)
	}

	// Field records, field data, and list indices, in field order.
	lay.fields = make([]byte, 0, len(fields)*fieldRecordSize)
	for fi, fld := range fields {
		data, err := w.fieldData(lay, owners[fi], fld)
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", fi, fld.Label, err)
		}
		lay.fields = binary.LittleEndian.AppendUint32(lay.fields, uint32(fld.Type()))
		lay.fields = binary.LittleEndian.AppendUint32(lay.fields, labelIdx[fld.Label])
		lay.fields = binary.LittleEndian.AppendUint32(lay.fields, data)
	}

	// Field index arrays for multi-field structs, in plan order.
	fieldIdxOff := make([]uint32, len(f.Structs))
	for _, st := range steps {
		n := uint32(len(f.Structs[st.Struct].Fields))
		if n < 2 {
			continue
		}
		fieldIdxOff[st.Struct] = uint32(len(lay.fieldIndices))
		for k := uint32(0); k < n; k++ {
			lay.fieldIndices = binary.LittleEndian.AppendUint32(lay.fieldIndices, start[st.Struct]+k)
		}
	}

	// Struct records, in index order.
	lay.structs = make([]byte, 0, len(f.Structs)*structRecordSize)
	for si := range f.Structs {
		s := &f.Structs[si]
		var data uint32
		switch len(s.Fields) {
		case 0:
			data = noFields
		case 1:
			data = start[si]
		default:
			data = fieldIdxOff[si]
		}
		lay.structs = binary.LittleEndian.AppendUint32(lay.structs, s.Type)
		lay.structs = binary.LittleEndian.AppendUint32(lay.structs, data)
		lay.structs = binary.LittleEndian.AppendUint32(lay.structs, uint32(len(s.Fields)))
	}
	return lay, nil
}

// fieldData returns the data word of a field record, appending any payload
// to the field data or list index block.
func (w *Writer) fieldData(lay *layout, si uint32, fld Field) (uint32, error) {
	encode := func(id uint32, text string) ([]byte, error) {
		b, lossy, err := w.opts.Encoding.EncodeLossy(text)
		if lossy {
			w.lossy = append(w.lossy, Replacement{Struct: si, Label: fld.Label, ID: id, Text: text})
		}
		return b, err
	}
	switch v := fld.Value.(type) {
	case Byte:
		return uint32(v), nil
	case Char:
		return uint32(uint8(v)), nil
	case Word:
		return uint32(v), nil
	case Short:
		return uint32(uint16(v)), nil
	case DWord:
		return uint32(v), nil
	case Int:
		return uint32(v), nil
	case Float:
		return math.Float32bits(float32(v)), nil
	case DWord64:
		off := uint32(len(lay.fieldData))
		lay.fieldData = binary.LittleEndian.AppendUint64(lay.fieldData, uint64(v))
		return off, nil
	case Int64:
		off := uint32(len(lay.fieldData))
		lay.fieldData = binary.LittleEndian.AppendUint64(lay.fieldData, uint64(v))
		return off, nil
	case Double:
		off := uint32(len(lay.fieldData))
		lay.fieldData = binary.LittleEndian.AppendUint64(lay.fieldData, math.Float64bits(float64(v)))
		return off, nil
	case String:
		b, err := encode(0, string(v))
		if err != nil {
			return 0, err
		}
		off := uint32(len(lay.fieldData))
		lay.fieldData = binary.LittleEndian.AppendUint32(lay.fieldData, uint32(len(b)))
		lay.fieldData = append(lay.fieldData, b...)
		return off, nil
	case ResRef:
		b, err := encode(0, string(v))
		if err != nil {
			return 0, err
		}
		if len(b) > math.MaxUint8 {
			return 0, cerrors.New(cerrors.ErrCodeInvalidResRef, "resref of %d bytes exceeds 255", len(b))
		}
		off := uint32(len(lay.fieldData))
		lay.fieldData = append(lay.fieldData, byte(len(b)))
		lay.fieldData = append(lay.fieldData, b...)
		return off, nil
	case LocString:
		body := binary.LittleEndian.AppendUint32(nil, v.StrRef)
		body = binary.LittleEndian.AppendUint32(body, uint32(len(v.Strings)))
		for _, s := range v.Strings {
			b, err := encode(s.ID, s.Text)
			if err != nil {
				return 0, err
			}
			body = binary.LittleEndian.AppendUint32(body, s.ID)
			body = binary.LittleEndian.AppendUint32(body, uint32(len(b)))
			body = append(body, b...)
		}
		off := uint32(len(lay.fieldData))
		lay.fieldData = binary.LittleEndian.AppendUint32(lay.fieldData, uint32(len(body)))
		lay.fieldData = append(lay.fieldData, body...)
		return off, nil
	case Void:
		off := uint32(len(lay.fieldData))
		lay.fieldData = binary.LittleEndian.AppendUint32(lay.fieldData, uint32(len(v)))
		lay.fieldData = append(lay.fieldData, v...)
		return off, nil
	case StructRef:
		return uint32(v), nil
	case List:
		off := uint32(len(lay.listIndices))
		lay.listIndices = binary.LittleEndian.AppendUint32(lay.listIndices, uint32(len(v)))
		for _, idx := range v {
			lay.listIndices = binary.LittleEndian.AppendUint32(lay.listIndices, idx)
		}
		return off, nil
	}
	return 0, cerrors.New(cerrors.ErrCodeUnsupported, "unsupported value type %T", fld.Value)
}

// emit is the second pass: blocks are written in canonical order behind a
// placeholder header, which is filled in last.
func (w *Writer) emit(f *File, lay *layout) []byte {
	total := HeaderSize + len(lay.structs) + len(lay.fields) + len(lay.labels) +
		len(lay.fieldData) + len(lay.fieldIndices) + len(lay.listIndices)
	out := make([]byte, HeaderSize, total)

	h := Header{FileType: f.FileType, Version: f.Version}
	place := func(b *Block, count uint32, payload []byte) {
		b.Offset = uint32(len(out))
		b.Count = count
		out = append(out, payload...)
	}
	place(&h.Structs, lay.structCount, lay.structs)
	place(&h.Fields, lay.fieldCount, lay.fields)
	place(&h.Labels, lay.labelCount, lay.labels)
	place(&h.FieldData, uint32(len(lay.fieldData)), lay.fieldData)
	place(&h.FieldIndices, uint32(len(lay.fieldIndices)), lay.fieldIndices)
	place(&h.ListIndices, uint32(len(lay.listIndices)), lay.listIndices)

	copy(out[:HeaderSize], h.appendTo(make([]byte, 0, HeaderSize)))
	return out
}
