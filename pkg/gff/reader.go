package gff

import (
	"encoding/binary"
	"math"
)

// ReadOptions configures [Read].
type ReadOptions struct {
	// Encoding decodes string payloads. The zero value uses DefaultEncoding.
	Encoding Encoding
}

type rawField struct {
	typ   FieldType
	label uint32
	data  uint32
}

// reader holds the slices of each block for one Read call.
type reader struct {
	data   []byte
	enc    Encoding
	header Header

	labels    []string
	fields    []rawField
	values    []Value // decoded value per field index, filled lazily
	decoded   []bool
	fieldData []byte
	fieldIdx  []byte
	listIdx   []byte
	nStructs  uint32
}

// Read parses a complete GFF file.
//
// Structs and fields are materialized as flat arrays and cross-referenced by
// index; nothing recurses per nested struct. Any offset or count that points
// outside the input yields a [*ParseError].
func Read(data []byte, opts ReadOptions) (*File, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	r := &reader{data: data, enc: opts.Encoding, header: h}
	if err := r.checkBlocks(); err != nil {
		return nil, err
	}
	if err := r.readLabels(); err != nil {
		return nil, err
	}
	r.readFields()
	r.fieldData = r.slice(h.FieldData.Offset, uint64(h.FieldData.Count))
	r.fieldIdx = r.slice(h.FieldIndices.Offset, uint64(h.FieldIndices.Count))
	r.listIdx = r.slice(h.ListIndices.Offset, uint64(h.ListIndices.Count))
	r.nStructs = h.Structs.Count

	if r.nStructs == 0 {
		return nil, parseErrorf(SectionStructs, int64(h.Structs.Offset), "file has no root struct")
	}

	f := &File{
		FileType: h.FileType,
		Version:  h.Version,
		Structs:  make([]Struct, r.nStructs),
	}
	for i := uint32(0); i < r.nStructs; i++ {
		if err := r.readStruct(i, &f.Structs[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func blockSize(sec Section, b Block) uint64 {
	switch sec {
	case SectionStructs:
		return uint64(b.Count) * structRecordSize
	case SectionFields:
		return uint64(b.Count) * fieldRecordSize
	case SectionLabels:
		return uint64(b.Count) * labelSize
	}
	return uint64(b.Count)
}

func (r *reader) checkBlocks() error {
	h := &r.header
	sections := []struct {
		sec Section
		b   Block
	}{
		{SectionStructs, h.Structs},
		{SectionFields, h.Fields},
		{SectionLabels, h.Labels},
		{SectionFieldData, h.FieldData},
		{SectionFieldIndices, h.FieldIndices},
		{SectionListIndices, h.ListIndices},
	}
	size := uint64(len(r.data))
	for _, s := range sections {
		end := uint64(s.b.Offset) + blockSize(s.sec, s.b)
		if end > size {
			return parseErrorf(s.sec, int64(s.b.Offset), "block of %d bytes ends at %d, past end of file (%d bytes)",
				blockSize(s.sec, s.b), end, size)
		}
	}
	return nil
}

func (r *reader) slice(off uint32, n uint64) []byte {
	return r.data[off : uint64(off)+n]
}

func (r *reader) readLabels() error {
	h := &r.header
	raw := r.slice(h.Labels.Offset, blockSize(SectionLabels, h.Labels))
	r.labels = make([]string, h.Labels.Count)
	interned := make(map[string]string, h.Labels.Count)
	for i := range r.labels {
		b := raw[i*labelSize : (i+1)*labelSize]
		n := 0
		for n < labelSize && b[n] != 0 {
			n++
		}
		s := string(b[:n])
		if prev, ok := interned[s]; ok {
			s = prev
		} else {
			interned[s] = s
		}
		r.labels[i] = s
	}
	return nil
}

func (r *reader) readFields() {
	h := &r.header
	raw := r.slice(h.Fields.Offset, blockSize(SectionFields, h.Fields))
	r.fields = make([]rawField, h.Fields.Count)
	for i := range r.fields {
		rec := raw[i*fieldRecordSize:]
		r.fields[i] = rawField{
			typ:   FieldType(binary.LittleEndian.Uint32(rec[0:])),
			label: binary.LittleEndian.Uint32(rec[4:]),
			data:  binary.LittleEndian.Uint32(rec[8:]),
		}
	}
	r.values = make([]Value, len(r.fields))
	r.decoded = make([]bool, len(r.fields))
}

func (r *reader) fieldOffset(i uint32) int64 {
	return int64(r.header.Fields.Offset) + int64(i)*fieldRecordSize
}

func (r *reader) readStruct(i uint32, s *Struct) error {
	h := &r.header
	recOff := int64(h.Structs.Offset) + int64(i)*structRecordSize
	rec := r.data[recOff:]
	s.Type = binary.LittleEndian.Uint32(rec[0:])
	data := binary.LittleEndian.Uint32(rec[4:])
	count := binary.LittleEndian.Uint32(rec[8:])

	var indices []uint32
	switch {
	case count == 0:
		return nil
	case count == 1:
		indices = []uint32{data}
	default:
		end := uint64(data) + uint64(count)*4
		if end > uint64(len(r.fieldIdx)) {
			return parseErrorf(SectionStructs, recOff, "struct %d lists %d fields at field-index offset %d, past end of block (%d bytes)",
				i, count, data, len(r.fieldIdx))
		}
		indices = make([]uint32, count)
		for k := range indices {
			indices[k] = binary.LittleEndian.Uint32(r.fieldIdx[uint64(data)+uint64(k)*4:])
		}
	}

	s.Fields = make([]Field, 0, len(indices))
	for _, fi := range indices {
		if uint64(fi) >= uint64(len(r.fields)) {
			return parseErrorf(SectionStructs, recOff, "struct %d references field %d of %d", i, fi, len(r.fields))
		}
		fld, err := r.field(fi)
		if err != nil {
			return err
		}
		s.Fields = append(s.Fields, fld)
	}
	return nil
}

func (r *reader) field(i uint32) (Field, error) {
	raw := r.fields[i]
	if uint64(raw.label) >= uint64(len(r.labels)) {
		return Field{}, parseErrorf(SectionFields, r.fieldOffset(i), "field %d references label %d of %d", i, raw.label, len(r.labels))
	}
	if !r.decoded[i] {
		v, err := r.value(i, raw)
		if err != nil {
			return Field{}, err
		}
		r.values[i] = v
		r.decoded[i] = true
	}
	return Field{Label: r.labels[raw.label], Value: r.values[i]}, nil
}

func (r *reader) value(i uint32, raw rawField) (Value, error) {
	d := raw.data
	switch raw.typ {
	case TypeByte:
		return Byte(uint8(d)), nil
	case TypeChar:
		return Char(int8(uint8(d))), nil
	case TypeWord:
		return Word(uint16(d)), nil
	case TypeShort:
		return Short(int16(uint16(d))), nil
	case TypeDWord:
		return DWord(d), nil
	case TypeInt:
		return Int(int32(d)), nil
	case TypeFloat:
		return Float(math.Float32frombits(d)), nil
	case TypeDWord64:
		b, err := r.fieldBytes(i, d, 8)
		if err != nil {
			return nil, err
		}
		return DWord64(binary.LittleEndian.Uint64(b)), nil
	case TypeInt64:
		b, err := r.fieldBytes(i, d, 8)
		if err != nil {
			return nil, err
		}
		return Int64(int64(binary.LittleEndian.Uint64(b))), nil
	case TypeDouble:
		b, err := r.fieldBytes(i, d, 8)
		if err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	case TypeString:
		b, err := r.prefixed32(i, d)
		if err != nil {
			return nil, err
		}
		s, err := r.decode(i, b)
		return String(s), err
	case TypeResRef:
		n, err := r.fieldBytes(i, d, 1)
		if err != nil {
			return nil, err
		}
		b, err := r.fieldBytes(i, d+1, uint64(n[0]))
		if err != nil {
			return nil, err
		}
		s, err := r.decode(i, b)
		return ResRef(s), err
	case TypeLocString:
		return r.locString(i, d)
	case TypeVoid:
		b, err := r.prefixed32(i, d)
		if err != nil {
			return nil, err
		}
		return Void(append([]byte(nil), b...)), nil
	case TypeStruct:
		if d >= r.nStructs {
			return nil, parseErrorf(SectionFields, r.fieldOffset(i), "field %d references struct %d of %d", i, d, r.nStructs)
		}
		return StructRef(d), nil
	case TypeList:
		return r.list(i, d)
	}
	return nil, parseErrorf(SectionFields, r.fieldOffset(i), "field %d has unknown type %d", i, uint32(raw.typ))
}

func (r *reader) fieldBytes(i, off uint32, n uint64) ([]byte, error) {
	end := uint64(off) + n
	if end > uint64(len(r.fieldData)) {
		return nil, parseErrorf(SectionFieldData, int64(r.header.FieldData.Offset)+int64(off),
			"field %d needs %d bytes at offset %d, block has %d", i, n, off, len(r.fieldData))
	}
	return r.fieldData[off:end], nil
}

func (r *reader) prefixed32(i, off uint32) ([]byte, error) {
	n, err := r.fieldBytes(i, off, 4)
	if err != nil {
		return nil, err
	}
	return r.fieldBytes(i, off+4, uint64(binary.LittleEndian.Uint32(n)))
}

func (r *reader) decode(i uint32, b []byte) (string, error) {
	s, err := r.enc.Decode(b)
	if err != nil {
		return "", parseErrorf(SectionFieldData, -1, "field %d: decode %s string: %v", i, r.enc.Name(), err)
	}
	return s, nil
}

func (r *reader) locString(i, off uint32) (Value, error) {
	body, err := r.prefixed32(i, off)
	if err != nil {
		return nil, err
	}
	base := int64(r.header.FieldData.Offset) + int64(off) + 4
	if len(body) < 8 {
		return nil, parseErrorf(SectionFieldData, base, "field %d: localized string body of %d bytes is too short", i, len(body))
	}
	ls := LocString{StrRef: binary.LittleEndian.Uint32(body[0:])}
	count := binary.LittleEndian.Uint32(body[4:])
	pos := uint64(8)
	for k := uint32(0); k < count; k++ {
		if pos+8 > uint64(len(body)) {
			return nil, parseErrorf(SectionFieldData, base+int64(pos), "field %d: substring %d header past end of string", i, k)
		}
		id := binary.LittleEndian.Uint32(body[pos:])
		n := uint64(binary.LittleEndian.Uint32(body[pos+4:]))
		pos += 8
		if pos+n > uint64(len(body)) {
			return nil, parseErrorf(SectionFieldData, base+int64(pos), "field %d: substring %d of %d bytes past end of string", i, k, n)
		}
		s, err := r.decode(i, body[pos:pos+n])
		if err != nil {
			return nil, err
		}
		ls.Strings = append(ls.Strings, LocSubstring{ID: id, Text: s})
		pos += n
	}
	return ls, nil
}

func (r *reader) list(i, off uint32) (Value, error) {
	at := int64(r.header.ListIndices.Offset) + int64(off)
	if uint64(off)+4 > uint64(len(r.listIdx)) {
		return nil, parseErrorf(SectionListIndices, at, "field %d: list offset %d past end of block (%d bytes)", i, off, len(r.listIdx))
	}
	count := uint64(binary.LittleEndian.Uint32(r.listIdx[off:]))
	if uint64(off)+4+count*4 > uint64(len(r.listIdx)) {
		return nil, parseErrorf(SectionListIndices, at, "field %d: list of %d entries past end of block", i, count)
	}
	l := make(List, count)
	for k := range l {
		idx := binary.LittleEndian.Uint32(r.listIdx[uint64(off)+4+uint64(k)*4:])
		if idx >= r.nStructs {
			return nil, parseErrorf(SectionListIndices, at, "field %d: list entry %d references struct %d of %d", i, k, idx, r.nStructs)
		}
		l[k] = idx
	}
	return l, nil
}
