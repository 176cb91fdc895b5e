package gff

import "encoding/binary"

// HeaderSize is the size in bytes of the fixed file header.
const HeaderSize = 56

const (
	structRecordSize = 12
	fieldRecordSize  = 12
	labelSize        = 16
)

// Block locates one of the six data blocks. Count is an element count for
// structs, fields, and labels, and a byte count for the remaining blocks.
type Block struct {
	Offset uint32
	Count  uint32
}

// Header is the fixed preamble of a GFF file.
type Header struct {
	FileType     string
	Version      string
	Structs      Block
	Fields       Block
	Labels       Block
	FieldData    Block
	FieldIndices Block
	ListIndices  Block
}

func (h *Header) blocks() []*Block {
	return []*Block{&h.Structs, &h.Fields, &h.Labels, &h.FieldData, &h.FieldIndices, &h.ListIndices}
}

// ReadHeader decodes the header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, parseErrorf(SectionHeader, 0, "need %d bytes, have %d", HeaderSize, len(data))
	}
	h := Header{
		FileType: string(data[0:4]),
		Version:  string(data[4:8]),
	}
	off := 8
	for _, b := range h.blocks() {
		b.Offset = binary.LittleEndian.Uint32(data[off:])
		b.Count = binary.LittleEndian.Uint32(data[off+4:])
		off += 8
	}
	return h, nil
}

func (h *Header) appendTo(buf []byte) []byte {
	buf = append(buf, padTag(h.FileType)...)
	buf = append(buf, padTag(h.Version)...)
	for _, b := range h.blocks() {
		buf = binary.LittleEndian.AppendUint32(buf, b.Offset)
		buf = binary.LittleEndian.AppendUint32(buf, b.Count)
	}
	return buf
}

func padTag(s string) []byte {
	tag := []byte("    ")
	copy(tag, s)
	return tag
}
