package gff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// minimalFile returns the bytes of a file whose root struct holds a single
// BYTE field "Value" = 7.
func minimalFile() []byte {
	le := binary.LittleEndian
	buf := append([]byte("TEST"), "V3.2"...)
	for _, b := range []Block{
		{Offset: 56, Count: 1}, // structs
		{Offset: 68, Count: 1}, // fields
		{Offset: 80, Count: 1}, // labels
		{Offset: 96, Count: 0}, // field data
		{Offset: 96, Count: 0}, // field indices
		{Offset: 96, Count: 0}, // list indices
	} {
		buf = le.AppendUint32(buf, b.Offset)
		buf = le.AppendUint32(buf, b.Count)
	}
	buf = le.AppendUint32(buf, RootStructType)
	buf = le.AppendUint32(buf, 0)
	buf = le.AppendUint32(buf, 1)
	buf = le.AppendUint32(buf, uint32(TypeByte))
	buf = le.AppendUint32(buf, 0)
	buf = le.AppendUint32(buf, 7)
	var label [16]byte
	copy(label[:], "Value")
	return append(buf, label[:]...)
}

func TestReadMinimal(t *testing.T) {
	f, err := Read(minimalFile(), ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if f.FileType != "TEST" || f.Version != "V3.2" {
		t.Errorf("type/version = %q/%q, want TEST/V3.2", f.FileType, f.Version)
	}
	if len(f.Structs) != 1 {
		t.Fatalf("len(Structs) = %d, want 1", len(f.Structs))
	}
	if got := f.Root().Get("Value"); got != Byte(7) {
		t.Errorf("Value = %#v, want Byte(7)", got)
	}
}

func TestWriteMinimalMatchesReference(t *testing.T) {
	f := NewFile("TEST")
	f.Root().Set("Value", Byte(7))

	got, err := Write(f, WriteOptions{})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if want := minimalFile(); !bytes.Equal(got, want) {
		t.Errorf("Write() =\n% x\nwant\n% x", got, want)
	}
}

func sampleFile() *File {
	f := NewFile("TEST")
	child := f.AddStruct(3,
		Field{Label: "Name", Value: String("Café")},
		Field{Label: "Script", Value: ResRef("nw_walk_wp")},
	)
	empty := f.AddStruct(4)
	text := NewLocString("Hello")
	text.Set(LangFrench, Female, "Bonjour")
	root := f.Root()
	root.Set("Byte", Byte(200))
	root.Set("Char", Char(-5))
	root.Set("Word", Word(60000))
	root.Set("Short", Short(-1234))
	root.Set("DWord", DWord(4000000000))
	root.Set("Int", Int(-70000))
	root.Set("DWord64", DWord64(1<<40))
	root.Set("Int64", Int64(-1<<40))
	root.Set("Float", Float(1.5))
	root.Set("Double", Double(-2.25))
	root.Set("Text", text)
	root.Set("Blob", Void{1, 2, 3})
	root.Set("Child", StructRef(child))
	root.Set("Items", List{child, empty, child})
	root.Set("None", List{})
	return f
}

func TestRoundTrip(t *testing.T) {
	f := sampleFile()
	data, err := Write(f, WriteOptions{})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Read(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if diff := cmp.Diff(f, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	again, err := Write(got, WriteOptions{})
	if err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("re-writing a read file changed its bytes")
	}
}

func TestRoundTripUTF8Passthrough(t *testing.T) {
	f := NewFile("TEST")
	f.Root().Set("Name", String("日本語"))
	data, err := Write(f, WriteOptions{Encoding: EncodingUTF8})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Read(data, ReadOptions{Encoding: EncodingUTF8})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if name, _ := got.Root().Text("Name"); name != "日本語" {
		t.Errorf("Name = %q, want 日本語", name)
	}
}

func TestReadLabelsDeduplicated(t *testing.T) {
	data := minimalFile()
	// Append a second struct-less label identical to the first and point the
	// header at two labels.
	var label [16]byte
	copy(label[:], "Value")
	data = append(data, label[:]...)
	binary.LittleEndian.PutUint32(data[28:], 2)
	for _, off := range []int{32, 40, 48} {
		binary.LittleEndian.PutUint32(data[off:], 112)
	}

	r := &reader{data: data}
	var err error
	if r.header, err = ReadHeader(data); err != nil {
		t.Fatal(err)
	}
	if err := r.readLabels(); err != nil {
		t.Fatal(err)
	}
	if len(r.labels) != 2 || r.labels[0] != r.labels[1] {
		t.Errorf("labels = %q, want two equal labels", r.labels)
	}
}

func TestReadMalformed(t *testing.T) {
	le := binary.LittleEndian
	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		section Section
	}{
		{
			name:    "truncated header",
			mutate:  func(b []byte) []byte { return b[:40] },
			section: SectionHeader,
		},
		{
			name: "struct block past end",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[12:], 1000)
				return b
			},
			section: SectionStructs,
		},
		{
			name: "label block past end",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[28:], 2)
				return b
			},
			section: SectionLabels,
		},
		{
			name: "field index out of range",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[60:], 5)
				return b
			},
			section: SectionStructs,
		},
		{
			name: "label index out of range",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[72:], 9)
				return b
			},
			section: SectionFields,
		},
		{
			name: "unknown field type",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[68:], 99)
				return b
			},
			section: SectionFields,
		},
		{
			name: "string past field data",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[68:], uint32(TypeString))
				return b
			},
			section: SectionFieldData,
		},
		{
			name: "struct reference out of range",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[68:], uint32(TypeStruct))
				return b
			},
			section: SectionFields,
		},
		{
			name: "list past list indices",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[68:], uint32(TypeList))
				return b
			},
			section: SectionListIndices,
		},
		{
			name: "multi-field struct past field indices",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[64:], 2)
				return b
			},
			section: SectionStructs,
		},
		{
			name: "no structs",
			mutate: func(b []byte) []byte {
				le.PutUint32(b[12:], 0)
				return b
			},
			section: SectionStructs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(tt.mutate(minimalFile()), ReadOptions{})
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Read() error = %v, want *ParseError", err)
			}
			if pe.Section != tt.section {
				t.Errorf("Section = %q, want %q (%v)", pe.Section, tt.section, err)
			}
			if !cerrors.Is(err, cerrors.ErrCodeParse) {
				t.Errorf("error code = %q, want %q", cerrors.GetCode(err), cerrors.ErrCodeParse)
			}
		})
	}
}

func TestReadSharedStructsStayFlat(t *testing.T) {
	// A long chain of structs, each referencing the next, plus a self-loop.
	f := NewFile("TEST")
	prev := uint32(0)
	for i := 0; i < 5000; i++ {
		idx := f.AddStruct(uint32(i))
		f.Structs[prev].Set("Next", StructRef(idx))
		prev = idx
	}
	f.Structs[prev].Set("Next", StructRef(prev))

	data, err := Write(f, WriteOptions{})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Read(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Structs) != 5001 {
		t.Errorf("len(Structs) = %d, want 5001", len(got.Structs))
	}
	last := &got.Structs[5000]
	if v := last.Get("Next"); v != StructRef(5000) {
		t.Errorf("last Next = %#v, want StructRef(5000)", v)
	}
}
