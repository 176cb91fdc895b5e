package gff

import (
	"bytes"
	"encoding/binary"
	"testing"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

func threeStructFile() *File {
	f := NewFile("TEST")
	a := f.AddStruct(1, Field{Label: "A1", Value: DWord(1)}, Field{Label: "A2", Value: DWord(2)})
	b := f.AddStruct(2, Field{Label: "B1", Value: DWord(3)})
	f.Root().Set("Items", List{a, b})
	return f
}

func TestWritePlanOrdersFields(t *testing.T) {
	f := threeStructFile()
	plan := &Plan{}
	plan.Add(0, "root")
	plan.Add(2, "b")
	plan.Add(1, "a")

	w := NewWriter(WriteOptions{Plan: plan})
	data, err := w.Write(f)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	allocs := w.Tracker().Allocations()
	wantStarts := []uint32{0, 1, 2}
	for i, a := range allocs {
		if a.Start != wantStarts[i] {
			t.Errorf("allocation %d = %s, want start %d", i, a, wantStarts[i])
		}
	}

	h, _ := ReadHeader(data)
	// The single field of struct 2 is field 1 in the field array.
	rec := data[h.Structs.Offset+2*structRecordSize:]
	if got := binary.LittleEndian.Uint32(rec[4:]); got != 1 {
		t.Errorf("struct 2 field index = %d, want 1", got)
	}
	// Labels are interned in field order: Items, B1, A1, A2.
	lab := data[h.Labels.Offset:]
	if got := string(bytes.TrimRight(lab[16:32], "\x00")); got != "B1" {
		t.Errorf("label 1 = %q, want B1", got)
	}

	got, err := Read(data, ReadOptions{})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if v, _ := got.Structs[1].Uint("A2"); v != 2 {
		t.Errorf("A2 = %d, want 2", v)
	}
}

func TestWriteDeterministic(t *testing.T) {
	first, err := Write(sampleFile(), WriteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Write(sampleFile(), WriteOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different bytes", i)
		}
	}
}

func TestWriteEmptyStructData(t *testing.T) {
	f := NewFile("TEST")
	data, err := Write(f, WriteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(data[HeaderSize+4:]); got != noFields {
		t.Errorf("empty root data = %#x, want %#x", got, noFields)
	}
	if len(data) != HeaderSize+structRecordSize {
		t.Errorf("len = %d, want %d", len(data), HeaderSize+structRecordSize)
	}
}

func TestWriteRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		file func() *File
		opts WriteOptions
		code cerrors.Code
	}{
		{
			name: "long label",
			file: func() *File {
				f := NewFile("TEST")
				f.Root().Set("ThisLabelIsWayTooLong", Byte(1))
				return f
			},
			code: cerrors.ErrCodeInvalidLabel,
		},
		{
			name: "dangling list",
			file: func() *File {
				f := NewFile("TEST")
				f.Root().Set("Items", List{4})
				return f
			},
			code: cerrors.ErrCodeInvalidInput,
		},
		{
			name: "nil value",
			file: func() *File {
				f := NewFile("TEST")
				f.Root().Fields = append(f.Root().Fields, Field{Label: "X"})
				return f
			},
			code: cerrors.ErrCodeInvalidInput,
		},
		{
			name: "bad file type",
			file: func() *File { return NewFile("DLG") },
			code: cerrors.ErrCodeInvalidInput,
		},
		{
			name: "plan names struct twice",
			file: threeStructFile,
			opts: WriteOptions{Plan: &Plan{Steps: []PlanStep{{Struct: 1}, {Struct: 1}}}},
			code: cerrors.ErrCodeInternal,
		},
		{
			name: "plan names missing struct",
			file: threeStructFile,
			opts: WriteOptions{Plan: &Plan{Steps: []PlanStep{{Struct: 9}}}},
			code: cerrors.ErrCodeInternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Write(tt.file(), tt.opts)
			if err == nil {
				t.Fatal("Write() error = nil")
			}
			if !cerrors.Is(err, tt.code) {
				t.Errorf("code = %q, want %q (%v)", cerrors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestWriteReportsReplacedCharacters(t *testing.T) {
	f := NewFile("TEST")
	var text LocString
	text.Set(LangEnglish, Male, "Hello")
	text.Set(LangKorean, Female, "안녕하세요")
	f.Root().Set("Text", text)
	f.Root().Set("Name", String("Café"))

	w := NewWriter(WriteOptions{})
	if _, err := w.Write(f); err != nil {
		t.Fatal(err)
	}
	got := w.Replacements()
	if len(got) != 1 {
		t.Fatalf("Replacements() = %+v, want one", got)
	}
	if r := got[0]; r.Struct != 0 || r.Label != "Text" || r.ID != SubstringID(LangKorean, Female) {
		t.Errorf("replacement = %+v, want Korean female Text of the root", r)
	}

	w = NewWriter(WriteOptions{Encoding: EncodingUTF8})
	if _, err := w.Write(f); err != nil {
		t.Fatal(err)
	}
	if got := w.Replacements(); len(got) != 0 {
		t.Errorf("UTF-8 Replacements() = %+v, want none", got)
	}
}

func TestEncodeLossy(t *testing.T) {
	tests := []struct {
		in    string
		lossy bool
	}{
		{"plain", false},
		{"naïve café €5", false},
		{"日本語", true},
	}
	for _, tt := range tests {
		b, lossy, err := EncodingWindows1252.EncodeLossy(tt.in)
		if err != nil {
			t.Fatalf("EncodeLossy(%q) error = %v", tt.in, err)
		}
		if lossy != tt.lossy {
			t.Errorf("EncodeLossy(%q) lossy = %v, want %v", tt.in, lossy, tt.lossy)
		}
		plain, _ := EncodingWindows1252.Encode(tt.in)
		if !bytes.Equal(b, plain) {
			t.Errorf("EncodeLossy(%q) = %q, Encode = %q", tt.in, b, plain)
		}
	}
}
