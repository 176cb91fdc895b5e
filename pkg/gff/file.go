package gff

import (
	"fmt"
	"slices"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// RootStructType is the reserved type tag of the root struct.
const RootStructType uint32 = 0xFFFFFFFF

// Version is the format version written by default.
const Version = "V3.2"

// File is the untyped content of a GFF file. Structs form a flat arena; the
// struct at index 0 is the root. Structs refer to each other by index through
// [StructRef] and [List] values, so one struct may be referenced from several
// places.
//
// The zero value is not usable; create files with [NewFile] or [Read].
type File struct {
	FileType string // four characters, e.g. "DLG "
	Version  string // four characters, e.g. "V3.2"
	Structs  []Struct
}

// Struct is an ordered set of fields with an arbitrary type tag.
type Struct struct {
	Type   uint32
	Fields []Field
}

// Field is a labelled value.
type Field struct {
	Label string
	Value Value
}

// Type returns the type tag of the field's value.
func (f Field) Type() FieldType { return f.Value.Type() }

// NewFile returns a file of the given type containing only an empty root struct.
func NewFile(fileType string) *File {
	return &File{
		FileType: fileType,
		Version:  Version,
		Structs:  []Struct{{Type: RootStructType}},
	}
}

// Root returns the root struct.
func (f *File) Root() *Struct { return &f.Structs[0] }

// Struct returns the struct at index i.
func (f *File) Struct(i uint32) (*Struct, bool) {
	if uint64(i) >= uint64(len(f.Structs)) {
		return nil, false
	}
	return &f.Structs[i], true
}

// AddStruct appends a struct and returns its index.
func (f *File) AddStruct(typ uint32, fields ...Field) uint32 {
	f.Structs = append(f.Structs, Struct{Type: typ, Fields: fields})
	return uint32(len(f.Structs) - 1)
}

// FieldCount returns the total number of fields across all structs.
func (f *File) FieldCount() int {
	n := 0
	for i := range f.Structs {
		n += len(f.Structs[i].Fields)
	}
	return n
}

// Validate checks that every label is storable and every struct reference
// resolves. It does not check for cycles; the format permits any struct to be
// referenced from anywhere.
func (f *File) Validate() error {
	if len(f.Structs) == 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "file has no root struct")
	}
	if len(f.FileType) != 4 || len(f.Version) != 4 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "file type %q and version %q must be four bytes", f.FileType, f.Version)
	}
	n := uint32(len(f.Structs))
	for si := range f.Structs {
		for _, fld := range f.Structs[si].Fields {
			if err := cerrors.ValidateLabel(fld.Label); err != nil {
				return fmt.Errorf("struct %d: %w", si, err)
			}
			switch v := fld.Value.(type) {
			case nil:
				return cerrors.New(cerrors.ErrCodeInvalidInput, "struct %d field %q has no value", si, fld.Label)
			case StructRef:
				if uint32(v) >= n {
					return cerrors.New(cerrors.ErrCodeInvalidInput, "struct %d field %q references struct %d of %d", si, fld.Label, v, n)
				}
			case List:
				for _, idx := range v {
					if idx >= n {
						return cerrors.New(cerrors.ErrCodeInvalidInput, "struct %d list %q references struct %d of %d", si, fld.Label, idx, n)
					}
				}
			case ResRef:
				if len(v) > 255 {
					return cerrors.New(cerrors.ErrCodeInvalidResRef, "struct %d field %q resref longer than 255 bytes", si, fld.Label)
				}
			}
		}
	}
	return nil
}

// Field returns the first field with the given label.
func (s *Struct) Field(label string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Label == label {
			return f, true
		}
	}
	return Field{}, false
}

// Get returns the value of the field with the given label, or nil.
func (s *Struct) Get(label string) Value {
	f, _ := s.Field(label)
	return f.Value
}

// Has reports whether a field with the given label exists.
func (s *Struct) Has(label string) bool {
	_, ok := s.Field(label)
	return ok
}

// Set replaces the value of an existing field or appends a new one.
func (s *Struct) Set(label string, v Value) {
	for i := range s.Fields {
		if s.Fields[i].Label == label {
			s.Fields[i].Value = v
			return
		}
	}
	s.Fields = append(s.Fields, Field{Label: label, Value: v})
}

// Remove deletes every field with the given label.
func (s *Struct) Remove(label string) {
	s.Fields = slices.DeleteFunc(s.Fields, func(f Field) bool { return f.Label == label })
}

// Uint returns an integer field widened to uint64. Signed values are
// reinterpreted bit-for-bit at their own width.
func (s *Struct) Uint(label string) (uint64, bool) {
	switch v := s.Get(label).(type) {
	case Byte:
		return uint64(v), true
	case Char:
		return uint64(uint8(v)), true
	case Word:
		return uint64(v), true
	case Short:
		return uint64(uint16(v)), true
	case DWord:
		return uint64(v), true
	case Int:
		return uint64(uint32(v)), true
	case DWord64:
		return uint64(v), true
	case Int64:
		return uint64(v), true
	}
	return 0, false
}

// Text returns a CExoString or ResRef field as a string.
func (s *Struct) Text(label string) (string, bool) {
	switch v := s.Get(label).(type) {
	case String:
		return string(v), true
	case ResRef:
		return string(v), true
	}
	return "", false
}

// Loc returns a CExoLocString field.
func (s *Struct) Loc(label string) (LocString, bool) {
	v, ok := s.Get(label).(LocString)
	return v, ok
}

// List returns a list field's struct indices.
func (s *Struct) List(label string) (List, bool) {
	v, ok := s.Get(label).(List)
	return v, ok
}
