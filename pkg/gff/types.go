package gff

import "fmt"

// FieldType is the on-disk type tag of a field.
type FieldType uint32

// Field type tags, in on-disk numbering.
const (
	TypeByte      FieldType = 0
	TypeChar      FieldType = 1
	TypeWord      FieldType = 2
	TypeShort     FieldType = 3
	TypeDWord     FieldType = 4
	TypeInt       FieldType = 5
	TypeDWord64   FieldType = 6
	TypeInt64     FieldType = 7
	TypeFloat     FieldType = 8
	TypeDouble    FieldType = 9
	TypeString    FieldType = 10
	TypeResRef    FieldType = 11
	TypeLocString FieldType = 12
	TypeVoid      FieldType = 13
	TypeStruct    FieldType = 14
	TypeList      FieldType = 15
)

var typeNames = [...]string{
	TypeByte:      "BYTE",
	TypeChar:      "CHAR",
	TypeWord:      "WORD",
	TypeShort:     "SHORT",
	TypeDWord:     "DWORD",
	TypeInt:       "INT",
	TypeDWord64:   "DWORD64",
	TypeInt64:     "INT64",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeString:    "CExoString",
	TypeResRef:    "ResRef",
	TypeLocString: "CExoLocString",
	TypeVoid:      "VOID",
	TypeStruct:    "Struct",
	TypeList:      "List",
}

func (t FieldType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", uint32(t))
}

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool { return t <= TypeList }

// Inline reports whether values of this type are stored directly in the
// field record rather than in the FieldData block.
func (t FieldType) Inline() bool {
	switch t {
	case TypeByte, TypeChar, TypeWord, TypeShort, TypeDWord, TypeInt, TypeFloat:
		return true
	}
	return false
}

// Complex reports whether values of this type live in the FieldData block.
func (t FieldType) Complex() bool {
	switch t {
	case TypeDWord64, TypeInt64, TypeDouble, TypeString, TypeResRef, TypeLocString, TypeVoid:
		return true
	}
	return false
}

// Value is the payload of a field. The set of implementations is closed and
// corresponds one-to-one with the [FieldType] enumeration; switch on the
// concrete type to access the data.
type Value interface {
	Type() FieldType
	isValue()
}

type (
	// Byte is an unsigned 8-bit value.
	Byte uint8
	// Char is a signed 8-bit value.
	Char int8
	// Word is an unsigned 16-bit value.
	Word uint16
	// Short is a signed 16-bit value.
	Short int16
	// DWord is an unsigned 32-bit value.
	DWord uint32
	// Int is a signed 32-bit value.
	Int int32
	// DWord64 is an unsigned 64-bit value.
	DWord64 uint64
	// Int64 is a signed 64-bit value.
	Int64 int64
	// Float is a 32-bit IEEE 754 value.
	Float float32
	// Double is a 64-bit IEEE 754 value.
	Double float64
	// String is a length-prefixed string, decoded to UTF-8.
	String string
	// ResRef is a resource name of at most 16 characters.
	ResRef string
	// Void is an opaque byte blob.
	Void []byte
	// StructRef is the index of a nested struct in the file's struct array.
	StructRef uint32
	// List is an ordered sequence of struct indices.
	List []uint32
)

func (Byte) Type() FieldType      { return TypeByte }
func (Char) Type() FieldType      { return TypeChar }
func (Word) Type() FieldType      { return TypeWord }
func (Short) Type() FieldType     { return TypeShort }
func (DWord) Type() FieldType     { return TypeDWord }
func (Int) Type() FieldType       { return TypeInt }
func (DWord64) Type() FieldType   { return TypeDWord64 }
func (Int64) Type() FieldType     { return TypeInt64 }
func (Float) Type() FieldType     { return TypeFloat }
func (Double) Type() FieldType    { return TypeDouble }
func (String) Type() FieldType    { return TypeString }
func (ResRef) Type() FieldType    { return TypeResRef }
func (LocString) Type() FieldType { return TypeLocString }
func (Void) Type() FieldType      { return TypeVoid }
func (StructRef) Type() FieldType { return TypeStruct }
func (List) Type() FieldType      { return TypeList }

func (Byte) isValue()      {}
func (Char) isValue()      {}
func (Word) isValue()      {}
func (Short) isValue()     {}
func (DWord) isValue()     {}
func (Int) isValue()       {}
func (DWord64) isValue()   {}
func (Int64) isValue()     {}
func (Float) isValue()     {}
func (Double) isValue()    {}
func (String) isValue()    {}
func (ResRef) isValue()    {}
func (LocString) isValue() {}
func (Void) isValue()      {}
func (StructRef) isValue() {}
func (List) isValue()      {}
