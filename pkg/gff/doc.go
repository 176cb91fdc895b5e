// Package gff implements the generic hierarchical tagged-value binary format
// used by the game engine to persist structured resources such as dialogs.
//
// # Overview
//
// A GFF file is positional and offset-based rather than self-describing. It
// starts with a fixed 56-byte header (file type, version, and six offset/count
// pairs) followed by six blocks:
//
//   - Structs: fixed 12-byte records (type, data-or-field-index, field count)
//   - Fields: fixed 12-byte records (type, label index, data-or-offset)
//   - Labels: fixed 16-byte, null-padded ASCII names
//   - FieldData: variable-length payloads of complex fields
//   - FieldIndices: flat uint32 arrays listing the fields of multi-field structs
//   - ListIndices: count-prefixed uint32 arrays of struct indices
//
// All integers are little-endian and all offsets are absolute from the start
// of the file.
//
// # In-memory Model
//
// [File] is a flat arena of [Struct] values; index 0 is the root struct. A
// [Field] holds a [Value], a closed sum type over the fixed field-type
// enumeration. Nested structs and lists are represented by struct indices
// ([StructRef] and [List]) rather than by pointers, so the model mirrors the
// format's own index-based addressing and several lists may share one
// physical struct.
//
// # Reading
//
// [Read] parses the header, materializes every struct and field into flat
// arrays, and resolves complex values against the data blocks. It never
// recurses per nested struct, so arbitrarily deep or shared structures cannot
// exhaust the stack. Any offset or count that would read past the end of the
// input aborts with a [*ParseError]; there is no partial recovery.
//
// # Writing
//
// [Write] runs in two passes. The layout pass allocates field index ranges
// through a [FieldIndexTracker], interns labels, and computes every byte
// offset; the emission pass serializes the blocks, and the header is filled in
// last. An optional [Plan] fixes the order in which struct fields are laid
// out, which callers use to match the layout produced by other tools. The
// output is byte-reproducible for identical input.
//
// # Strings
//
// String payloads are stored as Windows-1252 by the game. The [Encoding]
// option converts between that code page and UTF-8; [EncodingUTF8] passes
// bytes through untouched.
package gff
