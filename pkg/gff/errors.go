package gff

import (
	"fmt"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// Section names a region of the file for error reporting.
type Section string

const (
	SectionHeader       Section = "header"
	SectionStructs      Section = "structs"
	SectionFields       Section = "fields"
	SectionLabels       Section = "labels"
	SectionFieldData    Section = "field data"
	SectionFieldIndices Section = "field indices"
	SectionListIndices  Section = "list indices"
)

// ParseError reports malformed input. It is always returned to the caller;
// the reader never attempts partial recovery.
type ParseError struct {
	Section Section
	Offset  int64 // absolute byte offset of the offending record, -1 if unknown
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("gff: %s at offset %d: %s", e.Section, e.Offset, e.Reason)
	}
	return fmt.Sprintf("gff: %s: %s", e.Section, e.Reason)
}

// Code returns the error code for this error type.
func (e *ParseError) Code() cerrors.Code { return cerrors.ErrCodeParse }

func parseErrorf(sec Section, off int64, format string, args ...any) *ParseError {
	return &ParseError{Section: sec, Offset: off, Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports two field index allocations that overlap. It
// indicates a bug in the code driving the writer, never bad input.
type ConflictError struct {
	First, Second Allocation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("gff: field index range %s overlaps %s", e.Second, e.First)
}

// Code returns the error code for this error type.
func (e *ConflictError) Code() cerrors.Code { return cerrors.ErrCodeIndexConflict }
