package errors

import (
	"strings"
	"unicode"
)

// Format limits shared by the binary codec.
const (
	// MaxLabelLength is the fixed width of a label record.
	MaxLabelLength = 16

	// MaxResRefLength is the longest resource reference the game accepts.
	MaxResRefLength = 16
)

// ValidateLabel validates a field label for storage in the fixed-width label table.
//
// The validation rules are:
//   - No empty labels
//   - Maximum length of 16 bytes
//   - Printable ASCII only (labels are stored without an encoding)
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}
	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "label %q too long (max %d bytes)", label, MaxLabelLength)
	}
	for i := 0; i < len(label); i++ {
		if c := label[i]; c < 0x20 || c > 0x7e {
			return New(ErrCodeInvalidLabel, "label %q contains non-printable byte 0x%02x", label, c)
		}
	}
	return nil
}

// ValidateResRef validates a resource reference (script, sound, or dialog name).
//
// Empty references are valid and mean "none". Otherwise:
//   - Maximum length of 16 bytes
//   - No control characters
//   - No path separators or dots (resrefs are bare resource names)
func ValidateResRef(ref string) error {
	if ref == "" {
		return nil
	}
	if len(ref) > MaxResRefLength {
		return New(ErrCodeInvalidResRef, "resref %q too long (max %d characters)", ref, MaxResRefLength)
	}
	for _, r := range ref {
		if r > unicode.MaxASCII || unicode.IsControl(r) {
			return New(ErrCodeInvalidResRef, "resref %q contains invalid characters", ref)
		}
	}
	if strings.ContainsAny(ref, "/\\.") {
		return New(ErrCodeInvalidResRef, "resref %q cannot contain path separators or dots", ref)
	}
	return nil
}

// ValidatePath validates an output file path given to the CLI.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
