package errors

import (
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "EntryList", false},
		{"exactly 16", "ABCDEFGHIJKLMNOP", false},

		{"empty", "", true},
		{"too long", "ABCDEFGHIJKLMNOPQ", true},
		{"control char", "Entry\x01", true},
		{"non-ascii", "Entrée", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidLabel) {
				t.Errorf("ValidateLabel(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidLabel)
			}
		})
	}
}

func TestValidateResRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty means none", "", false},
		{"script", "nw_walk_wp", false},
		{"exactly 16", strings.Repeat("a", 16), false},

		{"too long", strings.Repeat("a", 17), true},
		{"extension", "script.ncs", true},
		{"path", "dir/script", true},
		{"backslash", "dir\\script", true},
		{"newline", "foo\nbar", true},
		{"non-ascii", "schön", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/dialog.dlg", false},
		{"absolute", "/tmp/dialog.dlg", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
