package dlg

import (
	"fmt"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// Diagnostic is a tolerated problem found while loading, saving, or editing.
// Diagnostics never abort an operation.
type Diagnostic struct {
	Code    cerrors.Code
	Owner   NodeRef // node owning the offending pointer or field
	Slot    int     // pointer slot within Owner, or -1
	Message string
}

func (d Diagnostic) String() string {
	if d.Slot >= 0 {
		return fmt.Sprintf("%s %s[%d]: %s", d.Code, d.Owner, d.Slot, d.Message)
	}
	return fmt.Sprintf("%s %s: %s", d.Code, d.Owner, d.Message)
}

func diagf(code cerrors.Code, owner NodeRef, slot int, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Owner: owner, Slot: slot, Message: fmt.Sprintf(format, args...)}
}
