package dlg

import (
	"errors"
	"fmt"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// Validate checks the structural invariants of d: nodes sit in the array of
// their kind, pointers alternate between entries and replies and resolve
// (unless flagged unresolved), no node is reachable only through links,
// script and sound names are valid resrefs, and the registry matches the
// pointers. All problems are returned joined.
func (d *Dialogue) Validate() error {
	var errs []error
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i, n := range d.nodes(kind) {
			ref := NodeRef{Kind: kind, Index: i}
			if n == nil {
				errs = append(errs, cerrors.New(cerrors.ErrCodeInvalidInput, "%s is nil", ref))
				continue
			}
			if n.Kind != kind {
				errs = append(errs, cerrors.New(cerrors.ErrCodeInvalidInput, "%s has kind %s", ref, n.Kind))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	d.eachPointer(func(from NodeRef, slot int, p Pointer) {
		if want := from.Kind.Child(); p.Target != want {
			errs = append(errs, cerrors.New(cerrors.ErrCodeInvalidPointer,
				"%s[%d] targets a %s, want a %s", from, slot, p.Target, want))
			return
		}
		if !p.Unresolved && !d.resolves(p) {
			errs = append(errs, cerrors.New(cerrors.ErrCodeInvalidPointer,
				"%s[%d] targets missing %s", from, slot, p.Ref()))
		}
	})

	resref := func(what, ref string) {
		if err := cerrors.ValidateResRef(ref); err != nil {
			errs = append(errs, cerrors.New(cerrors.ErrCodeInvalidResRef, "%s: %s", what, cerrors.UserMessage(err)))
		}
	}
	resref("EndConversation", d.EndConversation)
	resref("EndConverAbort", d.EndConverAbort)
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i, n := range d.nodes(kind) {
			ref := NodeRef{Kind: kind, Index: i}
			resref(ref.String()+" script", n.Script)
			resref(ref.String()+" sound", n.Sound)
		}
	}
	d.eachPointer(func(from NodeRef, slot int, p Pointer) {
		resref(fmt.Sprintf("%s[%d] condition", from, slot), p.Condition)
	})

	fresh := NewLinkRegistry()
	d.eachPointer(func(from NodeRef, _ int, p Pointer) {
		if !p.Unresolved && d.resolves(p) {
			fresh.Add(from, p)
		}
	})
	for _, ref := range fresh.Targets() {
		if fresh.LinkOnly(ref) {
			errs = append(errs, cerrors.New(cerrors.ErrCodeOrphanLink, "%s is referenced only by links", ref))
		}
	}
	if d.links != nil && !d.links.Equal(fresh) {
		errs = append(errs, cerrors.New(cerrors.ErrCodeInternal, "link registry does not match pointers"))
	}
	return errors.Join(errs...)
}
