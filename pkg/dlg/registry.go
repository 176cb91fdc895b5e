package dlg

import (
	"maps"
	"slices"
)

// Incoming describes one pointer that targets a node.
type Incoming struct {
	From   NodeRef // owner of the pointer; StartRef for starting pointers
	IsLink bool
}

// LinkRegistry counts, for every node, the resolved pointers that target it.
// Counts are maintained incrementally as pointers are added and removed; the
// registry never walks the graph on its own.
//
// A LinkRegistry is not safe for concurrent use.
type LinkRegistry struct {
	in map[NodeRef][]Incoming
}

// NewLinkRegistry returns an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{in: make(map[NodeRef][]Incoming)}
}

// Add records that from owns pointer p. Unresolved pointers are ignored.
func (r *LinkRegistry) Add(from NodeRef, p Pointer) {
	if p.Unresolved {
		return
	}
	ref := p.Ref()
	r.in[ref] = append(r.in[ref], Incoming{From: from, IsLink: p.IsLink})
}

// Remove forgets one pointer from from to p's target with p's link flag.
// It reports whether a matching record was found.
func (r *LinkRegistry) Remove(from NodeRef, p Pointer) bool {
	if p.Unresolved {
		return false
	}
	ref := p.Ref()
	list := r.in[ref]
	want := Incoming{From: from, IsLink: p.IsLink}
	i := slices.Index(list, want)
	if i < 0 {
		return false
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(r.in, ref)
	} else {
		r.in[ref] = list
	}
	return true
}

// SetLink flips the link flag of one record from from to ref.
func (r *LinkRegistry) SetLink(from, ref NodeRef, isLink bool) bool {
	list := r.in[ref]
	i := slices.Index(list, Incoming{From: from, IsLink: !isLink})
	if i < 0 {
		return false
	}
	list[i].IsLink = isLink
	return true
}

// RefCount returns the number of pointers targeting ref.
func (r *LinkRegistry) RefCount(ref NodeRef) int { return len(r.in[ref]) }

// OwnerCount returns the number of non-link pointers targeting ref.
func (r *LinkRegistry) OwnerCount(ref NodeRef) int {
	n := 0
	for _, in := range r.in[ref] {
		if !in.IsLink {
			n++
		}
	}
	return n
}

// LinkOnly reports whether ref is referenced, but only by links.
func (r *LinkRegistry) LinkOnly(ref NodeRef) bool {
	return r.RefCount(ref) > 0 && r.OwnerCount(ref) == 0
}

// Incoming returns a copy of the records targeting ref, in insertion order.
func (r *LinkRegistry) Incoming(ref NodeRef) []Incoming {
	return slices.Clone(r.in[ref])
}

// Targets returns every node with at least one incoming pointer, sorted by
// kind then index.
func (r *LinkRegistry) Targets() []NodeRef {
	refs := slices.Collect(maps.Keys(r.in))
	slices.SortFunc(refs, compareRefs)
	return refs
}

// Remap rewrites every node reference through fn after nodes have been
// removed from the arrays. Records whose target or owner maps to false are
// dropped. StartRef is passed through unchanged.
func (r *LinkRegistry) Remap(fn func(NodeRef) (NodeRef, bool)) {
	out := make(map[NodeRef][]Incoming, len(r.in))
	for ref, list := range r.in {
		nref, ok := fn(ref)
		if !ok {
			continue
		}
		var kept []Incoming
		for _, in := range list {
			if in.From.Kind != KindStart {
				from, ok := fn(in.From)
				if !ok {
					continue
				}
				in.From = from
			}
			kept = append(kept, in)
		}
		if len(kept) > 0 {
			out[nref] = kept
		}
	}
	r.in = out
}

// Equal reports whether two registries hold the same records, ignoring
// record order.
func (r *LinkRegistry) Equal(o *LinkRegistry) bool {
	if len(r.in) != len(o.in) {
		return false
	}
	for ref, list := range r.in {
		other, ok := o.in[ref]
		if !ok || len(other) != len(list) {
			return false
		}
		a := slices.Clone(list)
		b := slices.Clone(other)
		slices.SortFunc(a, compareIncoming)
		slices.SortFunc(b, compareIncoming)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

func compareRefs(a, b NodeRef) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	return a.Index - b.Index
}

func compareIncoming(a, b Incoming) int {
	if c := compareRefs(a.From, b.From); c != 0 {
		return c
	}
	switch {
	case a.IsLink == b.IsLink:
		return 0
	case !a.IsLink:
		return -1
	}
	return 1
}
