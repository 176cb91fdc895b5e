package dlg

import (
	"context"
	"fmt"
	"slices"
	"strings"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

// DeletePolicy selects how removing a pointer cascades to the nodes below it.
type DeletePolicy uint8

const (
	// DeleteConservative removes a node once no pointer references it, then
	// considers its children, down to MaxCascadeDepth levels. Nodes on a
	// cycle keep each other alive, and nodes deeper than the limit are left
	// in place unreferenced.
	DeleteConservative DeletePolicy = iota

	// DeleteStrict computes everything reachable from the removed pointer
	// and deletes each such node that no surviving start or untouched node
	// can still reach. Unreferenced cycles are removed.
	DeleteStrict
)

// MaxCascadeDepth bounds conservative cascades.
const MaxCascadeDepth = 50

func (p DeletePolicy) String() string {
	switch p {
	case DeleteConservative:
		return "conservative"
	case DeleteStrict:
		return "strict"
	}
	return fmt.Sprintf("DeletePolicy(%d)", uint8(p))
}

// ParseDeletePolicy parses the names returned by DeletePolicy.String. The
// empty string selects DeleteConservative.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "conservative":
		return DeleteConservative, nil
	case "strict":
		return DeleteStrict, nil
	}
	return 0, cerrors.New(cerrors.ErrCodeInvalidConfig, "unknown delete policy %q (want conservative or strict)", s)
}

// DeleteResult reports what a deletion did.
type DeleteResult struct {
	// Removed lists deleted nodes by their index before the arrays were
	// compacted.
	Removed []NodeRef

	// Preserved lists nodes that lost a reference but were kept, by their
	// index after compaction.
	Preserved []NodeRef

	// Promoted lists nodes whose first link became their owning pointer,
	// by their index after compaction.
	Promoted []NodeRef

	// Dropped counts surviving pointers removed because their target was
	// deleted.
	Dropped int

	Diagnostics []Diagnostic
}

// RemovePointer removes pointer slot of from and deletes whatever the
// dialogue's DeletePolicy says is no longer needed. from may be [StartRef].
func (d *Dialogue) RemovePointer(from NodeRef, slot int) (DeleteResult, error) {
	ptrs := d.pointerSlice(from)
	if ptrs == nil {
		return DeleteResult{}, cerrors.New(cerrors.ErrCodeNotFound, "no node %s", from)
	}
	if slot < 0 || slot >= len(*ptrs) {
		return DeleteResult{}, cerrors.New(cerrors.ErrCodeNotFound, "%s has no pointer %d (have %d)", from, slot, len(*ptrs))
	}
	p := (*ptrs)[slot]
	*ptrs = slices.Delete(*ptrs, slot, slot+1)

	c := d.newCascade()
	c.unlink(from, p)
	var seeds []NodeRef
	if !p.Unresolved && d.resolves(p) {
		seeds = append(seeds, p.Ref())
	}
	return c.run(seeds, nil), nil
}

// RemoveStart removes starting pointer slot. See RemovePointer.
func (d *Dialogue) RemoveStart(slot int) (DeleteResult, error) {
	return d.RemovePointer(StartRef, slot)
}

// DeleteNode removes ref together with every pointer that targets it, then
// cascades into its children under the dialogue's DeletePolicy.
func (d *Dialogue) DeleteNode(ref NodeRef) (DeleteResult, error) {
	if _, ok := d.Node(ref); !ok {
		return DeleteResult{}, cerrors.New(cerrors.ErrCodeNotFound, "no node %s", ref)
	}
	c := d.newCascade()
	c.res.Dropped = c.dropPointersTo(map[NodeRef]bool{ref: true})
	return c.run(nil, []NodeRef{ref}), nil
}

// cascade holds the state of one deletion.
type cascade struct {
	d         *Dialogue
	batch     map[NodeRef]bool
	lost      map[NodeRef]bool // nodes that lost an owning pointer
	preserved map[NodeRef]bool
	res       DeleteResult
}

func (d *Dialogue) newCascade() *cascade {
	d.Links()
	return &cascade{
		d:         d,
		batch:     make(map[NodeRef]bool),
		lost:      make(map[NodeRef]bool),
		preserved: make(map[NodeRef]bool),
	}
}

func (c *cascade) diag(dg Diagnostic) {
	c.res.Diagnostics = append(c.res.Diagnostics, dg)
}

// unlink forgets one pointer in the registry.
func (c *cascade) unlink(from NodeRef, p Pointer) {
	if p.Unresolved || !c.d.resolves(p) {
		return
	}
	c.d.links.Remove(from, p)
	if !p.IsLink {
		c.lost[p.Ref()] = true
	}
}

// mark adds ref to the batch and unlinks its outgoing pointers. It returns
// the resolved targets of those pointers.
func (c *cascade) mark(ref NodeRef) []NodeRef {
	c.batch[ref] = true
	delete(c.preserved, ref)
	var children []NodeRef
	n, _ := c.d.Node(ref)
	for _, p := range n.Pointers {
		if p.Unresolved || !c.d.resolves(p) {
			continue
		}
		c.unlink(ref, p)
		children = append(children, p.Ref())
	}
	return children
}

func (c *cascade) run(seeds, forced []NodeRef) DeleteResult {
	d := c.d
	switch d.DeletePolicy {
	case DeleteStrict:
		c.strict(seeds, forced)
	default:
		c.conservative(seeds, forced)
	}

	removed := make([]NodeRef, 0, len(c.batch))
	for ref := range c.batch {
		removed = append(removed, ref)
	}
	slices.SortFunc(removed, compareRefs)
	c.res.Removed = removed

	if len(c.batch) > 0 {
		c.res.Dropped += c.dropPointersTo(c.batch)
	}
	promoted := c.promote()
	remap := d.compact(c.batch)

	for _, ref := range sortedRefs(c.preserved) {
		if nref, ok := remap(ref); ok {
			c.res.Preserved = append(c.res.Preserved, nref)
		}
	}
	for _, ref := range promoted {
		if nref, ok := remap(ref); ok {
			c.res.Promoted = append(c.res.Promoted, nref)
		}
	}

	d.log().Debug("dialog delete", "policy", d.DeletePolicy, "removed", len(c.res.Removed),
		"preserved", len(c.res.Preserved), "promoted", len(c.res.Promoted), "dropped", c.res.Dropped)
	d.codecHooks().OnDelete(context.Background(), observability.DeleteEvent{
		Policy:    d.DeletePolicy.String(),
		Removed:   len(c.res.Removed),
		Preserved: len(c.res.Preserved),
		Promoted:  len(c.res.Promoted),
	})
	return c.res
}

// conservative deletes candidates whose reference count has dropped to
// zero, breadth first, stopping at MaxCascadeDepth.
func (c *cascade) conservative(seeds, forced []NodeRef) {
	type item struct {
		ref   NodeRef
		depth int
	}
	var queue []item
	for _, ref := range forced {
		for _, ch := range c.mark(ref) {
			queue = append(queue, item{ch, 1})
		}
	}
	for _, ref := range seeds {
		queue = append(queue, item{ref, 1})
	}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if c.batch[it.ref] {
			continue
		}
		if c.d.links.RefCount(it.ref) > 0 {
			c.preserved[it.ref] = true
			continue
		}
		if it.depth > MaxCascadeDepth {
			if !c.preserved[it.ref] {
				c.diag(diagf(cerrors.ErrCodeCascadeLimit, it.ref, -1,
					"left unreferenced: cascade stopped at depth %d", MaxCascadeDepth))
			}
			c.preserved[it.ref] = true
			continue
		}
		for _, ch := range c.mark(it.ref) {
			queue = append(queue, item{ch, it.depth + 1})
		}
	}
}

// strict deletes every node reachable from the seeds that is no longer
// reachable from a start or from any node outside the affected region.
func (c *cascade) strict(seeds, forced []NodeRef) {
	d := c.d
	skip := make(map[NodeRef]bool, len(forced))
	for _, ref := range forced {
		skip[ref] = true
	}
	roots := slices.Clone(seeds)
	for _, ref := range forced {
		n, _ := d.Node(ref)
		for _, p := range n.Pointers {
			if !p.Unresolved && d.resolves(p) {
				roots = append(roots, p.Ref())
			}
		}
	}
	region := d.reach(roots, skip)

	var live []NodeRef
	for _, p := range d.Starts {
		if !p.Unresolved && d.resolves(p) {
			live = append(live, p.Ref())
		}
	}
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i := range d.nodes(kind) {
			ref := NodeRef{Kind: kind, Index: i}
			if !region[ref] && !skip[ref] {
				live = append(live, ref)
			}
		}
	}
	alive := d.reach(live, skip)

	for _, ref := range forced {
		c.mark(ref)
	}
	for _, ref := range sortedRefs(region) {
		if !alive[ref] {
			c.mark(ref)
		}
	}
	for ref := range region {
		if alive[ref] && (c.lost[ref] || slices.Contains(seeds, ref)) {
			c.preserved[ref] = true
		}
	}
}

// dropPointersTo removes every pointer outside targets that resolves into
// targets, and returns how many were removed.
func (c *cascade) dropPointersTo(targets map[NodeRef]bool) int {
	d := c.d
	dropped := 0
	drop := func(from NodeRef, ptrs *[]Pointer) {
		kept := (*ptrs)[:0]
		for slot, p := range *ptrs {
			if !p.Unresolved && d.resolves(p) && targets[p.Ref()] {
				c.unlink(from, p)
				dropped++
				c.diag(diagf(cerrors.ErrCodeInvalidPointer, from, slot, "removed pointer to deleted %s", p.Ref()))
				continue
			}
			kept = append(kept, p)
		}
		*ptrs = kept
	}
	drop(StartRef, &d.Starts)
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i, n := range d.nodes(kind) {
			ref := NodeRef{Kind: kind, Index: i}
			if c.batch[ref] || targets[ref] {
				continue
			}
			drop(ref, &n.Pointers)
		}
	}
	return dropped
}

// promote turns the first link into the owning pointer for every surviving
// node that lost its owner and is now referenced only by links.
func (c *cascade) promote() []NodeRef {
	d := c.d
	var out []NodeRef
	for _, ref := range sortedRefs(c.lost) {
		if c.batch[ref] || !d.links.LinkOnly(ref) {
			continue
		}
		in := d.links.Incoming(ref)[0]
		ptrs := d.Pointers(in.From)
		for slot := range ptrs {
			p := &ptrs[slot]
			if p.IsLink && !p.Unresolved && p.Ref() == ref {
				p.IsLink = false
				d.links.SetLink(in.From, ref, false)
				out = append(out, ref)
				c.diag(diagf(cerrors.ErrCodeOrphanLink, in.From, slot, "link to %s promoted to owning pointer", ref))
				break
			}
		}
	}
	return out
}

// compact removes batch nodes from the arrays and renumbers every pointer
// and registry record. It returns the old-to-new mapping.
func (d *Dialogue) compact(batch map[NodeRef]bool) func(NodeRef) (NodeRef, bool) {
	newIdx := [2][]int{make([]int, len(d.Entries)), make([]int, len(d.Replies))}
	for _, kind := range []Kind{KindEntry, KindReply} {
		nodes := d.nodes(kind)
		kept := nodes[:0]
		for i, n := range nodes {
			if batch[NodeRef{Kind: kind, Index: i}] {
				newIdx[kind][i] = -1
				continue
			}
			newIdx[kind][i] = len(kept)
			kept = append(kept, n)
		}
		clear(nodes[len(kept):])
		if kind == KindEntry {
			d.Entries = kept
		} else {
			d.Replies = kept
		}
	}
	remap := func(ref NodeRef) (NodeRef, bool) {
		if ref.Kind == KindStart {
			return ref, true
		}
		tbl := newIdx[ref.Kind]
		if ref.Index < 0 || ref.Index >= len(tbl) || tbl[ref.Index] < 0 {
			return NodeRef{}, false
		}
		return NodeRef{Kind: ref.Kind, Index: tbl[ref.Index]}, true
	}
	if len(batch) == 0 {
		return remap
	}
	fix := func(ptrs []Pointer) {
		for i := range ptrs {
			p := &ptrs[i]
			if p.Unresolved {
				continue
			}
			if nref, ok := remap(p.Ref()); ok {
				p.Index = uint32(nref.Index)
			}
		}
	}
	fix(d.Starts)
	for _, n := range d.Entries {
		fix(n.Pointers)
	}
	for _, n := range d.Replies {
		fix(n.Pointers)
	}
	d.links.Remap(remap)
	return remap
}

func sortedRefs(m map[NodeRef]bool) []NodeRef {
	out := make([]NodeRef, 0, len(m))
	for ref, ok := range m {
		if ok {
			out = append(out, ref)
		}
	}
	slices.SortFunc(out, compareRefs)
	return out
}
