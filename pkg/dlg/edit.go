package dlg

import (
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// AddNode appends n to the entry or reply array, according to n.Kind, and
// registers its pointers. Every pointer must target an existing node of the
// opposite kind.
func (d *Dialogue) AddNode(n *Node) (NodeRef, error) {
	if n == nil || (n.Kind != KindEntry && n.Kind != KindReply) {
		return NodeRef{}, cerrors.New(cerrors.ErrCodeInvalidInput, "node must be an entry or a reply")
	}
	for i, p := range n.Pointers {
		if err := d.checkPointer(n.Kind, p); err != nil {
			return NodeRef{}, cerrors.Wrap(cerrors.ErrCodeInvalidPointer, err, "pointer %d", i)
		}
	}
	var ref NodeRef
	switch n.Kind {
	case KindEntry:
		d.Entries = append(d.Entries, n)
		ref = NodeRef{Kind: KindEntry, Index: len(d.Entries) - 1}
	case KindReply:
		d.Replies = append(d.Replies, n)
		ref = NodeRef{Kind: KindReply, Index: len(d.Replies) - 1}
	}
	links := d.Links()
	for i := range n.Pointers {
		n.Pointers[i].Unresolved = false
		links.Add(ref, n.Pointers[i])
	}
	return ref, nil
}

// AddEntry appends an NPC line with English text.
func (d *Dialogue) AddEntry(text string) NodeRef {
	ref, _ := d.AddNode(NewNode(KindEntry, text))
	return ref
}

// AddReply appends a player line with English text.
func (d *Dialogue) AddReply(text string) NodeRef {
	ref, _ := d.AddNode(NewNode(KindReply, text))
	return ref
}

func (d *Dialogue) checkPointer(owner Kind, p Pointer) error {
	if want := owner.Child(); p.Target != want {
		return cerrors.New(cerrors.ErrCodeInvalidPointer, "%s pointer must target a %s, not a %s", owner, want, p.Target)
	}
	if !d.resolves(p) {
		return cerrors.New(cerrors.ErrCodeInvalidPointer, "%s index %d out of range (have %d)",
			p.Target, p.Index, len(d.nodes(p.Target)))
	}
	return nil
}

// AddPointer appends p to the pointers of from and returns its slot.
// from may be [StartRef].
func (d *Dialogue) AddPointer(from NodeRef, p Pointer) (int, error) {
	ptrs := d.pointerSlice(from)
	if ptrs == nil {
		return 0, cerrors.New(cerrors.ErrCodeNotFound, "no node %s", from)
	}
	if err := d.checkPointer(from.Kind, p); err != nil {
		return 0, err
	}
	p.Unresolved = false
	*ptrs = append(*ptrs, p)
	d.Links().Add(from, p)
	return len(*ptrs) - 1, nil
}

// Connect adds an owning pointer from one node to another.
func (d *Dialogue) Connect(from, to NodeRef) (int, error) {
	return d.AddPointer(from, Pointer{Index: uint32(to.Index), Target: to.Kind})
}

// Link adds a link pointer from one node to another.
func (d *Dialogue) Link(from, to NodeRef) (int, error) {
	return d.AddPointer(from, Pointer{Index: uint32(to.Index), Target: to.Kind, IsLink: true})
}

// AddStart adds a starting pointer to the given entry.
func (d *Dialogue) AddStart(entry int) (int, error) {
	return d.AddPointer(StartRef, Pointer{Index: uint32(entry), Target: KindEntry})
}
