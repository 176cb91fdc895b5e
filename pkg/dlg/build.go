package dlg

import (
	"github.com/charmbracelet/log"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
)

// Build converts a parsed dialog file into a Dialogue.
//
// Building runs in two passes. The first creates every node and records its
// pointers by raw index without looking at their targets. The second walks
// all pointers once, marks those whose index is out of range as unresolved,
// and registers the rest. No step recurses along pointers, so shared nodes
// and cycles need no special handling.
//
// Malformed pointers are tolerated and reported in Dialogue.Diagnostics.
func Build(f *gff.File, opts ...Option) (*Dialogue, error) {
	o := newOptions(opts)
	if f.FileType != FileType {
		return nil, cerrors.New(cerrors.ErrCodeWrongFormat, "file type %q is not a dialog", f.FileType)
	}
	b := &builder{f: f, logger: o.Logger, d: &Dialogue{}}
	b.d.configure(o)
	b.construct()
	b.link()
	return b.d, nil
}

type builder struct {
	f      *gff.File
	d      *Dialogue
	logger *log.Logger
}

func (b *builder) diag(dg Diagnostic) {
	b.d.Diagnostics = append(b.d.Diagnostics, dg)
	b.logger.Warn("dialog load", "code", dg.Code, "at", dg.Owner, "slot", dg.Slot, "msg", dg.Message)
}

func (b *builder) construct() {
	root := b.f.Root()
	d := b.d

	d.DelayEntry = uintField(root, labelDelayEntry)
	d.DelayReply = uintField(root, labelDelayReply)
	d.EndConverAbort, _ = root.Text(labelEndConverAbort)
	d.EndConversation, _ = root.Text(labelEndConversation)
	d.NumWords = uintField(root, labelNumWords)
	d.PreventZoomIn = uintField(root, labelPreventZoomIn) != 0
	d.Extra = b.extras(root, rootLabels, StartRef)

	entries, _ := root.List(labelEntryList)
	replies, _ := root.List(labelReplyList)
	starts, _ := root.List(labelStartingList)

	d.Entries = make([]*Node, len(entries))
	for i, si := range entries {
		d.Entries[i] = b.node(KindEntry, i, si)
	}
	d.Replies = make([]*Node, len(replies))
	for i, si := range replies {
		d.Replies[i] = b.node(KindReply, i, si)
	}
	d.Starts = make([]Pointer, len(starts))
	for i, si := range starts {
		d.Starts[i] = b.pointer(KindEntry, si)
	}
}

func (b *builder) node(kind Kind, idx int, si uint32) *Node {
	s, _ := b.f.Struct(si)
	n := &Node{Kind: kind, Delay: NoDelay}
	ref := NodeRef{Kind: kind, Index: idx}

	n.Text, _ = s.Loc(labelText)
	n.Speaker, _ = s.Text(labelSpeaker)
	n.Comment, _ = s.Text(labelComment)
	n.Sound, _ = s.Text(labelSound)
	n.Script, _ = s.Text(labelScript)
	n.Quest, _ = s.Text(labelQuest)
	n.Animation = uintField(s, labelAnimation)
	n.AnimLoop = uintField(s, labelAnimLoop) != 0
	if s.Has(labelDelay) {
		n.Delay = uintField(s, labelDelay)
	}
	if v, ok := s.Uint(labelQuestEntry); ok {
		n.QuestEntry, n.HasQuestEntry = uint32(v), true
	}
	n.ActionParams = b.params(s, labelActionParams)

	list, _ := s.List(pointerListLabel(kind))
	n.Pointers = make([]Pointer, len(list))
	for i, pi := range list {
		n.Pointers[i] = b.pointer(kind.Child(), pi)
	}
	n.Extra = b.extras(s, nodeLabels, ref)
	return n
}

// pointer reads a pointer or start struct. The target is not checked here.
func (b *builder) pointer(target Kind, si uint32) Pointer {
	s, _ := b.f.Struct(si)
	p := Pointer{Target: target, Index: missingIndex}
	if v, ok := s.Uint(labelIndex); ok {
		p.Index = uint32(v)
	}
	p.IsLink = uintField(s, labelIsChild) != 0
	p.Condition, _ = s.Text(labelActive)
	p.LinkComment, _ = s.Text(labelLinkComment)
	p.ConditionParams = b.params(s, labelConditionParams)
	return p
}

func (b *builder) params(s *gff.Struct, label string) Params {
	list, ok := s.List(label)
	if !ok || len(list) == 0 {
		return nil
	}
	ps := make(Params, 0, len(list))
	for _, si := range list {
		kv, _ := b.f.Struct(si)
		k, _ := kv.Text(labelKey)
		v, _ := kv.Text(labelValue)
		ps = append(ps, Param{Key: k, Value: v})
	}
	return ps
}

// extras collects scalar fields outside the known schema. Nested structs and
// lists cannot be re-emitted faithfully and are dropped with a diagnostic.
func (b *builder) extras(s *gff.Struct, known map[string]bool, owner NodeRef) []gff.Field {
	var out []gff.Field
	for _, f := range s.Fields {
		if known[f.Label] {
			continue
		}
		switch f.Type() {
		case gff.TypeStruct, gff.TypeList:
			b.diag(diagf(cerrors.ErrCodeUnsupported, owner, -1, "dropped %s field %q", f.Type(), f.Label))
			continue
		}
		out = append(out, f)
	}
	return out
}

// link resolves every pointer against the node arrays and fills the registry.
func (b *builder) link() {
	d := b.d
	d.links = NewLinkRegistry()
	check := func(from NodeRef, slot int, p *Pointer) {
		if !d.resolves(*p) {
			p.Unresolved = true
			n := len(d.nodes(p.Target))
			b.diag(diagf(cerrors.ErrCodeUnresolvedPointer, from, slot,
				"%s index %d out of range (have %d)", p.Target, p.Index, n))
			return
		}
		d.links.Add(from, *p)
	}
	for i := range d.Starts {
		check(StartRef, i, &d.Starts[i])
	}
	for _, kind := range []Kind{KindEntry, KindReply} {
		for ni, n := range d.nodes(kind) {
			from := NodeRef{Kind: kind, Index: ni}
			for i := range n.Pointers {
				check(from, i, &n.Pointers[i])
			}
		}
	}
	for _, ref := range d.links.Targets() {
		if d.links.LinkOnly(ref) {
			b.diag(diagf(cerrors.ErrCodeOrphanLink, ref, -1, "referenced only by links"))
		}
	}
}

// missingIndex stands in for a pointer struct without an Index field.
const missingIndex uint32 = 0xFFFFFFFF

func uintField(s *gff.Struct, label string) uint32 {
	v, _ := s.Uint(label)
	return uint32(v)
}
