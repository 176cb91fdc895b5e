package dlg

import (
	"fmt"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
)

// Flattened is a dialogue converted to its file form.
type Flattened struct {
	File *gff.File

	// Plan orders field allocation: root, entries, replies, pointers,
	// starts, each followed by its parameter structs.
	Plan *gff.Plan

	// Nodes maps the struct index of every entry and reply to the node.
	Nodes map[uint32]NodeRef

	LogicalPointers  int
	PhysicalPointers int
	Diagnostics      []Diagnostic
}

// Flatten converts d into a GFF file and a field allocation plan.
//
// Structs are placed in conversation-flow order: the root, then for every
// start its struct followed by the subtree it reaches, each node followed by
// its parameters and its pointer structs. EntryList and ReplyList keep array
// order. With compaction on, pointers sharing a target and link flag share a
// struct.
func Flatten(d *Dialogue, opts ...Option) (*Flattened, error) {
	o := newOptions(opts)
	fl := &flattener{
		d:        d,
		f:        gff.NewFile(FileType),
		pointers: NewCompactPointerManager(o.CompactPointers),
		starts:   NewCompactPointerManager(o.CompactPointers),
		nodeIdx:  [2][]uint32{make([]uint32, len(d.Entries)), make([]uint32, len(d.Replies))},
		params:   make(map[uint32][]uint32),
		ptrIdx:   make(map[NodeRef][]uint32),
	}
	if err := fl.assign(); err != nil {
		return nil, err
	}
	fl.fill()
	res := &Flattened{
		File:             fl.f,
		Plan:             fl.plan(),
		LogicalPointers:  fl.pointers.Logical() + fl.starts.Logical(),
		PhysicalPointers: fl.pointers.Physical() + fl.starts.Physical(),
		Diagnostics:      fl.diags,
		Nodes:            make(map[uint32]NodeRef, d.NodeCount()),
	}
	for k, idx := range fl.nodeIdx {
		for i, si := range idx {
			res.Nodes[si] = NodeRef{Kind: Kind(k), Index: i}
		}
	}
	for _, dg := range fl.diags {
		o.Logger.Warn("dialog save", "code", dg.Code, "at", dg.Owner, "slot", dg.Slot, "msg", dg.Message)
	}
	return res, nil
}

type flattener struct {
	d        *Dialogue
	f        *gff.File
	pointers *CompactPointerManager
	starts   *CompactPointerManager

	nodeIdx [2][]uint32          // struct index per entry and reply
	ptrIdx  map[NodeRef][]uint32 // struct index per pointer slot
	params  map[uint32][]uint32  // parameter structs per owning struct
	shared  map[uint32]ptrStruct // payload of each pointer and start struct
	diags   []Diagnostic
}

// ptrStruct is the first pointer assigned to a physical struct.
type ptrStruct struct {
	p     Pointer
	slot  int
	start bool
}

// alloc reserves the next struct index.
func (fl *flattener) alloc() uint32 {
	return fl.f.AddStruct(0)
}

func (fl *flattener) allocParams(owner uint32, ps Params) {
	if len(ps) == 0 {
		return
	}
	idx := make([]uint32, len(ps))
	for i := range ps {
		idx[i] = fl.alloc()
	}
	fl.params[owner] = idx
}

// assign gives every struct its index by walking the conversation.
func (fl *flattener) assign() error {
	d := fl.d
	fl.shared = make(map[uint32]ptrStruct)
	for _, ev := range d.flow() {
		switch ev.kind {
		case evNode:
			n, _ := d.Node(ev.node)
			si := fl.alloc()
			fl.nodeIdx[ev.node.Kind][ev.node.Index] = si
			fl.allocParams(si, n.ActionParams)

		case evStart, evPointer:
			mgr := fl.pointers
			if ev.kind == evStart {
				mgr = fl.starts
			}
			p := d.Pointers(ev.owner)[ev.slot]
			if ev.owner.Kind != KindStart && p.Target != ev.owner.Kind.Child() {
				return cerrors.New(cerrors.ErrCodeInvalidPointer, "%s[%d] targets a %s", ev.owner, ev.slot, p.Target)
			}
			si, fresh, conflict := mgr.Acquire(p, fl.alloc)
			if fresh {
				fl.shared[si] = ptrStruct{p: p, slot: ev.slot, start: ev.kind == evStart}
				fl.allocParams(si, p.ConditionParams)
			}
			if conflict {
				fl.diags = append(fl.diags, diagf(cerrors.ErrCodePointerConflict, ev.owner, ev.slot,
					"shares a struct with a pointer to %s whose condition or comment differs; first one kept", p.Ref()))
			}
			list := fl.ptrIdx[ev.owner]
			if list == nil {
				list = make([]uint32, len(d.Pointers(ev.owner)))
				fl.ptrIdx[ev.owner] = list
			}
			list[ev.slot] = si
		}
	}
	return nil
}

// fill writes the fields of every struct now that all indices are known.
func (fl *flattener) fill() {
	d := fl.d
	root := fl.f.Root()
	root.Fields = []gff.Field{
		{Label: labelDelayEntry, Value: gff.DWord(d.DelayEntry)},
		{Label: labelDelayReply, Value: gff.DWord(d.DelayReply)},
		{Label: labelEndConverAbort, Value: gff.ResRef(d.EndConverAbort)},
		{Label: labelEndConversation, Value: gff.ResRef(d.EndConversation)},
		{Label: labelEntryList, Value: gff.List(fl.nodeIdx[KindEntry])},
		{Label: labelNumWords, Value: gff.DWord(d.NumWords)},
		{Label: labelPreventZoomIn, Value: boolByte(d.PreventZoomIn)},
		{Label: labelReplyList, Value: gff.List(fl.nodeIdx[KindReply])},
		{Label: labelStartingList, Value: gff.List(fl.ptrIdx[StartRef])},
	}
	root.Fields = append(root.Fields, d.Extra...)

	for _, kind := range []Kind{KindEntry, KindReply} {
		for i, n := range d.nodes(kind) {
			ref := NodeRef{Kind: kind, Index: i}
			si := fl.nodeIdx[kind][i]
			fl.f.Structs[si] = gff.Struct{Type: uint32(i), Fields: fl.nodeFields(ref, n, si)}
		}
	}
	for si, ps := range fl.shared {
		fl.fillPointer(si, ps)
	}
}

func (fl *flattener) nodeFields(ref NodeRef, n *Node, si uint32) []gff.Field {
	fs := make([]gff.Field, 0, 12+len(n.Extra))
	if ref.Kind == KindEntry {
		fs = append(fs, gff.Field{Label: labelSpeaker, Value: gff.String(n.Speaker)})
	}
	fs = append(fs,
		gff.Field{Label: labelAnimation, Value: gff.DWord(n.Animation)},
		gff.Field{Label: labelAnimLoop, Value: boolByte(n.AnimLoop)},
		gff.Field{Label: labelText, Value: n.Text},
		gff.Field{Label: labelScript, Value: gff.ResRef(n.Script)},
		gff.Field{Label: labelActionParams, Value: fl.paramList(si)},
		gff.Field{Label: labelDelay, Value: gff.DWord(n.Delay)},
		gff.Field{Label: labelComment, Value: gff.String(n.Comment)},
		gff.Field{Label: labelSound, Value: gff.ResRef(n.Sound)},
		gff.Field{Label: labelQuest, Value: gff.String(n.Quest)},
	)
	if n.HasQuestEntry {
		fs = append(fs, gff.Field{Label: labelQuestEntry, Value: gff.DWord(n.QuestEntry)})
	}
	fs = append(fs, gff.Field{Label: pointerListLabel(ref.Kind), Value: gff.List(fl.ptrIdx[ref])})
	fs = append(fs, n.Extra...)
	fl.fillParams(si, n.ActionParams)
	return fs
}

// fillPointer writes a pointer or start struct from the first pointer that
// was assigned to it.
func (fl *flattener) fillPointer(si uint32, ps ptrStruct) {
	p := ps.p
	s := &fl.f.Structs[si]
	s.Type = uint32(ps.slot)
	s.Fields = []gff.Field{
		{Label: labelIndex, Value: gff.DWord(p.Index)},
		{Label: labelActive, Value: gff.ResRef(p.Condition)},
		{Label: labelConditionParams, Value: fl.paramList(si)},
	}
	if !ps.start {
		s.Fields = append(s.Fields, gff.Field{Label: labelIsChild, Value: boolByte(p.IsLink)})
		if p.IsLink || p.LinkComment != "" {
			s.Fields = append(s.Fields, gff.Field{Label: labelLinkComment, Value: gff.String(p.LinkComment)})
		}
	}
	fl.fillParams(si, p.ConditionParams)
}

func (fl *flattener) paramList(owner uint32) gff.List {
	return gff.List(fl.params[owner])
}

func (fl *flattener) fillParams(owner uint32, ps Params) {
	for i, si := range fl.params[owner] {
		fl.f.Structs[si] = gff.Struct{Type: uint32(i), Fields: []gff.Field{
			{Label: labelKey, Value: gff.String(ps[i].Key)},
			{Label: labelValue, Value: gff.String(ps[i].Value)},
		}}
	}
}

// plan lists structs in field allocation order.
func (fl *flattener) plan() *gff.Plan {
	d := fl.d
	plan := &gff.Plan{}
	planned := make(map[uint32]bool)
	add := func(si uint32, purpose string) {
		if planned[si] {
			return
		}
		planned[si] = true
		plan.Add(si, purpose)
		for k, pi := range fl.params[si] {
			plan.Add(pi, fmt.Sprintf("%s param %d", purpose, k))
			planned[pi] = true
		}
	}
	add(0, "root")
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i := range d.nodes(kind) {
			add(fl.nodeIdx[kind][i], NodeRef{Kind: kind, Index: i}.String())
		}
	}
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i, n := range d.nodes(kind) {
			ref := NodeRef{Kind: kind, Index: i}
			for pi := range n.Pointers {
				add(fl.ptrIdx[ref][pi], fmt.Sprintf("pointer %s[%d]", ref, pi))
			}
		}
	}
	for i := range d.Starts {
		add(fl.ptrIdx[StartRef][i], fmt.Sprintf("start %d", i))
	}
	return plan
}

func boolByte(b bool) gff.Byte {
	if b {
		return 1
	}
	return 0
}
