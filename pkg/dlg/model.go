package dlg

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

// Kind identifies which node array a reference points into.
type Kind uint8

const (
	// KindEntry is an NPC line.
	KindEntry Kind = iota
	// KindReply is a player line.
	KindReply
	// KindStart is the pseudo-owner of the starting pointers. No node has
	// this kind.
	KindStart
)

func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindReply:
		return "reply"
	case KindStart:
		return "start"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Child returns the node kind that pointers owned by k must target.
func (k Kind) Child() Kind {
	if k == KindEntry {
		return KindReply
	}
	return KindEntry
}

// NodeRef addresses a node by kind and array index.
type NodeRef struct {
	Kind  Kind
	Index int
}

// StartRef is the owner reference used for starting pointers.
var StartRef = NodeRef{Kind: KindStart, Index: -1}

func (r NodeRef) String() string {
	switch r.Kind {
	case KindEntry:
		return fmt.Sprintf("E%d", r.Index)
	case KindReply:
		return fmt.Sprintf("R%d", r.Index)
	}
	return "START"
}

// Param is a key/value argument passed to a script.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Order is kept so that output is
// deterministic; keys are expected to be unique.
type Params []Param

// Get returns the value for key.
func (ps Params) Get(key string) (string, bool) {
	for _, p := range ps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Set updates key in place or appends it.
func (ps *Params) Set(key, value string) {
	for i := range *ps {
		if (*ps)[i].Key == key {
			(*ps)[i].Value = value
			return
		}
	}
	*ps = append(*ps, Param{Key: key, Value: value})
}

// Delete removes key.
func (ps *Params) Delete(key string) {
	*ps = slices.DeleteFunc(*ps, func(p Param) bool { return p.Key == key })
}

// Map returns the parameters as a map.
func (ps Params) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Key] = p.Value
	}
	return m
}

// Pointer is a directed edge from a node (or the start list) to a node of
// the opposite kind. Targets are addressed by index, never by reference, so
// shared and cyclic graphs need no special ownership handling.
type Pointer struct {
	Index  uint32 // index into Entries or Replies, selected by Target
	Target Kind

	// IsLink marks a non-owning reference to a node whose defining
	// occurrence is another pointer.
	IsLink bool

	Condition       string // resref of the condition script
	ConditionParams Params
	LinkComment     string

	// Unresolved is set on load when Index did not name an existing node.
	// Such pointers are kept for round-tripping but do not count as
	// references.
	Unresolved bool
}

// Ref returns the node this pointer targets.
func (p Pointer) Ref() NodeRef { return NodeRef{Kind: p.Target, Index: int(p.Index)} }

// Clone returns a deep copy of p.
func (p Pointer) Clone() Pointer {
	p.ConditionParams = slices.Clone(p.ConditionParams)
	return p
}

// samePayload reports whether two pointers would serialize identically.
func (p Pointer) samePayload(o Pointer) bool {
	return p.Condition == o.Condition &&
		p.LinkComment == o.LinkComment &&
		slices.Equal(p.ConditionParams, o.ConditionParams)
}

// Node is a single line of dialog.
type Node struct {
	Kind Kind

	Text    gff.LocString
	Speaker string // tag of the speaking creature; entries only
	Comment string
	Sound   string // resref

	Script       string // resref of the action script
	ActionParams Params

	Animation uint32
	AnimLoop  bool
	Delay     uint32

	Quest         string
	QuestEntry    uint32
	HasQuestEntry bool

	// Pointers are the outgoing edges, in display order.
	Pointers []Pointer

	// Extra holds scalar fields this package does not interpret. They are
	// written back after the known fields.
	Extra []gff.Field
}

// NewNode returns a node of the given kind with English text.
func NewNode(kind Kind, text string) *Node {
	return &Node{Kind: kind, Text: gff.NewLocString(text), Delay: NoDelay}
}

// NoDelay is the delay value meaning "use the dialog default".
const NoDelay uint32 = 0xFFFFFFFF

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Text = n.Text.Clone()
	c.ActionParams = slices.Clone(n.ActionParams)
	c.Pointers = make([]Pointer, len(n.Pointers))
	for i, p := range n.Pointers {
		c.Pointers[i] = p.Clone()
	}
	c.Extra = slices.Clone(n.Extra)
	return &c
}

// Dialogue is a conversation graph: entries and replies stored in flat
// arrays, connected by index-based pointers, plus the list of starting
// pointers. A LinkRegistry tracks how many pointers resolve to each node.
//
// The node slices are exported for reading. Structural changes (adding or
// removing nodes and pointers) must go through the Dialogue methods so the
// registry stays consistent; call [Dialogue.RebuildLinks] after editing
// pointers directly.
//
// A Dialogue is not safe for concurrent use.
type Dialogue struct {
	Entries []*Node
	Replies []*Node
	Starts  []Pointer

	DelayEntry      uint32
	DelayReply      uint32
	EndConversation string // resref of the script run on normal end
	EndConverAbort  string // resref of the script run on abort
	NumWords        uint32
	PreventZoomIn   bool

	// Extra holds root scalar fields this package does not interpret.
	Extra []gff.Field

	// Diagnostics lists tolerated problems found while loading.
	Diagnostics []Diagnostic

	// DeletePolicy selects how deletions cascade. See [DeletePolicy].
	DeletePolicy DeletePolicy

	links  *LinkRegistry
	logger *log.Logger
	hooks  observability.CodecHooks
}

// New returns an empty dialogue. Only the logger, hooks, and delete policy
// options apply.
func New(opts ...Option) *Dialogue {
	d := &Dialogue{links: NewLinkRegistry()}
	d.configure(newOptions(opts))
	return d
}

func (d *Dialogue) configure(o Options) {
	d.logger = o.Logger
	d.hooks = o.Hooks
	d.DeletePolicy = o.DeletePolicy
}

func (d *Dialogue) log() *log.Logger {
	if d.logger == nil {
		return discard
	}
	return d.logger
}

func (d *Dialogue) codecHooks() observability.CodecHooks {
	return observability.OrNoop(d.hooks)
}

// Links returns the dialogue's reference registry.
func (d *Dialogue) Links() *LinkRegistry {
	if d.links == nil {
		d.RebuildLinks()
	}
	return d.links
}

func (d *Dialogue) nodes(k Kind) []*Node {
	switch k {
	case KindEntry:
		return d.Entries
	case KindReply:
		return d.Replies
	}
	return nil
}

// Node returns the node at ref.
func (d *Dialogue) Node(ref NodeRef) (*Node, bool) {
	ns := d.nodes(ref.Kind)
	if ref.Index < 0 || ref.Index >= len(ns) {
		return nil, false
	}
	return ns[ref.Index], true
}

// Pointers returns the outgoing pointers of ref; for [StartRef] these are the
// starting pointers.
func (d *Dialogue) Pointers(ref NodeRef) []Pointer {
	if ref.Kind == KindStart {
		return d.Starts
	}
	if n, ok := d.Node(ref); ok {
		return n.Pointers
	}
	return nil
}

func (d *Dialogue) pointerSlice(ref NodeRef) *[]Pointer {
	if ref.Kind == KindStart {
		return &d.Starts
	}
	if n, ok := d.Node(ref); ok {
		return &n.Pointers
	}
	return nil
}

// resolves reports whether p names an existing node.
func (d *Dialogue) resolves(p Pointer) bool {
	_, ok := d.Node(p.Ref())
	return ok && (p.Target == KindEntry || p.Target == KindReply)
}

// NodeCount returns the total number of entries and replies.
func (d *Dialogue) NodeCount() int { return len(d.Entries) + len(d.Replies) }

// PointerCount returns the number of logical pointers, including starts.
func (d *Dialogue) PointerCount() int {
	n := len(d.Starts)
	for _, e := range d.Entries {
		n += len(e.Pointers)
	}
	for _, r := range d.Replies {
		n += len(r.Pointers)
	}
	return n
}

// RefCount returns the number of resolved pointers targeting ref.
func (d *Dialogue) RefCount(ref NodeRef) int { return d.Links().RefCount(ref) }

// Incoming returns the pointers targeting ref.
func (d *Dialogue) Incoming(ref NodeRef) []Incoming { return d.Links().Incoming(ref) }

// RebuildLinks recomputes the registry from the current pointers. The graph
// builder calls it once as its linking pass.
func (d *Dialogue) RebuildLinks() {
	reg := NewLinkRegistry()
	d.eachPointer(func(from NodeRef, _ int, p Pointer) {
		if !p.Unresolved && d.resolves(p) {
			reg.Add(from, p)
		}
	})
	d.links = reg
}

// eachPointer calls fn for every pointer: starts first, then entries, then
// replies, each in index order.
func (d *Dialogue) eachPointer(fn func(from NodeRef, slot int, p Pointer)) {
	for i, p := range d.Starts {
		fn(StartRef, i, p)
	}
	for ei, e := range d.Entries {
		for i, p := range e.Pointers {
			fn(NodeRef{Kind: KindEntry, Index: ei}, i, p)
		}
	}
	for ri, r := range d.Replies {
		for i, p := range r.Pointers {
			fn(NodeRef{Kind: KindReply, Index: ri}, i, p)
		}
	}
}
