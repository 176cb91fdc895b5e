package dlg

type eventKind uint8

const (
	evStart eventKind = iota
	evNode
	evPointer
)

// flowEvent is one step of a conversation-flow walk.
type flowEvent struct {
	kind  eventKind
	owner NodeRef // evPointer, evStart: pointer owner
	slot  int     // evPointer, evStart: pointer slot
	node  NodeRef // evNode: the node
}

// flow walks the dialogue in conversation order and returns every start,
// node, and pointer exactly once.
//
// Starts are taken in order; after each start the subtree it owns is walked
// depth-first, a node's pointers each followed by the subtree of their
// target. Links are recorded but not followed. Nodes reached only through
// links come next, then nodes unreachable from any start (entries before
// replies). The walk uses an explicit stack, so depth is bounded only by
// memory.
func (d *Dialogue) flow() []flowEvent {
	seen := [2][]bool{make([]bool, len(d.Entries)), make([]bool, len(d.Replies))}
	visited := func(r NodeRef) bool { return seen[r.Kind][r.Index] }

	events := make([]flowEvent, 0, 1+d.NodeCount()+d.PointerCount())
	var order []NodeRef

	type frame struct {
		ref  NodeRef
		next int
	}
	var stack []frame
	enter := func(r NodeRef) {
		seen[r.Kind][r.Index] = true
		order = append(order, r)
		events = append(events, flowEvent{kind: evNode, node: r})
		stack = append(stack, frame{ref: r})
	}
	run := func() {
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			ptrs := d.Pointers(top.ref)
			if top.next >= len(ptrs) {
				stack = stack[:len(stack)-1]
				continue
			}
			slot := top.next
			top.next++
			p := ptrs[slot]
			events = append(events, flowEvent{kind: evPointer, owner: top.ref, slot: slot})
			if !p.IsLink && !p.Unresolved && d.resolves(p) && !visited(p.Ref()) {
				enter(p.Ref())
			}
		}
	}
	descend := func(r NodeRef) {
		if !visited(r) {
			enter(r)
			run()
		}
	}

	for i, p := range d.Starts {
		events = append(events, flowEvent{kind: evStart, owner: StartRef, slot: i})
		if !p.Unresolved && d.resolves(p) {
			descend(p.Ref())
		}
	}
	// Link targets, in order of the visited nodes that link to them.
	for i := 0; i < len(order); i++ {
		for _, p := range d.Pointers(order[i]) {
			if p.IsLink && !p.Unresolved && d.resolves(p) {
				descend(p.Ref())
			}
		}
	}
	for _, kind := range []Kind{KindEntry, KindReply} {
		for i := range d.nodes(kind) {
			descend(NodeRef{Kind: kind, Index: i})
		}
	}
	return events
}

// FlowOrder returns every node exactly once, in conversation-flow order:
// the subtrees of the starts depth-first, then nodes reached only through
// links, then unreachable nodes.
func (d *Dialogue) FlowOrder() []NodeRef {
	var out []NodeRef
	for _, ev := range d.flow() {
		if ev.kind == evNode {
			out = append(out, ev.node)
		}
	}
	return out
}

// Reachable returns the set of nodes reachable from the starts, following
// both owning pointers and links.
func (d *Dialogue) Reachable() map[NodeRef]bool {
	var roots []NodeRef
	for _, p := range d.Starts {
		if !p.Unresolved && d.resolves(p) {
			roots = append(roots, p.Ref())
		}
	}
	return d.reach(roots, nil)
}

// reach returns the nodes reachable from roots. Nodes in skip are neither
// entered nor traversed.
func (d *Dialogue) reach(roots []NodeRef, skip map[NodeRef]bool) map[NodeRef]bool {
	out := make(map[NodeRef]bool)
	stack := make([]NodeRef, 0, len(roots))
	for _, r := range roots {
		if !skip[r] && !out[r] {
			out[r] = true
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range d.Pointers(r) {
			if p.Unresolved || !d.resolves(p) {
				continue
			}
			t := p.Ref()
			if skip[t] || out[t] {
				continue
			}
			out[t] = true
			stack = append(stack, t)
		}
	}
	return out
}
