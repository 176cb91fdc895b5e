package dlg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlowOrder(t *testing.T) {
	must := checker(t)
	d := New()
	// E0 is started; E1 is reached only by a link; E2 and R2 are orphans.
	e0, e1, _ := d.AddEntry("start"), d.AddEntry("linked"), d.AddEntry("orphan")
	r0, r1, _ := d.AddReply("a"), d.AddReply("b"), d.AddReply("orphan")
	must(d.AddStart(e0.Index))
	must(d.Connect(e0, r0))
	must(d.Link(r0, e1))
	must(d.Connect(e1, r1))

	want := []NodeRef{e0, r0, e1, r1, entry(2), reply(2)}
	if diff := cmp.Diff(want, d.FlowOrder()); diff != "" {
		t.Errorf("FlowOrder() mismatch (-want +got):\n%s", diff)
	}

	reach := d.Reachable()
	for _, ref := range []NodeRef{e0, r0, e1, r1} {
		if !reach[ref] {
			t.Errorf("%s should be reachable", ref)
		}
	}
	if reach[entry(2)] || reach[reply(2)] {
		t.Error("orphans should not be reachable")
	}
}

func TestFlowVisitsEveryPointerOnce(t *testing.T) {
	d := sample(t)
	d.Replies[0].Pointers = append(d.Replies[0].Pointers, Pointer{Index: 40, Target: KindEntry, Unresolved: true})
	var starts, pointers, nodes int
	for _, ev := range d.flow() {
		switch ev.kind {
		case evStart:
			starts++
		case evPointer:
			pointers++
		case evNode:
			nodes++
		}
	}
	if starts != 1 || pointers != 5 || nodes != 4 {
		t.Errorf("starts/pointers/nodes = %d/%d/%d, want 1/5/4", starts, pointers, nodes)
	}
}
