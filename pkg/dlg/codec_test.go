package dlg

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/observability"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	d := sample(t)
	data, err := Save(d)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(d, loaded, dialogueOpts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if len(loaded.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", loaded.Diagnostics)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if !loaded.Links().Equal(d.Links()) {
		t.Error("registry after load differs from the one built by edits")
	}

	again, err := Save(loaded)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("save -> load -> save is not byte-identical")
	}
}

// role names what a flattened struct holds, judged by its labels.
func role(f *gff.File, i int) string {
	s := &f.Structs[i]
	switch {
	case i == 0:
		return "root"
	case s.Has(labelSpeaker):
		return "entry"
	case s.Has(labelEntriesList):
		return "reply"
	case s.Has(labelIsChild):
		return "pointer"
	case s.Has(labelIndex):
		return "start"
	case s.Has(labelKey):
		return "param"
	}
	return "?"
}

func TestFlattenInterleavesStructs(t *testing.T) {
	fl, err := Flatten(sample(t))
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	var got []string
	for i := range fl.File.Structs {
		got = append(got, role(fl.File, i))
	}
	want := []string{
		"root",
		"start",
		"entry", "param", // E0 and its action parameter
		"pointer", "reply", // E0 -> R0
		"pointer", "entry", // R0 -> E1
		"pointer", "param", "reply", // E0 -> R1 with a condition parameter
		"pointer", // R1 -> E1 link
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("struct order mismatch (-want +got):\n%s", diff)
	}

	root := fl.File.Root()
	for label, want := range map[string]gff.List{
		labelEntryList:    {2, 7},
		labelReplyList:    {5, 10},
		labelStartingList: {1},
	} {
		got, _ := root.List(label)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", label, diff)
		}
	}
	if typ := fl.File.Structs[7].Type; typ != 1 {
		t.Errorf("E1 struct type = %d, want its list position 1", typ)
	}
	if typ := fl.File.Structs[8].Type; typ != 1 {
		t.Errorf("E0[1] pointer struct type = %d, want its slot 1", typ)
	}
}

func TestSaveAllocatesFieldsInPlanOrder(t *testing.T) {
	_, stats, err := SaveContext(context.Background(), sample(t))
	if err != nil {
		t.Fatalf("SaveContext() error = %v", err)
	}
	var got []string
	var next uint32
	for _, a := range stats.Allocations {
		got = append(got, a.Purpose)
		if a.Start != next {
			t.Errorf("%s starts at %d, want %d", a.Purpose, a.Start, next)
		}
		next = a.End()
	}
	want := []string{
		"root",
		"E0", "E0 param 0",
		"E1",
		"R0",
		"R1",
		"pointer E0[0]",
		"pointer E0[1]", "pointer E0[1] param 0",
		"pointer R0[0]",
		"pointer R1[0]",
		"start 0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("allocation order mismatch (-want +got):\n%s", diff)
	}
	if stats.Fields != int(next) {
		t.Errorf("Fields = %d, allocations cover %d", stats.Fields, next)
	}
}

// sharedLinks builds three starts to E0, E1, E2, each pointing at R0; E0
// owns R0 and the other two link to it.
func sharedLinks(t *testing.T) *Dialogue {
	t.Helper()
	must := checker(t)
	d := New()
	for i := 0; i < 3; i++ {
		d.AddEntry("npc")
		must(d.AddStart(i))
	}
	r0 := d.AddReply("pc")
	must(d.Connect(entry(0), r0))
	must(d.Link(entry(1), r0))
	must(d.Link(entry(2), r0))
	return d
}

// pointerStructs re-reads saved bytes and counts the distinct node pointer
// structs written for each sharing key.
func pointerStructs(t *testing.T, data []byte) map[PointerKey]int {
	t.Helper()
	f, err := gff.Read(data, gff.ReadOptions{})
	if err != nil {
		t.Fatalf("gff.Read() error = %v", err)
	}
	seen := make(map[PointerKey]map[uint32]bool)
	lists := map[Kind]string{KindEntry: labelEntryList, KindReply: labelReplyList}
	for _, kind := range []Kind{KindEntry, KindReply} {
		nodes, _ := f.Root().List(lists[kind])
		for _, ni := range nodes {
			n, _ := f.Struct(ni)
			ptrs, _ := n.List(pointerListLabel(kind))
			for _, pi := range ptrs {
				ps, _ := f.Struct(pi)
				idx, _ := ps.Uint("Index")
				child, _ := ps.Uint("IsChild")
				key := PointerKey{Index: uint32(idx), Target: kind.Child(), IsLink: child != 0}
				if seen[key] == nil {
					seen[key] = make(map[uint32]bool)
				}
				seen[key][pi] = true
			}
		}
	}
	counts := make(map[PointerKey]int, len(seen))
	for key, structs := range seen {
		counts[key] = len(structs)
	}
	return counts
}

func TestCompactPointers(t *testing.T) {
	owner := PointerKey{Index: 0, Target: KindReply}
	link := PointerKey{Index: 0, Target: KindReply, IsLink: true}
	tests := []struct {
		name              string
		compact           bool
		structs           int
		logical, physical int
		perKey            map[PointerKey]int
	}{
		{"on", true, 10, 6, 5, map[PointerKey]int{owner: 1, link: 1}},
		{"off", false, 11, 6, 6, map[PointerKey]int{owner: 1, link: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, stats, err := SaveContext(context.Background(), sharedLinks(t), WithCompactPointers(tt.compact))
			if err != nil {
				t.Fatalf("SaveContext() error = %v", err)
			}
			if stats.Structs != tt.structs || stats.LogicalPointers != tt.logical || stats.PhysicalPointers != tt.physical {
				t.Errorf("structs/logical/physical = %d/%d/%d, want %d/%d/%d",
					stats.Structs, stats.LogicalPointers, stats.PhysicalPointers, tt.structs, tt.logical, tt.physical)
			}
			if diff := cmp.Diff(tt.perKey, pointerStructs(t, data)); diff != "" {
				t.Errorf("pointer structs per key mismatch (-want +got):\n%s", diff)
			}

			loaded, err := Load(data)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(sharedLinks(t), loaded, dialogueOpts); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if got := loaded.RefCount(reply(0)); got != 3 {
				t.Errorf("RefCount(R0) = %d, want 3", got)
			}
		})
	}
}

func TestSharedStructLoadsAsIndependentPointers(t *testing.T) {
	data, err := Save(sharedLinks(t))
	if err != nil {
		t.Fatal(err)
	}
	d, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	d.Entries[1].Pointers[0].LinkComment = "edited"
	if got := d.Entries[2].Pointers[0].LinkComment; got != "" {
		t.Errorf("editing one pointer changed its twin: %q", got)
	}

	// The edited payload now conflicts with its twin; the first wins.
	_, stats, err := SaveContext(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Diagnostics) != 1 || stats.Diagnostics[0].Code != cerrors.ErrCodePointerConflict {
		t.Fatalf("diagnostics = %v, want one %s", stats.Diagnostics, cerrors.ErrCodePointerConflict)
	}
	if dg := stats.Diagnostics[0]; dg.Owner != entry(2) || dg.Slot != 0 {
		t.Errorf("conflict reported at %s[%d], want E2[0]", dg.Owner, dg.Slot)
	}
}

func TestRejectConflicts(t *testing.T) {
	d := sharedLinks(t)
	d.Entries[2].Pointers[0].Condition = "cond_other"

	_, stats, err := SaveContext(context.Background(), d)
	if err != nil {
		t.Fatalf("SaveContext() error = %v", err)
	}
	if got := len(stats.Conflicts()); got != 1 {
		t.Errorf("Conflicts() = %d, want 1", got)
	}

	if _, err := Save(d, WithRejectConflicts(true)); !cerrors.Is(err, cerrors.ErrCodePointerConflict) {
		t.Errorf("Save(WithRejectConflicts) error = %v, want %s", err, cerrors.ErrCodePointerConflict)
	}
	if _, err := Save(d, WithRejectConflicts(true), WithCompactPointers(false)); err != nil {
		t.Errorf("Save() without compaction error = %v", err)
	}
}

func TestUnresolvedPointerIsKept(t *testing.T) {
	d := sample(t)
	d.Replies[0].Pointers = append(d.Replies[0].Pointers, Pointer{Index: 9, Target: KindEntry})
	data, err := Save(d)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want one", loaded.Diagnostics)
	}
	dg := loaded.Diagnostics[0]
	if dg.Code != cerrors.ErrCodeUnresolvedPointer || dg.Owner != reply(0) || dg.Slot != 1 {
		t.Errorf("diagnostic = %v, want %s at R0[1]", dg, cerrors.ErrCodeUnresolvedPointer)
	}
	p := loaded.Replies[0].Pointers[1]
	if !p.Unresolved || p.Index != 9 {
		t.Errorf("pointer = %+v, want unresolved index 9", p)
	}
	if got := loaded.RefCount(entry(1)); got != 2 {
		t.Errorf("RefCount(E1) = %d, want 2", got)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	again, err := Save(loaded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Error("unresolved pointer did not survive a second save unchanged")
	}
}

func TestLoadErrors(t *testing.T) {
	item, err := gff.Write(gff.NewFile("UTI "), gff.WriteOptions{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		data []byte
		code cerrors.Code
	}{
		{"truncated", []byte("DLG V3.2"), cerrors.ErrCodeParse},
		{"wrong file type", item, cerrors.ErrCodeWrongFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.data)
			if !cerrors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDeepChainRoundTrip(t *testing.T) {
	const n = 20000
	d := chain(t, n)
	data, err := Save(d)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(loaded.FlowOrder()); got != n {
		t.Errorf("FlowOrder() has %d nodes, want %d", got, n)
	}
	if diff := cmp.Diff(d, loaded, dialogueOpts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCycleRoundTrip(t *testing.T) {
	must := checker(t)
	d := New()
	e0 := d.AddEntry("again?")
	r0 := d.AddReply("yes")
	r1 := d.AddReply("no")
	must(d.AddStart(e0.Index))
	must(d.Connect(e0, r0))
	must(d.Connect(e0, r1))
	must(d.Link(r0, e0))

	data, err := Save(d)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(d, loaded, dialogueOpts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got := loaded.RefCount(e0); got != 2 {
		t.Errorf("RefCount(E0) = %d, want 2", got)
	}
	want := []NodeRef{e0, r0, r1}
	if diff := cmp.Diff(want, loaded.FlowOrder()); diff != "" {
		t.Errorf("FlowOrder() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodingOption(t *testing.T) {
	d := New()
	d.AddEntry("Café ☃")

	tests := []struct {
		name     string
		enc      gff.Encoding
		wantSame bool
	}{
		{"windows-1252", gff.EncodingWindows1252, false},
		{"utf-8", gff.EncodingUTF8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, stats, err := SaveContext(context.Background(), d, WithEncoding(tt.enc))
			if err != nil {
				t.Fatalf("SaveContext() error = %v", err)
			}
			var lossy []Diagnostic
			for _, dg := range stats.Diagnostics {
				if dg.Code == cerrors.ErrCodeLossyText {
					lossy = append(lossy, dg)
				}
			}
			if tt.wantSame && len(lossy) != 0 {
				t.Errorf("lossy text diagnostics = %v, want none", lossy)
			}
			if !tt.wantSame && (len(lossy) != 1 || lossy[0].Owner != entry(0)) {
				t.Errorf("lossy text diagnostics = %v, want one for E0", lossy)
			}
			loaded, err := Load(data, WithEncoding(tt.enc))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got := loaded.Entries[0].Text.Default()
			if same := got == "Café ☃"; same != tt.wantSame {
				t.Errorf("text = %q, want unchanged = %v", got, tt.wantSame)
			}
			if !strings.HasPrefix(got, "Café ") {
				t.Errorf("text = %q, representable prefix was lost", got)
			}
		})
	}
}

type countingHooks struct {
	observability.NoopCodecHooks
	loads, saves []int
}

func (h *countingHooks) OnLoad(_ context.Context, ev observability.LoadEvent) {
	h.loads = append(h.loads, ev.Entries+ev.Replies)
}

func (h *countingHooks) OnSave(_ context.Context, ev observability.SaveEvent) {
	h.saves = append(h.saves, ev.PhysicalPointers)
}

func TestHooks(t *testing.T) {
	h := &countingHooks{}
	data, err := Save(sample(t), WithHooks(h))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Load(data, WithHooks(h)); err != nil {
		t.Fatal(err)
	}
	if _, err := Load([]byte("short"), WithHooks(h)); err == nil {
		t.Fatal("Load(short) should fail")
	}
	if diff := cmp.Diff([]int{5}, h.saves); diff != "" {
		t.Errorf("save events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 0}, h.loads); diff != "" {
		t.Errorf("load events mismatch (-want +got):\n%s", diff)
	}
}
