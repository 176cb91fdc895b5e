package dlg_test

import (
	"fmt"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
)

func Example() {
	d := dlg.New()
	greet := d.AddEntry("Well met, traveller.")
	ask := d.AddReply("Any work for me?")
	leave := d.AddReply("Farewell.")
	d.AddStart(greet.Index)
	d.Connect(greet, ask)
	d.Connect(greet, leave)
	d.Link(ask, greet)

	data, err := dlg.Save(d)
	if err != nil {
		panic(err)
	}
	loaded, err := dlg.Load(data)
	if err != nil {
		panic(err)
	}
	for _, ref := range loaded.FlowOrder() {
		n, _ := loaded.Node(ref)
		fmt.Printf("%s %q refs=%d\n", ref, n.Text.Default(), loaded.RefCount(ref))
	}
	// Output:
	// E0 "Well met, traveller." refs=2
	// R0 "Any work for me?" refs=1
	// R1 "Farewell." refs=1
}

func ExampleDialogue_RemoveStart() {
	d := dlg.New(dlg.WithDeletePolicy(dlg.DeleteStrict))
	e0 := d.AddEntry("Hello.")
	r0 := d.AddReply("Hi.")
	d.AddStart(e0.Index)
	d.Connect(e0, r0)
	d.Link(r0, e0)

	res, _ := d.RemoveStart(0)
	fmt.Println("removed:", res.Removed)
	fmt.Println("left:", d.NodeCount())
	// Output:
	// removed: [E0 R0]
	// left: 0
}
