package flowchart

import (
	"fmt"
	"sort"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
)

// NodeType classifies a flowchart node.
type NodeType string

const (
	TypeRoot NodeType = "root" // the dialog start
	TypeNPC  NodeType = "npc"  // an entry
	TypePC   NodeType = "pc"   // a reply
	TypeLink NodeType = "link" // a link pointer, drawn as its own node
)

// RootID is the ID of the single root node.
const RootID = "root"

// Node is one box in the flowchart.
type Node struct {
	ID              string   `json:"id"`
	Type            NodeType `json:"type"`
	Text            string   `json:"text"`
	Speaker         string   `json:"speaker"`
	HasAction       bool     `json:"has_action"`
	ActionScript    string   `json:"action_script,omitempty"`
	HasCondition    bool     `json:"has_condition"`
	ConditionScript string   `json:"condition_script,omitempty"`
	IsLink          bool     `json:"is_link,omitempty"`
	LinkTarget      string   `json:"link_target,omitempty"`
}

// Link is a directed edge between two flowchart nodes.
type Link struct {
	Source          string `json:"source"`
	Target          string `json:"target"`
	HasCondition    bool   `json:"has_condition"`
	ConditionScript string `json:"condition_script,omitempty"`
}

// Structure is the node/link view of a dialogue.
type Structure struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// NodeID returns the flowchart ID of a dialogue node: "npc_<i>" for
// entries and "pc_<i>" for replies.
func NodeID(ref dlg.NodeRef) string {
	switch ref.Kind {
	case dlg.KindEntry:
		return fmt.Sprintf("npc_%d", ref.Index)
	case dlg.KindReply:
		return fmt.Sprintf("pc_%d", ref.Index)
	}
	return RootID
}

// FromDialogue builds the flowchart structure of d.
//
// Nodes appear in conversation-flow order after the root. A link pointer
// becomes a separate node of type [TypeLink] whose LinkTarget names the
// node it jumps to, so that the drawn graph stays a tree. A node's
// condition is the condition of the first owning pointer that reaches it.
// Unresolved pointers are skipped.
func FromDialogue(d *dlg.Dialogue) Structure {
	b := builder{d: d, at: map[string]int{}}
	b.add(Node{ID: RootID, Type: TypeRoot, Text: "Dialog Start"})
	order := d.FlowOrder()
	for _, ref := range order {
		b.addDialogueNode(ref)
	}
	b.edges(dlg.StartRef, d.Starts)
	for _, ref := range order {
		b.edges(ref, d.Pointers(ref))
	}
	return b.s
}

type builder struct {
	d     *dlg.Dialogue
	s     Structure
	at    map[string]int
	links int
}

func (b *builder) add(n Node) {
	b.at[n.ID] = len(b.s.Nodes)
	b.s.Nodes = append(b.s.Nodes, n)
}

func (b *builder) addDialogueNode(ref dlg.NodeRef) {
	n, _ := b.d.Node(ref)
	typ := TypeNPC
	if ref.Kind == dlg.KindReply {
		typ = TypePC
	}
	b.add(Node{
		ID:           NodeID(ref),
		Type:         typ,
		Text:         n.Text.Default(),
		Speaker:      n.Speaker,
		HasAction:    n.Script != "",
		ActionScript: n.Script,
	})
}

func (b *builder) edges(from dlg.NodeRef, ptrs []dlg.Pointer) {
	source := NodeID(from)
	for _, p := range ptrs {
		target, ok := b.d.Node(p.Ref())
		if p.Unresolved || !ok {
			continue
		}
		targetID := NodeID(p.Ref())
		if p.IsLink {
			b.links++
			id := fmt.Sprintf("link_%d", b.links)
			b.add(Node{
				ID:              id,
				Type:            TypeLink,
				Text:            "-> " + target.Text.Default(),
				HasCondition:    p.Condition != "",
				ConditionScript: p.Condition,
				IsLink:          true,
				LinkTarget:      targetID,
			})
			b.s.Links = append(b.s.Links, Link{Source: source, Target: id})
			continue
		}
		if i, ok := b.at[targetID]; ok && !b.s.Nodes[i].HasCondition && p.Condition != "" {
			b.s.Nodes[i].HasCondition = true
			b.s.Nodes[i].ConditionScript = p.Condition
		}
		b.s.Links = append(b.s.Links, Link{
			Source:          source,
			Target:          targetID,
			HasCondition:    p.Condition != "",
			ConditionScript: p.Condition,
		})
	}
}

// Default colors for speakers without a palette entry of their own.
const (
	ColorPC    = "#4FC3F7"
	ColorOwner = "#FF8A65"
)

var palette = []string{"#BA68C8", "#26A69A", "#FFD54F", "#F48FB1", "#8e4585", "#5a4d2d"}

// SpeakerColors assigns a color to every named NPC speaker in s, plus the
// "_pc" and "_owner" keys for replies and unnamed entries. Speakers are
// colored in sorted order from a fixed palette; overflow speakers get a hue
// derived from their name.
func SpeakerColors(s Structure) map[string]string {
	colors := map[string]string{"_pc": ColorPC, "_owner": ColorOwner}
	seen := map[string]bool{}
	var speakers []string
	for _, n := range s.Nodes {
		if n.Type == TypeNPC && n.Speaker != "" && !seen[n.Speaker] {
			seen[n.Speaker] = true
			speakers = append(speakers, n.Speaker)
		}
	}
	sort.Strings(speakers)
	for i, sp := range speakers {
		if i < len(palette) {
			colors[sp] = palette[i]
			continue
		}
		var sum int
		for _, r := range sp {
			sum += int(r)
		}
		colors[sp] = fmt.Sprintf("hsl(%d, 50%%, 35%%)", sum%360)
	}
	return colors
}

// Color returns the fill color of n under colors.
func Color(n Node, colors map[string]string) string {
	switch n.Type {
	case TypePC:
		return colors["_pc"]
	case TypeNPC:
		if c, ok := colors[n.Speaker]; ok && n.Speaker != "" {
			return c
		}
		return colors["_owner"]
	}
	return ""
}
