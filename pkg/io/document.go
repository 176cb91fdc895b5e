package io

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
)

// document is the editable form of a dialogue. Field names are shared by
// the JSON and YAML encodings.
type document struct {
	DelayEntry      uint32    `json:"delay_entry,omitempty" yaml:"delay_entry,omitempty"`
	DelayReply      uint32    `json:"delay_reply,omitempty" yaml:"delay_reply,omitempty"`
	EndConversation string    `json:"end_conversation,omitempty" yaml:"end_conversation,omitempty"`
	EndConverAbort  string    `json:"end_conver_abort,omitempty" yaml:"end_conver_abort,omitempty"`
	NumWords        uint32    `json:"num_words,omitempty" yaml:"num_words,omitempty"`
	PreventZoomIn   bool      `json:"prevent_zoom_in,omitempty" yaml:"prevent_zoom_in,omitempty"`
	Starts          []pointer `json:"starts" yaml:"starts"`
	Entries         []node    `json:"entries" yaml:"entries"`
	Replies         []node    `json:"replies" yaml:"replies"`
}

type node struct {
	StrRef       *uint32           `json:"strref,omitempty" yaml:"strref,omitempty"`
	Text         map[string]string `json:"text,omitempty" yaml:"text,omitempty"`
	Speaker      string            `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Comment      string            `json:"comment,omitempty" yaml:"comment,omitempty"`
	Sound        string            `json:"sound,omitempty" yaml:"sound,omitempty"`
	Script       string            `json:"script,omitempty" yaml:"script,omitempty"`
	ActionParams []param           `json:"action_params,omitempty" yaml:"action_params,omitempty"`
	Animation    uint32            `json:"animation,omitempty" yaml:"animation,omitempty"`
	AnimLoop     bool              `json:"anim_loop,omitempty" yaml:"anim_loop,omitempty"`
	Delay        *uint32           `json:"delay,omitempty" yaml:"delay,omitempty"`
	Quest        string            `json:"quest,omitempty" yaml:"quest,omitempty"`
	QuestEntry   *uint32           `json:"quest_entry,omitempty" yaml:"quest_entry,omitempty"`
	Pointers     []pointer         `json:"pointers,omitempty" yaml:"pointers,omitempty"`
}

type pointer struct {
	Index           uint32  `json:"index" yaml:"index"`
	Link            bool    `json:"link,omitempty" yaml:"link,omitempty"`
	Condition       string  `json:"condition,omitempty" yaml:"condition,omitempty"`
	ConditionParams []param `json:"condition_params,omitempty" yaml:"condition_params,omitempty"`
	Comment         string  `json:"comment,omitempty" yaml:"comment,omitempty"`
	Unresolved      bool    `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
}

type param struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// femaleSuffix marks the female variant of a language in text keys.
const femaleSuffix = "/f"

// textKey returns the document key for a localized variant: the BCP 47 tag
// of its language, or "lang<N>" for identifiers without one.
func textKey(id uint32) string {
	l, g := gff.SplitSubstringID(id)
	key := "lang" + strconv.FormatUint(uint64(l), 10)
	if tag := l.Tag(); tag != language.Und {
		key = tag.String()
	}
	if g == gff.Female {
		key += femaleSuffix
	}
	return key
}

func parseTextKey(key string) (gff.Language, gff.Gender, error) {
	g := gff.Male
	if k, ok := strings.CutSuffix(key, femaleSuffix); ok {
		key, g = k, gff.Female
	}
	if n, ok := strings.CutPrefix(key, "lang"); ok {
		v, err := strconv.ParseUint(n, 10, 31)
		if err != nil {
			return 0, 0, fmt.Errorf("text key %q: %w", key, err)
		}
		return gff.Language(v), g, nil
	}
	tag, err := language.Parse(key)
	if err != nil {
		return 0, 0, fmt.Errorf("text key %q: %w", key, err)
	}
	l, ok := gff.LanguageFromTag(tag)
	if !ok {
		return 0, 0, fmt.Errorf("text key %q: no matching language", key)
	}
	return l, g, nil
}

func fromParams(ps dlg.Params) []param {
	if len(ps) == 0 {
		return nil
	}
	out := make([]param, len(ps))
	for i, p := range ps {
		out[i] = param{Key: p.Key, Value: p.Value}
	}
	return out
}

func toParams(ps []param) dlg.Params {
	if len(ps) == 0 {
		return nil
	}
	out := make(dlg.Params, len(ps))
	for i, p := range ps {
		out[i] = dlg.Param{Key: p.Key, Value: p.Value}
	}
	return out
}

func fromPointer(p dlg.Pointer) pointer {
	return pointer{
		Index:           p.Index,
		Link:            p.IsLink,
		Condition:       p.Condition,
		ConditionParams: fromParams(p.ConditionParams),
		Comment:         p.LinkComment,
		Unresolved:      p.Unresolved,
	}
}

func (p pointer) toPointer(target dlg.Kind) dlg.Pointer {
	return dlg.Pointer{
		Index:           p.Index,
		Target:          target,
		IsLink:          p.Link,
		Condition:       p.Condition,
		ConditionParams: toParams(p.ConditionParams),
		LinkComment:     p.Comment,
		Unresolved:      p.Unresolved,
	}
}

func fromNode(n *dlg.Node) node {
	out := node{
		Speaker:      n.Speaker,
		Comment:      n.Comment,
		Sound:        n.Sound,
		Script:       n.Script,
		ActionParams: fromParams(n.ActionParams),
		Animation:    n.Animation,
		AnimLoop:     n.AnimLoop,
		Quest:        n.Quest,
	}
	if n.Text.StrRef != gff.NoStrRef {
		ref := n.Text.StrRef
		out.StrRef = &ref
	}
	if len(n.Text.Strings) > 0 {
		out.Text = make(map[string]string, len(n.Text.Strings))
		for _, s := range n.Text.Strings {
			out.Text[textKey(s.ID)] = s.Text
		}
	}
	if n.Delay != dlg.NoDelay {
		delay := n.Delay
		out.Delay = &delay
	}
	if n.HasQuestEntry {
		qe := n.QuestEntry
		out.QuestEntry = &qe
	}
	for _, p := range n.Pointers {
		out.Pointers = append(out.Pointers, fromPointer(p))
	}
	return out
}

func (n node) toNode(kind dlg.Kind) (*dlg.Node, error) {
	out := dlg.NewNode(kind, "")
	out.Speaker = n.Speaker
	out.Comment = n.Comment
	out.Sound = n.Sound
	out.Script = n.Script
	out.ActionParams = toParams(n.ActionParams)
	out.Animation = n.Animation
	out.AnimLoop = n.AnimLoop
	out.Quest = n.Quest
	if n.StrRef != nil {
		out.Text.StrRef = *n.StrRef
	}
	for key, text := range n.Text {
		l, g, err := parseTextKey(key)
		if err != nil {
			return nil, err
		}
		if _, dup := out.Text.Get(l, g); dup {
			return nil, fmt.Errorf("text key %q: %s is given twice", key, textKey(gff.SubstringID(l, g)))
		}
		out.Text.Set(l, g, text)
	}
	if n.Delay != nil {
		out.Delay = *n.Delay
	}
	if n.QuestEntry != nil {
		out.QuestEntry, out.HasQuestEntry = *n.QuestEntry, true
	}
	return out, nil
}

func fromDialogue(d *dlg.Dialogue) document {
	doc := document{
		DelayEntry:      d.DelayEntry,
		DelayReply:      d.DelayReply,
		EndConversation: d.EndConversation,
		EndConverAbort:  d.EndConverAbort,
		NumWords:        d.NumWords,
		PreventZoomIn:   d.PreventZoomIn,
		Starts:          make([]pointer, len(d.Starts)),
		Entries:         make([]node, len(d.Entries)),
		Replies:         make([]node, len(d.Replies)),
	}
	for i, p := range d.Starts {
		doc.Starts[i] = fromPointer(p)
	}
	for i, n := range d.Entries {
		doc.Entries[i] = fromNode(n)
	}
	for i, n := range d.Replies {
		doc.Replies[i] = fromNode(n)
	}
	return doc
}

// toDialogue rebuilds a dialogue. Nodes are added first so that pointers
// may refer forward; every pointer not marked unresolved is then checked
// through [dlg.Dialogue.AddPointer].
func (doc document) toDialogue(opts ...dlg.Option) (*dlg.Dialogue, error) {
	d := dlg.New(opts...)
	d.DelayEntry = doc.DelayEntry
	d.DelayReply = doc.DelayReply
	d.EndConversation = doc.EndConversation
	d.EndConverAbort = doc.EndConverAbort
	d.NumWords = doc.NumWords
	d.PreventZoomIn = doc.PreventZoomIn

	groups := []struct {
		kind  dlg.Kind
		nodes []node
	}{
		{dlg.KindEntry, doc.Entries},
		{dlg.KindReply, doc.Replies},
	}
	for _, g := range groups {
		for i, n := range g.nodes {
			nd, err := n.toNode(g.kind)
			if err != nil {
				return nil, fmt.Errorf("%s %d: %w", g.kind, i, err)
			}
			if _, err := d.AddNode(nd); err != nil {
				return nil, fmt.Errorf("%s %d: %w", g.kind, i, err)
			}
		}
	}

	add := func(from dlg.NodeRef, ptrs []pointer) error {
		for slot, p := range ptrs {
			dp := p.toPointer(from.Kind.Child())
			if p.Unresolved {
				if n, ok := d.Node(from); ok {
					n.Pointers = append(n.Pointers, dp)
				} else {
					d.Starts = append(d.Starts, dp)
				}
				continue
			}
			if _, err := d.AddPointer(from, dp); err != nil {
				return fmt.Errorf("%s pointer %d: %w", from, slot, err)
			}
		}
		return nil
	}
	if err := add(dlg.StartRef, doc.Starts); err != nil {
		return nil, err
	}
	for _, g := range groups {
		for i, n := range g.nodes {
			if err := add(dlg.NodeRef{Kind: g.kind, Index: i}, n.Pointers); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}
