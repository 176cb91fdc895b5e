package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	"github.com/LordOfMyatar/Radoub-sub018/pkg/gff"
)

func sample(t *testing.T) *dlg.Dialogue {
	t.Helper()
	d := dlg.New()
	d.DelayEntry = 2
	d.EndConversation = "nw_walk_wp"
	d.PreventZoomIn = true

	e0 := d.AddEntry("Well met.")
	n, _ := d.Node(e0)
	n.Speaker = "innkeeper"
	n.Text.Set(gff.LangFrench, gff.Female, "Bien le bonjour.")
	n.Text.Set(gff.Language(7), gff.Male, "??")
	n.Text.StrRef = 1234
	n.Script = "give_gold"
	n.ActionParams = dlg.Params{{Key: "amount", Value: "10"}}
	n.Delay = 3
	n.Quest, n.QuestEntry, n.HasQuestEntry = "q_inn", 0, true

	r0 := d.AddReply("Hello.")
	r1 := d.AddReply("Goodbye.")
	steps := []error{
		second(d.AddStart(0)),
		second(d.Connect(e0, r0)),
		second(d.AddPointer(e0, dlg.Pointer{
			Index: 1, Target: dlg.KindReply, Condition: "has_gold",
			ConditionParams: dlg.Params{{Key: "min", Value: "5"}},
		})),
		second(d.AddPointer(r0, dlg.Pointer{Index: 0, Target: dlg.KindEntry, IsLink: true, LinkComment: "back"})),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatal(err)
		}
	}
	d.Replies[r1.Index].Pointers = append(d.Replies[r1.Index].Pointers,
		dlg.Pointer{Index: 9, Target: dlg.KindEntry, Unresolved: true})
	return d
}

func second(_ int, err error) error { return err }

var dialogueOpts = []cmp.Option{
	cmpopts.IgnoreUnexported(dlg.Dialogue{}),
	cmpopts.EquateEmpty(),
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		write func(*dlg.Dialogue, *bytes.Buffer) error
		read  func(*bytes.Buffer) (*dlg.Dialogue, error)
	}{
		{
			"json",
			func(d *dlg.Dialogue, b *bytes.Buffer) error { return WriteJSON(d, b) },
			func(b *bytes.Buffer) (*dlg.Dialogue, error) { return ReadJSON(b) },
		},
		{
			"yaml",
			func(d *dlg.Dialogue, b *bytes.Buffer) error { return WriteYAML(d, b) },
			func(b *bytes.Buffer) (*dlg.Dialogue, error) { return ReadYAML(b) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := sample(t)
			var buf bytes.Buffer
			if err := tt.write(want, &buf); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := tt.read(&buf)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if diff := cmp.Diff(want, got, dialogueOpts...); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if !want.Links().Equal(got.Links()) {
				t.Error("link registries differ after round trip")
			}
		})
	}
}

func TestTextKeys(t *testing.T) {
	tests := []struct {
		lang   gff.Language
		gender gff.Gender
		key    string
	}{
		{gff.LangEnglish, gff.Male, "en"},
		{gff.LangFrench, gff.Female, "fr/f"},
		{gff.LangChineseSimplified, gff.Male, "zh-Hans"},
		{gff.Language(42), gff.Female, "lang42/f"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := textKey(gff.SubstringID(tt.lang, tt.gender)); got != tt.key {
				t.Errorf("textKey() = %q, want %q", got, tt.key)
			}
			l, g, err := parseTextKey(tt.key)
			if err != nil {
				t.Fatalf("parseTextKey(%q) error = %v", tt.key, err)
			}
			if l != tt.lang || g != tt.gender {
				t.Errorf("parseTextKey(%q) = %v/%v, want %v/%v", tt.key, l, g, tt.lang, tt.gender)
			}
		})
	}
}

func TestReadRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"entries": [`},
		{"start out of range", `{"starts": [{"index": 3}], "entries": [{}]}`},
		{"reply pointer out of range", `{"entries": [{"pointers": [{"index": 0}]}]}`},
		{"bad text key", `{"entries": [{"text": {"not a tag!": "x"}}]}`},
		{"unsupported language", `{"entries": [{"text": {"en": "Hello", "sw": "Jambo"}}]}`},
		{"language given twice", `{"entries": [{"text": {"en": "Hello", "en-US": "Howdy"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadJSON(strings.NewReader(tt.doc)); err == nil {
				t.Error("ReadJSON() succeeded, want error")
			}
		})
	}
}

func TestReadOutOfRangeIsInvalidPointer(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("entries:\n  - pointers:\n      - index: 2\n"))
	if !cerrors.Is(err, cerrors.ErrCodeInvalidPointer) {
		t.Errorf("ReadYAML() error = %v, want %s", err, cerrors.ErrCodeInvalidPointer)
	}
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	want := sample(t)
	for _, name := range []string{"conv.json", "conv.yaml", "conv.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(want, path); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			got, err := Import(path)
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if diff := cmp.Diff(want, got, dialogueOpts...); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if err := Export(want, filepath.Join(dir, "conv.txt")); !cerrors.Is(err, cerrors.ErrCodeInvalidConfig) {
		t.Errorf("Export(.txt) error = %v, want %s", err, cerrors.ErrCodeInvalidConfig)
	}
	if _, err := Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Import(missing) succeeded")
	}
}

func TestBinaryAndDocumentAgree(t *testing.T) {
	d := sample(t)
	data, err := dlg.Save(d)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := dlg.Load(data)
	if err != nil {
		t.Fatal(err)
	}
	var a, b bytes.Buffer
	if err := WriteJSON(d, &a); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSON(loaded, &b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.String(), b.String()); diff != "" {
		t.Errorf("document differs after binary round trip (-want +got):\n%s", diff)
	}
}
