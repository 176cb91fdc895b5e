package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-graphviz"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/flowchart"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds speaker and script names to node labels.
	Detailed bool
	// MaxLabel truncates node text to this many runes. Zero means 40.
	MaxLabel int
}

const defaultMaxLabel = 40

// ToDOT converts a flowchart structure to Graphviz DOT source.
//
// Entries are filled with their speaker color, replies with the PC color.
// Link nodes are drawn dashed, with a dotted edge to the node they jump to.
// Conditional edges are labelled with their condition script.
func ToDOT(s flowchart.Structure, opts Options) string {
	colors := flowchart.SpeakerColors(s)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, colors, opts), ", "))
	}

	buf.WriteString("\n")
	for _, l := range s.Links {
		if l.HasCondition {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", l.Source, l.Target, "?"+l.ConditionScript)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", l.Source, l.Target)
	}
	for _, n := range s.Nodes {
		if n.IsLink && n.LinkTarget != "" {
			fmt.Fprintf(&buf, "  %q -> %q [style=dotted, constraint=false];\n", n.ID, n.LinkTarget)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flowchart.Node, opts Options) string {
	limit := opts.MaxLabel
	if limit <= 0 {
		limit = defaultMaxLabel
	}
	text := n.Text
	if utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit]) + "..."
	}
	if text == "" && n.Type != flowchart.TypeRoot {
		text = "[continue]"
	}
	if !opts.Detailed {
		return text
	}

	var parts []string
	if n.Speaker != "" {
		parts = append(parts, n.Speaker+":")
	}
	parts = append(parts, text)
	if n.HasAction {
		parts = append(parts, "!"+n.ActionScript)
	}
	if n.HasCondition {
		parts = append(parts, "?"+n.ConditionScript)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n flowchart.Node, colors map[string]string, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts))}
	switch n.Type {
	case flowchart.TypeRoot:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
	case flowchart.TypeLink:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	default:
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", flowchart.Color(n, colors)))
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
