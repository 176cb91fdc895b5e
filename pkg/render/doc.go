// Package render draws dialogue flowcharts.
//
// # Overview
//
// [ToDOT] turns a [flowchart.Structure] into Graphviz DOT source. Entries
// are colored by speaker, replies share the PC color, and link nodes are
// dashed with a dotted back-edge to their target.
//
//	s := flowchart.FromDialogue(d)
//	dot := render.ToDOT(s, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Formats
//
// SVG is rendered in-process with [github.com/goccy/go-graphviz]. PDF and
// PNG are converted from the SVG by the external rsvg-convert tool (from
// librsvg); [Render] selects the pipeline from a [Format].
package render
