// Package pkg holds the libraries behind dlgtool, a reader and writer for
// conversation (DLG) files stored in the GFF V3.2 binary format.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. [gff] - the generic binary container: header, structs, fields, labels
//  2. [dlg] - the dialogue graph built on top of it, with load, save and edit
//  3. [io], [flowchart], [render] - document and diagram views of a dialogue
//  4. [errors], [observability], [cache], [buildinfo] - shared support code
//
// # Architecture
//
// The data flow through a load/save cycle:
//
//	.dlg bytes
//	     ↓
//	[gff] Read (generic value tree)
//	     ↓
//	[dlg] Build (entries, replies, pointers, link registry)
//	     ↓
//	edit / inspect / export
//	     ↓
//	[dlg] Flatten (conversation-flow struct order, shared pointer structs)
//	     ↓
//	[gff] Write (field index plan, tracker audit)
//	     ↓
//	.dlg bytes
//
// # Quick Start
//
//	d, err := dlg.Load(data)
//	if err != nil {
//	    return err
//	}
//	d.AddStart(d.AddEntry("Hello.").Index)
//	out, err := dlg.Save(d)
//
// [gff]: github.com/LordOfMyatar/Radoub-sub018/pkg/gff
// [dlg]: github.com/LordOfMyatar/Radoub-sub018/pkg/dlg
// [io]: github.com/LordOfMyatar/Radoub-sub018/pkg/io
// [flowchart]: github.com/LordOfMyatar/Radoub-sub018/pkg/flowchart
// [render]: github.com/LordOfMyatar/Radoub-sub018/pkg/render
// [errors]: github.com/LordOfMyatar/Radoub-sub018/pkg/errors
// [observability]: github.com/LordOfMyatar/Radoub-sub018/pkg/observability
// [cache]: github.com/LordOfMyatar/Radoub-sub018/pkg/cache
// [buildinfo]: github.com/LordOfMyatar/Radoub-sub018/pkg/buildinfo
package pkg
