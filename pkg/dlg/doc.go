// Package dlg reads, edits, and writes branching conversation files.
//
// A conversation is a graph, not a tree. Entries (NPC lines) point to
// replies (player lines) and replies point back to entries; the same node
// may be reached from several parents, and a reply may lead back to an
// earlier entry. Nodes live in two flat arrays and pointers name their
// target by array index, so loading never recurses and cycles cost nothing.
//
// Exactly one pointer to a node is its owner; every other pointer to it is
// a link (IsLink). A [LinkRegistry] keeps a per-node record of incoming
// pointers, updated as pointers are added and removed, which is what
// deletion consults before removing anything.
//
// # Loading and saving
//
//	d, err := dlg.Load(data, dlg.WithLogger(logger))
//	...
//	out, err := dlg.Save(d)
//
// Saving lays out structs in conversation-flow order and, unless disabled
// with [WithCompactPointers], lets pointers with the same target and link
// flag share one struct, matching files produced by the toolset editor.
// Loading a saved file and saving it again yields identical bytes.
//
// # Deleting
//
// [Dialogue.RemovePointer], [Dialogue.RemoveStart], and
// [Dialogue.DeleteNode] remove nodes that are no longer referenced. Two
// policies are available; see [DeletePolicy].
package dlg
