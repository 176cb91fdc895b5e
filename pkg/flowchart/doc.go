// Package flowchart converts a dialogue into a flat node/link structure for
// diagram tools.
//
// The structure has one root node, one node per entry ("npc") and reply
// ("pc"), and one extra node per link pointer. Links are plain
// source/target pairs carrying the pointer's condition script. The JSON
// form of [Structure] is what browser-side flowchart views consume; the
// render package draws it with Graphviz.
package flowchart
