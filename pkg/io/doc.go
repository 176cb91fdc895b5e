// Package io provides JSON and YAML import and export for dialogues.
//
// # Overview
//
// The binary DLG format is compact but hard to review or diff. This package
// maps a [dlg.Dialogue] to a plain document that can be edited by hand and
// converted back. The same structure is used for both encodings.
//
// # Document Format
//
//	{
//	  "starts": [{"index": 0}],
//	  "entries": [
//	    {
//	      "text": {"en": "Well met.", "fr": "Bien le bonjour."},
//	      "speaker": "innkeeper",
//	      "pointers": [{"index": 0}, {"index": 1, "condition": "has_gold"}]
//	    }
//	  ],
//	  "replies": [
//	    {"text": {"en": "Hello."}, "pointers": [{"index": 0, "link": true}]},
//	    {"text": {"en": "Goodbye."}}
//	  ]
//	}
//
// Pointers address nodes by index. Start pointers and reply pointers target
// entries; entry pointers target replies.
//
// # Text Keys
//
// Localized text is keyed by the BCP 47 tag of the language. A "/f" suffix
// selects the female variant ("fr/f"). Engine languages without a tag are
// written as "lang<N>". A talk-table reference is kept in "strref".
//
// # Pointer Fields
//
//   - index: target node (required)
//   - link: non-owning reference to a node defined elsewhere
//   - condition, condition_params: script gating the pointer
//   - comment: editor note on a link
//   - unresolved: the index does not name a node; kept without validation
//
// # Fidelity
//
// The document covers every field the dlg package interprets. Unknown
// scalar fields preserved in [dlg.Node.Extra] and [dlg.Dialogue.Extra] exist
// only in the binary form and are not exported. Use [dlg.Save] when a
// byte-identical round trip is required.
//
// # Import and Export
//
// [Import] and [Export] pick the format from the file extension (.json,
// .yaml, .yml). [ReadJSON], [ReadYAML], [WriteJSON] and [WriteYAML] work on
// any reader or writer.
package io
