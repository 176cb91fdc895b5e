package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
)

// ReadJSON decodes a JSON dialogue document from r.
//
// Pointers are validated as they are added: each must target an existing
// node of the opposite kind, unless it carries "unresolved": true, in which
// case it is kept as-is and not counted as a reference.
//
// opts configure the returned dialogue (logger, hooks, delete policy).
// ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...dlg.Option) (*dlg.Dialogue, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.toDialogue(opts...)
}

// ReadYAML decodes a YAML dialogue document from r. It accepts the same
// structure as [ReadJSON].
func ReadYAML(r io.Reader, opts ...dlg.Option) (*dlg.Dialogue, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.toDialogue(opts...)
}

// Read decodes a document in the given format.
func Read(r io.Reader, format Format, opts ...dlg.Option) (*dlg.Dialogue, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r, opts...)
	case FormatYAML:
		return ReadYAML(r, opts...)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Import reads the document at path, choosing the format from its
// extension.
func Import(path string, opts ...dlg.Option) (*dlg.Dialogue, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format, opts...)
}
