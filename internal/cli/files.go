package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/LordOfMyatar/Radoub-sub018/pkg/dlg"
	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
	dlgio "github.com/LordOfMyatar/Radoub-sub018/pkg/io"
)

// isBinary reports whether path names a binary dialog file rather than a
// JSON or YAML document.
func isBinary(path string) bool {
	_, err := dlgio.FormatFromPath(path)
	return err != nil
}

// readDialogue loads a binary dialog or a JSON/YAML document, by extension.
func (c *CLI) readDialogue(ctx context.Context, path string) (*dlg.Dialogue, error) {
	opts, err := c.codecOptions()
	if err != nil {
		return nil, err
	}
	if !isBinary(path) {
		return dlgio.Import(path, opts...)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "%s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := dlg.LoadContext(ctx, data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// writeDialogue saves d to path as a binary dialog or a document, by
// extension. The file is replaced atomically. extra is appended to the
// configured codec options.
func (c *CLI) writeDialogue(ctx context.Context, d *dlg.Dialogue, path string, extra ...dlg.Option) error {
	opts, err := c.codecOptions()
	if err != nil {
		return err
	}
	opts = append(opts, extra...)
	if !isBinary(path) {
		format, _ := dlgio.FormatFromPath(path)
		var buf bytes.Buffer
		if err := dlgio.Write(d, &buf, format); err != nil {
			return err
		}
		return writeFileAtomic(path, buf.Bytes())
	}
	data, stats, err := dlg.SaveContext(ctx, d, opts...)
	if err != nil {
		return err
	}
	for _, diag := range stats.Diagnostics {
		c.Logger.Warn(diag.String())
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a uniquely named temporary file next to
// path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := cerrors.ValidatePath(path); err != nil {
		return err
	}
	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// parseNodeRef accepts "E<n>" or "R<n>", case-insensitively.
func parseNodeRef(s string) (dlg.NodeRef, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return dlg.NodeRef{}, cerrors.New(cerrors.ErrCodeInvalidInput, "bad node reference %q (want E<n> or R<n>)", s)
	}
	var kind dlg.Kind
	switch s[0] {
	case 'E', 'e':
		kind = dlg.KindEntry
	case 'R', 'r':
		kind = dlg.KindReply
	default:
		return dlg.NodeRef{}, cerrors.New(cerrors.ErrCodeInvalidInput, "bad node reference %q (want E<n> or R<n>)", s)
	}
	i, err := strconv.Atoi(s[1:])
	if err != nil || i < 0 {
		return dlg.NodeRef{}, cerrors.New(cerrors.ErrCodeInvalidInput, "bad node index in %q", s)
	}
	return dlg.NodeRef{Kind: kind, Index: i}, nil
}

// parsePointerRef accepts "<node>:<slot>", for example "E0:1".
func parsePointerRef(s string) (dlg.NodeRef, int, error) {
	node, slot, ok := strings.Cut(s, ":")
	if !ok {
		return dlg.NodeRef{}, 0, cerrors.New(cerrors.ErrCodeInvalidInput, "bad pointer reference %q (want E<n>:<slot>)", s)
	}
	ref, err := parseNodeRef(node)
	if err != nil {
		return dlg.NodeRef{}, 0, err
	}
	i, err := strconv.Atoi(slot)
	if err != nil || i < 0 {
		return dlg.NodeRef{}, 0, cerrors.New(cerrors.ErrCodeInvalidInput, "bad pointer slot in %q", s)
	}
	return ref, i, nil
}
