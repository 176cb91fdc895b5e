package io

import (
	"path/filepath"
	"strings"

	cerrors "github.com/LordOfMyatar/Radoub-sub018/pkg/errors"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", cerrors.New(cerrors.ErrCodeInvalidConfig, "unknown document format %q (want json or yaml)", s)
}

// FormatFromPath selects a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", cerrors.New(cerrors.ErrCodeInvalidInput, "%s: no file extension to pick a format from", path)
	}
	return ParseFormat(ext)
}
