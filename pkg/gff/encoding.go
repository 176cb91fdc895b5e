package gff

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding converts string payloads between their on-disk form and UTF-8.
type Encoding struct {
	name string
	enc  encoding.Encoding // nil means pass-through
}

var (
	// EncodingWindows1252 is the code page the game uses for Western languages.
	EncodingWindows1252 = Encoding{name: "windows-1252", enc: charmap.Windows1252}

	// EncodingUTF8 stores strings as UTF-8 bytes without conversion.
	EncodingUTF8 = Encoding{name: "utf-8"}
)

// DefaultEncoding is used when no encoding is configured.
var DefaultEncoding = EncodingWindows1252

// EncodingByName returns the encoding with the given name.
func EncodingByName(name string) (Encoding, error) {
	switch name {
	case "", "windows-1252", "cp1252":
		return EncodingWindows1252, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	}
	return Encoding{}, fmt.Errorf("unknown string encoding %q", name)
}

// Name returns the canonical name of the encoding.
func (e Encoding) Name() string {
	if e.name == "" {
		return DefaultEncoding.name
	}
	return e.name
}

func (e Encoding) codec() encoding.Encoding {
	if e.name == "" {
		return DefaultEncoding.enc
	}
	return e.enc
}

// Decode converts on-disk bytes to a UTF-8 string.
func (e Encoding) Decode(b []byte) (string, error) {
	c := e.codec()
	if c == nil {
		return string(b), nil
	}
	out, err := c.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts a UTF-8 string to its on-disk bytes. Characters that the
// code page cannot represent are replaced rather than rejected; use
// [Encoding.EncodeLossy] to learn whether that happened.
func (e Encoding) Encode(s string) ([]byte, error) {
	b, _, err := e.EncodeLossy(s)
	return b, err
}

// EncodeLossy is Encode that also reports whether any character was
// replaced.
func (e Encoding) EncodeLossy(s string) ([]byte, bool, error) {
	c := e.codec()
	if c == nil {
		return []byte(s), false, nil
	}
	if b, err := c.NewEncoder().Bytes([]byte(s)); err == nil {
		return b, false, nil
	}
	b, err := encoding.ReplaceUnsupported(c.NewEncoder()).Bytes([]byte(s))
	return b, err == nil, err
}
