package debsources

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Encoding is one of the two sources file formats.
type Encoding int

const (
	EncodingOneLine Encoding = iota
	EncodingDeb822
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "list", "line", "one-line", ".list":
		return EncodingOneLine, nil
	case "deb822", "sources", ".sources":
		return EncodingDeb822, nil
	}
	return 0, fmt.Errorf("unknown encoding %q", s)
}

// EncodingForPath picks the encoding from a file extension, as apt does.
func EncodingForPath(path string) (Encoding, bool) {
	switch filepath.Ext(path) {
	case ".list":
		return EncodingOneLine, true
	case ".sources":
		return EncodingDeb822, true
	}
	return 0, false
}

func (e Encoding) String() string {
	if e == EncodingDeb822 {
		return "deb822"
	}
	return "list"
}

func (e Encoding) Extension() string {
	if e == EncodingDeb822 {
		return ".sources"
	}
	return ".list"
}

// Parse reads a whole document in the given encoding.
func Parse(e Encoding, r io.Reader) ([]Descriptor, error) {
	if e == EncodingDeb822 {
		return ParseStanzas(r)
	}
	return ParseLines(r)
}

// Write renders ds in the given encoding. One-line output expands stanzas.
func Write(e Encoding, w io.Writer, ds []Descriptor) error {
	if e == EncodingDeb822 {
		return WriteStanzas(w, ds)
	}
	return FormatLines(w, ds)
}
