package debsources

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Repository types accepted in the first position of a source entry.
const (
	TypeDeb    = "deb"
	TypeDebSrc = "deb-src"
)

// ParseLine parses a single sources.list entry. Anything that is not an
// entry, including comments and malformed lines, fails with an error
// wrapping ErrNoDescriptor.
func ParseLine(line string) (Descriptor, error) {
	line = strings.TrimLeft(line, " \t")
	rest, block, found := cutOptions(line)

	var opts map[string][]string
	if found {
		var err error
		if opts, err = tokenizeOptions(block); err != nil {
			return Descriptor{}, fmt.Errorf("%w: %w", ErrNoDescriptor, err)
		}
	}

	d := Descriptor{Enabled: EnabledYes}
	if strings.HasPrefix(rest, "#") {
		rest = rest[1:]
		d.Enabled = EnabledNo
	}

	parts := strings.Fields(rest)
	// type, uri, suite and at least one component
	if len(parts) < 4 {
		return Descriptor{}, fmt.Errorf("%w: want at least 4 fields, got %d", ErrNoDescriptor, len(parts))
	}
	if parts[0] != TypeDeb && parts[0] != TypeDebSrc {
		return Descriptor{}, fmt.Errorf("%w: unknown type %q", ErrNoDescriptor, parts[0])
	}
	if err := checkURI(parts[1]); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %w", ErrNoDescriptor, err)
	}

	d.Types = []string{parts[0]}
	d.URIs = []string{parts[1]}
	d.Suites = []string{parts[2]}
	d.Components = parts[3:]
	applyLineOptions(&d, opts)
	return d, nil
}

func checkURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse uri: %w", err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("uri %q has no scheme", raw)
	}
	return nil
}

// ParseLines parses every entry in a sources.list document. Blank and
// malformed lines are skipped; the returned error only reports read failures.
func ParseLines(r io.Reader) ([]Descriptor, error) {
	var out []Descriptor
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		d, err := ParseLine(line)
		if err != nil {
			log.WithFields(log.Fields{
				"line":  lineNo,
				"error": err,
			}).Debug("Skipping line")
			continue
		}
		out = append(out, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading sources list: %w", err)
	}
	return out, nil
}

// FormatLine renders d as a sources.list entry.
func FormatLine(d Descriptor) (string, error) {
	if !d.IsLine() {
		return "", ErrNotLine
	}
	if d.SignedByKind() == SignedByEmbedded {
		fprs, err := d.SignedByFingerprints()
		if err != nil {
			return "", fmt.Errorf("signed-by: %w", err)
		}
		log.WithFields(log.Fields{
			"uri":          d.URI(),
			"fingerprints": fprs,
		}).Warn("Embedded key cannot be written on one line, using fingerprints")
		d = d.Clone()
		d.SignedBy = strings.Join(fprs, ",")
	}

	var b strings.Builder
	if !d.IsEnabled() {
		b.WriteString("# ")
	}
	b.WriteString(d.Type())
	if opts := formatLineOptions(&d); opts != "" {
		b.WriteString(" [" + opts + "] ")
	} else {
		b.WriteString(" ")
	}
	b.WriteString(d.URI() + " " + d.Suite() + " " + strings.Join(d.Components, " "))
	return b.String(), nil
}

// FormatLines writes one entry per line. Stanzas with several types, URIs
// or suites are expanded first.
func FormatLines(w io.Writer, ds []Descriptor) error {
	for _, d := range ExpandAll(ds) {
		line, err := FormatLine(d)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
