package debsources

import (
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"pault.ag/go/debian/control"
)

// Required stanza fields.
const (
	fieldTypes      = "Types"
	fieldURIs       = "URIs"
	fieldSuites     = "Suites"
	fieldComponents = "Components"
	fieldEnabled    = "Enabled"
)

// requiredFields also holds Enabled, keyed lower-case.
var requiredFields = map[string]bool{
	"types":      true,
	"uris":       true,
	"suites":     true,
	"components": true,
	"enabled":    true,
}

// ParseFields decodes one deb822 stanza given as raw key/value pairs. Keys
// match case-insensitively. Option values are kept as written, except that
// boolean spellings are folded to "yes"/"no".
//
// A stanza missing a required field fails with an error wrapping
// ErrNoDescriptor. A field whose value is not a string fails with a
// *FieldError.
func ParseFields(fields map[string]any) (Descriptor, error) {
	lookup := make(map[string]any, len(fields))
	for k, v := range fields {
		lookup[strings.ToLower(strings.TrimSpace(k))] = v
	}
	get := func(key string) (string, error) {
		v, ok := lookup[strings.ToLower(key)]
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", &FieldError{Field: key, Value: v, Err: ErrWrongType}
		}
		return strings.TrimSpace(s), nil
	}

	keys := maps.Keys(lookup)
	slices.Sort(keys)
	for _, key := range keys {
		if _, ok := stanzaOptions[key]; ok || requiredFields[key] {
			continue
		}
		log.WithFields(log.Fields{
			"field": key,
		}).Debug("Ignoring unknown field")
	}

	var d Descriptor
	for _, req := range []struct {
		key string
		dst *[]string
	}{
		{fieldTypes, &d.Types},
		{fieldURIs, &d.URIs},
		{fieldSuites, &d.Suites},
		{fieldComponents, &d.Components},
	} {
		v, err := get(req.key)
		if err != nil {
			return Descriptor{}, err
		}
		*req.dst = strings.Fields(v)
	}

	enabled, err := get(fieldEnabled)
	if err != nil {
		return Descriptor{}, err
	}
	if enabled != "" {
		switch b, _ := normalizeBool(enabled); b {
		case "yes":
			d.Enabled = EnabledYes
		case "no":
			d.Enabled = EnabledNo
		default:
			log.WithFields(log.Fields{
				"value": enabled,
			}).Warn("Unrecognized Enabled value, leaving it unset")
		}
	}

	for _, opt := range options {
		v, err := get(opt.stanzaKey)
		if err != nil {
			return Descriptor{}, err
		}
		if v == "" {
			continue
		}
		if opt.kind == kindList {
			*opt.list(&d) = strings.Fields(v)
			continue
		}
		*opt.scalar(&d) = normalizeScalar(opt, v)
	}

	if err := d.checkRequired(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func (d Descriptor) checkRequired() error {
	for _, req := range []struct {
		key    string
		values []string
	}{
		{fieldTypes, d.Types},
		{fieldURIs, d.URIs},
		{fieldSuites, d.Suites},
		{fieldComponents, d.Components},
	} {
		if len(req.values) == 0 {
			return fmt.Errorf("%w: missing %s", ErrNoDescriptor, req.key)
		}
	}
	return nil
}

// ParseParagraph decodes a paragraph read by the control package.
func ParseParagraph(p control.Paragraph) (Descriptor, error) {
	fields := make(map[string]any, len(p.Values))
	for k, v := range p.Values {
		fields[k] = v
	}
	return ParseFields(fields)
}

// ParseStanzas parses every stanza in a deb822 sources document. Stanzas
// without the required fields are skipped; text the paragraph reader cannot
// split into fields aborts the parse.
func ParseStanzas(r io.Reader) ([]Descriptor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}
	pr, err := control.NewParagraphReader(strings.NewReader(cleanStanzaText(string(raw))), nil)
	if err != nil {
		return nil, fmt.Errorf("reading sources: %w", err)
	}

	var out []Descriptor
	for i := 0; ; i++ {
		p, err := pr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stanza %d: %w", i, err)
		}
		if p == nil || len(p.Order) == 0 {
			continue
		}
		d, err := ParseParagraph(*p)
		if errors.Is(err, ErrNoDescriptor) {
			log.WithFields(log.Fields{
				"stanza": i,
				"error":  err,
			}).Debug("Skipping stanza")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stanza %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// cleanStanzaText drops comment lines and empties whitespace-only lines so
// the paragraph reader sees them as separators rather than continuations.
func cleanStanzaText(s string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			line = ""
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatStanza builds the deb822 paragraph for d. InReleasePath is not
// written.
func FormatStanza(d Descriptor) (control.Paragraph, error) {
	p := control.Paragraph{
		Values: make(map[string]string),
	}
	if err := d.checkRequired(); err != nil {
		return p, err
	}
	p.Set(fieldTypes, strings.Join(d.Types, " "))
	p.Set(fieldURIs, strings.Join(d.URIs, " "))
	p.Set(fieldSuites, strings.Join(d.Suites, " "))
	p.Set(fieldComponents, strings.Join(d.Components, " "))
	if d.Enabled != EnabledUnset {
		p.Set(fieldEnabled, d.Enabled.String())
	}
	for _, opt := range options {
		if opt.readOnly {
			if len(opt.values(&d)) > 0 {
				log.WithFields(log.Fields{
					"field": opt.stanzaKey,
				}).Debug("Dropping read-only field")
			}
			continue
		}
		values := opt.values(&d)
		if len(values) == 0 {
			continue
		}
		p.Set(opt.stanzaKey, encodeStanzaValue(strings.Join(values, " ")))
	}
	return p, nil
}

// encodeStanzaValue lays a multi-line value out as continuation lines, with
// "." standing in for empty lines. The first line stays on the key line.
func encodeStanzaValue(v string) string {
	v = strings.Trim(v, "\n")
	if !strings.Contains(v, "\n") {
		return v
	}
	lines := strings.Split(v, "\n")
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			lines[i+1] = "."
		}
	}
	return strings.Join(lines, "\n")
}

// WriteStanzas writes ds as deb822 paragraphs separated by blank lines.
func WriteStanzas(w io.Writer, ds []Descriptor) error {
	for i, d := range ds {
		p, err := FormatStanza(d)
		if err != nil {
			return fmt.Errorf("formatting stanza %d: %w", i, err)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := p.WriteTo(w); err != nil {
			return fmt.Errorf("writing stanza %d: %w", i, err)
		}
	}
	return nil
}
