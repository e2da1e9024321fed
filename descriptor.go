package debsources

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

var (
	// ErrNoDescriptor marks input that does not hold a source entry. Batch
	// parsers skip it.
	ErrNoDescriptor = errors.New("no descriptor")

	// ErrNotLine is returned when a one-line operation gets a descriptor with
	// more than one type, URI or suite.
	ErrNotLine = errors.New("descriptor does not fit on one line")

	ErrWrongType = errors.New("value is not a string")
)

// FieldError is a structural failure: a field is present but its value has
// the wrong shape.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %v (%#v)", e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// EnabledState is the tri-state Enabled field. The zero value means the
// field was never given, which apt treats as enabled.
type EnabledState int

const (
	EnabledUnset EnabledState = iota
	EnabledYes
	EnabledNo
)

func (s EnabledState) String() string {
	switch s {
	case EnabledYes:
		return "yes"
	case EnabledNo:
		return "no"
	default:
		return ""
	}
}

// Descriptor is one repository source. A one-line entry has exactly one
// type, URI and suite; a deb822 stanza may list several of each.
//
// Functions in this package never modify a Descriptor they are given.
type Descriptor struct {
	Types      []string
	URIs       []string
	Suites     []string
	Components []string
	Enabled    EnabledState

	Architectures []string
	Languages     []string
	Targets       []string

	// Scalar options are "" when absent. Boolean spellings are stored as
	// "yes" or "no"; anything else is kept as written.
	PDiffs                   string
	ByHash                   string
	AllowInsecure            string
	AllowWeak                string
	AllowDowngradeToInsecure string
	Trusted                  string
	SignedBy                 string
	CheckValidUntil          string
	ValidUntilMin            string
	ValidUntilMax            string
	CheckDate                string
	DateMaxFuture            string

	// InReleasePath is read from stanzas but never written back out.
	InReleasePath string
}

func (d Descriptor) IsEnabled() bool {
	return d.Enabled != EnabledNo
}

// IsLine reports whether d can be written as a single sources.list line.
func (d Descriptor) IsLine() bool {
	return len(d.Types) == 1 && len(d.URIs) == 1 && len(d.Suites) == 1
}

func (d Descriptor) Type() string  { return first(d.Types) }
func (d Descriptor) URI() string   { return first(d.URIs) }
func (d Descriptor) Suite() string { return first(d.Suites) }

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Types = slices.Clone(d.Types)
	out.URIs = slices.Clone(d.URIs)
	out.Suites = slices.Clone(d.Suites)
	out.Components = slices.Clone(d.Components)
	for _, opt := range options {
		if opt.kind == kindList {
			*opt.list(&out) = slices.Clone(*opt.list(&d))
		}
	}
	return out
}

type optionKind int

const (
	kindList optionKind = iota
	kindBool
	// kindBoolish takes booleans or a keyword, like By-Hash's "force".
	kindBoolish
	kindString
	kindInt
)

// option binds a Descriptor field to its key in each encoding.
type option struct {
	lineKey   string
	stanzaKey string
	kind      optionKind
	list      func(*Descriptor) *[]string
	scalar    func(*Descriptor) *string
	readOnly  bool // parsed, never formatted
}

func (o option) values(d *Descriptor) []string {
	if o.kind == kindList {
		return *o.list(d)
	}
	if v := *o.scalar(d); v != "" {
		return []string{v}
	}
	return nil
}

// options is declared in output order.
var options = []option{
	{lineKey: "arch", stanzaKey: "Architectures", kind: kindList,
		list: func(d *Descriptor) *[]string { return &d.Architectures }},
	{lineKey: "lang", stanzaKey: "Languages", kind: kindList,
		list: func(d *Descriptor) *[]string { return &d.Languages }},
	{lineKey: "target", stanzaKey: "Targets", kind: kindList,
		list: func(d *Descriptor) *[]string { return &d.Targets }},
	{lineKey: "pdiffs", stanzaKey: "PDiffs", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.PDiffs }},
	{lineKey: "by-hash", stanzaKey: "By-Hash", kind: kindBoolish,
		scalar: func(d *Descriptor) *string { return &d.ByHash }},
	{lineKey: "allow-insecure", stanzaKey: "Allow-Insecure", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.AllowInsecure }},
	{lineKey: "allow-weak", stanzaKey: "Allow-Weak", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.AllowWeak }},
	{lineKey: "allow-downgrade-to-insecure", stanzaKey: "Allow-Downgrade-To-Insecure", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.AllowDowngradeToInsecure }},
	{lineKey: "trusted", stanzaKey: "Trusted", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.Trusted }},
	{lineKey: "signed-by", stanzaKey: "Signed-By", kind: kindString,
		scalar: func(d *Descriptor) *string { return &d.SignedBy }},
	{lineKey: "check-valid-until", stanzaKey: "Check-Valid-Until", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.CheckValidUntil }},
	{lineKey: "valid-until-min", stanzaKey: "Valid-Until-Min", kind: kindInt,
		scalar: func(d *Descriptor) *string { return &d.ValidUntilMin }},
	{lineKey: "valid-until-max", stanzaKey: "Valid-Until-Max", kind: kindInt,
		scalar: func(d *Descriptor) *string { return &d.ValidUntilMax }},
	{lineKey: "check-date", stanzaKey: "Check-Date", kind: kindBool,
		scalar: func(d *Descriptor) *string { return &d.CheckDate }},
	{lineKey: "date-max-future", stanzaKey: "Date-Max-Future", kind: kindInt,
		scalar: func(d *Descriptor) *string { return &d.DateMaxFuture }},
	{stanzaKey: "InRelease-Path", kind: kindString, readOnly: true,
		scalar: func(d *Descriptor) *string { return &d.InReleasePath }},
}

// Reverse lookups from external key to option. Stanza keys are lower-cased.
var (
	lineOptions   = map[string]option{}
	stanzaOptions = map[string]option{}
)

func init() {
	for _, opt := range options {
		if opt.lineKey != "" {
			lineOptions[opt.lineKey] = opt
		}
		stanzaOptions[strings.ToLower(opt.stanzaKey)] = opt
	}
}

// normalizeBool maps the boolean spellings apt accepts onto "yes" and "no".
func normalizeBool(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "on", "1", "enable", "with":
		return "yes", true
	case "no", "false", "off", "0", "disable", "without":
		return "no", true
	}
	return "", false
}

// normalizeScalar folds recognized boolean spellings to "yes"/"no" for
// the kinds that take them. Other values pass through unchanged.
func normalizeScalar(opt option, v string) string {
	if opt.kind != kindBool && opt.kind != kindBoolish {
		return v
	}
	if b, ok := normalizeBool(v); ok {
		return b
	}
	return v
}
