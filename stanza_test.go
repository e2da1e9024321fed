package debsources

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleSources = `# Debian mirrors
Types: deb deb-src
URIs: http://deb.debian.org/debian https://mirror.example.com/debian
Suites: bookworm bookworm-updates
Components: main contrib
Architectures: amd64 arm64
Signed-By: /usr/share/keyrings/debian-archive-keyring.gpg

Types: deb
URIs: http://example.com/incomplete
Components: main

types: deb
uris: http://security.debian.org/debian-security
suites: bookworm-security
components: main
enabled: No
Trusted: TRUE
By-Hash: force
InRelease-Path: dists/bookworm-security/InRelease
`

func TestParseStanzas(t *testing.T) {
	ds, err := ParseStanzas(strings.NewReader(sampleSources))
	if err != nil {
		t.Fatal(err)
	}
	want := []Descriptor{
		{
			Types:         []string{"deb", "deb-src"},
			URIs:          []string{"http://deb.debian.org/debian", "https://mirror.example.com/debian"},
			Suites:        []string{"bookworm", "bookworm-updates"},
			Components:    []string{"main", "contrib"},
			Architectures: []string{"amd64", "arm64"},
			SignedBy:      "/usr/share/keyrings/debian-archive-keyring.gpg",
		},
		{
			Types:         []string{"deb"},
			URIs:          []string{"http://security.debian.org/debian-security"},
			Suites:        []string{"bookworm-security"},
			Components:    []string{"main"},
			Enabled:       EnabledNo,
			Trusted:       "yes",
			ByHash:        "force",
			InReleasePath: "dists/bookworm-security/InRelease",
		},
	}
	if diff := cmp.Diff(want, ds); diff != "" {
		t.Errorf("ParseStanzas (-want +got):\n%s", diff)
	}
}

func TestWriteStanzas(t *testing.T) {
	ds, err := ParseStanzas(strings.NewReader(sampleSources))
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := WriteStanzas(&b, ds); err != nil {
		t.Fatal(err)
	}
	want := `Types: deb deb-src
URIs: http://deb.debian.org/debian https://mirror.example.com/debian
Suites: bookworm bookworm-updates
Components: main contrib
Architectures: amd64 arm64
Signed-By: /usr/share/keyrings/debian-archive-keyring.gpg

Types: deb
URIs: http://security.debian.org/debian-security
Suites: bookworm-security
Components: main
Enabled: no
By-Hash: force
Trusted: yes
`
	if b.String() != want {
		t.Errorf("WriteStanzas =\n%s\nwant\n%s", b.String(), want)
	}

	again, err := ParseStanzas(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	// InRelease-Path does not survive formatting.
	ds[1].InReleasePath = ""
	if diff := cmp.Diff(ds, again); diff != "" {
		t.Errorf("reparse (-first +second):\n%s", diff)
	}
}

func TestParseFieldsWrongType(t *testing.T) {
	_, err := ParseFields(map[string]any{
		"Types":      "deb",
		"Suites":     []string{"stable"},
		"Components": "main",
	})
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FieldError", err)
	}
	if fe.Field != "Suites" || !errors.Is(err, ErrWrongType) {
		t.Errorf("got %v", fe)
	}
	if errors.Is(err, ErrNoDescriptor) {
		t.Errorf("wrong type reported as a skip: %v", err)
	}
}

func TestParseFieldsMissing(t *testing.T) {
	for _, fields := range []map[string]any{
		{"URIs": "http://example.com", "Suites": "stable", "Components": "main"},
		{"Types": "deb", "URIs": "http://example.com", "Suites": "stable"},
		{"Types": "deb", "URIs": "  ", "Suites": "stable", "Components": "main"},
		{"Types": "deb", "URIs": nil, "Suites": "stable", "Components": "main"},
	} {
		if _, err := ParseFields(fields); !errors.Is(err, ErrNoDescriptor) {
			t.Errorf("ParseFields(%v) error = %v, want ErrNoDescriptor", fields, err)
		}
	}
}

func TestParseFieldsBooleans(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"Types": "deb", "URIs": "http://example.com", "Suites": "stable", "Components": "main",
		}
	}
	for _, tc := range []struct {
		key, in string
		get     func(Descriptor) string
		want    string
	}{
		{"Trusted", "Yes", func(d Descriptor) string { return d.Trusted }, "yes"},
		{"PDiffs", "false", func(d Descriptor) string { return d.PDiffs }, "no"},
		{"Allow-Weak", "1", func(d Descriptor) string { return d.AllowWeak }, "yes"},
		{"Check-Date", "NO", func(d Descriptor) string { return d.CheckDate }, "no"},
		{"By-Hash", "force", func(d Descriptor) string { return d.ByHash }, "force"},
		{"Valid-Until-Min", "3600", func(d Descriptor) string { return d.ValidUntilMin }, "3600"},
		{"By-Hash", "Yes", func(d Descriptor) string { return d.ByHash }, "yes"},
		{"Enabled", "TRUE", func(d Descriptor) string { return d.Enabled.String() }, "yes"},
		{"Trusted", "sometimes", func(d Descriptor) string { return d.Trusted }, "sometimes"},
		{"Check-Valid-Until", "maybe", func(d Descriptor) string { return d.CheckValidUntil }, "maybe"},
		{"Enabled", "sometimes", func(d Descriptor) string { return d.Enabled.String() }, ""},
	} {
		fields := base()
		fields[tc.key] = tc.in
		d, err := ParseFields(fields)
		if err != nil {
			t.Fatalf("%s: %v", tc.key, err)
		}
		if got := tc.get(d); got != tc.want {
			t.Errorf("%s: %q parsed as %q, want %q", tc.key, tc.in, got, tc.want)
		}
	}
}

func TestParseStanzasKeepsUnknownBooleans(t *testing.T) {
	doc := `Types: deb
URIs: http://example.com/debian
Suites: stable
Components: main

Types: deb
URIs: http://example.com/debian
Suites: testing
Components: main
Check-Valid-Until: maybe
`
	ds, err := ParseStanzas(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 2 {
		t.Fatalf("got %d stanzas, want 2", len(ds))
	}
	if ds[1].CheckValidUntil != "maybe" {
		t.Errorf("Check-Valid-Until = %q, want maybe", ds[1].CheckValidUntil)
	}

	var b strings.Builder
	if err := WriteStanzas(&b, ds[1:]); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "Check-Valid-Until: maybe\n") {
		t.Errorf("value not written back:\n%s", b.String())
	}
}

func TestFormatStanzaIncomplete(t *testing.T) {
	_, err := FormatStanza(Descriptor{Types: []string{"deb"}})
	if !errors.Is(err, ErrNoDescriptor) {
		t.Errorf("error = %v, want ErrNoDescriptor", err)
	}
}

func TestEncodeStanzaValue(t *testing.T) {
	if got := encodeStanzaValue("plain"); got != "plain" {
		t.Errorf("got %q", got)
	}
	for in, want := range map[string]string{
		"a\n\nb":     "a\n.\nb",
		"\na\n\nb\n": "a\n.\nb",
	} {
		if got := encodeStanzaValue(in); got != want {
			t.Errorf("encodeStanzaValue(%q) = %q, want %q", in, got, want)
		}
	}
}
