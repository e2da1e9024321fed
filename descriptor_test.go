package debsources

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsEnabled(t *testing.T) {
	for _, tc := range []struct {
		state EnabledState
		want  bool
	}{
		{EnabledUnset, true},
		{EnabledYes, true},
		{EnabledNo, false},
	} {
		if got := (Descriptor{Enabled: tc.state}).IsEnabled(); got != tc.want {
			t.Errorf("IsEnabled() with %v = %v, want %v", tc.state, got, tc.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := Descriptor{
		Types:         []string{"deb"},
		URIs:          []string{"http://example.com/debian"},
		Suites:        []string{"stable"},
		Components:    []string{"main"},
		Architectures: []string{"amd64"},
	}
	c := d.Clone()
	if diff := cmp.Diff(d, c); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}
	c.Components[0] = "contrib"
	c.Architectures[0] = "arm64"
	if d.Components[0] != "main" || d.Architectures[0] != "amd64" {
		t.Errorf("editing the clone changed the original: %+v", d)
	}
}

func TestNormalizeBool(t *testing.T) {
	for in, want := range map[string]string{
		"yes": "yes", "Yes": "yes", "TRUE": "yes", "1": "yes", "on": "yes", "with": "yes",
		"no": "no", "NO": "no", "false": "no", "0": "no", "off": "no", "without": "no",
	} {
		got, ok := normalizeBool(in)
		if !ok || got != want {
			t.Errorf("normalizeBool(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "maybe", "force", "y"} {
		if _, ok := normalizeBool(in); ok {
			t.Errorf("normalizeBool(%q) accepted", in)
		}
	}
}

func TestOptionKeys(t *testing.T) {
	var lineKeys, stanzaKeys []string
	for _, opt := range options {
		if opt.lineKey != "" {
			lineKeys = append(lineKeys, opt.lineKey)
		}
		stanzaKeys = append(stanzaKeys, opt.stanzaKey)
	}
	wantLine := []string{
		"arch", "lang", "target", "pdiffs", "by-hash", "allow-insecure", "allow-weak",
		"allow-downgrade-to-insecure", "trusted", "signed-by", "check-valid-until",
		"valid-until-min", "valid-until-max", "check-date", "date-max-future",
	}
	if diff := cmp.Diff(wantLine, lineKeys); diff != "" {
		t.Errorf("line keys (-want +got):\n%s", diff)
	}
	wantStanza := []string{
		"Architectures", "Languages", "Targets", "PDiffs", "By-Hash", "Allow-Insecure",
		"Allow-Weak", "Allow-Downgrade-To-Insecure", "Trusted", "Signed-By",
		"Check-Valid-Until", "Valid-Until-Min", "Valid-Until-Max", "Check-Date",
		"Date-Max-Future", "InRelease-Path",
	}
	if diff := cmp.Diff(wantStanza, stanzaKeys); diff != "" {
		t.Errorf("stanza keys (-want +got):\n%s", diff)
	}
}
