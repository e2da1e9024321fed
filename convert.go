package debsources

import (
	"iter"
	"strings"

	"golang.org/x/exp/slices"
)

// Expand yields one single-line descriptor per type × URI × suite
// combination of d, types outermost and suites innermost. The sequence can
// be ranged over more than once.
func Expand(d Descriptor) iter.Seq[Descriptor] {
	return func(yield func(Descriptor) bool) {
		for _, t := range d.Types {
			for _, u := range d.URIs {
				for _, s := range d.Suites {
					line := d.Clone()
					line.Types = []string{t}
					line.URIs = []string{u}
					line.Suites = []string{s}
					if !yield(line) {
						return
					}
				}
			}
		}
	}
}

// ExpandAll expands every descriptor in ds, keeping input order.
func ExpandAll(ds []Descriptor) []Descriptor {
	var out []Descriptor
	for _, d := range ds {
		for line := range Expand(d) {
			out = append(out, line)
		}
	}
	return out
}

// ToStanza converts a single-line descriptor to its stanza form.
func ToStanza(d Descriptor) (Descriptor, error) {
	if !d.IsLine() {
		return Descriptor{}, ErrNotLine
	}
	st := d.Clone()
	st.Types = []string{d.Type()}
	st.URIs = []string{d.URI()}
	st.Suites = []string{d.Suite()}
	return st, nil
}

// ToStanzas converts every single-line descriptor in ds to stanza form and
// keeps the others, so existing multi-valued stanzas keep their grouping.
func ToStanzas(ds []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(ds))
	for _, d := range ds {
		st, err := ToStanza(d)
		if err != nil {
			st = d.Clone()
		}
		out = append(out, st)
	}
	return out
}

// Collapse merges descriptors that differ only in their types, URIs or
// suites into as few stanzas as it can without changing what they expand
// to. Exact duplicates are dropped. Output keeps first-occurrence order.
func Collapse(ds []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Clone())
	}
	out = mergeAlong(out, func(d *Descriptor) *[]string { return &d.Suites })
	out = mergeAlong(out, func(d *Descriptor) *[]string { return &d.URIs })
	out = mergeAlong(out, func(d *Descriptor) *[]string { return &d.Types })
	return out
}

// mergeAlong folds together descriptors that agree on everything except the
// list picked by dim, concatenating that list.
func mergeAlong(ds []Descriptor, dim func(*Descriptor) *[]string) []Descriptor {
	index := make(map[string]int)
	var out []Descriptor
	for _, d := range ds {
		probe := d
		*dim(&probe) = nil
		key := probe.sharedKey()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, d)
			continue
		}
		merged := dim(&out[i])
		for _, v := range *dim(&d) {
			if !slices.Contains(*merged, v) {
				*merged = append(*merged, v)
			}
		}
	}
	return out
}

// sharedKey identifies d by every field, for grouping.
func (d Descriptor) sharedKey() string {
	var b strings.Builder
	for _, list := range [][]string{d.Types, d.URIs, d.Suites, d.Components} {
		b.WriteString(strings.Join(list, " "))
		b.WriteByte(0)
	}
	b.WriteString(d.Enabled.String())
	b.WriteByte(0)
	for _, opt := range options {
		b.WriteString(strings.Join(opt.values(&d), "\x1f"))
		b.WriteByte(0)
	}
	return b.String()
}
