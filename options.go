package debsources

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// cutOptions removes the first bracketed options block from line. The block
// is replaced by a space so the tokens around it stay apart.
func cutOptions(line string) (rest, block string, found bool) {
	start := strings.IndexByte(line, '[')
	if start < 0 {
		return line, "", false
	}
	end := strings.IndexByte(line[start:], ']')
	if end < 0 {
		return line, "", false
	}
	end += start
	return line[:start] + " " + line[end+1:], line[start+1 : end], true
}

// tokenizeOptions splits an options block into key=value1,value2 pairs.
// When a key repeats, the last occurrence wins.
func tokenizeOptions(block string) (map[string][]string, error) {
	opts := make(map[string][]string)
	for _, tok := range strings.Fields(block) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("option %q: missing '='", tok)
		}
		if key == "" {
			return nil, fmt.Errorf("option %q: empty key", tok)
		}
		if _, seen := opts[key]; seen {
			log.WithFields(log.Fields{
				"option": key,
			}).Debug("Repeated option, keeping the last value")
		}
		opts[key] = strings.Split(value, ",")
	}
	return opts, nil
}

// applyLineOptions copies the tokenized options onto d.
func applyLineOptions(d *Descriptor, opts map[string][]string) {
	keys := maps.Keys(opts)
	slices.Sort(keys)
	for _, key := range keys {
		opt, ok := lineOptions[key]
		if !ok {
			log.WithFields(log.Fields{
				"option": key,
			}).Debug("Ignoring unknown option")
			continue
		}
		values := opts[key]
		if opt.kind == kindList {
			var kept []string
			for _, v := range values {
				if v != "" {
					kept = append(kept, v)
				}
			}
			*opt.list(d) = kept
			continue
		}
		raw := strings.Join(values, ",")
		if raw == "" {
			continue
		}
		*opt.scalar(d) = normalizeScalar(opt, raw)
	}
}

// formatLineOptions renders the options block contents, without brackets.
func formatLineOptions(d *Descriptor) string {
	var toks []string
	for _, opt := range options {
		if opt.readOnly {
			continue
		}
		values := opt.values(d)
		if len(values) == 0 {
			continue
		}
		// A value may hold several space-separated items (deb822 Signed-By
		// lists keyrings that way); inside brackets they must be commas.
		var items []string
		for _, v := range values {
			items = append(items, strings.Fields(v)...)
		}
		toks = append(toks, opt.lineKey+"="+strings.Join(items, ","))
	}
	return strings.Join(toks, " ")
}
