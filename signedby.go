package debsources

import (
	"fmt"
	"strings"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

type SignedByKind int

const (
	SignedByNone SignedByKind = iota
	// SignedByPaths is a list of keyring paths and/or fingerprints.
	SignedByPaths
	// SignedByEmbedded is one or more ASCII-armored public key blocks.
	SignedByEmbedded
)

const (
	armorBegin = "-----BEGIN PGP PUBLIC KEY BLOCK-----"
	armorEnd   = "-----END PGP PUBLIC KEY BLOCK-----"
)

func (d Descriptor) SignedByKind() SignedByKind {
	switch {
	case strings.TrimSpace(d.SignedBy) == "":
		return SignedByNone
	case strings.Contains(d.SignedBy, armorBegin):
		return SignedByEmbedded
	default:
		return SignedByPaths
	}
}

// SignedByFingerprints lists the keys Signed-By refers to. Embedded keys are
// parsed and reported by upper-case fingerprint; paths and fingerprints are
// returned as written.
func (d Descriptor) SignedByFingerprints() ([]string, error) {
	switch d.SignedByKind() {
	case SignedByNone:
		return nil, nil
	case SignedByPaths:
		return strings.FieldsFunc(d.SignedBy, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}), nil
	}

	var fprs []string
	rest := d.SignedBy
	for {
		start := strings.Index(rest, armorBegin)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], armorEnd)
		if end < 0 {
			return nil, fmt.Errorf("unterminated key block")
		}
		end += start + len(armorEnd)
		key, err := crypto.NewKeyFromArmored(rest[start:end])
		if err != nil {
			return nil, fmt.Errorf("reading embedded key: %w", err)
		}
		fprs = append(fprs, strings.ToUpper(key.GetFingerprint()))
		rest = rest[end:]
	}
	return fprs, nil
}
