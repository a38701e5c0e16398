package digest

import (
	"encoding/hex"
	"strings"

	"github.com/workledger/registry-services/constants"
)

// HashString is the textual form of a content digest. The canonical
// form is lowercase hex with no 0x prefix. A HashString is unverified
// until it has been matched against a digest or a ledger record.
type HashString string

// Canonicalize trims whitespace, removes 0x or 0X prefixes and
// lowercases what's left. Trimming and prefix removal repeat until
// neither changes anything, so canonicalizing twice gives the same
// answer as once. Empty input yields an empty HashString, which
// callers treat as "no hash supplied."
func Canonicalize(input string) HashString {
	h := strings.TrimSpace(input)
	for len(h) >= 2 && (h[:2] == "0x" || h[:2] == "0X") {
		h = strings.TrimSpace(h[2:])
	}
	return HashString(strings.ToLower(h))
}

// ProbeVariants returns the two encodings we try when asking the ledger
// about a hash: the canonical form first, then the same value with the
// 0x prefix. The ledger does not promise which one it stored.
func ProbeVariants(h HashString) []string {
	canonical := string(Canonicalize(string(h)))
	return []string{
		canonical,
		constants.HashPrefix + canonical,
	}
}

// FromDigest returns the canonical HashString for a ContentDigest.
func FromDigest(d ContentDigest) HashString {
	return HashString(hex.EncodeToString(d[:]))
}

func (h HashString) IsEmpty() bool {
	return h == ""
}

// Valid returns true if h looks like a canonical sha256 hex digest.
func (h HashString) Valid() bool {
	if len(h) != hex.EncodedLen(Size) {
		return false
	}
	for _, c := range h {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

func (h HashString) String() string {
	return string(h)
}
