package query

import (
	"cmp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// nameKey is a name prepared for ordering: NFC-normalized, with its length
// in code points. "é" typed as one or two code points gets the same key.
type nameKey struct {
	nfc   string
	runes int
}

func newNameKey(name string) nameKey {
	nfc := norm.NFC.String(name)
	return nameKey{nfc: nfc, runes: utf8.RuneCountInString(nfc)}
}

// compareNameKeys orders by length in code points, then byte-wise.
func compareNameKeys(a, b nameKey) int {
	if c := cmp.Compare(a.runes, b.runes); c != 0 {
		return c
	}
	return strings.Compare(a.nfc, b.nfc)
}
