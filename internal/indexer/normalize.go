package indexer

import (
	"strings"
	"unicode"
)

// Normalize cleans raw page text before chunking: every rune outside letters, digits,
// underscore, whitespace and ". , ! ?" is dropped, whitespace runs collapse to a single
// space, and letters are lower-cased. Collapsing happens after dropping so the result
// is a fixed point: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		r = unicode.ToLower(r)
		if !keepRune(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	if pendingSpace {
		b.WriteByte(' ')
	}

	return b.String()
}

func keepRune(r rune) bool {
	switch r {
	case '_', '.', ',', '!', '?':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
