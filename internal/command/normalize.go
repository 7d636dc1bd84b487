// Package command implements the voice command matching engine: text
// normalization, two-phase template resolution (exact phrases before slotted
// phrases), slot-boundary matching, and the position alignment that maps a
// match in normalized text back to the span the user actually spoke.
//
// The engine is purely computational — no I/O, no shared mutable state. Every
// call operates on a caller-supplied utterance and template snapshot, so
// concurrent calls are fully independent.
package command

import (
	"strings"
	"unicode"
)

// punctuation is the fixed set of characters stripped by [Normalize]. The
// position aligner relies on this exact set — keep the two in sync by never
// testing punctuation anywhere except [isPunctuation].
const punctuation = `,.?!;:"'()[]{}-_/\`

// isPunctuation reports whether r belongs to the stripped punctuation set.
func isPunctuation(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

// Normalize canonicalises text for matching: the fixed punctuation set is
// removed, whitespace runs collapse to a single space, the result is trimmed
// and lowercased. Normalize is idempotent and returns "" for input that is
// empty or consists only of punctuation and whitespace; callers must treat an
// empty result as "no usable input" rather than attempt matching.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := false
	for _, r := range text {
		switch {
		case isPunctuation(r):
			// dropped
		case unicode.IsSpace(r):
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
