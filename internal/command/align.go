package command

import "unicode/utf8"

// AlignSpan maps an inclusive rune index range [first, last] expressed over
// the punctuation-stripped character stream of original back onto original
// itself. It returns byte offsets [start, end) suitable for slicing original,
// so the caller can recover the user's exact casing and punctuation.
//
// The scan walks original once, left to right, counting only runes that are
// not in the punctuation set. The first original position reaching a target
// counter value wins. When original is exhausted before both boundaries are
// found, ok is false.
//
// The counter models punctuation removal only — not the whitespace collapsing
// performed by [Normalize]. When original contains runs of whitespace, indices
// computed against fully normalized text will not line up with this stream;
// callers must verify the recovered span and fall back when it does not.
func AlignSpan(original string, first, last int) (start, end int, ok bool) {
	if first < 0 || last < first {
		return 0, 0, false
	}

	stripped := 0
	foundStart := false
	for i, r := range original {
		if isPunctuation(r) {
			continue
		}
		if stripped == first && !foundStart {
			start = i
			foundStart = true
		}
		if stripped == last {
			return start, i + utf8.RuneLen(r), true
		}
		stripped++
	}
	return 0, 0, false
}
