package command

import "strings"

// Template is one stored voice command, received by the engine as a read-only
// snapshot from the command store. When HasParameter is false the phrase must
// equal the utterance verbatim after normalization. When HasParameter is true,
// ParameterName is a literal substring of CommandName — not a placeholder
// token — whose first occurrence marks the variable slot's position.
type Template struct {
	// CommandName is the phrase as authored: mixed case, punctuation allowed.
	CommandName string

	// HasParameter marks the template as slotted.
	HasParameter bool

	// ParameterName is the example slot text inside CommandName. Required and
	// non-empty when HasParameter is true. A template whose ParameterName does
	// not occur in CommandName (after normalization) is malformed and is
	// skipped by the resolver, never a fatal error.
	ParameterName string

	// WorkflowID is an opaque identifier forwarded unchanged on a match.
	WorkflowID string
}

// slotSpan is the slot boundary of a slotted template, computed once per
// template from the normalized phrase so that matching and extraction cannot
// drift apart: prefix is everything before the slot, suffix everything after.
type slotSpan struct {
	prefix string
	suffix string

	// slotWords is the word count of the parameter example. A slot anchored
	// on both sides is pinned exactly by its boundaries; a slot at the phrase
	// edge has no boundary on that side and would otherwise swallow every
	// trailing (or leading) word of the utterance, so it may absorb at most
	// slotWords words.
	slotWords int
}

// newSlotSpan derives the slot boundaries for a slotted template. ok is false
// when the template is malformed: an empty normalized parameter name, or a
// parameter name that does not occur inside the normalized command phrase.
func newSlotSpan(commandName, parameterName string) (slotSpan, bool) {
	name := Normalize(commandName)
	param := Normalize(parameterName)
	if param == "" {
		return slotSpan{}, false
	}
	idx := strings.Index(name, param)
	if idx < 0 {
		return slotSpan{}, false
	}
	return slotSpan{
		prefix:    name[:idx],
		suffix:    name[idx+len(param):],
		slotWords: len(strings.Fields(param)),
	}, true
}

// match tests normalizedUtterance against the span boundaries. On success it
// returns the trimmed slot value, which is always a substring of
// normalizedUtterance (possibly empty). Overlapping boundaries — prefix and
// suffix together longer than the utterance — are a no-match rather than a
// nonsensical negative-length slice. An edge slot (empty prefix or suffix)
// that would absorb more words than the parameter example has is a no-match:
// "open the FILE" must not swallow "report pdf please" wholesale.
func (s slotSpan) match(normalizedUtterance string) (string, bool) {
	if len(s.prefix)+len(s.suffix) > len(normalizedUtterance) {
		return "", false
	}
	if !strings.HasPrefix(normalizedUtterance, s.prefix) || !strings.HasSuffix(normalizedUtterance, s.suffix) {
		return "", false
	}
	value := strings.TrimSpace(normalizedUtterance[len(s.prefix) : len(normalizedUtterance)-len(s.suffix)])
	if (s.prefix == "" || s.suffix == "") && len(strings.Fields(value)) > s.slotWords {
		return "", false
	}
	return value, true
}
