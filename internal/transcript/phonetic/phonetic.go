// Package phonetic implements the [transcript.Matcher] interface for command
// vocabularies: Double Metaphone encoding narrows the vocabulary to phrases
// that sound like the transcript n-gram, Jaro-Winkler similarity picks the
// best of them.
//
// Candidates and input are canonicalised with the engine's own normalizer, so
// the matcher agrees with the resolver about punctuation and casing — the
// vocabulary phrase "Open the File.txt" and the spoken "open the filetxt"
// compare equal before any phonetics run.
//
// When nothing in the vocabulary sounds alike, a fallback pass accepts a
// purely string-similar phrase at a stricter threshold. That catches STT
// typos the phonetic codes miss without letting loosely similar phrases
// through.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/Aakash-star320/mimevoice/internal/command"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched phrase to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic match is found and the matcher falls back to pure string
// similarity. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher is a phonetic vocabulary matcher. It implements
// [transcript.Matcher]. All methods are safe for concurrent use — the Matcher
// is read-only after construction.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a new [Matcher] configured with the supplied options.
// Default thresholds are 0.70 for phonetic matches and 0.85 for fuzzy
// fallback matches.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match finds the vocabulary phrase most similar to word, which may be a
// single word or a space-separated n-gram from the transcript.
//
// The phonetic pass runs first: phrases sharing at least one Double Metaphone
// code with the input are ranked against the phonetic threshold. Only when
// that pass finds nothing does the fuzzy pass rank the whole vocabulary
// against the stricter fuzzy threshold.
//
// When matched is false, corrected equals word unchanged and confidence is 0.
func (m *Matcher) Match(word string, vocabulary []string) (corrected string, confidence float64, matched bool) {
	input := command.Normalize(word)
	if input == "" || len(vocabulary) == 0 {
		return word, 0, false
	}
	inputTokens := strings.Fields(input)
	inputCodes := codesForTokens(inputTokens)

	soundsAlike := func(phraseTokens []string) bool {
		return codesOverlap(inputCodes, codesForTokens(phraseTokens))
	}

	// Phonetic pass.
	if phrase, score := bestCandidate(input, inputTokens, vocabulary, m.phoneticThreshold, soundsAlike); phrase != "" {
		return phrase, score, true
	}

	// Fuzzy fallback over the whole vocabulary.
	if phrase, score := bestCandidate(input, inputTokens, vocabulary, m.fuzzyThreshold, nil); phrase != "" {
		return phrase, score, true
	}

	return word, 0, false
}

// bestCandidate ranks the vocabulary phrases passing the eligible filter (nil
// admits all) by similarity to the input and returns the best one scoring at
// least threshold, or "" when none qualifies. The returned phrase keeps its
// original vocabulary form; only the comparison is normalized.
func bestCandidate(input string, inputTokens []string, vocabulary []string, threshold float64, eligible func(phraseTokens []string) bool) (string, float64) {
	var (
		bestPhrase string
		bestScore  float64
	)
	for _, phrase := range vocabulary {
		norm := command.Normalize(phrase)
		if norm == "" {
			continue
		}
		phraseTokens := strings.Fields(norm)
		if eligible != nil && !eligible(phraseTokens) {
			continue
		}
		if score := similarity(input, norm, inputTokens, phraseTokens); score >= threshold && score > bestScore {
			bestPhrase = phrase
			bestScore = score
		}
	}
	return bestPhrase, bestScore
}

// similarity is the Jaro-Winkler score between input and phrase: the full
// normalized strings, or the best pairwise token score when that is higher.
// The pairwise comparison covers a single garbled word inside a multi-word
// window corresponding to one word of the phrase ("lites" inside
// "turn of the lites" against "lights").
func similarity(input, phrase string, inputTokens, phraseTokens []string) float64 {
	score := matchr.JaroWinkler(input, phrase, false)
	for _, it := range inputTokens {
		for _, pt := range phraseTokens {
			if s := matchr.JaroWinkler(it, pt, false); s > score {
				score = s
			}
		}
	}
	return score
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes (produced when a word has no encodable sounds)
// are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
