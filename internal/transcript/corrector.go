// Package transcript corrects raw speech-to-text output against a user's
// command vocabulary before resolution.
//
// STT engines routinely mangle short command phrases ("go hum" for "go home",
// "turnip the lights" for "turn off the lights"). The corrector slides n-gram
// windows over the transcript and replaces windows that phonetically match a
// vocabulary phrase. It runs entirely in-process and upstream of the resolver,
// which itself performs only literal matching.
package transcript

import (
	"strings"
)

// defaultMaxNGram caps the window size, in words, the corrector considers
// when no vocabulary phrase is longer.
const defaultMaxNGram = 4

// Matcher finds the vocabulary phrase most similar to a transcript n-gram.
// When matched is false, corrected equals word unchanged and confidence is 0.
type Matcher interface {
	Match(word string, vocabulary []string) (corrected string, confidence float64, matched bool)
}

// Correction records one replacement the corrector applied.
type Correction struct {
	// Original is the transcript window that was replaced.
	Original string `json:"original"`

	// Corrected is the vocabulary phrase it was replaced with.
	Corrected string `json:"corrected"`

	// Confidence is the similarity score the matcher reported.
	Confidence float64 `json:"confidence"`
}

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithMaxNGram caps the n-gram window, in words, the corrector slides over
// the transcript. Windows never exceed the longest vocabulary phrase either
// way. Default: 4.
func WithMaxNGram(n int) Option {
	return func(c *Corrector) {
		if n > 0 {
			c.maxNGram = n
		}
	}
}

// Corrector applies phonetic corrections to transcripts. It is safe for
// concurrent use — all state is read-only after construction.
type Corrector struct {
	matcher  Matcher
	maxNGram int
}

// New constructs a [Corrector] around the given matcher.
func New(matcher Matcher, opts ...Option) *Corrector {
	c := &Corrector{
		matcher:  matcher,
		maxNGram: defaultMaxNGram,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct slides n-gram windows over text and replaces windows the matcher
// maps to a vocabulary phrase. It returns the corrected text and the list of
// replacements applied, in transcript order.
//
// At each token position windows are tried from the largest size down to 1,
// so multi-word phrases take precedence over partial single-word matches. A
// window that already equals a vocabulary phrase (case-insensitive) is left
// alone: there is nothing to correct and skipping it keeps exact speech
// intact.
func (c *Corrector) Correct(text string, vocabulary []string) (string, []Correction) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || len(vocabulary) == 0 {
		return text, nil
	}

	maxWindow := maxWordCount(vocabulary)
	if maxWindow > c.maxNGram {
		maxWindow = c.maxNGram
	}

	exact := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		exact[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	var output []string
	var corrections []Correction

	i := 0
	for i < len(tokens) {
		// Clamp window size to remaining tokens.
		maxN := maxWindow
		if i+maxN > len(tokens) {
			maxN = len(tokens) - i
		}

		matched := false
		for n := maxN; n >= 1; n-- {
			window := strings.Join(tokens[i:i+n], " ")
			if _, ok := exact[strings.ToLower(window)]; ok {
				output = append(output, tokens[i:i+n]...)
				i += n
				matched = true
				break
			}

			phrase, conf, ok := c.matcher.Match(window, vocabulary)
			if !ok || strings.EqualFold(phrase, window) {
				continue
			}

			output = append(output, strings.Fields(phrase)...)
			corrections = append(corrections, Correction{
				Original:   window,
				Corrected:  phrase,
				Confidence: conf,
			})
			i += n
			matched = true
			break
		}

		if !matched {
			output = append(output, tokens[i])
			i++
		}
	}

	return strings.Join(output, " "), corrections
}

// maxWordCount returns the maximum number of whitespace-separated words in
// any vocabulary phrase. Returns 1 when vocabulary is empty.
func maxWordCount(vocabulary []string) int {
	max := 1
	for _, v := range vocabulary {
		n := len(strings.Fields(v))
		if n > max {
			max = n
		}
	}
	return max
}
