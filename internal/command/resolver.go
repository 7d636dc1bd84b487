package command

import (
	"strings"
	"unicode/utf8"
)

// Result messages. The HTTP layer serialises these verbatim, so they are part
// of the API surface.
const (
	msgEmptyCommand       = "empty command"
	msgNoCommands         = "no commands found"
	msgReady              = "ready"
	msgReadyWithParameter = "ready with parameter"
	msgNoMatch            = "no matching command found"
)

// MatchResult is the outcome of resolving one utterance against a template
// set. Every code path in the resolver terminates in a well-formed
// MatchResult; anomalies are expressed as data, never as errors or panics.
type MatchResult struct {
	// Success reports whether a template matched.
	Success bool `json:"success"`

	// Command is the matched template's phrase as authored.
	Command string `json:"command,omitempty"`

	// Parameter is the extracted slot text for slotted matches. It is a
	// substring of the ORIGINAL utterance with casing and punctuation
	// preserved, except when position alignment fails, in which case it
	// degrades to the normalized slot value.
	Parameter string `json:"parameter,omitempty"`

	// WorkflowID is the matched template's workflow identifier, unchanged.
	WorkflowID string `json:"workflow_id,omitempty"`

	// Message describes the outcome ("ready", "no matching command found", ...).
	Message string `json:"message"`
}

// Resolver matches utterances against command templates: exact phrases first,
// slotted phrases second, first match wins within each pass. The iteration
// order of the supplied templates is the tie-break — the resolver never
// re-sorts, so callers wanting "most specific first" behaviour must pre-sort.
//
// A Resolver is stateless apart from its optional trace hook and is safe for
// concurrent use.
type Resolver struct {
	trace Trace
}

// ResolverOption configures a [Resolver].
type ResolverOption func(*Resolver)

// WithTrace attaches a [Trace] that observes phase transitions and
// per-template decisions. Useful for debugging mis-matches without touching
// the matching algorithm.
func WithTrace(t Trace) ResolverOption {
	return func(r *Resolver) {
		if t != nil {
			r.trace = t
		}
	}
}

// NewResolver returns a Resolver with the given options applied.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{trace: nopTrace{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve runs the two-phase state machine over templates and returns a
// terminal MatchResult. For a fixed utterance and a fixed ordered template
// sequence the outcome is always identical.
func (r *Resolver) Resolve(utterance string, templates []Template) MatchResult {
	var (
		phase      = PhaseStart
		normalized string
		result     MatchResult
	)

	for phase != PhaseDone {
		switch phase {
		case PhaseStart:
			normalized = Normalize(utterance)
			if normalized == "" {
				result = MatchResult{Message: msgEmptyCommand}
				phase = r.transition(phase, PhaseDone)
				continue
			}
			if len(templates) == 0 {
				result = MatchResult{Message: msgNoCommands}
				phase = r.transition(phase, PhaseDone)
				continue
			}
			phase = r.transition(phase, PhaseExact)

		case PhaseExact:
			if res, ok := r.exactPass(normalized, templates); ok {
				result = res
				phase = r.transition(phase, PhaseDone)
				continue
			}
			phase = r.transition(phase, PhaseSlotted)

		case PhaseSlotted:
			if res, ok := r.slottedPass(utterance, normalized, templates); ok {
				result = res
			} else {
				result = MatchResult{Message: msgNoMatch}
			}
			phase = r.transition(phase, PhaseDone)
		}
	}
	return result
}

// transition notifies the trace hook and returns the new phase.
func (r *Resolver) transition(from, to Phase) Phase {
	r.trace.PhaseChange(from, to)
	return to
}

// exactPass iterates unslotted templates in order and returns the first whose
// normalized phrase equals the normalized utterance.
func (r *Resolver) exactPass(normalized string, templates []Template) (MatchResult, bool) {
	for _, tpl := range templates {
		if tpl.HasParameter {
			continue
		}
		if Normalize(tpl.CommandName) != normalized {
			r.trace.TemplateSkipped(tpl, "no match")
			continue
		}
		r.trace.TemplateMatched(tpl, PhaseExact)
		return MatchResult{
			Success:    true,
			Command:    tpl.CommandName,
			WorkflowID: tpl.WorkflowID,
			Message:    msgReady,
		}, true
	}
	return MatchResult{}, false
}

// slottedPass iterates slotted templates in order, matching prefix/suffix
// boundaries and extracting the slot parameter from the original utterance.
// Malformed templates (parameter absent from the phrase) are skipped; they
// never abort the search.
func (r *Resolver) slottedPass(original, normalized string, templates []Template) (MatchResult, bool) {
	for _, tpl := range templates {
		if !tpl.HasParameter {
			continue
		}
		// newSlotSpan rejects an empty ParameterName too, so every malformed
		// slotted template surfaces through the trace the same way.
		span, ok := newSlotSpan(tpl.CommandName, tpl.ParameterName)
		if !ok {
			r.trace.TemplateSkipped(tpl, "malformed")
			continue
		}
		value, ok := span.match(normalized)
		if !ok {
			r.trace.TemplateSkipped(tpl, "no match")
			continue
		}
		if value == "" {
			// An empty parameter is not actionable.
			r.trace.TemplateSkipped(tpl, "empty slot")
			continue
		}

		r.trace.TemplateMatched(tpl, PhaseSlotted)
		return MatchResult{
			Success:    true,
			Command:    tpl.CommandName,
			Parameter:  r.extractOriginal(original, normalized, value),
			WorkflowID: tpl.WorkflowID,
			Message:    msgReadyWithParameter,
		}, true
	}
	return MatchResult{}, false
}

// extractOriginal recovers the slot text as the user spoke it. The slot value
// is located in the normalized utterance, the rune range is mapped back onto
// the original via [AlignSpan], and the recovered span is verified by
// re-normalizing it. Alignment can miss or drift when the original contains
// collapsed whitespace runs; both cases degrade to the normalized slot value,
// never to a failure.
func (r *Resolver) extractOriginal(original, normalized, value string) string {
	byteIdx := strings.Index(normalized, value)
	if byteIdx < 0 {
		return value
	}
	first := utf8.RuneCountInString(normalized[:byteIdx])
	last := first + utf8.RuneCountInString(value) - 1

	start, end, ok := AlignSpan(original, first, last)
	if !ok {
		return value
	}
	span := original[start:end]
	if Normalize(span) != value {
		return value
	}
	return span
}
