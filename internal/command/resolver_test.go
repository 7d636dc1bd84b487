package command

import (
	"reflect"
	"strings"
	"sync"
	"testing"
)

// recordingTrace captures resolver events for assertions.
type recordingTrace struct {
	mu      sync.Mutex
	phases  []Phase
	skipped []string // "command:reason"
	matched []string // "command:phase"
}

func (r *recordingTrace) PhaseChange(_, to Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, to)
}

func (r *recordingTrace) TemplateSkipped(tpl Template, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, tpl.CommandName+":"+reason)
}

func (r *recordingTrace) TemplateMatched(tpl Template, phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matched = append(r.matched, tpl.CommandName+":"+phase.String())
}

func TestResolver_EmptyUtterance(t *testing.T) {
	t.Parallel()

	r := NewResolver()
	templates := []Template{{CommandName: "go home", WorkflowID: "wf-1"}}

	for _, utterance := range []string{"", "   ", "?!,."} {
		res := r.Resolve(utterance, templates)
		if res.Success {
			t.Errorf("Resolve(%q) succeeded, want failure", utterance)
		}
		if !strings.Contains(res.Message, "empty") {
			t.Errorf("Resolve(%q) message = %q, want it to mention empty", utterance, res.Message)
		}
	}
}

func TestResolver_NoTemplates(t *testing.T) {
	t.Parallel()

	res := NewResolver().Resolve("go home", nil)
	if res.Success {
		t.Error("Resolve with no templates succeeded, want failure")
	}
	if res.Message != "no commands found" {
		t.Errorf("message = %q, want 'no commands found'", res.Message)
	}
}

func TestResolver_ExactMatch(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{CommandName: "Turn off the lights", WorkflowID: "wf-lights"},
		{CommandName: "go home", WorkflowID: "wf-home"},
	}

	res := NewResolver().Resolve("Go Home!", templates)
	if !res.Success {
		t.Fatalf("Resolve failed: %+v", res)
	}
	if res.Command != "go home" || res.WorkflowID != "wf-home" {
		t.Errorf("matched %q (%q), want 'go home' (wf-home)", res.Command, res.WorkflowID)
	}
	if res.Parameter != "" {
		t.Errorf("parameter = %q, want empty for exact match", res.Parameter)
	}
	if res.Message != "ready" {
		t.Errorf("message = %q, want 'ready'", res.Message)
	}
}

// Exact matches always win over slotted ones, regardless of template order.
func TestResolver_ExactMatchPriority(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "go place",
			HasParameter:  true,
			ParameterName: "place",
			WorkflowID:    "wf-slotted",
		},
		{CommandName: "go home", WorkflowID: "wf-exact"},
	}

	trace := &recordingTrace{}
	r := NewResolver(WithTrace(trace))

	res := r.Resolve("go home", templates)
	if !res.Success || res.WorkflowID != "wf-exact" {
		t.Fatalf("got %+v, want exact match wf-exact", res)
	}
	for _, m := range trace.matched {
		if strings.HasSuffix(m, ":slotted") {
			t.Errorf("slotted phase matched %q, want exact phase only", m)
		}
	}
}

func TestResolver_SlottedMatch(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "search for QUERY on the web",
			HasParameter:  true,
			ParameterName: "QUERY",
			WorkflowID:    "wf-search",
		},
	}

	res := NewResolver().Resolve("Search for Rust Ownership on the web", templates)
	if !res.Success {
		t.Fatalf("Resolve failed: %+v", res)
	}
	if res.Parameter != "Rust Ownership" {
		t.Errorf("parameter = %q, want 'Rust Ownership' with original casing", res.Parameter)
	}
	if res.WorkflowID != "wf-search" {
		t.Errorf("workflow = %q, want wf-search", res.WorkflowID)
	}
	if res.Message != "ready with parameter" {
		t.Errorf("message = %q, want 'ready with parameter'", res.Message)
	}
}

func TestResolver_SlottedMatchPreservesPunctuation(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "open the File.txt",
			HasParameter:  true,
			ParameterName: "File.txt",
			WorkflowID:    "wf-open",
		},
	}

	res := NewResolver().Resolve("Open the Report-2024.pdf", templates)
	if !res.Success {
		t.Fatalf("Resolve failed: %+v", res)
	}
	if res.Parameter != "Report-2024.pdf" {
		t.Errorf("parameter = %q, want 'Report-2024.pdf'", res.Parameter)
	}
}

// A trailing word the template does not have breaks the suffix boundary.
func TestResolver_SlottedSuffixMismatch(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "open the File.txt",
			HasParameter:  true,
			ParameterName: "File.txt",
			WorkflowID:    "wf-open",
		},
	}

	res := NewResolver().Resolve("Open the Report-2024.pdf, please", templates)
	if res.Success {
		t.Errorf("Resolve succeeded with %+v, want suffix mismatch", res)
	}
}

func TestResolver_EmptySlotIsNoMatch(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "play SONG now",
			HasParameter:  true,
			ParameterName: "SONG",
			WorkflowID:    "wf-play",
		},
	}

	res := NewResolver().Resolve("play now", templates)
	if res.Success {
		t.Fatalf("Resolve succeeded with %+v, want no match for empty slot", res)
	}
	if res.Message != "no matching command found" {
		t.Errorf("message = %q, want 'no matching command found'", res.Message)
	}
}

func TestResolver_MalformedTemplateSkipped(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			// parameterName does not occur in the phrase: malformed.
			CommandName:   "go home",
			HasParameter:  true,
			ParameterName: "place",
			WorkflowID:    "wf-bad",
		},
		{
			CommandName:   "go to PLACE",
			HasParameter:  true,
			ParameterName: "PLACE",
			WorkflowID:    "wf-good",
		},
	}

	trace := &recordingTrace{}
	res := NewResolver(WithTrace(trace)).Resolve("go to the old mill", templates)
	if !res.Success || res.WorkflowID != "wf-good" {
		t.Fatalf("got %+v, want match on wf-good after skipping malformed template", res)
	}
	if res.Parameter != "the old mill" {
		t.Errorf("parameter = %q, want 'the old mill'", res.Parameter)
	}

	found := false
	for _, s := range trace.skipped {
		if s == "go home:malformed" {
			found = true
		}
	}
	if !found {
		t.Errorf("trace did not record malformed skip, got %v", trace.skipped)
	}
}

// A slotted template with no parameter name at all is just as malformed as
// one whose parameter is absent from the phrase, and traces the same way.
func TestResolver_EmptyParameterNameTracedAsMalformed(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:  "go home",
			HasParameter: true,
			WorkflowID:   "wf-bad",
		},
	}

	trace := &recordingTrace{}
	res := NewResolver(WithTrace(trace)).Resolve("go home sweet home", templates)
	if res.Success {
		t.Fatalf("Resolve succeeded with %+v, want no match", res)
	}

	found := false
	for _, s := range trace.skipped {
		if s == "go home:malformed" {
			found = true
		}
	}
	if !found {
		t.Errorf("trace did not record malformed skip, got %v", trace.skipped)
	}
}

// First match wins: iteration order is the tie-break.
func TestResolver_IterationOrderTieBreak(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "play SONG",
			HasParameter:  true,
			ParameterName: "SONG",
			WorkflowID:    "wf-first",
		},
		{
			CommandName:   "play TRACK",
			HasParameter:  true,
			ParameterName: "TRACK",
			WorkflowID:    "wf-second",
		},
	}

	res := NewResolver().Resolve("play something", templates)
	if !res.Success || res.WorkflowID != "wf-first" {
		t.Errorf("got %+v, want first template to win", res)
	}
}

// Doubled whitespace in the original drifts the alignment; the resolver must
// degrade to the normalized slot value rather than return a wrong span.
func TestResolver_AlignmentDriftFallsBack(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "play SONG now",
			HasParameter:  true,
			ParameterName: "SONG",
			WorkflowID:    "wf-play",
		},
	}

	res := NewResolver().Resolve("play  Hey Jude now", templates)
	if !res.Success {
		t.Fatalf("Resolve failed: %+v", res)
	}
	if res.Parameter != "hey jude" {
		t.Errorf("parameter = %q, want normalized fallback 'hey jude'", res.Parameter)
	}
}

func TestResolver_Deterministic(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{CommandName: "go home", WorkflowID: "wf-1"},
		{
			CommandName:   "go to PLACE",
			HasParameter:  true,
			ParameterName: "PLACE",
			WorkflowID:    "wf-2",
		},
	}
	r := NewResolver()

	for _, utterance := range []string{"go home", "go to Berlin", "nonsense", ""} {
		first := r.Resolve(utterance, templates)
		second := r.Resolve(utterance, templates)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Resolve(%q) not deterministic: %+v vs %+v", utterance, first, second)
		}
	}
}

func TestResolver_PhaseTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		utterance  string
		templates  []Template
		wantPhases []Phase
	}{
		{
			name:       "empty input terminates at start",
			utterance:  "",
			templates:  []Template{{CommandName: "x", WorkflowID: "w"}},
			wantPhases: []Phase{PhaseDone},
		},
		{
			name:       "exact hit never enters slotted",
			utterance:  "go home",
			templates:  []Template{{CommandName: "go home", WorkflowID: "w"}},
			wantPhases: []Phase{PhaseExact, PhaseDone},
		},
		{
			name:      "miss walks both phases",
			utterance: "nonsense",
			templates: []Template{{CommandName: "go home", WorkflowID: "w"}},
			wantPhases: []Phase{
				PhaseExact, PhaseSlotted, PhaseDone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			trace := &recordingTrace{}
			NewResolver(WithTrace(trace)).Resolve(tt.utterance, tt.templates)
			if !reflect.DeepEqual(trace.phases, tt.wantPhases) {
				t.Errorf("phases = %v, want %v", trace.phases, tt.wantPhases)
			}
		})
	}
}

func TestResolver_UnicodeSlot(t *testing.T) {
	t.Parallel()

	templates := []Template{
		{
			CommandName:   "sag NAME hallo",
			HasParameter:  true,
			ParameterName: "NAME",
			WorkflowID:    "wf-greet",
		},
	}

	res := NewResolver().Resolve("Sag Jürgen Müller hallo", templates)
	if !res.Success {
		t.Fatalf("Resolve failed: %+v", res)
	}
	if res.Parameter != "Jürgen Müller" {
		t.Errorf("parameter = %q, want 'Jürgen Müller'", res.Parameter)
	}
}
