package command

import "log/slog"

// Phase identifies a state of the resolver's two-pass state machine.
type Phase int

const (
	// PhaseStart covers the input and template-set checks.
	PhaseStart Phase = iota

	// PhaseExact is the first pass: verbatim matching of unslotted templates.
	PhaseExact

	// PhaseSlotted is the second pass: prefix/suffix matching of slotted
	// templates with parameter extraction.
	PhaseSlotted

	// PhaseDone is terminal; a MatchResult has been produced.
	PhaseDone
)

// String returns the lowercase phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseExact:
		return "exact"
	case PhaseSlotted:
		return "slotted"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// Trace receives resolver progress events. Implementations must be safe for
// concurrent use; a single Trace may observe many concurrent Resolve calls.
// All methods are invoked synchronously on the resolving goroutine, so they
// should return quickly.
type Trace interface {
	// PhaseChange is called on every state-machine transition.
	PhaseChange(from, to Phase)

	// TemplateSkipped is called for a template that was considered and
	// rejected, with a short reason ("malformed", "no match", ...).
	TemplateSkipped(tpl Template, reason string)

	// TemplateMatched is called for the winning template.
	TemplateMatched(tpl Template, phase Phase)
}

// nopTrace discards all events. It is the default when no Trace is configured.
type nopTrace struct{}

func (nopTrace) PhaseChange(Phase, Phase)        {}
func (nopTrace) TemplateSkipped(Template, string) {}
func (nopTrace) TemplateMatched(Template, Phase)  {}

// SlogTrace emits resolver events at debug level through the given logger.
type SlogTrace struct {
	Logger *slog.Logger
}

func (t SlogTrace) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// PhaseChange logs the transition.
func (t SlogTrace) PhaseChange(from, to Phase) {
	t.logger().Debug("resolver phase change", "from", from.String(), "to", to.String())
}

// TemplateSkipped logs the rejected template and reason.
func (t SlogTrace) TemplateSkipped(tpl Template, reason string) {
	t.logger().Debug("template skipped", "command", tpl.CommandName, "reason", reason)
}

// TemplateMatched logs the winning template.
func (t SlogTrace) TemplateMatched(tpl Template, phase Phase) {
	t.logger().Debug("template matched",
		"command", tpl.CommandName,
		"workflow_id", tpl.WorkflowID,
		"phase", phase.String(),
	)
}
