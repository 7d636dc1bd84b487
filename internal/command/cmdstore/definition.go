package cmdstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aakash-star320/mimevoice/internal/command"
)

// Definition is one stored voice command owned by a user.
type Definition struct {
	// ID uniquely identifies the command. Generated on create when empty.
	ID string `json:"id"`

	// UserID scopes the command to its owner.
	UserID string `json:"user_id"`

	// CommandName is the phrase as authored, mixed case, punctuation allowed.
	CommandName string `json:"command_name"`

	// HasParameter marks the command as slotted.
	HasParameter bool `json:"has_parameter"`

	// ParameterName is the literal slot example inside CommandName. Must be
	// empty when HasParameter is false.
	ParameterName string `json:"parameter_name,omitempty"`

	// WorkflowID is the workflow triggered when the command matches.
	WorkflowID string `json:"workflow_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the definition for store admission. The resolver tolerates
// malformed templates at match time regardless, but rejecting them at write
// time keeps the store clean. It returns a joined error listing all failures.
func (d *Definition) Validate() error {
	var errs []error

	if d.UserID == "" {
		errs = append(errs, errors.New("cmdstore: user_id must not be empty"))
	}
	if command.Normalize(d.CommandName) == "" {
		errs = append(errs, errors.New("cmdstore: command_name must not normalize to empty"))
	}
	if d.WorkflowID == "" {
		errs = append(errs, errors.New("cmdstore: workflow_id must not be empty"))
	}

	if d.HasParameter {
		param := command.Normalize(d.ParameterName)
		if param == "" {
			errs = append(errs, errors.New("cmdstore: parameter_name is required for slotted commands"))
		} else if !strings.Contains(command.Normalize(d.CommandName), param) {
			errs = append(errs, fmt.Errorf(
				"cmdstore: parameter_name %q does not occur in command_name %q",
				d.ParameterName, d.CommandName))
		}
	} else if d.ParameterName != "" {
		errs = append(errs, errors.New("cmdstore: parameter_name must be empty for unslotted commands"))
	}

	return errors.Join(errs...)
}

// Template converts the definition to the engine's read-only snapshot form.
func (d *Definition) Template() command.Template {
	return command.Template{
		CommandName:   d.CommandName,
		HasParameter:  d.HasParameter,
		ParameterName: d.ParameterName,
		WorkflowID:    d.WorkflowID,
	}
}

// Templates converts a definition list to engine templates, preserving order.
func Templates(defs []Definition) []command.Template {
	templates := make([]command.Template, len(defs))
	for i := range defs {
		templates[i] = defs[i].Template()
	}
	return templates
}
