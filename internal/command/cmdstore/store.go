// Package cmdstore persists voice command definitions per user.
//
// The resolver never talks to the store directly: callers fetch a user's
// command list (ordered alphabetically by phrase, which doubles as the
// resolver's deterministic tie-break order) and hand the engine a read-only
// template snapshot.
package cmdstore

import "context"

// Store provides CRUD operations for voice command definitions.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new command definition. The definition is validated
	// before insertion; when ID is empty a new one is generated. Returns an
	// error if a command with the same ID already exists.
	Create(ctx context.Context, def *Definition) error

	// Get retrieves a command definition by ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, id string) (*Definition, error)

	// Delete removes a command definition by ID. Deleting a non-existent
	// command is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all command definitions for userID, ordered alphabetically
	// by command phrase.
	List(ctx context.Context, userID string) ([]Definition, error)
}
