package cmdstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the voice_commands table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS voice_commands (
    id             TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    command_name   TEXT NOT NULL,
    has_parameter  BOOLEAN NOT NULL DEFAULT FALSE,
    parameter_name TEXT NOT NULL DEFAULT '',
    workflow_id    TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_voice_commands_user ON voice_commands(user_id);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// voice_commands table and index if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("cmdstore: migrate: %w", err)
	}
	return nil
}

// Create inserts a new command definition. It validates the definition,
// generates an ID when none is supplied, and returns an error if a command
// with the same ID already exists.
func (s *PostgresStore) Create(ctx context.Context, def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}

	const query = `
		INSERT INTO voice_commands (
			id, user_id, command_name, has_parameter, parameter_name, workflow_id
		) VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRow(ctx, query,
		def.ID, def.UserID, def.CommandName, def.HasParameter, def.ParameterName, def.WorkflowID,
	).Scan(&def.CreatedAt, &def.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("cmdstore: command with id %q already exists", def.ID)
		}
		return fmt.Errorf("cmdstore: create: %w", err)
	}
	return nil
}

// Get retrieves a command definition by ID. It returns (nil, nil) if no
// command with the given ID exists.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Definition, error) {
	const query = `
		SELECT id, user_id, command_name, has_parameter, parameter_name, workflow_id,
		       created_at, updated_at
		FROM voice_commands
		WHERE id = $1`

	var def Definition
	err := s.db.QueryRow(ctx, query, id).Scan(
		&def.ID, &def.UserID, &def.CommandName, &def.HasParameter,
		&def.ParameterName, &def.WorkflowID, &def.CreatedAt, &def.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("cmdstore: get %q: %w", id, err)
	}
	return &def, nil
}

// Delete removes a command definition by ID. Deleting a non-existent command
// is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM voice_commands WHERE id = $1`
	if _, err := s.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("cmdstore: delete %q: %w", id, err)
	}
	return nil
}

// List returns all command definitions for userID ordered alphabetically by
// command phrase. The order is stable, which makes it the resolver's
// tie-break order.
func (s *PostgresStore) List(ctx context.Context, userID string) ([]Definition, error) {
	const query = `
		SELECT id, user_id, command_name, has_parameter, parameter_name, workflow_id,
		       created_at, updated_at
		FROM voice_commands
		WHERE user_id = $1
		ORDER BY command_name, id`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("cmdstore: list: %w", err)
	}
	defer rows.Close()

	var defs []Definition
	for rows.Next() {
		var def Definition
		if err := rows.Scan(
			&def.ID, &def.UserID, &def.CommandName, &def.HasParameter,
			&def.ParameterName, &def.WorkflowID, &def.CreatedAt, &def.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("cmdstore: list scan: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cmdstore: list: %w", err)
	}
	return defs, nil
}

// isDuplicateKeyError checks whether a PostgreSQL error is a unique-violation
// (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
