package cmdstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory [Store] for development and tests. It mirrors the
// PostgresStore semantics, including (nil, nil) for missing commands and
// alphabetical List order.
type MemStore struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{defs: make(map[string]Definition)}
}

func (s *MemStore) Create(_ context.Context, def *Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.defs[def.ID]; exists {
		return fmt.Errorf("cmdstore: command with id %q already exists", def.ID)
	}
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now
	s.defs[def.ID] = *def
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.defs[id]
	if !ok {
		return nil, nil
	}
	return &def, nil
}

func (s *MemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.defs, id)
	return nil
}

func (s *MemStore) List(_ context.Context, userID string) ([]Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var defs []Definition
	for _, def := range s.defs {
		if def.UserID == userID {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].CommandName != defs[j].CommandName {
			return defs[i].CommandName < defs[j].CommandName
		}
		return defs[i].ID < defs[j].ID
	})
	return defs, nil
}
