package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
)

// MemoryStore is an in-memory implementation of table storage. Nothing
// survives a restart.
type MemoryStore struct {
	tables map[string]*game.Table
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]*game.Table),
	}
}

// SaveTable saves a table to the store
func (s *MemoryStore) SaveTable(t *game.Table) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("save table: missing id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[t.ID] = t.Clone()
	return nil
}

// GetTable retrieves a table by ID
func (s *MemoryStore) GetTable(id string) (*game.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tables[id]
	if !exists {
		return nil, ErrTableNotFound
	}

	return t.Clone(), nil
}

// UpdateTable applies fn to a table. All writes go through the store
// lock, so two updates never interleave.
func (s *MemoryStore) UpdateTable(id string, fn func(t *game.Table) error) (*game.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tables[id]
	if !exists {
		return nil, ErrTableNotFound
	}

	// fn works on a copy so a failed update leaves the table untouched
	work := t.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	s.tables[id] = work

	return work.Clone(), nil
}

// DeleteTable removes a table from the store
func (s *MemoryStore) DeleteTable(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tables[id]; !exists {
		return ErrTableNotFound
	}

	delete(s.tables, id)
	return nil
}

// GetAllTables returns all tables in the store
func (s *MemoryStore) GetAllTables() ([]*game.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]*game.Table, 0, len(s.tables))
	for _, t := range s.tables {
		tables = append(tables, t.Clone())
	}

	return tables, nil
}

// Sweep evicts idle tables
func (s *MemoryStore) Sweep(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, t := range s.tables {
		if t.UpdatedAt.Before(cutoff) {
			delete(s.tables, id)
			removed = append(removed, id)
		}
	}

	return removed
}
