package store

import (
	"errors"
	"time"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
)

// ErrTableNotFound is returned when no table has the requested id
var ErrTableNotFound = errors.New("table not found")

// Store defines the interface for table storage
type Store interface {
	// SaveTable adds or replaces a table
	SaveTable(t *game.Table) error

	// GetTable returns a copy of the table with the given id
	GetTable(id string) (*game.Table, error)

	// UpdateTable runs fn on the stored table while holding the table
	// exclusively, and returns a copy of the result
	UpdateTable(id string, fn func(t *game.Table) error) (*game.Table, error)

	// DeleteTable removes a table
	DeleteTable(id string) error

	// GetAllTables returns copies of every table
	GetAllTables() ([]*game.Table, error)

	// Sweep removes tables not updated since the cutoff and returns their ids
	Sweep(cutoff time.Time) []string
}
