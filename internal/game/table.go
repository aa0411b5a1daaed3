package game

import (
	"time"

	"github.com/google/uuid"
)

// Settings are the per-table game parameters.
type Settings struct {
	DeckSize       int
	TurnLimit      int
	WelcomeMessage string
	ResetMessage   string
}

// Table binds a denomination pool to the session dealt from it.
type Table struct {
	ID        string    `json:"id"`
	Pool      *Pool     `json:"-"`
	Session   Session   `json:"session"`
	Settings  Settings  `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTable creates a table with a freshly dealt session
func NewTable(pool *Pool, settings Settings, rng RNG) *Table {
	if pool == nil {
		pool = NewPool(nil)
	}

	now := time.Now()

	return &Table{
		ID:        uuid.New().String(),
		Pool:      pool,
		Session:   NewSession(pool, settings.DeckSize, settings.TurnLimit, settings.WelcomeMessage, rng),
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Flip opens a card on the table's session
func (t *Table) Flip(id int) (Flip, bool) {
	next, f, ok := t.Session.Flip(id)
	if !ok {
		return Flip{}, false
	}

	t.Session = next
	t.UpdatedAt = time.Now()
	return f, true
}

// Reset deals a new deck from the current pool
func (t *Table) Reset(rng RNG) {
	t.Session = t.Session.Reset(t.Pool, t.Settings.ResetMessage, rng)
	t.UpdatedAt = time.Now()
}

// ApplyWish attaches a wish requested at version
func (t *Table) ApplyWish(version uint64, text string) bool {
	next, ok := t.Session.ApplyWish(version, text)
	if !ok {
		return false
	}

	t.Session = next
	t.UpdatedAt = time.Now()
	return true
}

// Touch marks the table as recently used
func (t *Table) Touch() {
	t.UpdatedAt = time.Now()
}

// Clone returns a deep copy safe to read outside the store lock.
func (t *Table) Clone() *Table {
	c := *t
	c.Pool = t.Pool.Clone()
	if t.Session.Deck != nil {
		c.Session.Deck = t.Session.Deck.clone()
	}
	c.Session.OpenedIDs = append(make([]int, 0, len(t.Session.OpenedIDs)), t.Session.OpenedIDs...)
	return &c
}
