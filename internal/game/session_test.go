package game_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
)

func testPool() *game.Pool {
	return game.NewPool([]game.Denomination{
		{Label: "10k", Amount: 10000},
		{Label: "50k", Amount: 50000},
		{Label: "Lộc 500k", Amount: 500000},
	})
}

func assertTotalInvariant(t *testing.T, s game.Session) {
	t.Helper()
	assert.Equal(t, openedTotal(s.Deck), s.Total, "total drifted from opened cards")
	assert.Len(t, s.OpenedIDs, countOpened(s.Deck))
}

func countOpened(d *game.Deck) int {
	n := 0
	for _, c := range d.Cards {
		if c.Opened {
			n++
		}
	}
	return n
}

func TestNewSession_Initial(t *testing.T) {
	s := game.NewSession(testPool(), 10, 0, "welcome", game.StdRNG{})

	assert.Equal(t, game.Playing, s.Status())
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.OpenedIDs)
	assert.Equal(t, 10, s.TurnLimit, "zero turn limit means deck size")
	assert.Equal(t, 10, s.TurnsRemaining())
	assert.Equal(t, "welcome", s.Message)
	assert.False(t, s.WishPending)
}

func TestNewSession_TurnLimitClampedToDeck(t *testing.T) {
	s := game.NewSession(testPool(), 4, 9, "", game.StdRNG{})
	assert.Equal(t, 4, s.TurnLimit)

	s = game.NewSession(testPool(), 4, -2, "", game.StdRNG{})
	assert.Equal(t, 4, s.TurnLimit)
}

func TestSession_FlipAllSingleDenomination(t *testing.T) {
	pool := game.NewPool([]game.Denomination{{Label: "10k", Amount: 10000}})
	s := game.NewSession(pool, 5, 0, "", game.StdRNG{})

	for _, c := range s.Deck.Cards {
		var ok bool
		s, _, ok = s.Flip(c.ID)
		require.True(t, ok)
		assertTotalInvariant(t, s)
	}

	assert.Equal(t, 50000, s.Total)
	assert.Equal(t, game.Finished, s.Status())
}

func TestSession_FlipRecordsOrderAndTotal(t *testing.T) {
	s := game.NewSession(testPool(), 8, 0, "", game.StdRNG{})

	order := []int{5, 0, 7}
	want := 0
	for _, id := range order {
		next, f, ok := s.Flip(id)
		require.True(t, ok)
		assert.Equal(t, id, f.Card.ID)
		assert.True(t, f.Card.Opened)
		assert.False(t, f.Finished)
		assert.True(t, next.WishPending)
		assert.Equal(t, s.Version+1, next.Version)
		assert.Equal(t, next.Version, f.Version)

		want += f.Card.Amount
		s = next
		assertTotalInvariant(t, s)
	}

	assert.Equal(t, order, s.OpenedIDs)
	assert.Equal(t, want, s.Total)
}

func TestSession_FlipDoesNotMutateReceiver(t *testing.T) {
	s := game.NewSession(testPool(), 6, 0, "", game.StdRNG{})
	before := s.Deck.Cards[0]

	next, _, ok := s.Flip(before.ID)
	require.True(t, ok)

	assert.False(t, s.Deck.Cards[0].Opened, "receiver deck changed")
	assert.Empty(t, s.OpenedIDs)
	assert.Equal(t, 0, s.Total)
	assert.True(t, next.Deck.Cards[0].Opened)
}

func TestSession_TurnLimit(t *testing.T) {
	s := game.NewSession(testPool(), 10, 3, "", game.StdRNG{})

	for i, id := range []int{2, 4, 6} {
		next, f, ok := s.Flip(id)
		require.True(t, ok, "flip %d", i)
		s = next
		if i < 2 {
			assert.Equal(t, game.Playing, s.Status())
			assert.False(t, f.Finished)
		} else {
			assert.Equal(t, game.Finished, s.Status())
			assert.True(t, f.Finished)
		}
	}
	assert.Equal(t, 0, s.TurnsRemaining())

	after, _, ok := s.Flip(8)
	assert.False(t, ok)
	if diff := cmp.Diff(s, after); diff != "" {
		t.Errorf("flip after finish changed the session (-before +after):\n%s", diff)
	}
}

func TestSession_IgnoredFlips(t *testing.T) {
	s := game.NewSession(testPool(), 5, 0, "", game.StdRNG{})
	s, _, ok := s.Flip(3)
	require.True(t, ok)

	tests := []struct {
		name string
		id   int
	}{
		{"already opened", 3},
		{"unknown id", 42},
		{"negative id", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, f, ok := s.Flip(tt.id)
			assert.False(t, ok)
			assert.Equal(t, game.Flip{}, f)
			if diff := cmp.Diff(s, after); diff != "" {
				t.Errorf("ignored flip changed the session (-before +after):\n%s", diff)
			}
		})
	}
}

func TestSession_Reset(t *testing.T) {
	pool := testPool()
	s := game.NewSession(pool, 7, 3, "welcome", game.StdRNG{})
	s, _, _ = s.Flip(1)
	s, _, _ = s.Flip(2)

	for i := 0; i < 2; i++ {
		prev := s.Version
		s = s.Reset(pool, "again", game.StdRNG{})

		requireValidDeck(t, s.Deck, pool, 7)
		assert.Equal(t, 0, s.Total)
		assert.Empty(t, s.OpenedIDs)
		assert.Equal(t, game.Playing, s.Status())
		assert.Equal(t, 3, s.TurnLimit)
		assert.Equal(t, "again", s.Message)
		assert.False(t, s.WishPending)
		assert.Equal(t, prev+1, s.Version)
	}
}

func TestSession_ResetFromFinished(t *testing.T) {
	pool := testPool()
	s := game.NewSession(pool, 2, 1, "", game.StdRNG{})
	s, _, _ = s.Flip(0)
	require.Equal(t, game.Finished, s.Status())

	s = s.Reset(pool, "", game.StdRNG{})
	assert.Equal(t, game.Playing, s.Status())

	_, _, ok := s.Flip(1)
	assert.True(t, ok)
}

func TestSession_ResetUsesCurrentPool(t *testing.T) {
	pool := testPool()
	s := game.NewSession(pool, 6, 0, "", game.StdRNG{})

	edited := game.NewPool([]game.Denomination{{Label: "only", Amount: 7}})
	s = s.Reset(edited, "", game.StdRNG{})

	for _, c := range s.Deck.Cards {
		assert.Equal(t, "only", c.Label)
	}
}

func TestSession_ApplyWish(t *testing.T) {
	s := game.NewSession(testPool(), 5, 0, "welcome", game.StdRNG{})
	s, first, _ := s.Flip(0)
	s, second, _ := s.Flip(1)

	t.Run("stale version is dropped", func(t *testing.T) {
		after, ok := s.ApplyWish(first.Version, "old wish")
		assert.False(t, ok)
		assert.True(t, after.WishPending)
		assert.Equal(t, "welcome", after.Message)
	})

	t.Run("current version is attached", func(t *testing.T) {
		after, ok := s.ApplyWish(second.Version, "new wish")
		assert.True(t, ok)
		assert.False(t, after.WishPending)
		assert.Equal(t, "new wish", after.Message)
		assert.Equal(t, s.Total, after.Total)
	})

	t.Run("wish from before a reset is dropped", func(t *testing.T) {
		reset := s.Reset(testPool(), "fresh", game.StdRNG{})
		after, ok := reset.ApplyWish(second.Version, "late wish")
		assert.False(t, ok)
		assert.Equal(t, "fresh", after.Message)
	})
}

func openedTotal(d *game.Deck) int {
	total := 0
	for _, c := range d.Cards {
		if c.Opened {
			total += c.Amount
		}
	}
	return total
}
