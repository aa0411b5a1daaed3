package game

import (
	"math/rand/v2"
)

// RNG abstracts random number generation so deals can be replayed in tests.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// StdRNG delegates to math/rand/v2, which is seeded automatically.
type StdRNG struct{}

func (StdRNG) Intn(n int) int { return rand.IntN(n) }

// Deck is the ordered set of cards for one session. Grid position is the
// slice index; card ids are independent of it.
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck draws size cards from the pool with replacement, numbers them
// 0..size-1 in draw order and then shuffles them.
func NewDeck(pool *Pool, size int, rng RNG) *Deck {
	if pool == nil || pool.Len() == 0 {
		pool = NewPool(nil)
	}
	if size < 0 {
		size = 0
	}

	items := pool.items
	deck := &Deck{Cards: make([]Card, size)}
	for i := 0; i < size; i++ {
		d := items[rng.Intn(len(items))]
		deck.Cards[i] = Card{
			ID:     i,
			Label:  d.Label,
			Amount: d.Amount,
		}
	}

	deck.Shuffle(rng)
	return deck
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle(rng RNG) {
	// Fisher-Yates shuffle algorithm
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Index returns the position of the card with the given id, or -1.
func (d *Deck) Index(id int) int {
	for i, c := range d.Cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Size returns the number of cards in the deck
func (d *Deck) Size() int {
	return len(d.Cards)
}

func (d *Deck) clone() *Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	return &Deck{Cards: cards}
}
