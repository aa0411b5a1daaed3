package game

type SessionStatus string

const (
	Playing  SessionStatus = "playing"  // Flips are still accepted
	Finished SessionStatus = "finished" // Turn limit reached, only reset is accepted
)

// Session is the state of one round. It is a value: Flip, Reset and
// ApplyWish return a new Session and leave the receiver untouched.
type Session struct {
	Deck        *Deck  `json:"deck"`
	Total       int    `json:"total"`
	OpenedIDs   []int  `json:"openedIds"`
	TurnLimit   int    `json:"turnLimit"`
	Message     string `json:"message"`
	WishPending bool   `json:"wishPending"`

	// Version changes on every successful flip and on reset. A wish is
	// only attached when it was requested against the current version.
	Version uint64 `json:"version"`
}

// Flip describes a successful flip.
type Flip struct {
	Card     Card   `json:"card"`
	Finished bool   `json:"finished"` // This flip used the last turn
	Version  uint64 `json:"version"`
}

// NewSession deals a fresh deck. A turn limit outside 1..deckSize means
// the session only finishes once every card is open.
func NewSession(pool *Pool, deckSize, turnLimit int, message string, rng RNG) Session {
	if deckSize < 1 {
		deckSize = 1
	}

	return Session{
		Deck:      NewDeck(pool, deckSize, rng),
		OpenedIDs: []int{},
		TurnLimit: normalizeTurnLimit(turnLimit, deckSize),
		Message:   message,
	}
}

func normalizeTurnLimit(limit, deckSize int) int {
	if limit <= 0 || limit > deckSize {
		return deckSize
	}
	return limit
}

// Status reports whether the session still accepts flips
func (s Session) Status() SessionStatus {
	if len(s.OpenedIDs) >= s.TurnLimit {
		return Finished
	}
	return Playing
}

// TurnsRemaining is the number of flips left before the session locks.
func (s Session) TurnsRemaining() int {
	n := s.TurnLimit - len(s.OpenedIDs)
	if n < 0 {
		return 0
	}
	return n
}

// Flip opens the card with the given id. It reports false, and returns
// the session unchanged, when the session is finished, the id is unknown
// or the card is already open.
func (s Session) Flip(id int) (Session, Flip, bool) {
	if s.Status() == Finished || s.Deck == nil {
		return s, Flip{}, false
	}

	idx := s.Deck.Index(id)
	if idx == -1 || s.Deck.Cards[idx].Opened {
		return s, Flip{}, false
	}

	next := s
	next.Deck = s.Deck.clone()
	next.Deck.Cards[idx].Opened = true
	next.OpenedIDs = append(append(make([]int, 0, len(s.OpenedIDs)+1), s.OpenedIDs...), id)
	next.Total = s.Total + next.Deck.Cards[idx].Amount
	next.WishPending = true
	next.Version = s.Version + 1

	return next, Flip{
		Card:     next.Deck.Cards[idx],
		Finished: next.Status() == Finished,
		Version:  next.Version,
	}, true
}

// Reset deals a new deck of the same size from pool and starts over.
func (s Session) Reset(pool *Pool, message string, rng RNG) Session {
	size := 1
	if s.Deck != nil && s.Deck.Size() > 0 {
		size = s.Deck.Size()
	}

	next := NewSession(pool, size, s.TurnLimit, message, rng)
	next.Version = s.Version + 1
	return next
}

// ApplyWish attaches a generated wish if it was requested for the current
// version. Stale wishes are dropped and reported as false.
func (s Session) ApplyWish(version uint64, text string) (Session, bool) {
	if version != s.Version {
		return s, false
	}

	next := s
	next.Message = text
	next.WishPending = false
	return next, true
}
