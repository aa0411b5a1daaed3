package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
)

// CardView is a card as the browser sees it. Faces of unopened cards are
// not sent.
type CardView struct {
	ID       int    `json:"id"`
	Position int    `json:"position"`
	Opened   bool   `json:"opened"`
	Label    string `json:"label,omitempty"`
	Amount   *int   `json:"amount,omitempty"`
}

// TableView is the JSON shape of a table
type TableView struct {
	ID             string             `json:"id"`
	Status         game.SessionStatus `json:"status"`
	Total          int                `json:"total"`
	TurnLimit      int                `json:"turnLimit"`
	TurnsRemaining int                `json:"turnsRemaining"`
	OpenedIDs      []int              `json:"openedIds"`
	Message        string             `json:"message"`
	WishPending    bool               `json:"wishPending"`
	Version        uint64             `json:"version"`
	Cards          []CardView         `json:"cards"`
}

func newTableView(t *game.Table) TableView {
	s := t.Session

	var cards []CardView
	if s.Deck != nil {
		cards = make([]CardView, len(s.Deck.Cards))
		for i, c := range s.Deck.Cards {
			cv := CardView{ID: c.ID, Position: i, Opened: c.Opened}
			if c.Opened {
				amount := c.Amount
				cv.Label = c.Label
				cv.Amount = &amount
			}
			cards[i] = cv
		}
	}

	opened := s.OpenedIDs
	if opened == nil {
		opened = []int{}
	}

	return TableView{
		ID:             t.ID,
		Status:         s.Status(),
		Total:          s.Total,
		TurnLimit:      s.TurnLimit,
		TurnsRemaining: s.TurnsRemaining(),
		OpenedIDs:      opened,
		Message:        s.Message,
		WishPending:    s.WishPending,
		Version:        s.Version,
		Cards:          cards,
	}
}

// FlipResponse is returned by the flip endpoint. Flipped is false when
// the click was ignored.
type FlipResponse struct {
	Flipped   bool           `json:"flipped"`
	Card      *game.Card     `json:"card,omitempty"`
	Celebrate *game.Confetti `json:"celebrate,omitempty"`
	Table     TableView      `json:"table"`
}

// PoolResponse lists the denominations of a table
type PoolResponse struct {
	Changed       bool                `json:"changed"`
	Denominations []game.Denomination `json:"denominations"`
}

// rawString turns a JSON scalar into text: strings are unquoted, numbers
// and literals are kept as written.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// coerceAmount reads an amount sent either as a number or a string.
// Anything unusable becomes 0.
func coerceAmount(raw json.RawMessage) int {
	return game.ParseAmount(rawString(raw))
}

func parseIndex(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
