package game

import (
	"math"
	"strconv"
	"strings"
)

// Denomination is a possible face value for a card.
type Denomination struct {
	Label  string `json:"label" yaml:"label"`
	Amount int    `json:"amount" yaml:"amount"`
}

// MaxAmount is the largest amount a single card can carry. A full deck of
// them still sums without overflow.
const MaxAmount = math.MaxInt32

// NewDenomination builds a denomination, clamping the amount to
// [0, MaxAmount].
func NewDenomination(label string, amount int) Denomination {
	return Denomination{Label: label, Amount: clampAmount(amount)}
}

func clampAmount(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxAmount {
		return MaxAmount
	}
	return n
}

// ParseAmount coerces user input into an amount in [0, MaxAmount].
// Anything that is not a number becomes 0.
func ParseAmount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return clampAmount(n)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > MaxAmount {
		return MaxAmount
	}
	return int(f)
}

// DefaultDenominations is the built-in pool used when none is configured.
func DefaultDenominations() []Denomination {
	return []Denomination{
		{Label: "10.000 đ", Amount: 10000},
		{Label: "20.000 đ", Amount: 20000},
		{Label: "50.000 đ", Amount: 50000},
		{Label: "100.000 đ", Amount: 100000},
		{Label: "200.000 đ", Amount: 200000},
		{Label: "500.000 đ", Amount: 500000},
		{Label: "Lộc Xuân 2026", Amount: 300000},
		{Label: "Lộc Phát - 68", Amount: 600000},
		{Label: "Phát Lộc - 86", Amount: 800000},
		{Label: "Lộc Lộc - 66", Amount: 660000},
		{Label: "May Mắn - 5.000", Amount: 5000},
		{Label: "Tài Lộc - 12.000", Amount: 12000},
		{Label: "An Khang - 15.000", Amount: 15000},
		{Label: "Thịnh Vượng - 88.000", Amount: 88000},
	}
}

// DenominationField names an editable field of a pool entry
type DenominationField string

const (
	FieldLabel  DenominationField = "label"
	FieldAmount DenominationField = "amount"
)

// Pool is the ordered, never-empty set of denominations cards are drawn from.
type Pool struct {
	items []Denomination
}

// NewPool copies the given denominations into a pool. An empty input
// yields the default pool.
func NewPool(items []Denomination) *Pool {
	if len(items) == 0 {
		items = DefaultDenominations()
	}

	p := &Pool{items: make([]Denomination, 0, len(items))}
	for _, d := range items {
		p.items = append(p.items, NewDenomination(d.Label, d.Amount))
	}
	return p
}

// Add appends a denomination. Duplicates are allowed and raise the
// chance of that face value being drawn.
func (p *Pool) Add(d Denomination) {
	p.items = append(p.items, NewDenomination(d.Label, d.Amount))
}

// Update replaces one field of the entry at index. It reports false when
// the index is out of range or the field is unknown.
func (p *Pool) Update(index int, field DenominationField, value string) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}

	switch field {
	case FieldLabel:
		p.items[index].Label = value
	case FieldAmount:
		p.items[index].Amount = ParseAmount(value)
	default:
		return false
	}
	return true
}

// Remove deletes the entry at index. The last remaining entry is never
// removed.
func (p *Pool) Remove(index int) bool {
	if len(p.items) <= 1 || index < 0 || index >= len(p.items) {
		return false
	}

	p.items = append(p.items[:index], p.items[index+1:]...)
	return true
}

// Len returns the number of entries
func (p *Pool) Len() int {
	return len(p.items)
}

// Items returns a copy of the entries in insertion order.
func (p *Pool) Items() []Denomination {
	out := make([]Denomination, len(p.items))
	copy(out, p.items)
	return out
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	return &Pool{items: p.Items()}
}
