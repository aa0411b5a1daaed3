package game

// Card is one envelope on the table.
type Card struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Amount int    `json:"amount"`
	Opened bool   `json:"opened"`
}
