package models

// EntryType classifies categories and transactions.
type EntryType string

const (
	Income  EntryType = "income"
	Outcome EntryType = "outcome"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == Income || t == Outcome
}

// Category groups transactions. A nil UserID marks a system-default category
// visible to every user.
type Category struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Icon   string    `json:"icon"`
	Color  string    `json:"color"`
	Type   EntryType `json:"type"`
	UserID *string   `json:"userId"`
}
