package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts go over the wire as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        EntryType       `json:"type"`
	CategoryID  string          `json:"categoryId"`
	UserID      string          `json:"userId"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	Category    *Category       `json:"category,omitempty"`
}

// Balance is the per-type aggregate of a user's transactions.
type Balance struct {
	Balance decimal.Decimal `json:"balance"`
	Income  decimal.Decimal `json:"income"`
	Outcome decimal.Decimal `json:"outcome"`
}

// Dashboard is Balance plus the most recently recorded transactions.
type Dashboard struct {
	Balance
	Transactions []Transaction `json:"transactions"`
}
