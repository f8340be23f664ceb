package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"finax/internal/models"
	"finax/internal/repository"

	"github.com/shopspring/decimal"
)

const dashboardRecent = 5

type TransactionInput struct {
	Description string           `json:"description" validate:"required"`
	Amount      json.RawMessage  `json:"amount" validate:"required"`
	Type        models.EntryType `json:"type" validate:"required,oneof=income outcome"`
	CategoryID  string           `json:"categoryId" validate:"required"`
	// Date is RFC 3339 or YYYY-MM-DD; empty means now.
	Date *string `json:"date"`
}

type TransactionService struct {
	transactions repository.Transactions
	categories   repository.Categories
	now          func() time.Time
}

func NewTransactionService(transactions repository.Transactions, categories repository.Categories) *TransactionService {
	return &TransactionService{transactions: transactions, categories: categories, now: time.Now}
}

func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (models.Transaction, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := validateInput(in); err != nil {
		return models.Transaction{}, err
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		return models.Transaction{}, err
	}

	now := s.now().UTC()
	date := now
	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		parsed, err := parseDate(strings.TrimSpace(*in.Date))
		if err != nil {
			return models.Transaction{}, fieldError("date", "must be an RFC 3339 timestamp or YYYY-MM-DD")
		}
		date = parsed
	}

	cat, err := s.categories.GetVisible(ctx, in.CategoryID, userID)
	if err != nil {
		return models.Transaction{}, err
	}
	if cat == nil {
		return models.Transaction{}, ErrCategoryNotFound
	}

	return s.transactions.Create(ctx, models.Transaction{
		Description: in.Description,
		Amount:      amount,
		Type:        in.Type,
		CategoryID:  cat.ID,
		UserID:      userID,
		Date:        date,
		CreatedAt:   now,
	})
}

// ListTransactions returns the user's transactions with their category, newest date first.
func (s *TransactionService) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	list, err := s.transactions.ListWithCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Transaction{}
	}
	return list, nil
}

func (s *TransactionService) Balance(ctx context.Context, userID string) (models.Balance, error) {
	list, err := s.transactions.ListRecentFirst(ctx, userID)
	if err != nil {
		return models.Balance{}, err
	}
	return Summarize(list), nil
}

// Dashboard returns the balance and the most recently recorded transactions.
func (s *TransactionService) Dashboard(ctx context.Context, userID string) (models.Dashboard, error) {
	list, err := s.transactions.ListRecentFirst(ctx, userID)
	if err != nil {
		return models.Dashboard{}, err
	}

	recent := list
	if len(recent) > dashboardRecent {
		recent = recent[:dashboardRecent]
	}
	out := make([]models.Transaction, len(recent))
	copy(out, recent)

	return models.Dashboard{Balance: Summarize(list), Transactions: out}, nil
}

// Summarize sums amounts per type; balance is income minus outcome.
func Summarize(list []models.Transaction) models.Balance {
	income, outcome := decimal.Zero, decimal.Zero
	for _, t := range list {
		switch t.Type {
		case models.Income:
			income = income.Add(t.Amount)
		case models.Outcome:
			outcome = outcome.Add(t.Amount)
		}
	}
	return models.Balance{Balance: income.Sub(outcome), Income: income, Outcome: outcome}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseAmount accepts a bare JSON number only; decimal alone would also take
// a quoted string.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, fieldError("amount", "is required")
	}
	if raw[0] == '"' {
		return decimal.Decimal{}, fieldError("amount", "must be a number")
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Decimal{}, fieldError("amount", "must be a number")
	}
	return d, nil
}
