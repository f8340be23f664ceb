package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"finax/internal/models"

	"github.com/shopspring/decimal"
)

func amount(s string) json.RawMessage {
	return json.RawMessage(s)
}

func tx(id string, typ models.EntryType, amt string) models.Transaction {
	return models.Transaction{ID: id, Type: typ, Amount: decimal.RequireFromString(amt)}
}

func visibleCategory(id, userID string) (*models.Category, error) {
	if id == "c-food" {
		return &models.Category{ID: id, Type: models.Outcome}, nil
	}
	return nil, nil
}

func TestTransactionService_CreateTransaction(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name     string
		date     *string
		wantDate time.Time
	}{
		{name: "defaults to now", date: nil, wantDate: now},
		{name: "empty date defaults to now", date: strPtr(""), wantDate: now},
		{name: "date only", date: strPtr("2025-02-14"), wantDate: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", date: strPtr("2025-02-14T18:00:00-03:00"), wantDate: time.Date(2025, 2, 14, 21, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var got models.Transaction
			svc := NewTransactionService(&mockTransactions{
				CreateFn: func(tr models.Transaction) (models.Transaction, error) {
					got = tr
					tr.ID = "t-1"
					return tr, nil
				},
			}, &mockCategories{GetVisibleFn: visibleCategory})
			svc.now = func() time.Time { return now }

			res, err := svc.CreateTransaction(context.Background(), "u-1", TransactionInput{
				Description: "Groceries",
				Amount:      amount("-12.50"),
				Type:        models.Outcome,
				CategoryID:  "c-food",
				Date:        tt.date,
			})
			if err != nil {
				t.Fatalf("CreateTransaction returned error: %v", err)
			}
			if res.ID != "t-1" || got.UserID != "u-1" || got.CategoryID != "c-food" {
				t.Errorf("unexpected transaction: %+v", got)
			}
			if !got.Amount.Equal(decimal.RequireFromString("-12.5")) {
				t.Errorf("unexpected amount %s", got.Amount)
			}
			if !got.Date.Equal(tt.wantDate) {
				t.Errorf("expected date %v, got %v", tt.wantDate, got.Date)
			}
			if !got.CreatedAt.Equal(now) {
				t.Errorf("expected createdAt now, got %v", got.CreatedAt)
			}
		})
	}
}

func TestTransactionService_CreateTransaction_Validation(t *testing.T) {
	valid := func() TransactionInput {
		return TransactionInput{Description: "d", Amount: amount("1"), Type: models.Income, CategoryID: "c-food"}
	}
	tests := []struct {
		name   string
		mutate func(in *TransactionInput)
		field  string
	}{
		{name: "missing description", mutate: func(in *TransactionInput) { in.Description = " " }, field: "description"},
		{name: "missing amount", mutate: func(in *TransactionInput) { in.Amount = nil }, field: "amount"},
		{name: "null amount", mutate: func(in *TransactionInput) { in.Amount = amount("null") }, field: "amount"},
		{name: "quoted amount", mutate: func(in *TransactionInput) { in.Amount = amount(`"12.50"`) }, field: "amount"},
		{name: "non numeric amount", mutate: func(in *TransactionInput) { in.Amount = amount("true") }, field: "amount"},
		{name: "bad type", mutate: func(in *TransactionInput) { in.Type = "transfer" }, field: "type"},
		{name: "missing category", mutate: func(in *TransactionInput) { in.CategoryID = "" }, field: "categoryId"},
		{name: "bad date", mutate: func(in *TransactionInput) { in.Date = strPtr("14/02/2025") }, field: "date"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := NewTransactionService(&mockTransactions{}, &mockCategories{GetVisibleFn: visibleCategory})
			in := valid()
			tt.mutate(&in)

			_, err := svc.CreateTransaction(context.Background(), "u-1", in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("expected field %q, got %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestTransactionService_CreateTransaction_UnknownCategory(t *testing.T) {
	svc := NewTransactionService(&mockTransactions{
		CreateFn: func(models.Transaction) (models.Transaction, error) {
			t.Fatal("Create should not be called for an invisible category")
			return models.Transaction{}, nil
		},
	}, &mockCategories{GetVisibleFn: visibleCategory})

	_, err := svc.CreateTransaction(context.Background(), "u-1", TransactionInput{
		Description: "d", Amount: amount("1"), Type: models.Income, CategoryID: "someone-elses",
	})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name                      string
		list                      []models.Transaction
		balance, income, outgoing string
	}{
		{name: "empty", list: nil, balance: "0", income: "0", outgoing: "0"},
		{
			name:    "mixed",
			list:    []models.Transaction{tx("1", models.Income, "5000"), tx("2", models.Outcome, "1200.10"), tx("3", models.Outcome, "0.20")},
			balance: "3799.7", income: "5000", outgoing: "1200.3",
		},
		{
			name:    "exact decimal sums",
			list:    []models.Transaction{tx("1", models.Income, "0.1"), tx("2", models.Income, "0.2")},
			balance: "0.3", income: "0.3", outgoing: "0",
		},
		{
			name:    "overdrawn",
			list:    []models.Transaction{tx("1", models.Outcome, "10")},
			balance: "-10", income: "0", outgoing: "10",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			b := Summarize(tt.list)
			if !b.Balance.Equal(decimal.RequireFromString(tt.balance)) {
				t.Errorf("balance = %s, want %s", b.Balance, tt.balance)
			}
			if !b.Income.Equal(decimal.RequireFromString(tt.income)) {
				t.Errorf("income = %s, want %s", b.Income, tt.income)
			}
			if !b.Outcome.Equal(decimal.RequireFromString(tt.outgoing)) {
				t.Errorf("outcome = %s, want %s", b.Outcome, tt.outgoing)
			}
			if !b.Balance.Equal(b.Income.Sub(b.Outcome)) {
				t.Errorf("balance != income - outcome")
			}
		})
	}
}

func TestTransactionService_Dashboard_KeepsInsertionOrderAndLimits(t *testing.T) {
	var list []models.Transaction
	for i := 7; i >= 1; i-- {
		list = append(list, tx(fmt.Sprintf("t-%d", i), models.Income, "1"))
	}
	svc := NewTransactionService(&mockTransactions{
		ListRecentFirstFn: func(string) ([]models.Transaction, error) { return list, nil },
	}, &mockCategories{})

	d, err := svc.Dashboard(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if len(d.Transactions) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(d.Transactions))
	}
	for i, want := range []string{"t-7", "t-6", "t-5", "t-4", "t-3"} {
		if d.Transactions[i].ID != want {
			t.Errorf("position %d: want %s, got %s", i, want, d.Transactions[i].ID)
		}
	}
	if !d.Income.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected income over all 7 transactions, got %s", d.Income)
	}
}

func TestTransactionService_ListAndBalance(t *testing.T) {
	svc := NewTransactionService(&mockTransactions{
		ListWithCategoryFn: func(string) ([]models.Transaction, error) { return nil, nil },
		ListRecentFirstFn: func(string) ([]models.Transaction, error) {
			return []models.Transaction{tx("1", models.Income, "10"), tx("2", models.Outcome, "4")}, nil
		},
	}, &mockCategories{})

	list, err := svc.ListTransactions(context.Background(), "u-1")
	if err != nil || list == nil {
		t.Fatalf("expected empty non-nil list, got %v, %v", list, err)
	}

	b, err := svc.Balance(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Balance returned error: %v", err)
	}
	if !b.Balance.Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected balance 6, got %s", b.Balance)
	}
}

func TestTransactionService_RepoError(t *testing.T) {
	svc := NewTransactionService(&mockTransactions{
		ListRecentFirstFn: func(string) ([]models.Transaction, error) { return nil, errors.New("db down") },
	}, &mockCategories{})

	if _, err := svc.Dashboard(context.Background(), "u-1"); err == nil {
		t.Fatal("expected repo error")
	}
}
