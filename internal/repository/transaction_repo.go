package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"finax/internal/models"

	"github.com/google/uuid"
)

type TransactionRepository struct {
	db   *sql.DB
	bind binder
}

func NewTransactionRepository(db *sql.DB, bind binder) *TransactionRepository {
	if bind == nil {
		bind = binderFor("")
	}
	return &TransactionRepository{db: db, bind: bind}
}

var _ Transactions = (*TransactionRepository)(nil)

const (
	insertTransactionSQL = `
		INSERT INTO transactions (id, description, amount, type, category_id, user_id, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectTransactionsWithCategorySQL = `
		SELECT t.id, t.description, t.amount, t.type, t.category_id, t.user_id, t.date, t.created_at,
		       c.id, c.name, c.icon, c.color, c.type, c.user_id
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?
		ORDER BY t.date DESC, t.created_at DESC
	`

	selectTransactionsRecentFirstSQL = `
		SELECT id, description, amount, type, category_id, user_id, date, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
)

// Create inserts a transaction. ID, Date and CreatedAt default when zero.
func (r *TransactionRepository) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.Date.IsZero() {
		t.Date = t.CreatedAt
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.Date = t.Date.UTC()

	_, err := r.db.ExecContext(ctx, r.bind(insertTransactionSQL),
		t.ID,
		t.Description,
		t.Amount,
		string(t.Type),
		t.CategoryID,
		t.UserID,
		t.Date,
		t.CreatedAt,
	)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction for user %q: %w", t.UserID, err)
	}
	return t, nil
}

func (r *TransactionRepository) ListWithCategory(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(selectTransactionsWithCategorySQL), userID)
	if err != nil {
		return nil, fmt.Errorf("select transactions for user %q: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0, 64)
	for rows.Next() {
		var (
			t     models.Transaction
			c     models.Category
			owner sql.NullString
		)
		if err := rows.Scan(
			&t.ID, &t.Description, &t.Amount, &t.Type, &t.CategoryID, &t.UserID, &t.Date, &t.CreatedAt,
			&c.ID, &c.Name, &c.Icon, &c.Color, &c.Type, &owner,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		c.UserID = nullString(owner)
		t.Date = t.Date.UTC()
		t.CreatedAt = t.CreatedAt.UTC()
		t.Category = &c
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *TransactionRepository) ListRecentFirst(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(selectTransactionsRecentFirstSQL), userID)
	if err != nil {
		return nil, fmt.Errorf("select transactions for user %q: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0, 64)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount, &t.Type, &t.CategoryID, &t.UserID, &t.Date, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = t.Date.UTC()
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
