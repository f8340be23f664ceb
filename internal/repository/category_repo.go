package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finax/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository struct {
	db   *sql.DB
	bind binder
}

func NewCategoryRepository(db *sql.DB, bind binder) *CategoryRepository {
	if bind == nil {
		bind = binderFor("")
	}
	return &CategoryRepository{db: db, bind: bind}
}

var _ Categories = (*CategoryRepository)(nil)

const (
	categoryColumns = `id, name, icon, color, type, user_id`

	insertCategorySQL = `INSERT INTO categories (id, name, icon, color, type, user_id) VALUES (?, ?, ?, ?, ?, ?)`

	// Two explicit branches: rows owned by the user, and system defaults.
	selectVisibleCategoriesSQL = `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = ? OR user_id IS NULL ORDER BY name ASC, id ASC`
	selectVisibleCategorySQL   = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ? AND (user_id = ? OR user_id IS NULL)`
)

func scanCategory(row rowScanner) (*models.Category, error) {
	var (
		c     models.Category
		owner sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Type, &owner); err != nil {
		return nil, err
	}
	c.UserID = nullString(owner)
	return &c, nil
}

// Create inserts a category, generating its ID when empty.
func (r *CategoryRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	var owner any
	if c.UserID != nil {
		owner = *c.UserID
	}
	if _, err := r.db.ExecContext(ctx, r.bind(insertCategorySQL), c.ID, c.Name, c.Icon, c.Color, string(c.Type), owner); err != nil {
		return models.Category{}, fmt.Errorf("insert category %q: %w", c.Name, err)
	}
	return c, nil
}

func (r *CategoryRepository) ListVisible(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(selectVisibleCategoriesSQL), userID)
	if err != nil {
		return nil, fmt.Errorf("select categories for user %q: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Category, 0, 16)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// GetVisible returns category id if userID may use it. Returns (nil, nil) otherwise.
func (r *CategoryRepository) GetVisible(ctx context.Context, id, userID string) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, r.bind(selectVisibleCategorySQL), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select category %q: %w", id, err)
	}
	return c, nil
}
