package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"finax/internal/models"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (bool, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) (bool, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error
	ResetPassword(ctx context.Context, id, tokenHash, passwordHash string) (bool, error)
}

type Categories interface {
	Create(ctx context.Context, c models.Category) (models.Category, error)
	// ListVisible returns the categories owned by userID plus the system
	// defaults (owner IS NULL).
	ListVisible(ctx context.Context, userID string) ([]models.Category, error)
	GetVisible(ctx context.Context, id, userID string) (*models.Category, error)
}

type Transactions interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	// ListWithCategory returns the user's transactions joined with their
	// category, newest date first.
	ListWithCategory(ctx context.Context, userID string) ([]models.Transaction, error)
	// ListRecentFirst returns the user's transactions in reverse insertion order.
	ListRecentFirst(ctx context.Context, userID string) ([]models.Transaction, error)
}

type Repository struct {
	Users        Users
	Categories   Categories
	Transactions Transactions
}

// NewRepository builds all repositories over db. driver selects the
// placeholder dialect ("sqlite" or "postgres").
func NewRepository(db *sql.DB, driver string) *Repository {
	bind := binderFor(driver)
	return &Repository{
		Users:        NewUserRepository(db, bind),
		Categories:   NewCategoryRepository(db, bind),
		Transactions: NewTransactionRepository(db, bind),
	}
}

// binder rewrites a query written with ? placeholders for the target driver.
type binder func(query string) string

func binderFor(driver string) binder {
	if driver == "postgres" {
		return rebindDollar
	}
	return func(q string) string { return q }
}

// rebindDollar turns each ? into $1, $2, ...
func rebindDollar(query string) string {
	var (
		sb strings.Builder
		n  int
	)
	sb.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isUniqueViolation recognizes unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch code := liteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// primary code only when extended result codes are off
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
