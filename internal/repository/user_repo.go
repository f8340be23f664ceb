package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finax/internal/models"

	"github.com/google/uuid"
)

type UserRepository struct {
	db   *sql.DB
	bind binder
}

func NewUserRepository(db *sql.DB, bind binder) *UserRepository {
	if bind == nil {
		bind = binderFor("")
	}
	return &UserRepository{db: db, bind: bind}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	userColumns = `id, name, email, password_hash, avatar, reset_token, reset_token_expiry, created_at`

	insertUserSQL             = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	selectUserByIDSQL         = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUserByEmailSQL      = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	selectUserByResetTokenSQL = `SELECT ` + userColumns + ` FROM users WHERE reset_token = ? AND reset_token_expiry > ?`
	updateAvatarSQL           = `UPDATE users SET avatar = ? WHERE id = ?`
	setResetTokenSQL          = `UPDATE users SET reset_token = ?, reset_token_expiry = ? WHERE id = ?`
	resetPasswordSQL          = `UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL WHERE id = ? AND reset_token = ?`
)

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u       models.User
		avatar  sql.NullString
		token   sql.NullString
		expires sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatar, &token, &expires, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Avatar = nullString(avatar)
	u.ResetToken = nullString(token)
	u.ResetTokenExpiry = nullTime(expires)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// Create inserts a new user. ID and CreatedAt are generated when empty.
func (r *UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	} else {
		u.CreatedAt = u.CreatedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, r.bind(insertUserSQL), u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, ErrDuplicate)
		}
		return models.User{}, fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	return u, nil
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUserByIDSQL, "id", id)
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserByEmailSQL, "email", email)
}

// GetByResetToken fetches the user holding tokenHash whose expiry is after now.
// Returns (nil, nil) when no such user exists.
func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.bind(selectUserByResetTokenSQL), tokenHash, now.UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by reset token: %w", err)
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, query, key, value string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.bind(query), value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by %s %q: %w", key, value, err)
	}
	return u, nil
}

// Update applies the non-nil fields of upd. It reports whether a row matched.
func (r *UserRepository) Update(ctx context.Context, id string, upd models.UserUpdate) (bool, error) {
	var (
		sets []string
		args []any
	)
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if len(sets) == 0 {
		return true, nil
	}
	args = append(args, id)

	q := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, r.bind(q), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("update user %q: %w", id, ErrDuplicate)
		}
		return false, fmt.Errorf("update user %q: %w", id, err)
	}
	return affected(res, id)
}

// UpdateAvatar sets the avatar URL. It reports whether a row matched.
func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.bind(updateAvatarSQL), avatarURL, id)
	if err != nil {
		return false, fmt.Errorf("update avatar for user %q: %w", id, err)
	}
	return affected(res, id)
}

// SetResetToken stores the hashed reset token and its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiry time.Time) error {
	if _, err := r.db.ExecContext(ctx, r.bind(setResetTokenSQL), tokenHash, expiry.UTC(), id); err != nil {
		return fmt.Errorf("set reset token for user %q: %w", id, err)
	}
	return nil
}

// ResetPassword replaces the password hash and clears the reset token in one
// statement. It only matches while the row still holds tokenHash, so a token
// can be consumed once.
func (r *UserRepository) ResetPassword(ctx context.Context, id, tokenHash, passwordHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.bind(resetPasswordSQL), passwordHash, id, tokenHash)
	if err != nil {
		return false, fmt.Errorf("reset password for user %q: %w", id, err)
	}
	return affected(res, id)
}

func affected(res sql.Result, id string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for user %q: %w", id, err)
	}
	return n > 0, nil
}
