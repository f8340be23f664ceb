package models

import "time"

// User is an account holder. Secrets never leave the process in JSON.
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Avatar           *string    `json:"avatar"`
	ResetToken       *string    `json:"-"` // sha256 hex of the raw reset token
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// UserUpdate carries the profile fields to change; nil means "leave as is".
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.PasswordHash == nil
}
