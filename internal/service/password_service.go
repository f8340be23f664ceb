package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"finax/internal/logger"
	"finax/internal/models"
	"finax/internal/repository"
)

const (
	defaultResetTTL = time.Hour
	resetTokenBytes = 32
	notifyTimeout   = 30 * time.Second
)

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,notblank,min=6,max=72"`
}

// PasswordService issues single-use reset tokens and completes resets.
type PasswordService struct {
	users    repository.Users
	mailer   Mailer
	resetTTL time.Duration
	log      *logger.Logger
	now      func() time.Time
	newToken func() (string, error)

	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

func NewPasswordService(users repository.Users, mailer Mailer, resetTTL time.Duration, log *logger.Logger) *PasswordService {
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	return &PasswordService{
		users:    users,
		mailer:   mailer,
		resetTTL: resetTTL,
		log:      log,
		now:      time.Now,
		newToken: randomToken,
	}
}

// RequestPasswordReset stores a fresh reset token for a known email and mails it.
// Unknown emails succeed silently.
func (s *PasswordService) RequestPasswordReset(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if u == nil {
		if s.log != nil {
			s.log.Debugw("password_reset_unknown_email")
		}
		return nil
	}

	raw, err := s.newToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, hashToken(raw), s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, u.Email, u.Name, raw); err != nil {
		if s.log != nil {
			s.log.Errorw("password_reset_email_failed", "user_id", u.ID, "err", err)
		}
		return fmt.Errorf("%w: %v", ErrSendEmail, err)
	}
	return nil
}

// ResetPassword consumes a valid token and sets the new password. The
// confirmation email is sent in the background.
func (s *PasswordService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}

	tokenHash := hashToken(in.Token)
	u, err := s.users.GetByResetToken(ctx, tokenHash, s.now())
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidResetToken
	}

	hash, err := hashNewPassword("newPassword", in.NewPassword)
	if err != nil {
		return err
	}

	ok, err := s.users.ResetPassword(ctx, u.ID, tokenHash, hash)
	if err != nil {
		return err
	}
	if !ok {
		// consumed by a concurrent reset
		return ErrInvalidResetToken
	}

	s.notifyPasswordChanged(ctx, *u)
	return nil
}

func (s *PasswordService) notifyPasswordChanged(parent context.Context, u models.User) {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		// Wait has started; send inline instead of adding to the group
		s.sendPasswordChanged(parent, u)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.sendPasswordChanged(parent, u)
	}()
}

func (s *PasswordService) sendPasswordChanged(parent context.Context, u models.User) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), notifyTimeout)
	defer cancel()

	if err := s.mailer.SendPasswordChanged(ctx, u.Email, u.Name); err != nil && s.log != nil {
		s.log.Warnw("password_changed_email_failed", "user_id", u.ID, "err", err)
	}
}

// Wait blocks until background notifications finish or ctx is done.
// Notifications requested after Wait starts are sent synchronously.
func (s *PasswordService) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
