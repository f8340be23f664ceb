package service

import (
	"context"
	"errors"
	"strings"

	"finax/internal/models"
	"finax/internal/repository"
)

// UpdateProfileInput carries optional changes; nil fields are left untouched.
type UpdateProfileInput struct {
	Name            *string `json:"name" validate:"omitnil,min=3"`
	Email           *string `json:"email" validate:"omitnil,email"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitnil,notblank,min=6,max=72"`
}

type UpdateAvatarInput struct {
	AvatarURL string `json:"avatarUrl"`
}

type ProfileService struct {
	users repository.Users
}

func NewProfileService(users repository.Users) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, ErrUserNotFound
	}
	return *u, nil
}

// UpdateProfile applies the present fields. Changing the password requires the current one.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (models.User, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, ErrUserNotFound
	}

	upd := models.UserUpdate{Name: in.Name}

	if in.Email != nil && *in.Email != u.Email {
		other, err := s.users.GetByEmail(ctx, *in.Email)
		if err != nil {
			return models.User{}, err
		}
		if other != nil && other.ID != u.ID {
			return models.User{}, ErrEmailTaken
		}
		upd.Email = in.Email
	}

	if in.NewPassword != nil {
		if in.CurrentPassword == nil || verifyPassword(u.PasswordHash, *in.CurrentPassword) != nil {
			return models.User{}, ErrInvalidCredentials
		}
		hash, err := hashNewPassword("newPassword", *in.NewPassword)
		if err != nil {
			return models.User{}, err
		}
		upd.PasswordHash = &hash
	}

	if upd.IsEmpty() {
		return *u, nil
	}

	ok, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	return *u, nil
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, in UpdateAvatarInput) (models.User, error) {
	url := strings.TrimSpace(in.AvatarURL)
	if url == "" {
		return models.User{}, ErrAvatarURLRequired
	}

	ok, err := s.users.UpdateAvatar(ctx, userID, url)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, ErrUserNotFound
	}
	return *u, nil
}
