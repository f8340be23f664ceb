package service

import (
	"context"
	"strings"

	"finax/internal/models"
	"finax/internal/repository"
)

type CategoryInput struct {
	Name  string           `json:"name" validate:"required"`
	Icon  string           `json:"icon" validate:"required"`
	Color string           `json:"color" validate:"required"`
	Type  models.EntryType `json:"type" validate:"required,oneof=income outcome"`
}

type CategoryService struct {
	categories repository.Categories
}

func NewCategoryService(categories repository.Categories) *CategoryService {
	return &CategoryService{categories: categories}
}

// CreateCategory creates a category owned by userID.
func (s *CategoryService) CreateCategory(ctx context.Context, userID string, in CategoryInput) (models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return models.Category{}, err
	}

	owner := userID
	return s.categories.Create(ctx, models.Category{
		Name:   in.Name,
		Icon:   in.Icon,
		Color:  in.Color,
		Type:   in.Type,
		UserID: &owner,
	})
}

// ListCategories returns the user's own categories and the system defaults.
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	list, err := s.categories.ListVisible(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Category{}
	}
	return list, nil
}
