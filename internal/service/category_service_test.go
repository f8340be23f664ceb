package service

import (
	"context"
	"errors"
	"testing"

	"finax/internal/models"
)

func TestCategoryService_CreateCategory(t *testing.T) {
	var got models.Category
	svc := NewCategoryService(&mockCategories{
		CreateFn: func(c models.Category) (models.Category, error) {
			got = c
			c.ID = "c-1"
			return c, nil
		},
	})

	c, err := svc.CreateCategory(context.Background(), "u-1", CategoryInput{Name: " Pets ", Icon: "paw", Color: "#fff", Type: models.Outcome})
	if err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}
	if c.ID != "c-1" || got.Name != "Pets" {
		t.Errorf("unexpected category: %+v", c)
	}
	if got.UserID == nil || *got.UserID != "u-1" {
		t.Errorf("expected owner u-1, got %v", got.UserID)
	}
}

func TestCategoryService_CreateCategory_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    CategoryInput
		field string
	}{
		{name: "missing name", in: CategoryInput{Icon: "i", Color: "c", Type: models.Income}, field: "name"},
		{name: "missing icon", in: CategoryInput{Name: "n", Color: "c", Type: models.Income}, field: "icon"},
		{name: "missing color", in: CategoryInput{Name: "n", Icon: "i", Type: models.Income}, field: "color"},
		{name: "bad type", in: CategoryInput{Name: "n", Icon: "i", Color: "c", Type: "expense"}, field: "type"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCategoryService(&mockCategories{})
			_, err := svc.CreateCategory(context.Background(), "u-1", tt.in)
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

func TestCategoryService_ListCategories(t *testing.T) {
	svc := NewCategoryService(&mockCategories{
		ListVisibleFn: func(userID string) ([]models.Category, error) {
			if userID != "u-1" {
				t.Fatalf("expected u-1, got %q", userID)
			}
			return nil, nil
		},
	})

	list, err := svc.ListCategories(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %v", list)
	}
}
