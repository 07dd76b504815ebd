package services

import (
	"context"

	"github.com/collegeprep/organizer/internal/app/models"
)

// CategoryService serves the static category list
type CategoryService struct {
	categoryRepo CategoryStore
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo CategoryStore) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// GetAllCategories lists categories in display order
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}
