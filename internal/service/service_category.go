package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/store"
	"github.com/MKhiriev/go-blog/models"
)

type categoryService struct {
	categoryRepository store.CategoryRepository
	names              []string
	logger             *logger.Logger
}

// NewCategoryService constructs a CategoryService that seeds
// models.DefaultCategories.
func NewCategoryService(categoryRepository store.CategoryRepository, logger *logger.Logger) CategoryService {
	return &categoryService{
		categoryRepository: categoryRepository,
		names:              models.DefaultCategories,
		logger:             logger,
	}
}

// Seed inserts the default categories that are missing. Safe to call on
// every start.
func (c *categoryService) Seed(ctx context.Context) error {
	if err := c.categoryRepository.SeedCategories(ctx, c.names); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "categoryService.Seed").Msg("failed to seed categories")
		return fmt.Errorf("error seeding categories: %w", err)
	}

	logger.FromContext(ctx).Debug().Str("func", "categoryService.Seed").Int("count", len(c.names)).Msg("categories seeded")
	return nil
}

// List returns all categories sorted by name.
func (c *categoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := c.categoryRepository.ListCategories(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "categoryService.List").Msg("failed to list categories")
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return categories, nil
}
