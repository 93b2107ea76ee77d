package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/models"
)

type categoryRepository struct {
	*DB
	logger *logger.Logger
}

// NewCategoryRepository constructs a [CategoryRepository] backed by db.
func NewCategoryRepository(db *DB, logger *logger.Logger) CategoryRepository {
	logger.Debug().Msg("creating category repository")
	return &categoryRepository{
		DB:     db,
		logger: logger,
	}
}

// SeedCategories inserts every missing name. Existing names are left as is,
// so seeding is idempotent and safe to run from several instances at once.
func (c *categoryRepository) SeedCategories(ctx context.Context, names []string) error {
	log := logger.FromContext(ctx)

	for _, name := range names {
		query, args, err := buildSeedCategoryQuery(name)
		if err != nil {
			return err
		}

		if _, err = c.DB.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", "categoryRepository.SeedCategories").Str("category", name).Msg("failed to seed category")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	log.Info().Str("func", "categoryRepository.SeedCategories").Int("count", len(names)).Msg("categories seeded")
	return nil
}

// ListCategories returns all categories ordered by name, case-insensitively.
func (c *categoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	log := logger.FromContext(ctx)

	rows, err := c.DB.QueryContext(ctx, listCategories)
	if err != nil {
		log.Err(err).Str("func", "categoryRepository.ListCategories").Msg("failed to query categories")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// FindCategoriesByIDs returns the existing categories among ids. Unknown ids
// are silently absent from the result.
func (c *categoryRepository) FindCategoriesByIDs(ctx context.Context, ids []int64) ([]models.Category, error) {
	log := logger.FromContext(ctx)

	if len(ids) == 0 {
		return []models.Category{}, nil
	}

	query, args, err := buildFindCategoriesQuery(ids)
	if err != nil {
		log.Err(err).Str("func", "categoryRepository.FindCategoriesByIDs").Msg("failed to create query")
		return nil, err
	}

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "categoryRepository.FindCategoriesByIDs").Msg("failed to query categories")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCategories(rows rowScanner) ([]models.Category, error) {
	categories := make([]models.Category, 0, len(models.DefaultCategories))
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return categories, nil
}
