package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
)

func (s *Storage) CreateCategory(ctx context.Context, category domain.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES ($1, $2, $3)`,
		category.Id, category.Name, category.CreatedAt,
	)
	if err != nil {
		if sharedpg.IsUniqueViolation(err) {
			return internal_errors.Conflict("Category already exists")
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, id domain.CategoryId) (domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM categories WHERE id = $1`, id).
		Scan(&c.Id, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, internal_errors.NotFound("Category not found")
		}
		return domain.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Id, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
