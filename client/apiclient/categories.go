package apiclient

import (
	"context"
	"net/http"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
)

func (c *APIClient) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := c.doJSON(ctx, http.MethodGet, "/api/categories", nil, &categories)
	return categories, err
}

func (c *APIClient) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	var category domain.Category
	err := c.doJSON(ctx, http.MethodPost, "/api/categories", api.CreateCategoryRequest{Name: name}, &category)
	return category, err
}
