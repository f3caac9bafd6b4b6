package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/postboard-dev/postboard/backend/internal/service"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/postboard-dev/postboard/shared/middleware/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	categoriesKey   = "postboard:categories"
	categoriesCache = "categories"
)

// Categories is a cache-aside decorator for CategoryStorage. The category
// list is cached for ttl and dropped whenever a category is created. Redis
// failures fall through to the wrapped storage.
type Categories struct {
	service.CategoryStorage
	client *redis.Client
	ttl    time.Duration
}

var _ service.CategoryStorage = (*Categories)(nil)

func NewCategories(storage service.CategoryStorage, client *redis.Client, ttl time.Duration) *Categories {
	return &Categories{CategoryStorage: storage, client: client, ttl: ttl}
}

func (c *Categories) ListCategories(ctx context.Context) ([]domain.Category, error) {
	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	switch {
	case err == nil:
		var categories []domain.Category
		if jsonErr := json.Unmarshal(raw, &categories); jsonErr == nil {
			metrics.CacheRequests.WithLabelValues(categoriesCache, "hit").Inc()
			return categories, nil
		}
		metrics.CacheRequests.WithLabelValues(categoriesCache, "corrupt").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheRequests.WithLabelValues(categoriesCache, "miss").Inc()
	default:
		metrics.CacheRequests.WithLabelValues(categoriesCache, "error").Inc()
		logger.Log.Warn("category cache read failed", "component", "cache", "error", err)
	}

	categories, err := c.CategoryStorage.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(categories); err == nil {
		if err := c.client.Set(ctx, categoriesKey, b, c.ttl).Err(); err != nil {
			logger.Log.Warn("category cache write failed", "component", "cache", "error", err)
		}
	}
	return categories, nil
}

func (c *Categories) CreateCategory(ctx context.Context, category domain.Category) error {
	if err := c.CategoryStorage.CreateCategory(ctx, category); err != nil {
		return err
	}
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		logger.Log.Warn("category cache invalidation failed", "component", "cache", "error", err)
	}
	return nil
}
