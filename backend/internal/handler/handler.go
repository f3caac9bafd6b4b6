package handler

import (
	"context"

	"github.com/postboard-dev/postboard/backend/internal/service"
	"github.com/postboard-dev/postboard/shared/config"
)

// HealthChecker reports whether the storage backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	posts      service.PostService
	comments   service.CommentService
	categories service.CategoryService
	auth       service.AuthService
	health     HealthChecker
	cfg        *config.Config
}

func New(posts service.PostService, comments service.CommentService, categories service.CategoryService, auth service.AuthService, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		posts:      posts,
		comments:   comments,
		categories: categories,
		auth:       auth,
		health:     health,
		cfg:        cfg,
	}
}
