package service

import (
	"context"
	"io"
	"time"

	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/shared/domain"
)

// Storage contracts. Every backend (pg, mongo, memory) implements all of them;
// not-found is reported as a 404 ErrorWithStatusCode, unique violations as 409.

type PostStorage interface {
	CreatePost(ctx context.Context, post domain.Post) error
	GetPost(ctx context.Context, id domain.PostId) (domain.Post, error)
	ListPosts(ctx context.Context, filter query.Filter, page query.Page) ([]domain.Post, int, error)
	SearchPosts(ctx context.Context, filter query.Filter, limit int) ([]domain.Post, error)
	UpdatePost(ctx context.Context, id domain.PostId, patch domain.PostPatch, updatedAt time.Time) (domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
	// IncrementViews adds one view and returns the post as stored afterwards.
	IncrementViews(ctx context.Context, id domain.PostId) (domain.Post, error)
}

type CommentStorage interface {
	// AppendComment returns the full comment list after the append.
	AppendComment(ctx context.Context, id domain.PostId, comment domain.Comment) ([]domain.Comment, error)
	IncrementViews(ctx context.Context, id domain.PostId) (domain.Post, error)
}

type CategoryStorage interface {
	CreateCategory(ctx context.Context, category domain.Category) error
	GetCategory(ctx context.Context, id domain.CategoryId) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type UserStorage interface {
	SaveUser(ctx context.Context, user domain.User) error
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
}

type AttachmentStore interface {
	Save(r io.Reader, ext string) (string, error)
	Delete(name string) error
}

type Renderer interface {
	Post(p domain.Post) domain.Post
}

// Storage is what a complete backend provides; setup picks one by config.
type Storage interface {
	PostStorage
	CommentStorage
	CategoryStorage
	UserStorage
	ImageRefStorage
	Ping(ctx context.Context) error
	Close() error
}
