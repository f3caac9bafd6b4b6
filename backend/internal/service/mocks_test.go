package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
)

// --- Mocks ---

type MockPostStorage struct {
	CreatePostFunc     func(ctx context.Context, post domain.Post) error
	GetPostFunc        func(ctx context.Context, id domain.PostId) (domain.Post, error)
	ListPostsFunc      func(ctx context.Context, filter query.Filter, page query.Page) ([]domain.Post, int, error)
	SearchPostsFunc    func(ctx context.Context, filter query.Filter, limit int) ([]domain.Post, error)
	UpdatePostFunc     func(ctx context.Context, id domain.PostId, patch domain.PostPatch, updatedAt time.Time) (domain.Post, error)
	DeletePostFunc     func(ctx context.Context, id domain.PostId) error
	IncrementViewsFunc func(ctx context.Context, id domain.PostId) (domain.Post, error)
	AppendCommentFunc  func(ctx context.Context, id domain.PostId, comment domain.Comment) ([]domain.Comment, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockPostStorage) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *MockPostStorage) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockPostStorage) CreatePost(ctx context.Context, post domain.Post) error {
	m.record("CreatePost")
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, post)
	}
	return nil
}

func (m *MockPostStorage) GetPost(ctx context.Context, id domain.PostId) (domain.Post, error) {
	m.record("GetPost")
	if m.GetPostFunc != nil {
		return m.GetPostFunc(ctx, id)
	}
	return domain.Post{}, errors.NotFound("Post not found")
}

func (m *MockPostStorage) ListPosts(ctx context.Context, filter query.Filter, page query.Page) ([]domain.Post, int, error) {
	m.record("ListPosts")
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(ctx, filter, page)
	}
	return nil, 0, nil
}

func (m *MockPostStorage) SearchPosts(ctx context.Context, filter query.Filter, limit int) ([]domain.Post, error) {
	m.record("SearchPosts")
	if m.SearchPostsFunc != nil {
		return m.SearchPostsFunc(ctx, filter, limit)
	}
	return nil, nil
}

func (m *MockPostStorage) UpdatePost(ctx context.Context, id domain.PostId, patch domain.PostPatch, updatedAt time.Time) (domain.Post, error) {
	m.record("UpdatePost")
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(ctx, id, patch, updatedAt)
	}
	return domain.Post{}, nil
}

func (m *MockPostStorage) DeletePost(ctx context.Context, id domain.PostId) error {
	m.record("DeletePost")
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(ctx, id)
	}
	return nil
}

func (m *MockPostStorage) IncrementViews(ctx context.Context, id domain.PostId) (domain.Post, error) {
	m.record("IncrementViews")
	if m.IncrementViewsFunc != nil {
		return m.IncrementViewsFunc(ctx, id)
	}
	return domain.Post{Id: id}, nil
}

func (m *MockPostStorage) AppendComment(ctx context.Context, id domain.PostId, comment domain.Comment) ([]domain.Comment, error) {
	m.record("AppendComment")
	if m.AppendCommentFunc != nil {
		return m.AppendCommentFunc(ctx, id, comment)
	}
	return []domain.Comment{comment}, nil
}

type MockCategoryStorage struct {
	CreateCategoryFunc func(ctx context.Context, category domain.Category) error
	GetCategoryFunc    func(ctx context.Context, id domain.CategoryId) (domain.Category, error)
	ListCategoriesFunc func(ctx context.Context) ([]domain.Category, error)
}

func (m *MockCategoryStorage) CreateCategory(ctx context.Context, category domain.Category) error {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, category)
	}
	return nil
}

func (m *MockCategoryStorage) GetCategory(ctx context.Context, id domain.CategoryId) (domain.Category, error) {
	if m.GetCategoryFunc != nil {
		return m.GetCategoryFunc(ctx, id)
	}
	// Default: every category exists
	return domain.Category{Id: id, Name: "general"}, nil
}

func (m *MockCategoryStorage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

type MockUserStorage struct {
	SaveUserFunc    func(ctx context.Context, user domain.User) error
	UserByEmailFunc func(ctx context.Context, email domain.Email) (domain.User, error)
}

func (m *MockUserStorage) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFunc != nil {
		return m.SaveUserFunc(ctx, user)
	}
	return nil
}

func (m *MockUserStorage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	if m.UserByEmailFunc != nil {
		return m.UserByEmailFunc(ctx, email)
	}
	return domain.User{}, errors.NotFound("User not found")
}

type MockAttachmentStore struct {
	SaveFunc   func(r io.Reader, ext string) (string, error)
	DeleteFunc func(name string) error
	deleted    []string
}

func (m *MockAttachmentStore) Save(r io.Reader, ext string) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(r, ext)
	}
	return "saved" + ext, nil
}

func (m *MockAttachmentStore) Delete(name string) error {
	m.deleted = append(m.deleted, name)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(name)
	}
	return nil
}

type MockJwt struct {
	NewTokenFunc func(user domain.User) (string, error)
}

func (m *MockJwt) NewToken(user domain.User) (string, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(user)
	}
	return "token-for-" + user.Id, nil
}

// identityRenderer leaves ContentHTML untouched.
type identityRenderer struct{}

func (identityRenderer) Post(p domain.Post) domain.Post { return p }
