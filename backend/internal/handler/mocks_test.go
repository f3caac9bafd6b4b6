package handler

import (
	"context"

	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/backend/internal/service"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
)

// --- Mock for PostService ---

type MockPostService struct {
	MockCreate func(ctx context.Context, principal domain.Principal, input service.CreatePostInput) (domain.Post, error)
	MockGet    func(ctx context.Context, id domain.PostId) (domain.Post, error)
	MockList   func(ctx context.Context, params query.Params) (api.ListPostsResponse, error)
	MockSearch func(ctx context.Context, term string) ([]domain.Post, error)
	MockUpdate func(ctx context.Context, principal domain.Principal, id domain.PostId, patch domain.PostPatch) (domain.Post, error)
	MockDelete func(ctx context.Context, principal domain.Principal, id domain.PostId) error
}

func (m *MockPostService) Create(ctx context.Context, principal domain.Principal, input service.CreatePostInput) (domain.Post, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, principal, input)
	}
	return domain.Post{}, nil
}

func (m *MockPostService) Get(ctx context.Context, id domain.PostId) (domain.Post, error) {
	if m.MockGet != nil {
		return m.MockGet(ctx, id)
	}
	return domain.Post{}, nil
}

func (m *MockPostService) List(ctx context.Context, params query.Params) (api.ListPostsResponse, error) {
	if m.MockList != nil {
		return m.MockList(ctx, params)
	}
	return api.ListPostsResponse{}, nil
}

func (m *MockPostService) Search(ctx context.Context, term string) ([]domain.Post, error) {
	if m.MockSearch != nil {
		return m.MockSearch(ctx, term)
	}
	return nil, nil
}

func (m *MockPostService) Update(ctx context.Context, principal domain.Principal, id domain.PostId, patch domain.PostPatch) (domain.Post, error) {
	if m.MockUpdate != nil {
		return m.MockUpdate(ctx, principal, id, patch)
	}
	return domain.Post{}, nil
}

func (m *MockPostService) Delete(ctx context.Context, principal domain.Principal, id domain.PostId) error {
	if m.MockDelete != nil {
		return m.MockDelete(ctx, principal, id)
	}
	return nil
}

// --- Mock for CommentService ---

type MockCommentService struct {
	MockAppend func(ctx context.Context, principal domain.Principal, postId domain.PostId, content string) ([]domain.Comment, error)
}

func (m *MockCommentService) Append(ctx context.Context, principal domain.Principal, postId domain.PostId, content string) ([]domain.Comment, error) {
	if m.MockAppend != nil {
		return m.MockAppend(ctx, principal, postId, content)
	}
	return nil, nil
}

// --- Mock for CategoryService ---

type MockCategoryService struct {
	MockCreate func(ctx context.Context, principal domain.Principal, name string) (domain.Category, error)
	MockList   func(ctx context.Context) ([]domain.Category, error)
}

func (m *MockCategoryService) Create(ctx context.Context, principal domain.Principal, name string) (domain.Category, error) {
	if m.MockCreate != nil {
		return m.MockCreate(ctx, principal, name)
	}
	return domain.Category{}, nil
}

func (m *MockCategoryService) List(ctx context.Context) ([]domain.Category, error) {
	if m.MockList != nil {
		return m.MockList(ctx)
	}
	return nil, nil
}

// --- Mock for AuthService ---

type MockAuthService struct {
	MockRegister func(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
	MockLogin    func(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error) {
	if m.MockRegister != nil {
		return m.MockRegister(ctx, req)
	}
	return api.AuthResponse{}, nil
}

func (m *MockAuthService) Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error) {
	if m.MockLogin != nil {
		return m.MockLogin(ctx, req)
	}
	return api.AuthResponse{}, nil
}

// --- Mock for HealthChecker ---

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
