// Package memory is an in-process storage backend. It backs local runs and
// end-to-end handler tests; data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
)

type Storage struct {
	mu         sync.RWMutex
	posts      map[domain.PostId]domain.Post
	categories map[domain.CategoryId]domain.Category
	users      map[domain.UserId]domain.User
}

func New() *Storage {
	return &Storage{
		posts:      make(map[domain.PostId]domain.Post),
		categories: make(map[domain.CategoryId]domain.Category),
		users:      make(map[domain.UserId]domain.User),
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// posts

func (s *Storage) CreatePost(ctx context.Context, post domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[post.Id]; ok {
		return errors.Conflict("Post already exists")
	}
	s.posts[post.Id] = post.Clone()
	return nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return domain.Post{}, errors.NotFound("Post not found")
	}
	return post.Clone(), nil
}

func (s *Storage) ListPosts(ctx context.Context, filter query.Filter, page query.Page) ([]domain.Post, int, error) {
	matched := s.matching(filter)
	return query.Window(matched, page), len(matched), nil
}

func (s *Storage) SearchPosts(ctx context.Context, filter query.Filter, limit int) ([]domain.Post, error) {
	return query.Window(s.matching(filter), query.Page{Number: 1, Limit: limit}), nil
}

// matching returns sorted clones of every post the filter selects.
func (s *Storage) matching(filter query.Filter) []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return query.Less(out[i], out[j]) })
	return out
}

func (s *Storage) UpdatePost(ctx context.Context, id domain.PostId, patch domain.PostPatch, updatedAt time.Time) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return domain.Post{}, errors.NotFound("Post not found")
	}
	post = post.Clone()
	patch.Apply(&post)
	post.UpdatedAt = updatedAt
	s.posts[id] = post
	return post.Clone(), nil
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return errors.NotFound("Post not found")
	}
	delete(s.posts, id)
	return nil
}

func (s *Storage) FeaturedImages(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for _, p := range s.posts {
		if p.FeaturedImage != "" {
			names = append(names, p.FeaturedImage)
		}
	}
	return names, nil
}

func (s *Storage) IncrementViews(ctx context.Context, id domain.PostId) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return domain.Post{}, errors.NotFound("Post not found")
	}
	post.ViewCount++
	s.posts[id] = post
	return post.Clone(), nil
}

func (s *Storage) AppendComment(ctx context.Context, id domain.PostId, comment domain.Comment) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, errors.NotFound("Post not found")
	}
	post = post.Clone()
	post.Comments = append(post.Comments, comment)
	s.posts[id] = post
	return append([]domain.Comment(nil), post.Comments...), nil
}

// categories

func (s *Storage) CreateCategory(ctx context.Context, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return errors.Conflict("Category already exists")
		}
	}
	s.categories[category.Id] = category
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, id domain.CategoryId) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return domain.Category{}, errors.NotFound("Category not found")
	}
	return c, nil
}

// ListCategories orders by name.
func (s *Storage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// users

func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return errors.Conflict("User already exists")
		}
	}
	s.users[user.Id] = user
	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, errors.NotFound("User not found")
}
