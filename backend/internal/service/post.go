package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/postboard-dev/postboard/shared/middleware/metrics"
)

type PostService interface {
	Create(ctx context.Context, principal domain.Principal, input CreatePostInput) (domain.Post, error)
	Get(ctx context.Context, id domain.PostId) (domain.Post, error)
	List(ctx context.Context, params query.Params) (api.ListPostsResponse, error)
	Search(ctx context.Context, term string) ([]domain.Post, error)
	Update(ctx context.Context, principal domain.Principal, id domain.PostId, patch domain.PostPatch) (domain.Post, error)
	Delete(ctx context.Context, principal domain.Principal, id domain.PostId) error
}

type CreatePostInput struct {
	Title    string
	Content  string
	Category domain.CategoryId
	Tags     domain.Tags
	// Image is optional; Ext includes the leading dot.
	Image *ImageUpload
}

type ImageUpload struct {
	Data io.Reader
	Ext  string
}

type PostLimits struct {
	DefaultLimit int
	MaxLimit     int
}

type Post struct {
	storage     PostStorage
	categories  CategoryStorage
	attachments AttachmentStore
	renderer    Renderer
	limits      PostLimits
	now         func() time.Time
	newId       func() string
}

func NewPost(storage PostStorage, categories CategoryStorage, attachments AttachmentStore, renderer Renderer, limits PostLimits) *Post {
	return &Post{
		storage:     storage,
		categories:  categories,
		attachments: attachments,
		renderer:    renderer,
		limits:      limits,
		now:         now,
		newId:       uuid.NewString,
	}
}

// now is truncated to milliseconds, the coarsest precision of the storage backends.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (s *Post) Create(ctx context.Context, principal domain.Principal, input CreatePostInput) (domain.Post, error) {
	if principal.IsZero() {
		return domain.Post{}, errors.Unauthenticated("Please sign-in")
	}

	fields := map[string]string{}
	title := checkText(input.Title, titleMaxLen, "title", fields)
	content := checkText(input.Content, 0, "content", fields)
	category := strings.TrimSpace(input.Category)
	if category == "" {
		fields["category"] = "required"
	}
	if err := validationResult(fields); err != nil {
		return domain.Post{}, err
	}
	if err := s.checkCategory(ctx, category); err != nil {
		return domain.Post{}, err
	}

	ts := s.now()
	post := domain.Post{
		Id:        s.newId(),
		Title:     title,
		Content:   content,
		Author:    principal.UserId,
		Category:  category,
		Tags:      normalizeTags(input.Tags),
		Comments:  []domain.Comment{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if input.Image != nil {
		name, err := s.attachments.Save(input.Image.Data, input.Image.Ext)
		if err != nil {
			return domain.Post{}, err
		}
		post.FeaturedImage = name
	}

	if err := s.storage.CreatePost(ctx, post); err != nil {
		if post.FeaturedImage != "" {
			s.removeImage(post.FeaturedImage)
		}
		return domain.Post{}, err
	}

	metrics.PostsCreated.Inc()
	logger.Log.Info("post created", "component", "post_service", "post_id", post.Id, "author", post.Author)
	return s.renderer.Post(post), nil
}

// Get returns the post and counts the fetch as a view.
func (s *Post) Get(ctx context.Context, id domain.PostId) (domain.Post, error) {
	if err := ValidateId(id, "post"); err != nil {
		return domain.Post{}, err
	}
	post, err := s.storage.IncrementViews(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	metrics.PostViews.Inc()
	return s.renderer.Post(post), nil
}

func (s *Post) List(ctx context.Context, params query.Params) (api.ListPostsResponse, error) {
	filter, page := params.Normalize(s.limits.DefaultLimit, s.limits.MaxLimit)
	if filter.Category != "" {
		if err := ValidateId(filter.Category, "category"); err != nil {
			return api.ListPostsResponse{}, err
		}
	}

	posts, total, err := s.storage.ListPosts(ctx, filter, page)
	if err != nil {
		return api.ListPostsResponse{}, err
	}

	return api.ListPostsResponse{
		Items:      s.renderAll(posts),
		Pagination: query.NewPagination(page, total),
	}, nil
}

func (s *Post) Search(ctx context.Context, term string) ([]domain.Post, error) {
	filter := query.Search(term)
	if filter.Search == "" {
		return nil, errors.Validation("Search query is required", map[string]string{"q": "required"})
	}
	posts, err := s.storage.SearchPosts(ctx, filter, query.SearchCap)
	if err != nil {
		return nil, err
	}
	return s.renderAll(posts), nil
}

func (s *Post) Update(ctx context.Context, principal domain.Principal, id domain.PostId, patch domain.PostPatch) (domain.Post, error) {
	if err := ValidateId(id, "post"); err != nil {
		return domain.Post{}, err
	}
	if patch.IsEmpty() {
		return domain.Post{}, errors.BadRequest("Nothing to update")
	}
	patch, err := s.normalizePatch(ctx, patch)
	if err != nil {
		return domain.Post{}, err
	}

	current, err := s.storage.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}
	if err := Authorize(principal, current); err != nil {
		metrics.MutationsDenied.WithLabelValues("update").Inc()
		return domain.Post{}, err
	}

	updated, err := s.storage.UpdatePost(ctx, id, patch, s.now())
	if err != nil {
		return domain.Post{}, err
	}
	return s.renderer.Post(updated), nil
}

func (s *Post) Delete(ctx context.Context, principal domain.Principal, id domain.PostId) error {
	if err := ValidateId(id, "post"); err != nil {
		return err
	}
	current, err := s.storage.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(principal, current); err != nil {
		metrics.MutationsDenied.WithLabelValues("delete").Inc()
		return err
	}

	if err := s.storage.DeletePost(ctx, id); err != nil {
		return err
	}
	if current.FeaturedImage != "" {
		s.removeImage(current.FeaturedImage)
	}
	logger.Log.Info("post deleted", "component", "post_service", "post_id", id, "by", principal.UserId)
	return nil
}

func (s *Post) normalizePatch(ctx context.Context, patch domain.PostPatch) (domain.PostPatch, error) {
	fields := map[string]string{}
	if patch.Title != nil {
		title := checkText(*patch.Title, titleMaxLen, "title", fields)
		patch.Title = &title
	}
	if patch.Content != nil {
		content := checkText(*patch.Content, 0, "content", fields)
		patch.Content = &content
	}
	if patch.Category != nil {
		category := checkText(*patch.Category, 0, "category", fields)
		patch.Category = &category
	}
	if err := validationResult(fields); err != nil {
		return patch, err
	}
	if patch.Tags != nil {
		tags := normalizeTags(*patch.Tags)
		patch.Tags = &tags
	}
	if patch.Category != nil {
		if err := s.checkCategory(ctx, *patch.Category); err != nil {
			return patch, err
		}
	}
	return patch, nil
}

func (s *Post) checkCategory(ctx context.Context, id domain.CategoryId) error {
	if err := ValidateId(id, "category"); err != nil {
		return errors.Validation("Unknown category", map[string]string{"category": "exists"})
	}
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return errors.Validation("Unknown category", map[string]string{"category": "exists"})
		}
		return err
	}
	return nil
}

func (s *Post) removeImage(name string) {
	if err := s.attachments.Delete(name); err != nil {
		logger.Log.Warn("failed to remove featured image", "component", "post_service", "file", name, "error", err)
	}
}

func (s *Post) renderAll(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		out[i] = s.renderer.Post(p)
	}
	return out
}

// normalizeTags trims, drops empties and duplicates.
func normalizeTags(tags domain.Tags) domain.Tags {
	if len(tags) == 0 {
		return domain.Tags{}
	}
	return domain.ParseTags(strings.Join(tags, ","))
}
