package reconciler

import (
	"context"
	"fmt"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/utils"
)

// command is one optimistic mutation. apply and compensate/reconcile run
// under the store lock; execute runs without it.
type command interface {
	name() string
	apply(s *Store) error
	execute(ctx context.Context, remote Remote) error
	reconcile(s *Store)
	compensate(s *Store)
}

// Draft is the local form of a new post. It is checked before anything is
// shown so obviously invalid posts never appear, even briefly.
type Draft struct {
	Title    string `json:"title" validate:"required,max=100"`
	Content  string `json:"content" validate:"required,min=10"`
	Category string `json:"category" validate:"required"`
	Tags     string `json:"tags"`
}

func (d Draft) request() api.CreatePostRequest {
	return api.CreatePostRequest{Title: d.Title, Content: d.Content, Category: d.Category, Tags: d.Tags}
}

func (s *Store) CreateOptimistic(ctx context.Context, draft Draft) Result {
	return s.run(ctx, &createCommand{draft: draft})
}

func (s *Store) UpdateOptimistic(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) Result {
	return s.run(ctx, &updateCommand{id: id, req: req})
}

func (s *Store) DeleteOptimistic(ctx context.Context, id domain.PostId) Result {
	return s.run(ctx, &deleteCommand{id: id})
}

func (s *Store) CommentOptimistic(ctx context.Context, id domain.PostId, content string) Result {
	return s.run(ctx, &commentCommand{id: id, content: content})
}

func notInStore(id domain.PostId) error {
	return errors.NotFound(fmt.Sprintf("post %s is not loaded", id))
}

// create

type createCommand struct {
	draft  Draft
	tempId domain.PostId
	result domain.Post
}

func (c *createCommand) name() string { return "create" }

func (c *createCommand) apply(s *Store) error {
	if err := utils.Validate(c.draft); err != nil {
		return err
	}
	c.tempId = s.newTempId()
	now := s.now()
	placeholder := domain.Post{
		Id:        c.tempId,
		Title:     c.draft.Title,
		Content:   c.draft.Content,
		Author:    s.author,
		Category:  c.draft.Category,
		Tags:      domain.ParseTags(c.draft.Tags),
		Comments:  []domain.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.posts = append([]domain.Post{placeholder}, s.posts...)
	return nil
}

func (c *createCommand) execute(ctx context.Context, remote Remote) error {
	post, err := remote.CreatePost(ctx, c.draft.request())
	c.result = post
	return err
}

// reconcile swaps the placeholder wherever it sits now.
func (c *createCommand) reconcile(s *Store) {
	if i := s.index(c.tempId); i >= 0 {
		s.posts[i] = c.result.Clone()
	}
}

func (c *createCommand) compensate(s *Store) {
	if i := s.index(c.tempId); i >= 0 {
		s.posts = append(s.posts[:i], s.posts[i+1:]...)
	}
}

// update

type updateCommand struct {
	id       domain.PostId
	req      api.UpdatePostRequest
	snapshot domain.Post
	result   domain.Post
}

func (c *updateCommand) name() string { return "update" }

func (c *updateCommand) apply(s *Store) error {
	i := s.index(c.id)
	if i < 0 {
		return notInStore(c.id)
	}
	c.snapshot = s.posts[i].Clone()
	patchFromRequest(c.req).Apply(&s.posts[i])
	return nil
}

func (c *updateCommand) execute(ctx context.Context, remote Remote) error {
	post, err := remote.UpdatePost(ctx, c.id, c.req)
	c.result = post
	return err
}

func (c *updateCommand) reconcile(s *Store) {
	if i := s.index(c.id); i >= 0 {
		s.posts[i] = c.result.Clone()
	}
}

func (c *updateCommand) compensate(s *Store) {
	if i := s.index(c.id); i >= 0 {
		s.posts[i] = c.snapshot.Clone()
	}
}

func patchFromRequest(req api.UpdatePostRequest) domain.PostPatch {
	patch := domain.PostPatch{Title: req.Title, Content: req.Content, Category: req.Category}
	if req.Tags != nil {
		tags := domain.ParseTags(*req.Tags)
		patch.Tags = &tags
	}
	return patch
}

// delete

type deleteCommand struct {
	id       domain.PostId
	snapshot domain.Post
	index    int
}

func (c *deleteCommand) name() string { return "delete" }

func (c *deleteCommand) apply(s *Store) error {
	i := s.index(c.id)
	if i < 0 {
		return notInStore(c.id)
	}
	c.index = i
	c.snapshot = s.posts[i].Clone()
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return nil
}

func (c *deleteCommand) execute(ctx context.Context, remote Remote) error {
	return remote.DeletePost(ctx, c.id)
}

func (c *deleteCommand) reconcile(*Store) {}

// compensate puts the post back at its old index, clamped to the current length.
func (c *deleteCommand) compensate(s *Store) {
	if s.index(c.id) >= 0 {
		return
	}
	i := min(c.index, len(s.posts))
	s.posts = append(s.posts[:i], append([]domain.Post{c.snapshot.Clone()}, s.posts[i:]...)...)
}

// comment

type commentCommand struct {
	id       domain.PostId
	content  string
	previous []domain.Comment
	result   []domain.Comment
}

func (c *commentCommand) name() string { return "comment" }

func (c *commentCommand) apply(s *Store) error {
	if err := utils.Validate(api.CreateCommentRequest{Content: c.content}); err != nil {
		return err
	}
	i := s.index(c.id)
	if i < 0 {
		return notInStore(c.id)
	}
	post := &s.posts[i]
	c.previous = append([]domain.Comment{}, post.Comments...)
	post.Comments = append(append([]domain.Comment{}, post.Comments...), domain.Comment{
		Author:    s.author,
		Content:   c.content,
		CreatedAt: s.now(),
	})
	return nil
}

func (c *commentCommand) execute(ctx context.Context, remote Remote) error {
	comments, err := remote.AddComment(ctx, c.id, c.content)
	c.result = comments
	return err
}

func (c *commentCommand) reconcile(s *Store) {
	if i := s.index(c.id); i >= 0 {
		s.posts[i].Comments = append([]domain.Comment{}, c.result...)
	}
}

func (c *commentCommand) compensate(s *Store) {
	if i := s.index(c.id); i >= 0 {
		s.posts[i].Comments = append([]domain.Comment{}, c.previous...)
	}
}
