// Package storagetest holds behaviour every storage backend must share.
// Backends call Run from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/backend/internal/service"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run executes the contract against fresh storages produced by newStorage.
func Run(t *testing.T, newStorage func(t *testing.T) service.Storage) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStorage(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newStorage(t)) })
	t.Run("ListFilterAndPaginate", func(t *testing.T) { testList(t, newStorage(t)) })
	t.Run("SearchIncludesTagsAndCaps", func(t *testing.T) { testSearch(t, newStorage(t)) })
	t.Run("SearchTreatsWildcardsLiterally", func(t *testing.T) { testSearchLiteral(t, newStorage(t)) })
	t.Run("UpdateLeavesUnsetFields", func(t *testing.T) { testUpdate(t, newStorage(t)) })
	t.Run("DeleteRemovesComments", func(t *testing.T) { testDelete(t, newStorage(t)) })
	t.Run("IncrementViews", func(t *testing.T) { testIncrementViews(t, newStorage(t)) })
	t.Run("CommentsKeepInsertionOrder", func(t *testing.T) { testComments(t, newStorage(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStorage(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStorage(t)) })
	t.Run("FeaturedImages", func(t *testing.T) { testFeaturedImages(t, newStorage(t)) })
}

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newPost(author, category string, createdAt time.Time, title, content string, tags ...string) domain.Post {
	if tags == nil {
		tags = []string{}
	}
	return domain.Post{
		Id:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Author:    author,
		Category:  category,
		Tags:      tags,
		Comments:  []domain.Comment{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, errors.StatusCode(err))
}

func seedCategory(t *testing.T, s service.Storage, name string) domain.CategoryId {
	t.Helper()
	c := domain.Category{Id: uuid.NewString(), Name: name, CreatedAt: base}
	require.NoError(t, s.CreateCategory(context.Background(), c))
	return c.Id
}

func testCreateAndGet(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	post := newPost(uuid.NewString(), cat, base, "Title", "Content", "go", "web")
	post.FeaturedImage = "cover.png"

	require.NoError(t, s.CreatePost(ctx, post))
	got, err := s.GetPost(ctx, post.Id)

	require.NoError(t, err)
	assert.Equal(t, post.Id, got.Id)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, post.Author, got.Author)
	assert.Equal(t, post.Category, got.Category)
	assert.Equal(t, domain.Tags{"go", "web"}, got.Tags)
	assert.Equal(t, "cover.png", got.FeaturedImage)
	assert.Empty(t, got.Comments)
	assert.True(t, post.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", post.CreatedAt, got.CreatedAt)
}

func testNotFound(t *testing.T, s service.Storage) {
	ctx := context.Background()
	id := uuid.NewString()

	_, err := s.GetPost(ctx, id)
	requireStatus(t, err, http.StatusNotFound)
	_, err = s.IncrementViews(ctx, id)
	requireStatus(t, err, http.StatusNotFound)
	_, err = s.AppendComment(ctx, id, domain.Comment{Author: "u", Content: "c", CreatedAt: base})
	requireStatus(t, err, http.StatusNotFound)
	title := "x"
	_, err = s.UpdatePost(ctx, id, domain.PostPatch{Title: &title}, base)
	requireStatus(t, err, http.StatusNotFound)
	requireStatus(t, s.DeletePost(ctx, id), http.StatusNotFound)
	_, err = s.GetCategory(ctx, uuid.NewString())
	requireStatus(t, err, http.StatusNotFound)
}

func testList(t *testing.T, s service.Storage) {
	ctx := context.Background()
	tech := seedCategory(t, s, "tech")
	life := seedCategory(t, s, "life")
	author := uuid.NewString()

	// 25 posts, newest last; every 5th is in "life", odd ones mention Golang
	var created []domain.Post
	for i := 0; i < 25; i++ {
		cat := tech
		if i%5 == 0 {
			cat = life
		}
		content := "plain text"
		if i%2 == 1 {
			content = "all about GOLANG here"
		}
		p := newPost(author, cat, base.Add(time.Duration(i)*time.Minute), fmt.Sprintf("post %02d", i), content)
		require.NoError(t, s.CreatePost(ctx, p))
		created = append(created, p)
	}

	t.Run("page 2 of 3", func(t *testing.T) {
		items, total, err := s.ListPosts(ctx, query.Filter{}, query.Page{Number: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 25, total)
		require.Len(t, items, 10)
		// newest first: page 2 starts at the 11th newest
		assert.Equal(t, created[14].Id, items[0].Id)
		assert.Equal(t, created[5].Id, items[9].Id)
	})

	t.Run("past the end", func(t *testing.T) {
		items, total, err := s.ListPosts(ctx, query.Filter{}, query.Page{Number: 9, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 25, total)
		assert.Empty(t, items)
	})

	t.Run("huge page", func(t *testing.T) {
		filter, page := query.Params{Page: 1 << 60, Limit: 10}.Normalize(query.DefaultLimit, query.MaxLimit)
		items, total, err := s.ListPosts(ctx, filter, page)
		require.NoError(t, err)
		assert.Equal(t, 25, total)
		assert.Empty(t, items)
	})

	t.Run("category", func(t *testing.T) {
		items, total, err := s.ListPosts(ctx, query.Filter{Category: life}, query.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		for _, p := range items {
			assert.Equal(t, life, p.Category)
		}
	})

	t.Run("case-insensitive search on content", func(t *testing.T) {
		_, total, err := s.ListPosts(ctx, query.Filter{Search: "golang"}, query.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 12, total)
	})

	t.Run("search on title combined with category", func(t *testing.T) {
		items, total, err := s.ListPosts(ctx, query.Filter{Search: "POST 1", Category: life}, query.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		// post 10 and post 15
		assert.Equal(t, 2, total)
		assert.Len(t, items, 2)
	})
}

func testSearch(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	author := uuid.NewString()
	for i := 0; i < 25; i++ {
		p := newPost(author, cat, base.Add(time.Duration(i)*time.Second), fmt.Sprintf("t%d", i), "body", "Kubernetes")
		require.NoError(t, s.CreatePost(ctx, p))
	}
	untagged := newPost(author, cat, base, "other", "body")
	require.NoError(t, s.CreatePost(ctx, untagged))

	items, err := s.SearchPosts(ctx, query.Search("kube"), query.SearchCap)
	require.NoError(t, err)
	assert.Len(t, items, query.SearchCap)

	items, _, err = s.ListPosts(ctx, query.Filter{Search: "kube"}, query.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, items, "list search ignores tags")
}

func testSearchLiteral(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	author := uuid.NewString()
	require.NoError(t, s.CreatePost(ctx, newPost(author, cat, base, "100% done", "body")))
	require.NoError(t, s.CreatePost(ctx, newPost(author, cat, base.Add(time.Second), "1000 done", "body")))
	require.NoError(t, s.CreatePost(ctx, newPost(author, cat, base.Add(2*time.Second), "a.b (c)", "body")))

	_, total, err := s.ListPosts(ctx, query.Filter{Search: "0%"}, query.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = s.ListPosts(ctx, query.Filter{Search: "a.b (c"}, query.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func testUpdate(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	post := newPost(uuid.NewString(), cat, base, "Old", "Body", "a")
	require.NoError(t, s.CreatePost(ctx, post))

	title := "New"
	tags := domain.Tags{"b", "c"}
	later := base.Add(time.Hour)
	updated, err := s.UpdatePost(ctx, post.Id, domain.PostPatch{Title: &title, Tags: &tags}, later)

	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "Body", updated.Content)
	assert.Equal(t, domain.Tags{"b", "c"}, updated.Tags)
	assert.Equal(t, post.Author, updated.Author)
	assert.True(t, later.Equal(updated.UpdatedAt))
	assert.True(t, post.CreatedAt.Equal(updated.CreatedAt))
}

func testDelete(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	post := newPost(uuid.NewString(), cat, base, "T", "C")
	require.NoError(t, s.CreatePost(ctx, post))
	_, err := s.AppendComment(ctx, post.Id, domain.Comment{Author: "u", Content: "c", CreatedAt: base})
	require.NoError(t, err)

	require.NoError(t, s.DeletePost(ctx, post.Id))

	_, err = s.GetPost(ctx, post.Id)
	requireStatus(t, err, http.StatusNotFound)
}

func testIncrementViews(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	post := newPost(uuid.NewString(), cat, base, "T", "C")
	require.NoError(t, s.CreatePost(ctx, post))

	for i := 1; i <= 3; i++ {
		got, err := s.IncrementViews(ctx, post.Id)
		require.NoError(t, err)
		assert.Equal(t, int64(i), got.ViewCount)
	}
}

func testComments(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")
	post := newPost(uuid.NewString(), cat, base, "T", "C")
	require.NoError(t, s.CreatePost(ctx, post))

	var comments []domain.Comment
	var err error
	for i := 0; i < 3; i++ {
		comments, err = s.AppendComment(ctx, post.Id, domain.Comment{
			Author: "u", Content: fmt.Sprintf("c%d", i), CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	require.Len(t, comments, 3)
	assert.Equal(t, "c0", comments[0].Content)
	assert.Equal(t, "c2", comments[2].Content)

	got, err := s.GetPost(ctx, post.Id)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "c1", got.Comments[1].Content)

	items, _, err := s.ListPosts(ctx, query.Filter{}, query.Page{Number: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Len(t, items[0].Comments, 3)
}

func testCategories(t *testing.T, s service.Storage) {
	ctx := context.Background()
	seedCategory(t, s, "zeta")
	alpha := seedCategory(t, s, "alpha")

	err := s.CreateCategory(ctx, domain.Category{Id: uuid.NewString(), Name: "alpha", CreatedAt: base})
	requireStatus(t, err, http.StatusConflict)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)

	got, err := s.GetCategory(ctx, alpha)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
}

func testUsers(t *testing.T, s service.Storage) {
	ctx := context.Background()
	user := domain.User{Id: uuid.NewString(), Username: "alice", Email: "alice@example.com", PassHash: "hash", CreatedAt: base}
	require.NoError(t, s.SaveUser(ctx, user))

	dup := user
	dup.Id = uuid.NewString()
	requireStatus(t, s.SaveUser(ctx, dup), http.StatusConflict)

	got, err := s.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)
	assert.Equal(t, "hash", got.PassHash)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	requireStatus(t, err, http.StatusNotFound)
}

func testFeaturedImages(t *testing.T, s service.Storage) {
	ctx := context.Background()
	cat := seedCategory(t, s, "general")

	names, err := s.FeaturedImages(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	withImage := newPost(uuid.NewString(), cat, base, "A", "C")
	withImage.FeaturedImage = "a.png"
	gone := newPost(uuid.NewString(), cat, base.Add(time.Second), "B", "C")
	gone.FeaturedImage = "b.png"
	require.NoError(t, s.CreatePost(ctx, withImage))
	require.NoError(t, s.CreatePost(ctx, gone))
	require.NoError(t, s.CreatePost(ctx, newPost(uuid.NewString(), cat, base.Add(2*time.Second), "C", "C")))
	require.NoError(t, s.DeletePost(ctx, gone.Id))

	names, err = s.FeaturedImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, names)
}
