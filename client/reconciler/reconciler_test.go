package reconciler

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/postboard-dev/postboard/client/apiclient"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	ListPostsFunc  func(ctx context.Context, q api.ListQuery) (api.ListPostsResponse, error)
	CreatePostFunc func(ctx context.Context, req api.CreatePostRequest) (domain.Post, error)
	UpdatePostFunc func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error)
	DeletePostFunc func(ctx context.Context, id domain.PostId) error
	AddCommentFunc func(ctx context.Context, id domain.PostId, content string) ([]domain.Comment, error)
}

func (f *fakeRemote) ListPosts(ctx context.Context, q api.ListQuery) (api.ListPostsResponse, error) {
	if f.ListPostsFunc != nil {
		return f.ListPostsFunc(ctx, q)
	}
	return api.ListPostsResponse{}, nil
}

func (f *fakeRemote) CreatePost(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
	if f.CreatePostFunc != nil {
		return f.CreatePostFunc(ctx, req)
	}
	return domain.Post{}, fmt.Errorf("CreatePost not expected")
}

func (f *fakeRemote) UpdatePost(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
	if f.UpdatePostFunc != nil {
		return f.UpdatePostFunc(ctx, id, req)
	}
	return domain.Post{}, fmt.Errorf("UpdatePost not expected")
}

func (f *fakeRemote) DeletePost(ctx context.Context, id domain.PostId) error {
	if f.DeletePostFunc != nil {
		return f.DeletePostFunc(ctx, id)
	}
	return fmt.Errorf("DeletePost not expected")
}

func (f *fakeRemote) AddComment(ctx context.Context, id domain.PostId, content string) ([]domain.Comment, error) {
	if f.AddCommentFunc != nil {
		return f.AddCommentFunc(ctx, id, content)
	}
	return nil, fmt.Errorf("AddComment not expected")
}

var _ Remote = (*apiclient.APIClient)(nil)

var (
	errServer = &apiclient.NetworkError{StatusCode: http.StatusInternalServerError, Message: "Internal server error"}
	fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
)

func seedPosts(n int) []domain.Post {
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			Id:        fmt.Sprintf("post-%d", i),
			Title:     fmt.Sprintf("Title %d", i),
			Content:   "Some long enough content",
			Author:    "author-1",
			Category:  "cat-1",
			Tags:      domain.Tags{"go"},
			Comments:  []domain.Comment{{Author: "author-2", Content: "first", CreatedAt: fixedTime}},
			CreatedAt: fixedTime,
			UpdatedAt: fixedTime,
		}
	}
	return posts
}

// newLoadedStore returns a store already holding n posts.
func newLoadedStore(t *testing.T, remote *fakeRemote, n int) *Store {
	t.Helper()
	remote.ListPostsFunc = func(ctx context.Context, q api.ListQuery) (api.ListPostsResponse, error) {
		return api.ListPostsResponse{Items: seedPosts(n), Pagination: api.Pagination{Page: 1, Limit: 10, Total: n}}, nil
	}
	s := New(remote)
	s.now = func() time.Time { return fixedTime }
	s.SetAuthor("author-1")
	require.True(t, s.Load(context.Background(), api.ListQuery{}).OK())
	return s
}

func validDraft() Draft {
	return Draft{Title: "New post", Content: "Content that is long enough", Category: "cat-1", Tags: "go, web"}
}

func TestLoad(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 3)

	assert.Len(t, s.Snapshot(), 3)
	assert.Equal(t, 3, s.Pagination().Total)
	assert.NoError(t, s.LastError())

	t.Run("error keeps posts and is recorded", func(t *testing.T) {
		remote.ListPostsFunc = func(ctx context.Context, q api.ListQuery) (api.ListPostsResponse, error) {
			return api.ListPostsResponse{}, errServer
		}
		res := s.Load(context.Background(), api.ListQuery{Page: 2})
		assert.False(t, res.OK())
		assert.Len(t, s.Snapshot(), 3)
		assert.Equal(t, errServer, s.LastError())
	})
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newLoadedStore(t, &fakeRemote{}, 1)

	snap := s.Snapshot()
	snap[0].Tags[0] = "changed"
	snap[0].Comments[0].Content = "changed"

	post, ok := s.Get("post-0")
	require.True(t, ok)
	assert.Equal(t, "go", post.Tags[0])
	assert.Equal(t, "first", post.Comments[0].Content)
}

func TestCreateOptimistic_Success(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 2)
	server := domain.Post{Id: "server-id", Title: "New post", Author: "author-1", Tags: domain.Tags{"go", "web"}, Comments: []domain.Comment{}}

	remote.CreatePostFunc = func(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
		// placeholder is visible before the server answers
		snap := s.Snapshot()
		require.Len(t, snap, 3)
		assert.True(t, snap[0].IsTemporary())
		assert.Equal(t, "New post", snap[0].Title)
		assert.Equal(t, domain.Tags{"go", "web"}, snap[0].Tags)
		assert.Equal(t, domain.UserId("author-1"), snap[0].Author)
		assert.Equal(t, "go, web", req.Tags)
		return server, nil
	}

	res := s.CreateOptimistic(context.Background(), validDraft())

	require.True(t, res.OK())
	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, server, snap[0])
	assert.Equal(t, "post-0", snap[1].Id)
	assert.Equal(t, "post-1", snap[2].Id)
}

func TestCreateOptimistic_KeepsCurrentPosition(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 1)

	var calls int
	remote.CreatePostFunc = func(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
		calls++
		if calls == 1 {
			// a second create finishes while the first is in flight
			require.True(t, s.CreateOptimistic(ctx, Draft{Title: "second", Content: "second content", Category: "cat-1"}).OK())
			return domain.Post{Id: "first-server"}, nil
		}
		return domain.Post{Id: "second-server"}, nil
	}

	require.True(t, s.CreateOptimistic(context.Background(), validDraft()).OK())

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "second-server", snap[0].Id)
	assert.Equal(t, "first-server", snap[1].Id)
	assert.Equal(t, "post-0", snap[2].Id)
}

func TestCreateOptimistic_FailureRestoresSequence(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 3)
	before := s.Snapshot()

	remote.CreatePostFunc = func(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
		return domain.Post{}, errServer
	}

	res := s.CreateOptimistic(context.Background(), validDraft())

	assert.False(t, res.OK())
	assert.Equal(t, before, s.Snapshot())
	var netErr *apiclient.NetworkError
	require.True(t, stderrors.As(s.LastError(), &netErr))
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
}

func TestCreateOptimistic_FailureRemovesOnlyPlaceholder(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 2)

	remote.UpdatePostFunc = func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
		p := seedPosts(2)[1]
		p.Title = *req.Title
		return p, nil
	}
	remote.DeletePostFunc = func(ctx context.Context, id domain.PostId) error {
		return nil
	}

	// mutate other entries while the create is in flight
	remote.CreatePostFunc = func(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
		title := "updated"
		require.True(t, s.UpdateOptimistic(ctx, "post-1", api.UpdatePostRequest{Title: &title}).OK())
		require.True(t, s.DeleteOptimistic(ctx, "post-0").OK())
		return domain.Post{}, errServer
	}

	assert.False(t, s.CreateOptimistic(context.Background(), validDraft()).OK())

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "post-1", snap[0].Id)
	assert.Equal(t, "updated", snap[0].Title)
}

func TestCreateOptimistic_InvalidDraft(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 1)
	before := s.Snapshot()

	draft := validDraft()
	draft.Content = "short"
	res := s.CreateOptimistic(context.Background(), draft)

	require.False(t, res.OK())
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(res.Err))
	var e *errors.ErrorWithStatusCode
	require.True(t, stderrors.As(res.Err, &e))
	assert.Equal(t, "min", e.Fields["content"])
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, res.Err, s.LastError())
}

func TestCreateOptimistic_TempIdsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 1000 {
		id := newTempId()
		require.True(t, domain.Post{Id: id}.IsTemporary())
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestUpdateOptimistic_Success(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 2)
	title := "Renamed"
	tags := "a, b"

	server := seedPosts(2)[1]
	server.Title = title
	server.Tags = domain.Tags{"a", "b"}
	server.UpdatedAt = fixedTime.Add(time.Minute)

	remote.UpdatePostFunc = func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
		assert.Equal(t, "post-1", id)
		local, ok := s.Get(id)
		require.True(t, ok)
		assert.Equal(t, title, local.Title)
		assert.Equal(t, domain.Tags{"a", "b"}, local.Tags)
		return server, nil
	}

	require.True(t, s.UpdateOptimistic(context.Background(), "post-1", api.UpdatePostRequest{Title: &title, Tags: &tags}).OK())

	got, ok := s.Get("post-1")
	require.True(t, ok)
	assert.Equal(t, server, got)
}

func TestUpdateOptimistic_FailureRestoresSnapshot(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 2)
	before := s.Snapshot()
	title := "Renamed"
	content := "Brand new content"
	category := "cat-2"
	tags := ""

	remote.UpdatePostFunc = func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
		return domain.Post{}, &apiclient.NetworkError{StatusCode: http.StatusForbidden, Message: "Forbidden"}
	}

	res := s.UpdateOptimistic(context.Background(), "post-0", api.UpdatePostRequest{
		Title: &title, Content: &content, Category: &category, Tags: &tags,
	})

	assert.False(t, res.OK())
	assert.Equal(t, before, s.Snapshot())
	assert.Error(t, s.LastError())
}

func TestUpdateOptimistic_UnknownPost(t *testing.T) {
	s := newLoadedStore(t, &fakeRemote{}, 1)
	title := "x"

	res := s.UpdateOptimistic(context.Background(), "missing", api.UpdatePostRequest{Title: &title})

	assert.Equal(t, http.StatusNotFound, errors.StatusCode(res.Err))
}

func TestUpdateOptimistic_RollbackAfterDeleteIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 2)
	title := "Renamed"

	remote.DeletePostFunc = func(ctx context.Context, id domain.PostId) error { return nil }
	remote.UpdatePostFunc = func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
		require.True(t, s.DeleteOptimistic(ctx, id).OK())
		return domain.Post{}, errServer
	}

	assert.False(t, s.UpdateOptimistic(context.Background(), "post-0", api.UpdatePostRequest{Title: &title}).OK())

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "post-1", snap[0].Id)
}

func TestDeleteOptimistic(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		remote := &fakeRemote{}
		s := newLoadedStore(t, remote, 3)
		remote.DeletePostFunc = func(ctx context.Context, id domain.PostId) error {
			_, ok := s.Get(id)
			assert.False(t, ok, "removed before the server answers")
			return nil
		}

		require.True(t, s.DeleteOptimistic(context.Background(), "post-1").OK())
		snap := s.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, "post-0", snap[0].Id)
		assert.Equal(t, "post-2", snap[1].Id)
	})

	t.Run("failure restores at original index", func(t *testing.T) {
		remote := &fakeRemote{}
		s := newLoadedStore(t, remote, 3)
		before := s.Snapshot()
		remote.DeletePostFunc = func(ctx context.Context, id domain.PostId) error { return errServer }

		assert.False(t, s.DeleteOptimistic(context.Background(), "post-1").OK())
		assert.Equal(t, before, s.Snapshot())
	})
}

func TestCommentOptimistic(t *testing.T) {
	t.Run("success takes server comments", func(t *testing.T) {
		remote := &fakeRemote{}
		s := newLoadedStore(t, remote, 1)
		server := []domain.Comment{
			{Author: "author-2", Content: "first", CreatedAt: fixedTime},
			{Author: "someone-else", Content: "racing comment", CreatedAt: fixedTime},
			{Author: "author-1", Content: "nice post", CreatedAt: fixedTime.Add(time.Second)},
		}
		remote.AddCommentFunc = func(ctx context.Context, id domain.PostId, content string) ([]domain.Comment, error) {
			local, _ := s.Get(id)
			require.Len(t, local.Comments, 2)
			assert.Equal(t, "nice post", local.Comments[1].Content)
			return server, nil
		}

		require.True(t, s.CommentOptimistic(context.Background(), "post-0", "nice post").OK())
		post, _ := s.Get("post-0")
		assert.Equal(t, server, post.Comments)
	})

	t.Run("failure restores comments", func(t *testing.T) {
		remote := &fakeRemote{}
		s := newLoadedStore(t, remote, 1)
		before := s.Snapshot()
		remote.AddCommentFunc = func(ctx context.Context, id domain.PostId, content string) ([]domain.Comment, error) {
			return nil, errServer
		}

		assert.False(t, s.CommentOptimistic(context.Background(), "post-0", "nice post").OK())
		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("empty comment is rejected locally", func(t *testing.T) {
		s := newLoadedStore(t, &fakeRemote{}, 1)
		res := s.CommentOptimistic(context.Background(), "post-0", "")
		assert.Equal(t, http.StatusBadRequest, errors.StatusCode(res.Err))
	})
}

func TestConcurrentIndependentMutations(t *testing.T) {
	const n = 20
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, n)

	// even posts succeed, odd posts fail
	remote.UpdatePostFunc = func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
		var i int
		_, _ = fmt.Sscanf(id, "post-%d", &i)
		if i%2 == 1 {
			return domain.Post{}, errServer
		}
		p := seedPosts(n)[i]
		p.Title = *req.Title
		return p, nil
	}

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			title := fmt.Sprintf("updated %d", i)
			s.UpdateOptimistic(context.Background(), fmt.Sprintf("post-%d", i), api.UpdatePostRequest{Title: &title})
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap, n)
	for i, p := range snap {
		assert.Equal(t, fmt.Sprintf("post-%d", i), p.Id)
		if i%2 == 0 {
			assert.Equal(t, fmt.Sprintf("updated %d", i), p.Title)
		} else {
			assert.Equal(t, fmt.Sprintf("Title %d", i), p.Title)
		}
	}
}

func TestSubscribe(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 1)
	remote.CreatePostFunc = func(ctx context.Context, req api.CreatePostRequest) (domain.Post, error) {
		return domain.Post{}, errServer
	}

	var states []State
	unsubscribe := s.Subscribe(func(st State) { states = append(states, st) })

	s.CreateOptimistic(context.Background(), validDraft())

	// optimistic apply, then rollback
	require.Len(t, states, 2)
	assert.Len(t, states[0].Posts, 2)
	assert.NoError(t, states[0].Err)
	assert.Len(t, states[1].Posts, 1)
	assert.Equal(t, errServer, states[1].Err)

	unsubscribe()
	unsubscribe()
	s.CreateOptimistic(context.Background(), validDraft())
	assert.Len(t, states, 2)
}

func TestSubscribe_ConcurrentMutationsDeliverLatestState(t *testing.T) {
	const n = 20
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, n)
	remote.UpdatePostFunc = func(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error) {
		var i int
		_, _ = fmt.Sscanf(id, "post-%d", &i)
		if i%3 == 0 {
			return domain.Post{}, errServer
		}
		p := seedPosts(n)[i]
		p.Title = *req.Title
		return p, nil
	}

	var (
		inFlight atomic.Int32
		overlap  atomic.Bool
		last     State
		calls    int
	)
	s.Subscribe(func(st State) {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		last = st
		calls++
		inFlight.Add(-1)
	})

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			title := fmt.Sprintf("updated %d", i)
			s.UpdateOptimistic(context.Background(), fmt.Sprintf("post-%d", i), api.UpdatePostRequest{Title: &title})
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "subscriber called concurrently")
	assert.Positive(t, calls)
	assert.Equal(t, s.Snapshot(), last.Posts)
}

func TestMutateAsync(t *testing.T) {
	remote := &fakeRemote{}
	s := newLoadedStore(t, remote, 1)
	release := make(chan struct{})
	remote.DeletePostFunc = func(ctx context.Context, id domain.PostId) error {
		<-release
		return nil
	}

	ch := s.MutateAsync(func() Result { return s.DeleteOptimistic(context.Background(), "post-0") })

	assert.Eventually(t, func() bool { return len(s.Snapshot()) == 0 }, time.Second, 5*time.Millisecond)
	close(release)

	select {
	case res := <-ch:
		assert.True(t, res.OK())
	case <-time.After(time.Second):
		t.Fatal("mutation did not finish")
	}
}
