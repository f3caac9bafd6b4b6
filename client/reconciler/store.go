// Package reconciler keeps a client-side projection of the server's posts and
// applies mutations optimistically: the local change is visible at once and
// is later either replaced by the server's answer or rolled back.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/logger"
)

// Remote is the subset of the API the store needs. *apiclient.APIClient implements it.
type Remote interface {
	ListPosts(ctx context.Context, q api.ListQuery) (api.ListPostsResponse, error)
	CreatePost(ctx context.Context, req api.CreatePostRequest) (domain.Post, error)
	UpdatePost(ctx context.Context, id domain.PostId, req api.UpdatePostRequest) (domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
	AddComment(ctx context.Context, id domain.PostId, content string) ([]domain.Comment, error)
}

// State is what subscribers observe. Posts is a private copy.
type State struct {
	Posts      []domain.Post
	Pagination api.Pagination
	Err        error
}

// Result of a single mutation. The zero value is success.
type Result struct {
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Store struct {
	remote Remote

	mu          sync.Mutex
	posts       []domain.Post
	pagination  api.Pagination
	lastErr     error
	author      domain.UserId
	subscribers map[int]func(State)
	nextSub     int
	// version stamps every captured state; guarded by mu.
	version uint64

	// notifyMu serializes delivery; delivered is the newest version handed out.
	notifyMu  sync.Mutex
	delivered uint64

	now       func() time.Time
	newTempId func() string
}

func New(remote Remote) *Store {
	return &Store{
		remote:      remote,
		subscribers: make(map[int]func(State)),
		now:         func() time.Time { return time.Now().UTC() },
		newTempId:   newTempId,
	}
}

// newTempId is time ordered, so ids never repeat within a session.
func newTempId() string {
	return domain.TempIdPrefix + uuid.Must(uuid.NewV7()).String()
}

// SetAuthor sets the user placeholders and local comments are attributed to.
func (s *Store) SetAuthor(id domain.UserId) {
	s.mu.Lock()
	s.author = id
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current posts, most recent first.
func (s *Store) Snapshot() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePosts(s.posts)
}

func (s *Store) Get(id domain.PostId) (domain.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.posts[i].Clone(), true
	}
	return domain.Post{}, false
}

func (s *Store) Pagination() api.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// LastError is the error of the most recent failed operation, cleared by the next success.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Subscribe registers fn to be called after every state change, one call at a
// time and in order. fn runs without the store lock held, so it may read the
// store, but it must not block for long or start a mutation synchronously.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Load replaces the local posts with a page fetched from the server.
func (s *Store) Load(ctx context.Context, q api.ListQuery) Result {
	resp, err := s.remote.ListPosts(ctx, q)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
	} else {
		s.posts = clonePosts(resp.Items)
		s.pagination = resp.Pagination
		s.lastErr = nil
	}
	notify := s.notifier()
	s.mu.Unlock()

	notify()
	return Result{Err: err}
}

// MutateAsync runs fn on its own goroutine so a UI loop is never blocked.
func (s *Store) MutateAsync(fn func() Result) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- fn()
		close(ch)
	}()
	return ch
}

// run drives a command: local apply, network call outside the lock, then
// reconcile or compensate.
func (s *Store) run(ctx context.Context, cmd command) Result {
	s.mu.Lock()
	if err := cmd.apply(s); err != nil {
		s.lastErr = err
		notify := s.notifier()
		s.mu.Unlock()
		notify()
		return Result{Err: err}
	}
	notify := s.notifier()
	s.mu.Unlock()
	notify()

	err := cmd.execute(ctx, s.remote)

	s.mu.Lock()
	if err != nil {
		cmd.compensate(s)
		s.lastErr = err
		logger.Component("reconciler").Debug("optimistic mutation rolled back", "command", cmd.name(), "error", err)
	} else {
		cmd.reconcile(s)
		s.lastErr = nil
	}
	notify = s.notifier()
	s.mu.Unlock()
	notify()

	return Result{Err: err}
}

// notifier captures the state under mu and returns a func that delivers it
// after mu is released. Deliveries are serialized and a state older than one
// already delivered is dropped, so the last state a subscriber sees is the newest.
func (s *Store) notifier() func() {
	s.version++
	if len(s.subscribers) == 0 {
		return func() {}
	}
	version := s.version
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	state := State{Posts: clonePosts(s.posts), Pagination: s.pagination, Err: s.lastErr}
	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		if version <= s.delivered {
			return
		}
		s.delivered = version
		for _, fn := range fns {
			fn(State{Posts: clonePosts(state.Posts), Pagination: state.Pagination, Err: state.Err})
		}
	}
}

// index returns the current position of id, or -1. Callers hold mu.
func (s *Store) index(id domain.PostId) int {
	for i := range s.posts {
		if s.posts[i].Id == id {
			return i
		}
	}
	return -1
}

func clonePosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i := range posts {
		out[i] = posts[i].Clone()
	}
	return out
}
