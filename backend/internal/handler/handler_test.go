package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/config"
	"github.com/postboard-dev/postboard/shared/domain"
	mw "github.com/postboard-dev/postboard/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPostId = "0190c5e2-7b1a-7000-8000-000000000001"
	testUserId = "0190c5e2-7b1a-7000-8000-0000000000a1"
)

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{
		JwtTTL:                time.Hour,
		MaxAttachmentSize:     1 << 20,
		AllowedImageMimeTypes: []string{"image/png", "image/jpeg"},
	}}
}

// setupRouter mounts the handler the way the router does. Requests carrying
// an X-Test-User header are treated as signed in as that user.
func setupRouter(h *Handler) *chi.Mux {
	if h.cfg == nil {
		h.cfg = testConfig()
	}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if uid := r.Header.Get("X-Test-User"); uid != "" {
				r = r.WithContext(mw.WithPrincipal(r.Context(), domain.Principal{UserId: uid}))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/posts", h.ListPosts)
	r.Get("/api/posts/search", h.SearchPosts)
	r.Post("/api/posts", h.CreatePost)
	r.Get("/api/posts/{id}", h.GetPost)
	r.Put("/api/posts/{id}", h.UpdatePost)
	r.Delete("/api/posts/{id}", h.DeletePost)
	r.Post("/api/posts/{id}/comments", h.CreateComment)
	r.Get("/api/categories", h.ListCategories)
	r.Post("/api/categories", h.CreateCategory)
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/logout", h.Logout)
	return r
}

func createRequest(t *testing.T, method, url string, body []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func asUser(req *http.Request, uid string) *http.Request {
	req.Header.Set("X-Test-User", uid)
	return req
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func TestParseIntParam(t *testing.T) {
	v, err := parseIntParam("", "page")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = parseIntParam("7", "page")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = parseIntParam("seven", "page")
	assert.Error(t, err)
}
