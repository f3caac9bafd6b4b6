package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/posts/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/posts/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/posts/def", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/posts/{id}", "404"))

	assert.Equal(t, 2.0, after-before)
}
