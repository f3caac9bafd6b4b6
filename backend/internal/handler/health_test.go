package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	handler := &Handler{cfg: testConfig(), health: &MockHealthChecker{}}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.Health(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("storage reachable", func(t *testing.T) {
		handler := &Handler{cfg: testConfig(), health: &MockHealthChecker{}}

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rr := httptest.NewRecorder()
		handler.Ready(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("storage down", func(t *testing.T) {
		var hadDeadline bool
		handler := &Handler{cfg: testConfig(), health: &MockHealthChecker{PingFunc: func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return errors.New("connection refused")
		}}}

		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rr := httptest.NewRecorder()
		handler.Ready(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.True(t, hadDeadline)
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}
