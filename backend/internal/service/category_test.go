package service

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var stored domain.Category
		storage := &MockCategoryStorage{CreateCategoryFunc: func(ctx context.Context, c domain.Category) error {
			stored = c
			return nil
		}}
		s := NewCategory(storage)
		s.now = func() time.Time { return fixed }
		s.newId = func() string { return testCategoryId }

		category, err := s.Create(context.Background(), author, " Tech ")

		require.NoError(t, err)
		assert.Equal(t, domain.Category{Id: testCategoryId, Name: "Tech", CreatedAt: fixed}, category)
		assert.Equal(t, category, stored)
	})

	t.Run("Too long", func(t *testing.T) {
		_, err := NewCategory(&MockCategoryStorage{}).Create(context.Background(), author, strings.Repeat("c", 51))
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("Duplicate surfaces conflict", func(t *testing.T) {
		storage := &MockCategoryStorage{CreateCategoryFunc: func(ctx context.Context, c domain.Category) error {
			return internal_errors.Conflict("Category already exists")
		}}
		_, err := NewCategory(storage).Create(context.Background(), author, "Tech")
		requireStatus(t, err, http.StatusConflict)
	})
}
