package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
)

type CategoryService interface {
	Create(ctx context.Context, principal domain.Principal, name string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

type Category struct {
	storage CategoryStorage
	now     func() time.Time
	newId   func() string
}

func NewCategory(storage CategoryStorage) *Category {
	return &Category{storage: storage, now: now, newId: uuid.NewString}
}

func (s *Category) Create(ctx context.Context, principal domain.Principal, name string) (domain.Category, error) {
	if principal.IsZero() {
		return domain.Category{}, errors.Unauthenticated("Please sign-in")
	}
	fields := map[string]string{}
	name = checkText(name, categoryNameMaxLen, "name", fields)
	if err := validationResult(fields); err != nil {
		return domain.Category{}, err
	}

	category := domain.Category{Id: s.newId(), Name: name, CreatedAt: s.now()}
	if err := s.storage.CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (s *Category) List(ctx context.Context) ([]domain.Category, error) {
	return s.storage.ListCategories(ctx)
}
