package mongo

import (
	"context"
	"fmt"
	"strings"

	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Storage) CreateCategory(ctx context.Context, category domain.Category) error {
	doc := categoryDoc{
		Id:        category.Id,
		Name:      category.Name,
		NameKey:   strings.ToLower(category.Name),
		CreatedAt: category.CreatedAt,
	}
	if _, err := s.categories.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return internal_errors.Conflict("Category already exists")
		}
		return fmt.Errorf("insertion failed: %w", err)
	}
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, id domain.CategoryId) (domain.Category, error) {
	var doc categoryDoc
	if err := s.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return domain.Category{}, notFound(err, "Category")
	}
	return domain.Category{Id: doc.Id, Name: doc.Name, CreatedAt: doc.CreatedAt.UTC()}, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cursor, err := s.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("categories mapping failed: %w", err)
	}
	categories := make([]domain.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, domain.Category{Id: d.Id, Name: d.Name, CreatedAt: d.CreatedAt.UTC()})
	}
	return categories, nil
}
