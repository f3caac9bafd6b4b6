package mongo

import (
	"context"
	"fmt"

	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	if _, err := s.users.InsertOne(ctx, userDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return internal_errors.Conflict("User already exists")
		}
		return fmt.Errorf("insertion failed: %w", err)
	}
	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return domain.User{}, notFound(err, "User")
	}
	u := domain.User(doc)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
