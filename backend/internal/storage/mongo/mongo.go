// Package mongo stores posts as documents with their comments embedded.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	postsColl      = "posts"
	categoriesColl = "categories"
	usersColl      = "users"
)

type Storage struct {
	client     *mongo.Client
	posts      *mongo.Collection
	categories *mongo.Collection
	users      *mongo.Collection
}

// New connects to uri, selects database and ensures indexes.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	logger.Log.Info("connecting to mongo", "component", "mongo", "database", database)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Storage{
		client:     client,
		posts:      db.Collection(postsColl),
		categories: db.Collection(categoriesColl),
		users:      db.Collection(usersColl),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	if _, err := s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to ensure post indexes: %w", err)
	}
	if _, err := s.categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "nameKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to ensure category indexes: %w", err)
	}
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to ensure user indexes: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return internal_errors.NotFound(what + " not found")
	}
	return fmt.Errorf("mongo error: %w", err)
}

// documents

type commentDoc struct {
	Author    string    `bson:"author"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
}

type postDoc struct {
	Id            string       `bson:"_id"`
	Title         string       `bson:"title"`
	Content       string       `bson:"content"`
	Author        string       `bson:"author"`
	Category      string       `bson:"category"`
	Tags          []string     `bson:"tags"`
	ViewCount     int64        `bson:"viewCount"`
	Comments      []commentDoc `bson:"comments"`
	FeaturedImage string       `bson:"featuredImage"`
	CreatedAt     time.Time    `bson:"createdAt"`
	UpdatedAt     time.Time    `bson:"updatedAt"`
}

type categoryDoc struct {
	Id        string    `bson:"_id"`
	Name      string    `bson:"name"`
	NameKey   string    `bson:"nameKey"`
	CreatedAt time.Time `bson:"createdAt"`
}

type userDoc struct {
	Id        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	PassHash  string    `bson:"passHash"`
	CreatedAt time.Time `bson:"createdAt"`
}

func toPostDoc(p domain.Post) postDoc {
	d := postDoc{
		Id:            p.Id,
		Title:         p.Title,
		Content:       p.Content,
		Author:        p.Author,
		Category:      p.Category,
		Tags:          p.Tags,
		ViewCount:     p.ViewCount,
		FeaturedImage: p.FeaturedImage,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Comments:      make([]commentDoc, 0, len(p.Comments)),
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	for _, c := range p.Comments {
		d.Comments = append(d.Comments, commentDoc(c))
	}
	return d
}

func (d postDoc) toDomain() domain.Post {
	p := domain.Post{
		Id:            d.Id,
		Title:         d.Title,
		Content:       d.Content,
		Author:        d.Author,
		Category:      d.Category,
		Tags:          d.Tags,
		ViewCount:     d.ViewCount,
		FeaturedImage: d.FeaturedImage,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
		Comments:      toComments(d.Comments),
	}
	if p.Tags == nil {
		p.Tags = domain.Tags{}
	}
	return p
}

func toComments(docs []commentDoc) []domain.Comment {
	out := make([]domain.Comment, 0, len(docs))
	for _, c := range docs {
		out = append(out, domain.Comment{Author: c.Author, Content: c.Content, CreatedAt: c.CreatedAt.UTC()})
	}
	return out
}
