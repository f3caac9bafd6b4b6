package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// filterDoc translates f into a selector. Search text is matched literally
// and case-insensitively; a regex on tags matches any element.
func filterDoc(f query.Filter) bson.M {
	sel := bson.M{}
	if f.Category != "" {
		sel["category"] = f.Category
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := bson.A{
			bson.M{"title": re},
			bson.M{"content": re},
		}
		if f.IncludeTags {
			or = append(or, bson.M{"tags": re})
		}
		sel["$or"] = or
	}
	return sel
}

func (s *Storage) CreatePost(ctx context.Context, post domain.Post) error {
	if _, err := s.posts.InsertOne(ctx, toPostDoc(post)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return internal_errors.Conflict("Post already exists")
		}
		return fmt.Errorf("insertion failed: %w", err)
	}
	return nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (domain.Post, error) {
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return domain.Post{}, notFound(err, "Post")
	}
	return doc.toDomain(), nil
}

func (s *Storage) ListPosts(ctx context.Context, filter query.Filter, page query.Page) ([]domain.Post, int, error) {
	sel := filterDoc(filter)
	total, err := s.posts.CountDocuments(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Limit))
	posts, err := s.find(ctx, sel, opts)
	if err != nil {
		return nil, 0, err
	}
	return posts, int(total), nil
}

func (s *Storage) SearchPosts(ctx context.Context, filter query.Filter, limit int) ([]domain.Post, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	return s.find(ctx, filterDoc(filter), opts)
}

func (s *Storage) find(ctx context.Context, sel bson.M, opts *options.FindOptions) ([]domain.Post, error) {
	cursor, err := s.posts.Find(ctx, sel, opts)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("posts mapping failed: %w", err)
	}
	posts := make([]domain.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.toDomain())
	}
	return posts, nil
}

func (s *Storage) UpdatePost(ctx context.Context, id domain.PostId, patch domain.PostPatch, updatedAt time.Time) (domain.Post, error) {
	set := bson.D{{Key: "updatedAt", Value: updatedAt}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *patch.Content})
	}
	if patch.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *patch.Category})
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = domain.Tags{}
		}
		set = append(set, bson.E{Key: "tags", Value: tags})
	}
	return s.findOneAndUpdate(ctx, id, bson.D{{Key: "$set", Value: set}})
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return internal_errors.NotFound("Post not found")
	}
	return nil
}

func (s *Storage) IncrementViews(ctx context.Context, id domain.PostId) (domain.Post, error) {
	return s.findOneAndUpdate(ctx, id, bson.D{{Key: "$inc", Value: bson.D{{Key: "viewCount", Value: 1}}}})
}

func (s *Storage) AppendComment(ctx context.Context, id domain.PostId, comment domain.Comment) ([]domain.Comment, error) {
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "comments", Value: commentDoc(comment)}}}}
	post, err := s.findOneAndUpdate(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *Storage) FeaturedImages(ctx context.Context) ([]string, error) {
	values, err := s.posts.Distinct(ctx, "featuredImage", bson.M{"featuredImage": bson.M{"$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("distinct featured images failed: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Storage) findOneAndUpdate(ctx context.Context, id domain.PostId, update bson.D) (domain.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	if err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return domain.Post{}, notFound(err, "Post")
	}
	return doc.toDomain(), nil
}
