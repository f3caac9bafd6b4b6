package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/postboard-dev/postboard/backend/internal/query"
	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	var tags pq.StringArray
	err := row.Scan(&p.Id, &p.Title, &p.Content, &p.Author, &p.Category, &tags, &p.ViewCount, &p.FeaturedImage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Post{}, err
	}
	p.Tags = domain.Tags(tags)
	if p.Tags == nil {
		p.Tags = domain.Tags{}
	}
	p.Comments = []domain.Comment{}
	return p, nil
}

func tagsArray(tags domain.Tags) pq.StringArray {
	if tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}

func (s *Storage) CreatePost(ctx context.Context, post domain.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		post.Id, post.Title, post.Content, post.Author, post.Category,
		tagsArray(post.Tags), post.ViewCount, post.FeaturedImage, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if sharedpg.IsUniqueViolation(err) {
			return internal_errors.Conflict("Post already exists")
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (domain.Post, error) {
	return s.postWithComments(ctx, s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (s *Storage) ListPosts(ctx context.Context, filter query.Filter, page query.Page) ([]domain.Post, int, error) {
	countQuery, countArgs, itemsQuery, itemArgs := listQuery(filter, page)

	var total int
	var posts []domain.Post
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count posts: %w", err)
		}
		var err error
		if posts, err = queryPosts(ctx, tx, itemsQuery, itemArgs...); err != nil {
			return err
		}
		return attachComments(ctx, tx, posts)
	})
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *Storage) SearchPosts(ctx context.Context, filter query.Filter, limit int) ([]domain.Post, error) {
	q, args := searchQuery(filter, limit)
	posts, err := queryPosts(ctx, s.db, q, args...)
	if err != nil {
		return nil, err
	}
	if err := attachComments(ctx, s.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Storage) UpdatePost(ctx context.Context, id domain.PostId, patch domain.PostPatch, updatedAt time.Time) (domain.Post, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Category != nil {
		set("category_id", *patch.Category)
	}
	if patch.Tags != nil {
		set("tags", tagsArray(*patch.Tags))
	}
	set("updated_at", updatedAt)
	args = append(args, id)

	q := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), postColumns)
	return s.postWithComments(ctx, s.db.QueryRowContext(ctx, q, args...))
}

// DeletePost removes the post; comments go with it through ON DELETE CASCADE.
func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n == 0 {
		return internal_errors.NotFound("Post not found")
	}
	return nil
}

func (s *Storage) IncrementViews(ctx context.Context, id domain.PostId) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1 RETURNING `+postColumns, id)
	return s.postWithComments(ctx, row)
}

func (s *Storage) postWithComments(ctx context.Context, row *sql.Row) (domain.Post, error) {
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Post{}, internal_errors.NotFound("Post not found")
		}
		return domain.Post{}, fmt.Errorf("failed to read post: %w", err)
	}
	posts := []domain.Post{post}
	if err := attachComments(ctx, s.db, posts); err != nil {
		return domain.Post{}, err
	}
	return posts[0], nil
}

func (s *Storage) FeaturedImages(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT featured_image FROM posts WHERE featured_image <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured images: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan featured image: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func queryPosts(ctx context.Context, q sharedpg.Querier, sqlQuery string, args ...any) ([]domain.Post, error) {
	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}
