package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
)

func (s *Storage) AppendComment(ctx context.Context, id domain.PostId, comment domain.Comment) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := sharedpg.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO comments (post_id, author_id, content, created_at)
			SELECT id, $2, $3, $4 FROM posts WHERE id = $1`,
			id, comment.Author, comment.Content, comment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		} else if n == 0 {
			return internal_errors.NotFound("Post not found")
		}

		byPost, err := commentsFor(ctx, tx, []domain.PostId{id})
		if err != nil {
			return err
		}
		comments = byPost[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// attachComments fills Comments of every post with one query.
func attachComments(ctx context.Context, q sharedpg.Querier, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]domain.PostId, len(posts))
	for i, p := range posts {
		ids[i] = p.Id
	}
	byPost, err := commentsFor(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range posts {
		if c, ok := byPost[posts[i].Id]; ok {
			posts[i].Comments = c
		}
	}
	return nil
}

func commentsFor(ctx context.Context, q sharedpg.Querier, ids []domain.PostId) (map[domain.PostId][]domain.Comment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT post_id, author_id, content, created_at
		FROM comments
		WHERE post_id = ANY($1::uuid[])
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.PostId][]domain.Comment, len(ids))
	for rows.Next() {
		var postId domain.PostId
		var c domain.Comment
		if err := rows.Scan(&postId, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out[postId] = append(out[postId], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return out, nil
}
