package service

import (
	"context"
	"time"

	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/postboard-dev/postboard/shared/middleware/metrics"
)

type CommentService interface {
	Append(ctx context.Context, principal domain.Principal, postId domain.PostId, content string) ([]domain.Comment, error)
}

type Comment struct {
	storage CommentStorage
	now     func() time.Time
}

func NewComment(storage CommentStorage) *Comment {
	return &Comment{storage: storage, now: now}
}

// Append stores the comment, then counts a view as a second, independent
// write. A failed view increment is logged and does not undo the comment.
func (s *Comment) Append(ctx context.Context, principal domain.Principal, postId domain.PostId, content string) ([]domain.Comment, error) {
	if principal.IsZero() {
		return nil, errors.Unauthenticated("Please sign-in")
	}
	if err := ValidateId(postId, "post"); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	content = checkText(content, commentMaxLen, "content", fields)
	if err := validationResult(fields); err != nil {
		return nil, err
	}

	comments, err := s.storage.AppendComment(ctx, postId, domain.Comment{
		Author:    principal.UserId,
		Content:   content,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	metrics.CommentsAppended.Inc()

	if _, err := s.storage.IncrementViews(ctx, postId); err != nil {
		metrics.ViewIncrementFailures.Inc()
		logger.Log.Warn("view increment after comment failed", "component", "comment_service", "post_id", postId, "error", err)
	}

	return comments, nil
}
