package service

import (
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
)

// Authorize allows a mutation only when the principal authored the post.
// It is evaluated against freshly loaded state on every request.
func Authorize(principal domain.Principal, post domain.Post) error {
	if principal.IsZero() {
		return errors.Unauthenticated("Please sign-in")
	}
	if principal.UserId != post.Author {
		return errors.Forbidden("Not authorized to modify this post")
	}
	return nil
}
