package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/postboard-dev/postboard/shared/domain"
	internal_errors "github.com/postboard-dev/postboard/shared/errors"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
)

func (s *Storage) SaveUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, pass_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.Id, user.Username, user.Email, user.PassHash, user.CreatedAt,
	)
	if err != nil {
		if sharedpg.IsUniqueViolation(err) {
			return internal_errors.Conflict("User already exists")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, pass_hash, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.Id, &u.Username, &u.Email, &u.PassHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
