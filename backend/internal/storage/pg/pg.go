package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/postboard-dev/postboard/shared/logger"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
)

//go:embed migrations/init.sql
var schema string

type Storage struct {
	db *sql.DB
}

// New connects to dsn and applies the schema.
func New(ctx context.Context, dsn string, connCfg sharedpg.ConnectionConfig) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "component", "pg")
	db, err := sharedpg.Connect(ctx, dsn, connCfg)
	if err != nil {
		return nil, err
	}
	s := &Storage{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Log.Info("connected to postgres", "component", "pg")
	return s, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
