// Package cache puts Redis in front of read-mostly storage lookups.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to addr, which may be host:port or a redis:// URL.
func NewRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Log.Info("redis connected", "component", "cache", "addr", opts.Addr)
	return client, nil
}
