package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/postboard-dev/postboard/backend/internal/cache"
	"github.com/postboard-dev/postboard/backend/internal/handler"
	"github.com/postboard-dev/postboard/backend/internal/render"
	"github.com/postboard-dev/postboard/backend/internal/service"
	"github.com/postboard-dev/postboard/backend/internal/storage/fs"
	"github.com/postboard-dev/postboard/backend/internal/storage/memory"
	"github.com/postboard-dev/postboard/backend/internal/storage/mongo"
	"github.com/postboard-dev/postboard/backend/internal/storage/pg"
	"github.com/postboard-dev/postboard/shared/config"
	"github.com/postboard-dev/postboard/shared/jwt"
	"github.com/postboard-dev/postboard/shared/logger"
	mw "github.com/postboard-dev/postboard/shared/middleware"
	"github.com/postboard-dev/postboard/shared/middleware/ratelimiter"
	sharedpg "github.com/postboard-dev/postboard/shared/storage/pg"
	"github.com/redis/go-redis/v9"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Storage service.Storage
	Uploads *fs.Storage
	Redis   *redis.Client
	Handler *handler.Handler
	Auth    *mw.Auth
	Jwt     *jwt.Jwt
	// UploadsGC is started by the caller; Build only constructs it.
	UploadsGC *service.UploadsGC

	// AuthLimiter keys by client ip, WriteLimiter by user.
	AuthLimiter  *ratelimiter.Limiter
	WriteLimiter *ratelimiter.Limiter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Public.Redis.Addr != "" {
		rdb, err = cache.NewRedis(ctx, cfg.Public.Redis.Addr, cfg.RedisPassword())
		if err != nil {
			// the cache is an optimisation; run without it
			logger.Log.Warn("continuing without category cache", "component", "setup", "error", err)
			rdb = nil
		}
	}

	deps, err := Build(cfg, storage, rdb)
	if err != nil {
		storage.Close()
		if rdb != nil {
			rdb.Close()
		}
		return nil, err
	}
	return deps, nil
}

// Build wires services and handlers over an already opened storage. rdb may be nil.
func Build(cfg *config.Config, storage service.Storage, rdb *redis.Client) (*Dependencies, error) {
	uploads, err := fs.New(cfg.Public.UploadsDir)
	if err != nil {
		return nil, err
	}

	var categories service.CategoryStorage = storage
	if rdb != nil {
		categories = cache.NewCategories(storage, rdb, cfg.Public.Redis.CategoryTTL)
	}

	tokens := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	limits := service.PostLimits{DefaultLimit: cfg.Public.PostsPerPage, MaxLimit: cfg.Public.MaxPostsPerPage}

	posts := service.NewPost(storage, categories, uploads, render.New(), limits)
	comments := service.NewComment(storage)
	categoryService := service.NewCategory(categories)
	auth := service.NewAuth(storage, tokens)

	h := handler.New(posts, comments, categoryService, auth, storage, cfg)

	return &Dependencies{
		Config:       cfg,
		Storage:      storage,
		Uploads:      uploads,
		Redis:        rdb,
		Handler:      h,
		Auth:         mw.NewAuth(tokens),
		Jwt:          tokens,
		UploadsGC:    service.NewUploadsGC(storage, uploads, cfg.Public.UploadsGCMinAge),
		AuthLimiter:  ratelimiter.New(cfg.Public.AuthRateLimit, 5, time.Hour),
		WriteLimiter: ratelimiter.New(cfg.Public.WriteRateLimit, 10, time.Hour),
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	switch cfg.Public.Storage {
	case config.StoragePostgres:
		return pg.New(ctx, sharedpg.DSN(cfg), sharedpg.DefaultConnectionConfig())
	case config.StorageMongo:
		return mongo.New(ctx, cfg.MongoURI(), cfg.Public.Mongo.Database)
	case config.StorageMemory:
		logger.Log.Warn("using in-memory storage, data is lost on restart", "component", "setup")
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Public.Storage)
}

// Close releases everything SetupDependencies opened.
func (d *Dependencies) Close() error {
	d.AuthLimiter.Stop()
	d.WriteLimiter.Stop()
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	errs = append(errs, d.Storage.Close())
	return errors.Join(errs...)
}
