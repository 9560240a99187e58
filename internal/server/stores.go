package server

import (
	"context"
	"fmt"

	"github.com/emilythestrangee/blogfeed/backend/internal/cache"
	"github.com/emilythestrangee/blogfeed/backend/internal/config"
	"github.com/emilythestrangee/blogfeed/backend/internal/logger"
	"github.com/emilythestrangee/blogfeed/backend/internal/media"
)

// NewCacheStore opens the configured page cache backend. The returned close
// function releases its connections.
func NewCacheStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, func() error, error) {
	switch cfg.Backend {
	case "memory", "":
		return cache.NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		store := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Log.WithField("addr", cfg.RedisAddr).Info("page cache backed by redis")
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewMediaStore returns where uploaded images are written.
func NewMediaStore(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	switch cfg.Backend {
	case "local", "":
		return media.NewLocalStore(cfg.Dir, cfg.URL), nil
	case "s3":
		return media.NewS3Store(ctx, media.S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Backend)
	}
}
