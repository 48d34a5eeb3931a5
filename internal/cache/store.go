// Package cache persists per-PDF run results keyed by content fingerprint.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/langlang056/pdf-for-college/internal/config"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Store is the byte-level backend behind ResultCache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// OpenStore builds the backend selected by cfg.Cache.Driver. outputDir is
// the run's output directory; file and default sqlite stores live under it.
func OpenStore(ctx context.Context, cfg *config.Config, outputDir string) (Store, error) {
	cacheDir := filepath.Join(outputDir, cfg.Output.CacheDir)

	switch cfg.Cache.Driver {
	case config.CacheDriverFile:
		return NewFileStore(cacheDir)
	case config.CacheDriverSQLite:
		dsn := cfg.Cache.DSN
		if dsn == "" {
			dsn = filepath.Join(cacheDir, "results.db")
		}
		return OpenSQLStore(ctx, DialectSQLite, dsn)
	case config.CacheDriverPostgres:
		return OpenSQLStore(ctx, DialectPostgres, cfg.Cache.DSN)
	case config.CacheDriverRedis:
		return NewRedisStore(ctx, RedisConfig{
			URL:      cfg.Cache.Redis.URL,
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
}
