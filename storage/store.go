// storage/store.go
package storage

import (
	"context"
	"fmt"
	"strings"

	"chapter-community/config"

	"github.com/rs/zerolog"
)

// DurableStore is the process-independent key/value surface the check-in
// cache and pending-scan slot persist through. Get reports absence with
// ok=false and a nil error. Remove of a missing key is not an error.
type DurableStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}

// Store is a DurableStore that owns a connection or file handle.
type Store interface {
	DurableStore
	Close() error
}

// Key joins a namespace prefix and an identifier.
func Key(prefix string, parts ...string) string {
	all := append([]string{strings.TrimRight(prefix, ":")}, parts...)
	return strings.Join(all, ":")
}

// Open constructs the backend selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config, logger zerolog.Logger) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendMemory:
		s = NewMemoryStore()
	case config.BackendBadger:
		s, err = OpenBadgerStore(cfg.BadgerPath)
	case config.BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case config.BackendPostgres:
		s, err = OpenGormStore(cfg.DatabaseURL)
	case config.BackendR2:
		s, err = NewR2Store(ctx, R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	logger.Info().Str("backend", cfg.StoreBackend).Msg("durable store ready")
	return s, nil
}
