package infra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/congo_atm/internal/config"
	"github.com/congo-pay/congo_atm/internal/storage"
)

const redisKeyPrefix = "atm:"

// Resources holds the external connections the service was configured with.
// Either field may be nil.
type Resources struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Connect opens every backend that has a URL configured.
func Connect(ctx context.Context, cfg config.Config) (*Resources, error) {
	res := &Resources{}

	if cfg.DatabaseURL != "" {
		db, err := newPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		res.DB = db
	}

	if cfg.RedisURL != "" {
		cache, err := newRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			res.Close(nil)
			return nil, err
		}
		res.Cache = cache
	}

	return res, nil
}

// Storage returns the durable store selected by cfg.StorageBackend.
func (r *Resources) Storage(ctx context.Context, cfg config.Config) (storage.KV, error) {
	switch cfg.StorageBackend {
	case storage.BackendPostgres:
		if r.DB == nil {
			return nil, fmt.Errorf("postgres storage selected without a database connection")
		}
		kv := storage.NewPostgres(r.DB)
		if err := kv.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure kv schema: %w", err)
		}
		return kv, nil
	case storage.BackendRedis:
		if r.Cache == nil {
			return nil, fmt.Errorf("redis storage selected without a redis connection")
		}
		return storage.NewRedis(r.Cache, redisKeyPrefix), nil
	case storage.BackendMemory:
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Close releases every open connection.
func (r *Resources) Close(logger *slog.Logger) {
	if r.DB != nil {
		r.DB.Close()
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && logger != nil {
			logger.Warn("close redis", "error", err)
		}
	}
}
