package snapshot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hackgods/clinic-appointments/internal/appointment"
	"github.com/hackgods/clinic-appointments/internal/config"
	"github.com/hackgods/clinic-appointments/internal/db"
	redisclient "github.com/hackgods/clinic-appointments/internal/redis"
)

// Backend is a sink that can also report readiness.
type Backend interface {
	appointment.Sink
	Ping(ctx context.Context) error
}

// Open builds the backend selected by cfg.StorageBackend. The returned
// close func releases any connections and is never nil.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (Backend, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case config.BackendNone:
		log.Info("snapshot persistence disabled")
		return NopSink{}, noop, nil

	case config.BackendRedis:
		rdb, err := redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("snapshot backend: redis", zap.String("addr", cfg.RedisAddr), zap.String("key", cfg.RedisKey))
		return NewRedisSink(rdb, cfg.RedisKey), func() { _ = rdb.Close() }, nil

	case config.BackendPostgres:
		pool, err := db.ConnectPostgres(ctx, db.PoolOptions{DSN: cfg.PostgresDSN})
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		sink := NewPostgresSink(pool, DefaultSnapshotName)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		log.Info("snapshot backend: postgres")
		return sink, pool.Close, nil

	default:
		log.Info("snapshot backend: file", zap.String("path", cfg.SnapshotPath))
		return NewFileSink(cfg.SnapshotPath), noop, nil
	}
}
