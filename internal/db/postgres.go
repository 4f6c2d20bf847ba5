package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the pool. Snapshot writes are one row at a time, so the
// defaults are small.
type PoolOptions struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.ApplicationName == "" {
		o.ApplicationName = "clinic-appointments"
	}
	if o.MaxConns <= 0 {
		o.MaxConns = 4
	}
	return o
}

// ConnectPostgres opens a pool and checks it answers before returning.
func ConnectPostgres(ctx context.Context, opts PoolOptions) (*pgxpool.Pool, error) {
	opts = opts.withDefaults()

	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = opts.MaxConns
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = time.Hour
	cfg.ConnConfig.RuntimeParams["application_name"] = opts.ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}
