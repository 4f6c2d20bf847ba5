package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

const DefaultSnapshotName = "appointments"

// DB is the part of *pgxpool.Pool the sink uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresSink keeps the snapshot as one jsonb row in appointment_snapshots.
type PostgresSink struct {
	pool DB
	name string
}

func NewPostgresSink(pool DB, name string) *PostgresSink {
	if name == "" {
		name = DefaultSnapshotName
	}
	return &PostgresSink{pool: pool, name: name}
}

// EnsureSchema creates the snapshot table if it is missing.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS appointment_snapshots (
			name       TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create appointment_snapshots: %w", err)
	}
	return nil
}

func (s *PostgresSink) Write(ctx context.Context, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointment_snapshots (name, payload, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload,
		    updated_at = EXCLUDED.updated_at
	`, s.name, string(data))
	if err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", s.name, err)
	}
	return nil
}

func (s *PostgresSink) Read(ctx context.Context) ([]byte, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT payload::text
		FROM appointment_snapshots
		WHERE name = $1
	`, s.name)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appointment.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("select snapshot %s: %w", s.name, err)
	}
	return []byte(payload), nil
}

func (s *PostgresSink) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
