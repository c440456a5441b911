package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool configures and returns a PostgreSQL connection pool.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// schema holds the tables backing the points journal, credentials and bookings.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS credentials (
        email         TEXT PRIMARY KEY,
        password_hash BYTEA NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS points_entries (
        id            UUID PRIMARY KEY,
        client_tx_id  TEXT NOT NULL,
        kind          TEXT NOT NULL,
        user_id       TEXT NOT NULL,
        reward_id     TEXT NOT NULL DEFAULT '',
        points        BIGINT NOT NULL,
        balance_after BIGINT NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL,
        UNIQUE (kind, client_tx_id)
    )`,
	`CREATE INDEX IF NOT EXISTS points_entries_user_idx ON points_entries (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS bookings (
        id         UUID PRIMARY KEY,
        user_id    TEXT NOT NULL,
        user_name  TEXT NOT NULL,
        user_phone TEXT NOT NULL DEFAULT '',
        service    TEXT NOT NULL,
        date       TEXT NOT NULL,
        time_slot  TEXT NOT NULL,
        notes      TEXT NOT NULL DEFAULT '',
        status     TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, created_at)`,
}

// EnsureSchema creates the application tables when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
