package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresKV keeps each key as one row of the kv_store table.
type PostgresKV struct {
	db *pgxpool.Pool
}

// NewPostgres builds a PostgreSQL-backed store. Call EnsureSchema once before use.
func NewPostgres(db *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{db: db}
}

// EnsureSchema creates the kv_store table if it does not exist.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, kvSchema)
	return err
}

// Get returns the value stored under key or ErrNotFound.
func (p *PostgresKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	if err := p.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts key with value in a single statement.
func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.db.Exec(ctx, `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC())
	return err
}

// Ping checks connectivity.
func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
