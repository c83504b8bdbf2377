package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores history as a JSONB row in PostgreSQL.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and ensures the table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, Key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return value, nil
}

func (p *PostgresBackend) Save(ctx context.Context, data []byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO kv_store (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		Key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
