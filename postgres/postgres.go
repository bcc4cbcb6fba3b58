// Package postgres implements docqa.IndexStore on PostgreSQL with the
// pgvector extension.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const schema = `
CREATE TABLE IF NOT EXISTS docqa_chunks (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	source_url TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	heading    TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL,
	position   INTEGER NOT NULL,
	embedding  vector NOT NULL
);

CREATE INDEX IF NOT EXISTS docqa_chunks_source_url_idx ON docqa_chunks(source_url);

CREATE TABLE IF NOT EXISTS docqa_index_meta (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	fingerprint TEXT NOT NULL,
	model       TEXT NOT NULL,
	dimension   INTEGER NOT NULL,
	chunk_count INTEGER NOT NULL,
	built_at    TIMESTAMPTZ NOT NULL
);
`

// DB wraps a pgx connection pool with vector types registered.
type DB struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, enables the vector extension and applies the schema.
func Open(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	// The vector type must exist before pooled connections register it.
	conn, err := pgx.ConnectConfig(ctx, cfg.ConnConfig.Copy())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	_, err = conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	_ = conn.Close(ctx)
	if err != nil {
		return nil, fmt.Errorf("enable vector extension: %w", err)
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the pool.
func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
