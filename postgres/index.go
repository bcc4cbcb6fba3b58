package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

var _ docqa.IndexStore = (*IndexStore)(nil)

// IndexStore implements docqa.IndexStore using pgvector. Search is exact:
// rows are ordered by cosine distance and then by insertion sequence.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates a new IndexStore.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

// UpsertChunks writes chunks in one transaction. Existing rows keep their
// insertion sequence.
func (s *IndexStore) UpsertChunks(ctx context.Context, chunks []*docqa.Chunk) error {
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if len(c.Embedding) == 0 {
			return docqa.Errorf(docqa.EINVALID, "chunk %s has no embedding", c.ID)
		}
	}

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
			INSERT INTO docqa_chunks (id, source_url, title, heading, content, position, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				source_url = EXCLUDED.source_url,
				title = EXCLUDED.title,
				heading = EXCLUDED.heading,
				content = EXCLUDED.content,
				position = EXCLUDED.position,
				embedding = EXCLUDED.embedding
		`, c.ID, c.SourceURL, c.Title, c.Heading, c.Content, c.Position, pgvector.NewVector(c.Embedding))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Search returns the k nearest chunks by cosine distance.
func (s *IndexStore) Search(ctx context.Context, vector []float32, k int) ([]docqa.SearchResult, error) {
	results := make([]docqa.SearchResult, 0, max(k, 0))
	if k <= 0 {
		return results, nil
	}

	rows, err := s.db.pool.Query(ctx, `
		SELECT id, source_url, title, heading, content, position, embedding,
			embedding <=> $1 AS distance
		FROM docqa_chunks
		ORDER BY distance ASC, seq ASC
		LIMIT $2
	`, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c docqa.Chunk
		var emb pgvector.Vector
		var distance float64
		if err := rows.Scan(&c.ID, &c.SourceURL, &c.Title, &c.Heading, &c.Content, &c.Position, &emb, &distance); err != nil {
			return nil, err
		}
		c.Embedding = emb.Slice()
		results = append(results, docqa.SearchResult{Chunk: &c, Distance: distance})
	}
	return results, rows.Err()
}

// CountChunks returns the number of stored chunks.
func (s *IndexStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	err := s.db.pool.QueryRow(ctx, "SELECT COUNT(*) FROM docqa_chunks").Scan(&n)
	return n, err
}

// ClearChunks removes every chunk and the index metadata.
func (s *IndexStore) ClearChunks(ctx context.Context) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "TRUNCATE docqa_chunks RESTART IDENTITY"); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM docqa_index_meta"); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindMeta returns the index metadata, or ENOTFOUND before the first build.
func (s *IndexStore) FindMeta(ctx context.Context) (*docqa.IndexMeta, error) {
	var meta docqa.IndexMeta
	err := s.db.pool.QueryRow(ctx, `
		SELECT fingerprint, model, dimension, chunk_count, built_at
		FROM docqa_index_meta
		WHERE id = 1
	`).Scan(&meta.Fingerprint, &meta.Model, &meta.Dimension, &meta.ChunkCount, &meta.BuiltAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "index metadata not found")
	}
	if err != nil {
		return nil, err
	}
	meta.BuiltAt = meta.BuiltAt.UTC()
	return &meta, nil
}

// SaveMeta replaces the index metadata. A zero BuiltAt is set to now.
func (s *IndexStore) SaveMeta(ctx context.Context, meta *docqa.IndexMeta) error {
	if meta.Fingerprint == "" {
		return docqa.Errorf(docqa.EINVALID, "index fingerprint required")
	}
	if meta.Dimension <= 0 {
		return docqa.Errorf(docqa.EINVALID, "index dimension must be positive")
	}
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = time.Now().UTC()
	}

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO docqa_index_meta (id, fingerprint, model, dimension, chunk_count, built_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			model = EXCLUDED.model,
			dimension = EXCLUDED.dimension,
			chunk_count = EXCLUDED.chunk_count,
			built_at = EXCLUDED.built_at
	`, meta.Fingerprint, meta.Model, meta.Dimension, meta.ChunkCount, meta.BuiltAt)
	return err
}
