package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/fwojciec/docqa"
)

// Compile-time interface verification.
var _ docqa.IndexStore = (*IndexStore)(nil)

// IndexStore implements docqa.IndexStore using SQLite. Search is an exact
// scan over all stored vectors, which is adequate for a single
// documentation corpus.
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

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source_url, title, heading, content, position, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_url = excluded.source_url,
			title = excluded.title,
			heading = excluded.heading,
			content = excluded.content,
			position = excluded.position,
			embedding = excluded.embedding
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		blob, err := encodeVector(c.Embedding)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.SourceURL, c.Title, c.Heading, c.Content, c.Position, blob); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Search scans every chunk in insertion order and returns the k nearest by
// cosine distance. The stable sort keeps insertion order among ties.
func (s *IndexStore) Search(ctx context.Context, vector []float32, k int) ([]docqa.SearchResult, error) {
	if k <= 0 {
		return []docqa.SearchResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_url, title, heading, content, position, embedding
		FROM chunks
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []docqa.SearchResult
	for rows.Next() {
		var c docqa.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.SourceURL, &c.Title, &c.Heading, &c.Content, &c.Position, &blob); err != nil {
			return nil, err
		}
		if c.Embedding, err = decodeVector(blob); err != nil {
			return nil, err
		}
		results = append(results, docqa.SearchResult{
			Chunk:    &c,
			Distance: docqa.CosineDistance(vector, c.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b docqa.SearchResult) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	if len(results) > k {
		results = results[:k]
	}
	if results == nil {
		results = []docqa.SearchResult{}
	}
	return results, nil
}

// CountChunks returns the number of stored chunks.
func (s *IndexStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// ClearChunks removes every chunk and the index metadata.
func (s *IndexStore) ClearChunks(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return err
	}
	return tx.Commit()
}

// FindMeta returns the index metadata, or ENOTFOUND before the first build.
func (s *IndexStore) FindMeta(ctx context.Context) (*docqa.IndexMeta, error) {
	var meta docqa.IndexMeta
	var builtAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, model, dimension, chunk_count, built_at
		FROM index_meta
		WHERE id = 1
	`).Scan(&meta.Fingerprint, &meta.Model, &meta.Dimension, &meta.ChunkCount, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "index metadata not found")
	}
	if err != nil {
		return nil, err
	}

	if meta.BuiltAt, err = parseTime(builtAt, "built_at"); err != nil {
		return nil, err
	}
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_meta (id, fingerprint, model, dimension, chunk_count, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			model = excluded.model,
			dimension = excluded.dimension,
			chunk_count = excluded.chunk_count,
			built_at = excluded.built_at
	`, meta.Fingerprint, meta.Model, meta.Dimension, meta.ChunkCount, meta.BuiltAt.Format(timeFormat))
	return err
}
