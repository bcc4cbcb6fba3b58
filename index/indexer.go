// Package index embeds chunks into a persistent store and serves
// nearest-neighbor retrieval over it.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docqa"
	"golang.org/x/sync/errgroup"
)

// Defaults used when the Indexer fields are zero.
const (
	DefaultBatchSize   = 16
	DefaultConcurrency = 2
)

// Indexer embeds chunks in batches and writes them to a store. Queries
// through a Retriever take a read lock; Build, Rebuild, Retry and Clear take
// the write lock, so a rebuild never overlaps live queries.
type Indexer struct {
	Store    docqa.IndexStore
	Embedder docqa.Embedder
	Logger   *slog.Logger

	BatchSize   int
	Concurrency int
	// Dimension, when set, is the vector size every embedding must have.
	Dimension int

	mu sync.RWMutex
}

// Batch is a half-open range [Start, End) into the chunks given to Build.
type Batch struct {
	Start int
	End   int
}

func (b Batch) String() string {
	return fmt.Sprintf("[%d,%d)", b.Start, b.End)
}

// BatchFailure records a batch that could not be embedded or stored.
type BatchFailure struct {
	Batch
	Err error
}

// BuildResult summarizes a build.
type BuildResult struct {
	Indexed       int // chunks embedded and stored
	Dimension     int // vector size observed, 0 if nothing was embedded
	FailedBatches []BatchFailure
	Duration      time.Duration
}

// Err returns nil when every batch succeeded. Otherwise it returns EEMBED
// listing the failed ranges, or EMISMATCH when any failure was a dimension
// mismatch.
func (r *BuildResult) Err() error {
	if len(r.FailedBatches) == 0 {
		return nil
	}
	code := docqa.EEMBED
	ranges := make([]string, len(r.FailedBatches))
	for i, f := range r.FailedBatches {
		ranges[i] = f.Batch.String()
		if docqa.ErrorCode(f.Err) == docqa.EMISMATCH {
			code = docqa.EMISMATCH
		}
	}
	return docqa.Errorf(code, "%d batch(es) failed %s: %s",
		len(r.FailedBatches), strings.Join(ranges, " "), docqa.ErrorMessage(r.FailedBatches[0].Err))
}

// Build embeds and upserts chunks. A failed batch does not stop the
// others and leaves already written chunks untouched. Once every batch has
// succeeded the index metadata is recorded under fingerprint. The returned
// result is never nil; the error is BuildResult.Err or a context error.
func (ix *Indexer) Build(ctx context.Context, fingerprint string, chunks []*docqa.Chunk) (*BuildResult, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	res, err := ix.build(ctx, chunks, ix.batches(len(chunks)))
	if err != nil {
		return res, err
	}
	return res, ix.saveMeta(ctx, fingerprint, res.Dimension)
}

// Retry re-runs only the failed batches of an earlier build over the same
// chunks. When all of them succeed, the index metadata is recorded under
// fingerprint.
func (ix *Indexer) Retry(ctx context.Context, fingerprint string, chunks []*docqa.Chunk, failed []BatchFailure) (*BuildResult, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batches := make([]Batch, 0, len(failed))
	for _, f := range failed {
		if f.Start < 0 || f.End > len(chunks) || f.Start >= f.End {
			return nil, docqa.Errorf(docqa.EINVALID, "batch %s out of range", f.Batch)
		}
		batches = append(batches, f.Batch)
	}

	res, err := ix.build(ctx, chunks, batches)
	if err != nil {
		return res, err
	}
	return res, ix.saveMeta(ctx, fingerprint, res.Dimension)
}

// Rebuild clears the store, builds the index from chunks and records
// fingerprint. Metadata is saved only after every batch succeeded, so an
// interrupted rebuild reads as no index at all.
func (ix *Indexer) Rebuild(ctx context.Context, fingerprint string, chunks []*docqa.Chunk) (*BuildResult, error) {
	if len(chunks) == 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "nothing to index: no chunks")
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.Store.ClearChunks(ctx); err != nil {
		return nil, fmt.Errorf("clear index: %w", err)
	}
	res, err := ix.build(ctx, chunks, ix.batches(len(chunks)))
	if err != nil {
		return res, err
	}
	return res, ix.saveMeta(ctx, fingerprint, res.Dimension)
}

// Load returns the metadata of the persisted index with a fresh chunk
// count. Returns ENOTFOUND when the index was never completed or is empty.
func (ix *Indexer) Load(ctx context.Context) (*docqa.IndexMeta, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	meta, err := ix.Store.FindMeta(ctx)
	if err != nil {
		return nil, err
	}
	n, err := ix.Store.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "index is empty")
	}
	meta.ChunkCount = n
	return meta, nil
}

// Clear removes every chunk and the index metadata.
func (ix *Indexer) Clear(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.Store.ClearChunks(ctx)
}

// ChunkSource produces the chunks of a fresh crawl.
type ChunkSource func(ctx context.Context) ([]*docqa.Chunk, error)

// EnsureResult reports what Ensure did.
type EnsureResult struct {
	Meta    *docqa.IndexMeta
	Rebuilt bool
	Build   *BuildResult // nil unless Rebuilt
}

// Ensure reuses the persisted index when its fingerprint matches and force
// is false. Otherwise it pulls chunks from source and rebuilds.
func (ix *Indexer) Ensure(ctx context.Context, fingerprint string, force bool, source ChunkSource) (*EnsureResult, error) {
	logger := ix.logger()
	if !force {
		meta, err := ix.Load(ctx)
		switch {
		case err == nil && meta.Fingerprint == fingerprint:
			logger.Info("index reused", "fingerprint", fingerprint, "chunks", meta.ChunkCount)
			return &EnsureResult{Meta: meta}, nil
		case err == nil:
			logger.Info("index stale", "stored", meta.Fingerprint, "current", fingerprint)
		case docqa.ErrorCode(err) == docqa.ENOTFOUND:
			logger.Info("index missing", "reason", docqa.ErrorMessage(err))
		default:
			return nil, err
		}
	}

	chunks, err := source(ctx)
	if err != nil {
		return nil, err
	}
	res, err := ix.Rebuild(ctx, fingerprint, chunks)
	if err != nil {
		return &EnsureResult{Build: res, Rebuilt: true}, err
	}
	meta, err := ix.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &EnsureResult{Meta: meta, Rebuilt: true, Build: res}, nil
}

// build runs batches on a bounded pool. The pool has no shared context so
// one failed batch does not cancel the rest. Must be called with mu held.
func (ix *Indexer) build(ctx context.Context, chunks []*docqa.Chunk, batches []Batch) (*BuildResult, error) {
	logger := ix.logger()
	begin := time.Now()

	var (
		mu        sync.Mutex
		res       = &BuildResult{}
		dimension = ix.Dimension
	)
	fail := func(b Batch, err error) {
		mu.Lock()
		defer mu.Unlock()
		res.FailedBatches = append(res.FailedBatches, BatchFailure{Batch: b, Err: err})
		logger.Warn("batch failed", "batch", b.String(), "err", err)
	}

	var g errgroup.Group
	g.SetLimit(ix.concurrency())
	for _, b := range batches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fail(b, err)
				return nil
			}
			batch := chunks[b.Start:b.End]
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = embeddingText(c)
			}

			vectors, err := ix.Embedder.Embed(ctx, texts)
			if err != nil {
				fail(b, err)
				return nil
			}
			if len(vectors) != len(batch) {
				fail(b, docqa.Errorf(docqa.EEMBED, "got %d embeddings for %d chunks", len(vectors), len(batch)))
				return nil
			}

			mu.Lock()
			for _, v := range vectors {
				if dimension == 0 {
					dimension = len(v)
				}
				if len(v) != dimension {
					mu.Unlock()
					fail(b, docqa.Errorf(docqa.EMISMATCH, "embedding dimension %d, expected %d", len(v), dimension))
					return nil
				}
			}
			mu.Unlock()

			for i, c := range batch {
				c.Embedding = vectors[i]
			}
			if err := ix.Store.UpsertChunks(ctx, batch); err != nil {
				fail(b, fmt.Errorf("store batch %s: %w", b, err))
				return nil
			}

			mu.Lock()
			res.Indexed += len(batch)
			mu.Unlock()
			logger.Debug("batch indexed", "batch", b.String())
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(res.FailedBatches, func(a, b BatchFailure) int { return a.Start - b.Start })
	if res.Indexed > 0 {
		res.Dimension = dimension
	}
	res.Duration = time.Since(begin)
	logger.Info("index build finished",
		"indexed", res.Indexed,
		"failed_batches", len(res.FailedBatches),
		"duration", res.Duration,
	)

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, res.Err()
}

// saveMeta records the completed index. Must be called with mu held.
func (ix *Indexer) saveMeta(ctx context.Context, fingerprint string, dimension int) error {
	if dimension == 0 {
		// A retry that re-embedded nothing keeps the stored dimension.
		if meta, err := ix.Store.FindMeta(ctx); err == nil {
			dimension = meta.Dimension
		} else {
			dimension = ix.Dimension
		}
	}
	n, err := ix.Store.CountChunks(ctx)
	if err != nil {
		return err
	}
	return ix.Store.SaveMeta(ctx, &docqa.IndexMeta{
		Fingerprint: fingerprint,
		Model:       ix.Embedder.Model(),
		Dimension:   dimension,
		ChunkCount:  n,
		BuiltAt:     time.Now().UTC(),
	})
}

func (ix *Indexer) batches(n int) []Batch {
	size := ix.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out []Batch
	for start := 0; start < n; start += size {
		out = append(out, Batch{Start: start, End: min(start+size, n)})
	}
	return out
}

func (ix *Indexer) concurrency() int {
	if ix.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return ix.Concurrency
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ix.Logger
}

// embeddingText prefixes chunk content with its page title and heading so
// the vector carries the context a reader would see.
func embeddingText(c *docqa.Chunk) string {
	var parts []string
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.Heading != "" && c.Heading != c.Title {
		parts = append(parts, c.Heading)
	}
	parts = append(parts, c.Content)
	return strings.Join(parts, "\n\n")
}
