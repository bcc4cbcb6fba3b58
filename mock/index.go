package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docqa.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
	ModelFn func() string
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}

var _ docqa.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of docqa.IndexStore.
type IndexStore struct {
	UpsertChunksFn func(ctx context.Context, chunks []*docqa.Chunk) error
	SearchFn       func(ctx context.Context, vector []float32, k int) ([]docqa.SearchResult, error)
	CountChunksFn  func(ctx context.Context) (int, error)
	ClearChunksFn  func(ctx context.Context) error
	FindMetaFn     func(ctx context.Context) (*docqa.IndexMeta, error)
	SaveMetaFn     func(ctx context.Context, meta *docqa.IndexMeta) error
}

func (s *IndexStore) UpsertChunks(ctx context.Context, chunks []*docqa.Chunk) error {
	return s.UpsertChunksFn(ctx, chunks)
}

func (s *IndexStore) Search(ctx context.Context, vector []float32, k int) ([]docqa.SearchResult, error) {
	return s.SearchFn(ctx, vector, k)
}

func (s *IndexStore) CountChunks(ctx context.Context) (int, error) {
	return s.CountChunksFn(ctx)
}

func (s *IndexStore) ClearChunks(ctx context.Context) error {
	return s.ClearChunksFn(ctx)
}

func (s *IndexStore) FindMeta(ctx context.Context) (*docqa.IndexMeta, error) {
	return s.FindMetaFn(ctx)
}

func (s *IndexStore) SaveMeta(ctx context.Context, meta *docqa.IndexMeta) error {
	return s.SaveMetaFn(ctx, meta)
}

var _ docqa.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of docqa.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, query string, k int) ([]docqa.SearchResult, error)
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]docqa.SearchResult, error) {
	return r.RetrieveFn(ctx, query, k)
}

var _ docqa.Chunker = (*Chunker)(nil)

// Chunker is a mock implementation of docqa.Chunker.
type Chunker struct {
	ChunkFn func(page *docqa.Page) []*docqa.Chunk
}

func (c *Chunker) Chunk(page *docqa.Page) []*docqa.Chunk {
	return c.ChunkFn(page)
}
