package docqa

import (
	"context"
	"math"
	"time"
)

// Embedder turns texts into fixed-dimension vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	// Failures are reported as EEMBED.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the embedding model name, recorded in the index metadata.
	Model() string
}

// QueryEmbedder is implemented by embedders that encode search queries
// differently from indexed documents.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// IndexMeta describes a persisted index.
type IndexMeta struct {
	Fingerprint string    `json:"fingerprint"`
	Model       string    `json:"model"`
	Dimension   int       `json:"dimension"`
	ChunkCount  int       `json:"chunkCount"`
	BuiltAt     time.Time `json:"builtAt"`
}

// IndexStore persists embedded chunks and answers nearest-neighbor queries.
type IndexStore interface {
	// UpsertChunks writes chunks keyed by ID. Writing the same chunk twice
	// leaves a single entry and keeps its original insertion order.
	UpsertChunks(ctx context.Context, chunks []*Chunk) error

	// Search returns up to k chunks ordered by ascending cosine distance to
	// vector, ties broken by insertion order.
	Search(ctx context.Context, vector []float32, k int) ([]SearchResult, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// ClearChunks removes every chunk and the index metadata.
	ClearChunks(ctx context.Context) error

	// FindMeta returns the index metadata.
	// Returns ENOTFOUND if the index has never been built.
	FindMeta(ctx context.Context) (*IndexMeta, error)

	// SaveMeta replaces the index metadata.
	SaveMeta(ctx context.Context, meta *IndexMeta) error
}

// SearchResult represents a retrieved chunk and its distance to the query.
type SearchResult struct {
	Chunk    *Chunk  `json:"chunk"`
	Distance float64 `json:"distance"`
}

// Similarity returns the cosine similarity corresponding to Distance.
func (r SearchResult) Similarity() float64 {
	return 1 - r.Distance
}

// Retriever finds the chunks nearest to a natural language query.
type Retriever interface {
	// Retrieve returns at most k results ordered by ascending distance.
	// An empty index yields an empty slice and no error.
	// Returns EMISMATCH if the query embedding does not match the index
	// dimension.
	Retrieve(ctx context.Context, query string, k int) ([]SearchResult, error)
}

// CosineDistance returns 1 - cos(a, b). Vectors of different length or with
// zero magnitude are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
