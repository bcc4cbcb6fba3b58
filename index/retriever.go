package index

import (
	"context"
	"strings"

	"github.com/fwojciec/docqa"
)

// Ensure Retriever implements docqa.Retriever at compile time.
var _ docqa.Retriever = (*Retriever)(nil)

// Retriever answers similarity queries against an Indexer's store.
type Retriever struct {
	ix *Indexer

	// MinSimilarity drops results whose cosine similarity is below it.
	// Zero disables the threshold.
	MinSimilarity float64
}

// NewRetriever creates a Retriever over ix.
func NewRetriever(ix *Indexer, minSimilarity float64) *Retriever {
	return &Retriever{ix: ix, MinSimilarity: minSimilarity}
}

// MaxDistance is the largest distance a result may have.
func (r *Retriever) MaxDistance() float64 {
	return 1 - r.MinSimilarity
}

// Retrieve embeds query and returns at most k chunks ordered by ascending
// cosine distance. A missing or empty index yields no results. The query
// vector is checked against the stored dimension before searching.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]docqa.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "query required")
	}
	if k <= 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "k must be positive")
	}

	r.ix.mu.RLock()
	defer r.ix.mu.RUnlock()

	meta, err := r.ix.Store.FindMeta(ctx)
	if docqa.ErrorCode(err) == docqa.ENOTFOUND {
		return []docqa.SearchResult{}, nil
	} else if err != nil {
		return nil, err
	}

	vector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vector) != meta.Dimension {
		return nil, docqa.Errorf(docqa.EMISMATCH,
			"query embedding has dimension %d, index has %d", len(vector), meta.Dimension)
	}

	results, err := r.ix.Store.Search(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	kept := make([]docqa.SearchResult, 0, len(results))
	for _, res := range results {
		if r.MinSimilarity > 0 && res.Distance > r.MaxDistance() {
			continue
		}
		kept = append(kept, res)
		if len(kept) == k {
			break
		}
	}
	return kept, nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if qe, ok := r.ix.Embedder.(docqa.QueryEmbedder); ok {
		return qe.EmbedQuery(ctx, query)
	}
	vectors, err := r.ix.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, docqa.Errorf(docqa.EEMBED, "got %d embeddings for one query", len(vectors))
	}
	return vectors[0], nil
}
