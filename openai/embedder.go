package openai

import (
	"context"

	"github.com/fwojciec/docqa"
	openai "github.com/sashabaranov/go-openai"
)

var _ docqa.Embedder = (*Embedder)(nil)

// Embedder implements docqa.Embedder with the embeddings API.
type Embedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// NewEmbedder creates a new Embedder. A positive dimension is requested
// from the server and checked on every returned vector.
func NewEmbedder(client *openai.Client, model string, dimension int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimension: dimension}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns one vector per text in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(e.model),
		Input:      texts,
		Dimensions: e.dimension,
	})
	if err != nil {
		return nil, translate(docqa.EEMBED, "openai embed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, docqa.Errorf(docqa.EEMBED, "openai embed: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, datum := range resp.Data {
		if datum.Index < 0 || datum.Index >= len(texts) || out[datum.Index] != nil {
			return nil, docqa.Errorf(docqa.EEMBED, "openai embed: unexpected index %d", datum.Index)
		}
		if e.dimension > 0 && len(datum.Embedding) != e.dimension {
			return nil, docqa.Errorf(docqa.EMISMATCH, "openai embed: expected dimension %d, got %d", e.dimension, len(datum.Embedding))
		}
		out[datum.Index] = datum.Embedding
	}
	return out, nil
}
