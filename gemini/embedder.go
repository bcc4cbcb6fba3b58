package gemini

import (
	"context"
	"errors"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = "gemini-embedding-001"

// Task types understood by the embedding endpoint.
const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var (
	_ docqa.Embedder      = (*Embedder)(nil)
	_ docqa.QueryEmbedder = (*Embedder)(nil)
)

// Embedder implements docqa.Embedder using Gemini embedding models.
// Documents and queries are embedded with their respective retrieval task
// types.
type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewEmbedder creates a new Embedder. A positive dimension truncates the
// output vectors; zero keeps the model's native size.
func NewEmbedder(client *genai.Client, model string, dimension int) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, dimension: dimension}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns one document vector per text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts, taskDocument)
}

// EmbedQuery returns the vector of a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{query}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{TaskType: task}
	if e.dimension > 0 {
		dim := int32(e.dimension)
		config.OutputDimensionality = &dim
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, docqa.Errorf(docqa.EEMBED, "gemini embed: %d %s", apiErr.Code, apiErr.Message)
		}
		return nil, docqa.Errorf(docqa.EEMBED, "gemini embed: %v", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, docqa.Errorf(docqa.EEMBED, "gemini embed: got %d embeddings for %d texts", got, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, docqa.Errorf(docqa.EEMBED, "gemini embed: empty embedding at %d", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}
