package slog_test

import (
	"context"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/mock"
	docqaslog "github.com/fwojciec/docqa/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queryEmbedder encodes queries differently from documents.
type queryEmbedder struct {
	mock.Embedder
}

func (queryEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0, 0, 1}, nil
}

func TestLoggingEmbedder(t *testing.T) {
	t.Parallel()

	embed := func(_ context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0, 0}
		}
		return out, nil
	}
	model := func() string { return "nomic-embed-text" }

	t.Run("logs batches", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		emb := docqaslog.NewLoggingEmbedder(&mock.Embedder{EmbedFn: embed, ModelFn: model}, logger)

		vecs, err := emb.Embed(context.Background(), []string{"a", "b"})

		require.NoError(t, err)
		assert.Len(t, vecs, 2)
		assert.Equal(t, "nomic-embed-text", emb.Model())
		output := buf.String()
		assert.Contains(t, output, "model=nomic-embed-text")
		assert.Contains(t, output, "texts=2")
		assert.Contains(t, output, "dimension=3")
	})

	t.Run("prefers the wrapped query encoding", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &queryEmbedder{mock.Embedder{EmbedFn: embed, ModelFn: model}}
		emb := docqaslog.NewLoggingEmbedder(inner, logger)

		vec, err := emb.EmbedQuery(context.Background(), "What is Spark?")

		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0, 1}, vec)
		assert.Contains(t, buf.String(), "embed query")
	})

	t.Run("falls back to document encoding", func(t *testing.T) {
		t.Parallel()

		logger, _ := newLogger()
		emb := docqaslog.NewLoggingEmbedder(&mock.Embedder{EmbedFn: embed, ModelFn: model}, logger)

		vec, err := emb.EmbedQuery(context.Background(), "What is Spark?")

		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, vec)
	})

	t.Run("passes errors through", func(t *testing.T) {
		t.Parallel()

		logger, buf := newLogger()
		inner := &mock.Embedder{
			EmbedFn: func(context.Context, []string) ([][]float32, error) {
				return nil, docqa.Errorf(docqa.EEMBED, "quota exceeded")
			},
			ModelFn: model,
		}

		_, err := docqaslog.NewLoggingEmbedder(inner, logger).EmbedQuery(context.Background(), "q")

		assert.Equal(t, docqa.EEMBED, docqa.ErrorCode(err))
		assert.Contains(t, buf.String(), "quota exceeded")
	})
}
