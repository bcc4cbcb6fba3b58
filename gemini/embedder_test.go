package gemini_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns one vector per text", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{response: `{"embeddings":[{"values":[0.1,0.2,0.3]},{"values":[0.4,0.5,0.6]}]}`}
		emb := gemini.NewEmbedder(newClient(t, api), "", 3)

		vecs, err := emb.Embed(context.Background(), []string{"Spark SQL", "dbt models"})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}, vecs)
		assert.Equal(t, gemini.DefaultEmbeddingModel, emb.Model())
		assert.Contains(t, api.lastPath(), ":batchEmbedContents")

		requests, ok := api.lastBody()["requests"].([]any)
		require.True(t, ok)
		require.Len(t, requests, 2)
		first, ok := requests[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "RETRIEVAL_DOCUMENT", first["taskType"])
		assert.EqualValues(t, 3, first["outputDimensionality"])
	})

	t.Run("embeds queries with the query task type", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{response: `{"embeddings":[{"values":[1,0]}]}`}
		emb := gemini.NewEmbedder(newClient(t, api), "text-embedding-004", 0)

		vec, err := emb.EmbedQuery(context.Background(), "What is Spark?")

		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, vec)
		assert.Equal(t, "text-embedding-004", emb.Model())

		requests, ok := api.lastBody()["requests"].([]any)
		require.True(t, ok)
		first, ok := requests[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "RETRIEVAL_QUERY", first["taskType"])
		assert.NotContains(t, first, "outputDimensionality")
	})

	t.Run("reports a short response as EEMBED", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{response: `{"embeddings":[{"values":[0.1]}]}`}
		emb := gemini.NewEmbedder(newClient(t, api), "", 0)

		_, err := emb.Embed(context.Background(), []string{"a", "b"})

		assert.Equal(t, docqa.EEMBED, docqa.ErrorCode(err))
	})

	t.Run("reports API errors as EEMBED", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{status: http.StatusBadRequest, response: errorBody(400, "quota exceeded")}
		emb := gemini.NewEmbedder(newClient(t, api), "", 0)

		_, err := emb.Embed(context.Background(), []string{"a"})

		assert.Equal(t, docqa.EEMBED, docqa.ErrorCode(err))
		assert.Contains(t, docqa.ErrorMessage(err), "quota exceeded")
	})

	t.Run("empty input makes no request", func(t *testing.T) {
		t.Parallel()

		vecs, err := gemini.NewEmbedder(nil, "", 0).Embed(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, vecs)
	})
}
