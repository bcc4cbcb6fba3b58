package docqa_test

import (
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/stretchr/testify/assert"
)

func TestCosineDistance(t *testing.T) {
	t.Parallel()

	t.Run("identical vectors are at distance zero", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 0, docqa.CosineDistance([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-9)
	})

	t.Run("orthogonal vectors are at distance one", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 1, docqa.CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors are at distance two", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 2, docqa.CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	})

	t.Run("mismatched or zero vectors are maximally distant", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 2.0, docqa.CosineDistance([]float32{1, 0}, []float32{1, 0, 0}))
		assert.Equal(t, 2.0, docqa.CosineDistance([]float32{0, 0}, []float32{1, 0}))
		assert.Equal(t, 2.0, docqa.CosineDistance(nil, nil))
	})
}

func TestSearchResult_Similarity(t *testing.T) {
	t.Parallel()

	r := docqa.SearchResult{Distance: 0.25}

	assert.InDelta(t, 0.75, r.Similarity(), 1e-9)
}
