package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/docqa"
	main "github.com/fwojciec/docqa/cmd/docqa"
	"github.com/fwojciec/docqa/index"
	"github.com/fwojciec/docqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusStore(meta *docqa.IndexMeta) *mock.IndexStore {
	return &mock.IndexStore{
		FindMetaFn: func(context.Context) (*docqa.IndexMeta, error) {
			if meta == nil {
				return nil, docqa.Errorf(docqa.ENOTFOUND, "index not built")
			}
			m := *meta
			return &m, nil
		},
		CountChunksFn: func(context.Context) (int, error) { return 42, nil },
	}
}

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	built := &docqa.IndexMeta{
		Fingerprint: "abc123",
		Model:       "gemini-embedding-001",
		Dimension:   768,
		BuiltAt:     time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}

	t.Run("shows a current index", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Fingerprint: "abc123",
			Indexer:     &index.Indexer{Store: statusStore(built)},
		}

		require.NoError(t, (&main.StatusCmd{}).Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "abc123 (current)")
		assert.Contains(t, out, "gemini-embedding-001")
		assert.Contains(t, out, "768")
		assert.Contains(t, out, "Chunks:       42")
	})

	t.Run("flags a stale index", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Fingerprint: "def456",
			Indexer:     &index.Indexer{Store: statusStore(built)},
		}

		require.NoError(t, (&main.StatusCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "abc123 (stale")
	})

	t.Run("explains how to build a missing index", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Indexer: &index.Indexer{Store: statusStore(nil)},
		}

		require.NoError(t, (&main.StatusCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "docqa index")
	})
}
