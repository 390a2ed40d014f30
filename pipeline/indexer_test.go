package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/mock"
	"github.com/sitedex/sitedex/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexer_EmbedAndIndex(t *testing.T) {
	t.Parallel()

	var upserted []*sitedex.VectorRecord

	indexer := &pipeline.Indexer{
		Embedder: &mock.Embedder{
			EmbedTextsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				vectors := make([][]float32, len(texts))
				for i := range texts {
					vectors[i] = []float32{float32(i), 1}
				}
				return vectors, nil
			},
		},
		Store: &mock.VectorStore{
			UpsertVectorsFn: func(ctx context.Context, records []*sitedex.VectorRecord) error {
				upserted = records
				return nil
			},
		},
	}

	chunks := []sitedex.Chunk{
		{Text: "first chunk", PageName: "Pricing", Index: 0},
		{Text: "second chunk", PageName: "Pricing", Index: 1},
	}
	err := indexer.EmbedAndIndex(context.Background(), "gyms", "example.com",
		"Pricing", "https://example.com/pricing", chunks)
	require.NoError(t, err)

	require.Len(t, upserted, 2)
	assert.Equal(t, "gyms", upserted[0].Collection)
	assert.Equal(t, "example.com", upserted[0].Domain)
	assert.Equal(t, "Pricing", upserted[0].PageName)
	assert.Equal(t, "https://example.com/pricing", upserted[0].PageURL)
	assert.Equal(t, 0, upserted[0].ChunkIndex)
	assert.Equal(t, 1, upserted[1].ChunkIndex)
	assert.Equal(t, "first chunk", upserted[0].Text)
	assert.Equal(t, []float32{0, 1}, upserted[0].Embedding)
}

func TestIndexer_EmbedAndIndex_NoChunks(t *testing.T) {
	t.Parallel()

	indexer := &pipeline.Indexer{
		Embedder: &mock.Embedder{
			EmbedTextsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				t.Fatal("embedder should not be called for zero chunks")
				return nil, nil
			},
		},
		Store: &mock.VectorStore{},
	}

	err := indexer.EmbedAndIndex(context.Background(), "gyms", "example.com", "P", "u", nil)
	require.NoError(t, err)
}

func TestIndexer_EmbedAndIndex_EmbedderError(t *testing.T) {
	t.Parallel()

	indexer := &pipeline.Indexer{
		Embedder: &mock.Embedder{
			EmbedTextsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, errors.New("model unavailable")
			},
		},
		Store: &mock.VectorStore{},
	}

	err := indexer.EmbedAndIndex(context.Background(), "gyms", "example.com",
		"P", "https://example.com/p", []sitedex.Chunk{{Text: "x"}})
	require.Error(t, err)
	assert.Equal(t, sitedex.EINTERNAL, sitedex.ErrorCode(err))
}

func TestIndexer_LoadModelDelegates(t *testing.T) {
	t.Parallel()

	loaded := false
	indexer := &pipeline.Indexer{
		Embedder: &mock.Embedder{
			LoadFn: func(ctx context.Context) error {
				loaded = true
				return nil
			},
		},
		Store: &mock.VectorStore{},
	}

	require.NoError(t, indexer.LoadModel(context.Background()))
	assert.True(t, loaded)
}
