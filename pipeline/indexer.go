package pipeline

import (
	"context"

	"github.com/sitedex/sitedex"
)

// Ensure Indexer implements sitedex.VectorIndexer at compile time.
var _ sitedex.VectorIndexer = (*Indexer)(nil)

// Indexer implements sitedex.VectorIndexer by composing an embedding model
// with a vector store.
type Indexer struct {
	Embedder sitedex.Embedder
	Store    sitedex.VectorStore
}

// LoadModel prepares the embedding model. Idempotent.
func (ix *Indexer) LoadModel(ctx context.Context) error {
	return ix.Embedder.Load(ctx)
}

// EnsureCollection creates the collection if absent.
func (ix *Indexer) EnsureCollection(ctx context.Context, name string) error {
	return ix.Store.EnsureCollection(ctx, name)
}

// EmbedAndIndex embeds every chunk and upserts the records in one batch.
func (ix *Indexer) EmbedAndIndex(ctx context.Context, collection, domain, pageName, pageURL string, chunks []sitedex.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := ix.Embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return sitedex.Errorf(sitedex.EINTERNAL, "failed to embed %d chunks for %s: %v",
			len(chunks), pageURL, err)
	}

	records := make([]*sitedex.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &sitedex.VectorRecord{
			Collection: collection,
			Domain:     domain,
			PageName:   pageName,
			PageURL:    pageURL,
			ChunkIndex: chunk.Index,
			Text:       chunk.Text,
			Embedding:  vectors[i],
		}
	}

	if err := ix.Store.UpsertVectors(ctx, records); err != nil {
		return sitedex.Errorf(sitedex.EINTERNAL, "failed to index %d chunks for %s: %v",
			len(records), pageURL, err)
	}

	return nil
}
