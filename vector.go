package sitedex

import "context"

// VectorRecord is the unit stored in the vector index. Every record carries
// full provenance so retrieval can be filtered back to exactly the
// originating collection, domain and page.
type VectorRecord struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Domain     string    `json:"domain"`
	PageName   string    `json:"pageName"`
	PageURL    string    `json:"pageUrl"`
	ChunkIndex int       `json:"chunkIndex"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// Validate returns an error if the record is missing provenance. The index
// never stores a vector without it.
func (r *VectorRecord) Validate() error {
	if r.Collection == "" {
		return Errorf(EINVALID, "vector record collection required")
	}
	if r.Domain == "" {
		return Errorf(EINVALID, "vector record domain required")
	}
	if len(r.Embedding) == 0 {
		return Errorf(EINVALID, "vector record embedding required")
	}
	return nil
}

// SearchResult is a scored retrieval match.
type SearchResult struct {
	Record *VectorRecord `json:"record"`
	Score  float32       `json:"score"`
}

// SearchOptions configures vector search.
type SearchOptions struct {
	// Collection to search. Required.
	Collection string `json:"collection"`

	// Domain restricts results to one source domain. Optional.
	Domain string `json:"domain,omitempty"`

	// Limit caps the number of results. Defaults to 5 when zero.
	Limit int `json:"limit,omitempty"`
}

// VectorStore persists and searches vector records.
type VectorStore interface {
	// EnsureCollection creates the collection if absent. Idempotent.
	EnsureCollection(ctx context.Context, name string) error

	// UpsertVectors inserts or replaces records in one logical batch.
	UpsertVectors(ctx context.Context, records []*VectorRecord) error

	// Search returns records most similar to the query vector, ordered by
	// descending score.
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]SearchResult, error)
}

// Embedder maps text to embedding vectors. Implementations are process-wide
// singletons, safe for concurrent use.
type Embedder interface {
	// Load prepares the model. Repeated calls are cheap no-ops after the
	// first successful load.
	Load(ctx context.Context) error

	// EmbedTexts returns one vector per input text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndexer embeds chunks and upserts the resulting records into a
// named collection.
type VectorIndexer interface {
	// LoadModel prepares the embedding model. Idempotent.
	LoadModel(ctx context.Context) error

	// EnsureCollection creates the collection schema if absent. Idempotent.
	EnsureCollection(ctx context.Context, name string) error

	// EmbedAndIndex embeds every chunk and upserts the records in one
	// logical batch. Returns EINTERNAL if embedding or upserting fails;
	// callers treat the failure as per-page and continue with siblings.
	EmbedAndIndex(ctx context.Context, collection, domain, pageName, pageURL string, chunks []Chunk) error
}
