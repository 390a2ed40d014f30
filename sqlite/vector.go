package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sitedex/sitedex"
)

// Compile-time interface verification.
var _ sitedex.VectorStore = (*VectorStore)(nil)

// VectorStore implements sitedex.VectorStore using SQLite. Embeddings are
// stored as little-endian float32 blobs and similarity is computed in Go,
// which is fast enough for the single-site collections this index holds.
type VectorStore struct {
	db *DB
}

// NewVectorStore creates a new VectorStore.
func NewVectorStore(db *DB) *VectorStore {
	return &VectorStore{db: db}
}

// EnsureCollection creates the collection if it doesn't exist.
func (s *VectorStore) EnsureCollection(ctx context.Context, name string) error {
	if name == "" {
		return sitedex.Errorf(sitedex.EINVALID, "collection name required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, created_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, time.Now().UTC().Format(time.RFC3339))

	return err
}

// UpsertVectors inserts or replaces records in one transaction. Records
// without an ID get a deterministic one derived from their provenance, so
// re-indexing the same page replaces its vectors instead of duplicating them.
func (s *VectorStore) UpsertVectors(ctx context.Context, records []*sitedex.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
		if record.ID == "" {
			record.ID = recordID(record)
		}
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (id, collection, domain, page_name, page_url, chunk_index, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			domain = excluded.domain,
			page_name = excluded.page_name,
			page_url = excluded.page_url,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.ID, record.Collection, record.Domain, record.PageName,
			record.PageURL, record.ChunkIndex, record.Text,
			encodeEmbedding(record.Embedding)); err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", record.ID, err)
		}
	}

	return tx.Commit()
}

// Search scans the collection and returns the records most similar to the
// query vector by cosine similarity, ordered by descending score.
func (s *VectorStore) Search(ctx context.Context, query []float32, opts sitedex.SearchOptions) ([]sitedex.SearchResult, error) {
	if opts.Collection == "" {
		return nil, sitedex.Errorf(sitedex.EINVALID, "collection required")
	}
	if len(query) == 0 {
		return nil, sitedex.Errorf(sitedex.EINVALID, "query vector required")
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM collections WHERE name = ?)`,
		opts.Collection).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, sitedex.Errorf(sitedex.ENOTFOUND, "collection %q not found", opts.Collection)
	}

	q := `
		SELECT id, collection, domain, page_name, page_url, chunk_index, text, embedding
		FROM vectors
		WHERE collection = ?
	`
	args := []any{opts.Collection}
	if opts.Domain != "" {
		q += " AND domain = ?"
		args = append(args, opts.Domain)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []sitedex.SearchResult
	for rows.Next() {
		var record sitedex.VectorRecord
		var blob []byte

		if err := rows.Scan(&record.ID, &record.Collection, &record.Domain,
			&record.PageName, &record.PageURL, &record.ChunkIndex,
			&record.Text, &blob); err != nil {
			return nil, err
		}

		embedding, err := decodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedding for %s: %w", record.ID, err)
		}
		if len(embedding) != len(query) {
			continue
		}
		record.Embedding = embedding

		results = append(results, sitedex.SearchResult{
			Record: &record,
			Score:  cosineSimilarity(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of vectors stored in a collection.
func (s *VectorStore) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vectors WHERE collection = ?`,
		collection).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// recordID derives a stable ID from the record's provenance so that the same
// chunk of the same page always maps to the same row.
func recordID(r *sitedex.VectorRecord) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%s|%d", r.Collection, r.PageURL, r.ChunkIndex)
	return fmt.Sprintf("%016x", h.Sum64())
}

// encodeEmbedding packs a float32 vector into a little-endian byte blob.
func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// decodeEmbedding unpacks a little-endian byte blob into a float32 vector.
func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

// cosineSimilarity returns the cosine of the angle between two equal-length
// vectors, or 0 when either has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
