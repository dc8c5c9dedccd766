// Package docstore persists document chunks with their embedding vectors in
// SQLite and serves cosine-similarity retrieval with a score threshold.
// An uninitialized or empty store retrieves an empty result set, never an
// error: "nothing ingested yet" is a normal state.
package docstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS document_chunks (
    chunk_id    TEXT PRIMARY KEY,
    content     TEXT NOT NULL,
    source_id   TEXT NOT NULL,
    embedding   BLOB NOT NULL,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON document_chunks(source_id);
`

// #endregion schema

// #region types

// Chunk is one stored unit of document content with its provenance.
type Chunk struct {
	ID       string
	Content  string
	SourceID string
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Chunk
	Score float64
}

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds retrieval parameters.
type Config struct {
	TopK           int
	ScoreThreshold float64
	MaxContentLen  int // drop overlong chunks at search time, 0 = no cap
}

// DefaultConfig returns retrieval defaults.
// Reads from env vars: DOCSTORE_TOP_K, DOCSTORE_SCORE_THRESHOLD.
func DefaultConfig() Config {
	cfg := Config{
		TopK:           5,
		ScoreThreshold: 0.4,
		MaxContentLen:  4000,
	}
	if v := os.Getenv("DOCSTORE_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopK = n
		}
	}
	if v := os.Getenv("DOCSTORE_SCORE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ScoreThreshold = f
		}
	}
	return cfg
}

// #endregion types

// #region store

// Store manages the document_chunks table.
type Store struct {
	db       *sql.DB
	embedder Embedder
	config   Config
}

// OpenDB opens (or creates) the SQLite database at path.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single connection: sqlite allows one writer, and it keeps
	// :memory: databases from being split across pool connections.
	db.SetMaxOpenConns(1)
	return db, nil
}

// NewStore creates tables and returns a Store.
func NewStore(db *sql.DB, embedder Embedder, config Config) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("docstore schema: %w", err)
	}
	return &Store{db: db, embedder: embedder, config: config}, nil
}

// #endregion store

// #region add

// Add embeds and inserts a batch of chunks.
func (s *Store) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, c := range chunks {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO document_chunks (chunk_id, content, source_id, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			id, c.Content, c.SourceID, encodeVector(vectors[i]), now,
		)
		if err != nil {
			return fmt.Errorf("insert chunk: %w", err)
		}
	}
	return nil
}

// #endregion add

// #region search

// Search embeds the query and returns the top-k chunks above the score
// threshold, most similar first. An empty store yields an empty slice.
func (s *Store) Search(ctx context.Context, query string) ([]SearchResult, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vectors[0]

	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, content, source_id, embedding FROM document_chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Content, &r.SourceID, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			continue
		}
		r.Score = cosineSimilarity(queryVec, vec)
		if r.Score >= s.config.ScoreThreshold {
			results = append(results, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	results = s.consistencyCheck(results)
	if len(results) > s.config.TopK {
		results = results[:s.config.TopK]
	}
	return results, nil
}

// consistencyCheck drops empty, overlong, and duplicate-ID results while
// preserving order.
func (s *Store) consistencyCheck(results []SearchResult) []SearchResult {
	seen := make(map[string]bool)
	var valid []SearchResult
	for _, r := range results {
		if r.Content == "" {
			continue
		}
		if s.config.MaxContentLen > 0 && len(r.Content) > s.config.MaxContentLen {
			continue
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		valid = append(valid, r)
	}
	return valid
}

// #endregion search

// #region count

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// #endregion count

// #region vector-helpers

// encodeVector packs float32s little-endian into a BLOB.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

// decodeVector unpacks a BLOB back into float32s.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 4", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}

// cosineSimilarity returns 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// #endregion vector-helpers
