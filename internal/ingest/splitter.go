package ingest

// #region imports
import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// #endregion

// #region config

// SplitConfig controls chunking. Overlap carries context across chunk
// boundaries so a sentence split mid-way is still retrievable.
type SplitConfig struct {
	ChunkSize int
	Overlap   int
}

// DefaultSplitConfig returns the standard chunking parameters.
// Override with INGEST_CHUNK_SIZE and INGEST_CHUNK_OVERLAP.
func DefaultSplitConfig() SplitConfig {
	cfg := SplitConfig{
		ChunkSize: 512,
		Overlap:   51,
	}
	if v := os.Getenv("INGEST_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChunkSize = n
		}
	}
	if v := os.Getenv("INGEST_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < cfg.ChunkSize {
			cfg.Overlap = n
		}
	}
	return cfg
}

// #endregion

// #region cleaning

var (
	punctPattern = regexp.MustCompile(`[^A-Za-z0-9\s,.]`)
	wsPattern    = regexp.MustCompile(`\s+`)
)

// CleanChunk normalizes a chunk before embedding: strips everything
// but word characters and basic punctuation, collapses whitespace,
// and lowercases.
func CleanChunk(text string) string {
	text = punctPattern.ReplaceAllString(text, "")
	text = wsPattern.ReplaceAllString(text, " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// #endregion

// #region splitting

// Split breaks text into overlapping chunks of at most ChunkSize
// characters, preferring to break on whitespace near the boundary.
// Empty chunks after cleaning are discarded.
func Split(text string, cfg SplitConfig) []string {
	cleaned := CleanChunk(text)
	if cleaned == "" {
		return nil
	}
	if len(cleaned) <= cfg.ChunkSize {
		return []string{cleaned}
	}

	var chunks []string
	start := 0
	for start < len(cleaned) {
		end := start + cfg.ChunkSize
		if end >= len(cleaned) {
			chunk := strings.TrimSpace(cleaned[start:])
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}
		// Back up to the nearest space so words stay whole.
		cut := end
		for cut > start && cleaned[cut] != ' ' {
			cut--
		}
		if cut == start {
			cut = end
		}
		chunk := strings.TrimSpace(cleaned[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		// The next chunk starts relative to the actual cut, never the
		// nominal chunk edge, so nothing between them is dropped.
		next := cut - cfg.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// #endregion
