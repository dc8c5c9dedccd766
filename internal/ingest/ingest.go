package ingest

// #region imports
import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/kdwyer/docqa/internal/docstore"
	"github.com/kdwyer/docqa/internal/oracle"
)

// #endregion

// #region types

// DomainOracle provides the two judgements the ingestion gate needs.
type DomainOracle interface {
	DetectDomain(ctx context.Context, documents string) (oracle.DomainSummary, error)
	CompareDomains(ctx context.Context, declared, summary, docDomain string) (oracle.Verdict, error)
}

// ChunkStore receives accepted chunks.
type ChunkStore interface {
	Add(ctx context.Context, chunks []docstore.Chunk) error
}

// Result reports the outcome of ingesting one source.
type Result struct {
	Source   string
	Accepted bool
	Reason   string // set when rejected
	Chunks   int
	Domain   string // domain inferred from the content
}

// Ingestor loads, chunks, domain-gates, and indexes sources. Each
// source is gated once; a domain mismatch discards the chunks rather
// than indexing them.
type Ingestor struct {
	oracle DomainOracle
	store  ChunkStore
	split  SplitConfig

	seen map[string]bool
}

// #endregion

// #region constructor

// NewIngestor wires an ingestor.
func NewIngestor(o DomainOracle, store ChunkStore, split SplitConfig) *Ingestor {
	return &Ingestor{
		oracle: o,
		store:  store,
		split:  split,
		seen:   make(map[string]bool),
	}
}

// #endregion

// #region ingest

// sampleForDetection bounds the text sent to domain detection.
const sampleForDetection = 4000

// Ingest processes one file path or URL. Re-ingesting a source this
// ingestor has already accepted is a no-op.
func (in *Ingestor) Ingest(ctx context.Context, declaredDomain, source string) (Result, error) {
	res := Result{Source: source}

	if in.seen[source] {
		res.Accepted = true
		res.Reason = "already ingested"
		return res, nil
	}

	loader, err := loaderFor(source)
	if err != nil {
		res.Reason = "unsupported source"
		return res, err
	}
	raw, err := loader.Load(ctx, source)
	if err != nil {
		res.Reason = "load failed"
		return res, err
	}

	chunks := Split(raw, in.split)
	if len(chunks) == 0 {
		res.Reason = "no usable content"
		return res, nil
	}

	sample := strings.Join(chunks, "\n")
	if len(sample) > sampleForDetection {
		sample = sample[:sampleForDetection]
	}
	summary, err := in.oracle.DetectDomain(ctx, sample)
	if err != nil {
		res.Reason = "domain detection failed"
		return res, fmt.Errorf("detect domain for %s: %w", source, err)
	}
	res.Domain = summary.Domain

	verdict, err := in.oracle.CompareDomains(ctx, declaredDomain, summary.Summary, summary.Domain)
	if err != nil {
		res.Reason = "domain comparison failed"
		return res, fmt.Errorf("compare domains for %s: %w", source, err)
	}
	if verdict != oracle.VerdictYes {
		res.Reason = fmt.Sprintf("content domain %q does not match declared domain %q", summary.Domain, declaredDomain)
		log.Printf("[INGEST] rejected %s: %s", source, res.Reason)
		return res, nil
	}

	sourceID := sourceIDFor(source)
	records := make([]docstore.Chunk, len(chunks))
	for i, c := range chunks {
		records[i] = docstore.Chunk{Content: c, SourceID: sourceID}
	}
	if err := in.store.Add(ctx, records); err != nil {
		res.Reason = "indexing failed"
		return res, fmt.Errorf("index %s: %w", source, err)
	}

	in.seen[source] = true
	res.Accepted = true
	res.Chunks = len(records)
	log.Printf("[INGEST] accepted %s: %d chunks, domain %q", source, len(records), summary.Domain)
	return res, nil
}

// sourceIDFor keeps URLs whole and shortens file paths to their base
// name for citation.
func sourceIDFor(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return filepath.Base(source)
}

// #endregion
