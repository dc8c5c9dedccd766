package workflow

// #region imports
import (
	"context"

	"github.com/kdwyer/docqa/internal/docstore"
	"github.com/kdwyer/docqa/internal/websearch"
)

// #endregion

// #region store-adapter

// StoreRetriever adapts the vector store to the Retriever interface.
type StoreRetriever struct {
	store *docstore.Store
}

// NewStoreRetriever wraps a document store.
func NewStoreRetriever(store *docstore.Store) *StoreRetriever {
	return &StoreRetriever{store: store}
}

// Retrieve runs a similarity search and strips ranking metadata;
// downstream nodes only see content and provenance.
func (r *StoreRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	results, err := r.store.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(results))
	for i, res := range results {
		docs[i] = Document{Content: res.Content, SourceID: res.SourceID}
	}
	return docs, nil
}

// #endregion

// #region web-adapter

// WebClient adapts the DuckDuckGo client to the WebSearcher interface.
type WebClient struct {
	client *websearch.Client
}

// NewWebClient wraps a search client.
func NewWebClient(client *websearch.Client) *WebClient {
	return &WebClient{client: client}
}

// Search returns bounded web results as search hits.
func (w *WebClient) Search(ctx context.Context, query string) ([]SearchHit, error) {
	results, err := w.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, len(results))
	for i, res := range results {
		hits[i] = SearchHit{Title: res.Title, Snippet: res.Snippet, Link: res.Link}
	}
	return hits, nil
}

// #endregion
