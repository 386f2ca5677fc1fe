package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks versebox/internal/vectorstore VectorStore

import "context"

// Document is one stored corpus chunk: its text plus whatever metadata the
// corpus carries (reference, source, popularity).
type Document struct {
	Content string
	Meta    map[string]any
}

// Candidate is a similarity-search hit. Score is cosine similarity as
// returned by the backend: higher is better.
type Candidate struct {
	Content string
	Meta    map[string]any
	Score   float32
}

// VectorStore defines the read-side operations the recommendation core
// needs from a vector index over a static verse corpus.
type VectorStore interface {
	// Query runs a nearest-neighbor search, returning up to k candidates
	// ordered best-first.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]Candidate, error)

	// Scroll enumerates the collection in batches, optionally filtered by
	// exact-match payload fields (e.g. {"source": "마태복음"}). fn is called
	// once per document; returning false stops the scan early.
	Scroll(ctx context.Context, collection string, filter map[string]string, batchSize int, fn func(Document) bool) error

	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (uint64, error)

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
