package vectorstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested collection doesn't exist
	ErrNotFound = errors.New("collection not found")
	// ErrAlreadyExists is returned when creating a duplicate collection
	ErrAlreadyExists = errors.New("collection already exists")
	// ErrDimensionMismatch is returned when an embedding's length differs
	// from the collection's configured dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Document is one stored entry: an id, its embedding, the chunk text, and
// flat metadata
type Document struct {
	ID        string
	Embedding []float32
	Text      string
	Metadata  map[string]any
}

// SearchHit is one ranked similarity result. Score is a similarity, higher
// is more relevant.
type SearchHit struct {
	ID       string
	Text     string
	Metadata map[string]any
	Score    float64
}

// Store is the vector-storage collaborator interface. Implementations must
// be safe for concurrent use.
type Store interface {
	// CreateCollection registers a collection. Tenant may be empty; when
	// set it namespaces the collection.
	CreateCollection(ctx context.Context, name, tenant string) error

	// CollectionExists reports whether the collection has been created
	CollectionExists(ctx context.Context, name, tenant string) (bool, error)

	// AddDocuments inserts or replaces documents in the collection
	AddDocuments(ctx context.Context, collection string, docs []Document) error

	// Search returns the topK nearest documents by cosine similarity,
	// optionally constrained by exact-match metadata filters
	Search(ctx context.Context, collection string, queryEmbedding []float32, topK int, filter map[string]any) ([]SearchHit, error)

	// DeleteDocuments removes documents by id
	DeleteDocuments(ctx context.Context, collection string, ids []string) error

	// ListDocuments returns all documents in insertion order. Used to
	// build keyword indexes over the collection.
	ListDocuments(ctx context.Context, collection string) ([]Document, error)

	// Close releases underlying resources
	Close() error
}

// CollectionName namespaces a collection by tenant. An empty tenant leaves
// the name unchanged.
func CollectionName(name, tenant string) string {
	if tenant == "" {
		return name
	}
	return tenant + ":" + name
}

// MatchesFilter reports whether metadata satisfies every exact-match
// constraint in the filter. A nil or empty filter matches everything.
// Numeric values compare by magnitude regardless of Go type, since
// metadata arrives as int from the chunker but as float64 after a JSON
// round trip.
func MatchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || !filterValuesEqual(got, want) {
			return false
		}
	}
	return true
}

func filterValuesEqual(got, want any) bool {
	gf, gok := asFloat(got)
	wf, wok := asFloat(want)
	if gok && wok {
		return gf == wf
	}
	if gok != wok {
		return false
	}
	return got == want
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
