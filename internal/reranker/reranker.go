package reranker

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable indicates the reranking backend could not be reached
	// or returned a malformed response. Callers treat this as non-fatal.
	ErrUnavailable = errors.New("reranker unavailable")
)

// Candidate is one (id, text) pair submitted for reranking
type Candidate struct {
	ID   string
	Text string
}

// Result is one reranked candidate with the model's relevance score
type Result struct {
	ID    string
	Score float64
}

// Reranker reorders candidates by relevance to the query. Implementations
// return at most topN results, highest score first.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Result, error)
}
