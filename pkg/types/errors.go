package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages
var (
	ErrResultLengthMismatch = errors.New("result sequences must have equal length")
	ErrResultOrder          = errors.New("result scores must be sorted descending")
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrEmptyCollection      = errors.New("collection has no documents")
)

// ChunkingError wraps any failure during a chunking run. Partial output is
// never returned alongside it.
type ChunkingError struct {
	DocumentID string
	Err        error
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunking document %s: %v", e.DocumentID, e.Err)
}

func (e *ChunkingError) Unwrap() error {
	return e.Err
}

// RetrievalError indicates a retrieval backend was unreachable or returned a
// malformed response. Fatal for the request it occurred in.
type RetrievalError struct {
	Stage string // "embedding", "vector_search", "keyword_search"
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Stage, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid configuration value. Raised at
// construction/validation time, never at call time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Reason)
}
