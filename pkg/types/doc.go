// Package types provides shared plain-data types for the docrag engine.
//
// This package defines the domain types exchanged between the chunking and
// retrieval subsystems: chunks, chunking and retrieval configuration, and
// retrieval results.
//
// # Core Types
//
// Chunk represents a bounded text segment cut from a document, annotated
// with its source position and structure:
//
//	chunk := types.NewChunk(docID, 0, text, start, end)
//	chunk.Section = "Termination"
//	chunk.DocumentType = types.DocTypeContract
//
// ChunkingConfig selects splitter parameters, with per-document-type
// defaults:
//
//	cfg := types.DefaultChunkingConfig(types.DocTypeReport) // 650/100
//
// RetrievalConfig drives a single retrieve request and is validated at
// construction time:
//
//	cfg := types.DefaultRetrievalConfig()
//	cfg.FusionMethod = types.FusionWeighted
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Results
//
// RetrievalResult carries parallel id/document/metadata/score sequences,
// sorted by descending score, plus optional per-path diagnostic scores.
//
// # Errors
//
// ChunkingError, RetrievalError and ConfigError form the failure taxonomy:
// chunking failures are all-or-nothing per document, retrieval backend
// failures are fatal per request, and configuration problems are rejected
// before any search runs.
package types
