// Package embedder generates vector embeddings for document chunks and
// queries.
//
// Three providers implement the Embedder interface:
//   - OpenAI: text-embedding-3-small via the batch embeddings API
//   - Ollama: local models (default nomic-embed-text), one call per text
//   - Local: deterministic hash-derived vectors, no network required
//
// # Provider Selection
//
// NewFromEnv picks a provider from the environment:
//
//	DOCRAG_EMBEDDING_PROVIDER  explicit choice: openai, ollama, local
//	OPENAI_API_KEY             enables OpenAI when set
//	OLLAMA_HOST                enables Ollama when set
//
// With nothing configured the local provider is used, which keeps tests
// and offline tooling working with stable, unit-length vectors.
//
// # Caching
//
// All providers share an optional LRU cache keyed by the SHA-256 of the
// input text. Cached vectors are copied on read so callers can mutate
// results safely.
//
// Remote providers retry transient failures with exponential backoff and
// honor context cancellation between attempts.
package embedder
