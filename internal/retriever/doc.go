// Package retriever implements hybrid document retrieval combining vector
// similarity and BM25 keyword matching.
//
// The engine provides three search modes:
//   - Hybrid: Combines vector + BM25 keyword search (recommended)
//   - Vector: Pure semantic search using embeddings
//   - Keyword: BM25 full-text search only
//
// # Basic Usage
//
//	e := retriever.NewEngine(store, emb, bm25.NewManager(), retriever.Options{
//	    Optimizer: query.New(),
//	    CacheSize: 1000,
//	})
//
//	result, err := e.Retrieve(ctx, "payment terms for late invoices", "contracts",
//	    types.DefaultRetrievalConfig())
//
//	for i, id := range result.IDs {
//	    fmt.Printf("[%d] %s (score: %.4f)\n", i+1, id, result.Scores[i])
//	}
//
// # Pipeline
//
// Every request flows through the same fixed stages:
//
//	search -> fuse -> truncate -> filter -> dedup -> rerank
//
// In hybrid mode the vector and keyword paths run concurrently and their
// rankings are merged by the configured fusion method:
//
//   - reciprocal_rank_fusion: rank-based, score magnitudes ignored
//   - weighted: min-max normalized scores weighted per path
//   - mean: average of normalized scores present for each document
//
// A failed keyword path degrades a hybrid request to vector-only results
// with a warning. A failed vector path fails the request, since hybrid
// callers rely on semantic recall.
//
// # Result Shape
//
// RetrievalResult keeps IDs, Documents, Metadata, and Scores as parallel
// slices sorted by descending score. Per-path diagnostic scores are exposed
// in VectorScores, KeywordScores, and RerankScores keyed by document id.
//
// # Caching
//
// When Options.CacheSize is positive, results are cached per
// (query, collection, config) request. Invalidate must be called after a
// collection's contents change; the ingest pipeline does this automatically.
package retriever
