package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ragworks/docrag/internal/bm25"
	"github.com/ragworks/docrag/internal/embedder"
	"github.com/ragworks/docrag/internal/query"
	"github.com/ragworks/docrag/internal/reranker"
	"github.com/ragworks/docrag/internal/vectorstore"
	"github.com/ragworks/docrag/pkg/types"
)

// candidate is one surviving result as it moves through the fusion,
// filtering, deduplication and reranking stages
type candidate struct {
	id       string
	text     string
	metadata map[string]any
	score    float64
}

// Options configures an Engine beyond its required collaborators
type Options struct {
	Optimizer *query.Optimizer
	Reranker  reranker.Reranker
	Logger    *slog.Logger

	// CacheSize enables an LRU cache of retrieval results when positive
	CacheSize int
}

// Engine runs vector, keyword and hybrid retrieval against one vector store
// and one keyword index registry. Safe for concurrent use.
type Engine struct {
	store     vectorstore.Store
	embedder  embedder.Embedder
	keyword   *bm25.Manager
	optimizer *query.Optimizer
	reranker  reranker.Reranker
	logger    *slog.Logger
	cache     *lru.Cache[string, *types.RetrievalResult]

	// genMu guards gens, a per-collection generation counter mixed into
	// cache keys so invalidating one collection leaves the others' cached
	// results alive; stale entries age out of the LRU.
	genMu sync.Mutex
	gens  map[string]uint64
}

// NewEngine creates a retrieval engine
func NewEngine(store vectorstore.Store, emb embedder.Embedder, keyword *bm25.Manager, opts Options) *Engine {
	optimizer := opts.Optimizer
	if optimizer == nil {
		optimizer = query.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cache *lru.Cache[string, *types.RetrievalResult]
	if opts.CacheSize > 0 {
		cache, _ = lru.New[string, *types.RetrievalResult](opts.CacheSize)
	}

	return &Engine{
		store:     store,
		embedder:  emb,
		keyword:   keyword,
		optimizer: optimizer,
		reranker:  opts.Reranker,
		logger:    logger,
		cache:     cache,
		gens:      make(map[string]uint64),
	}
}

// generation returns the collection's current cache generation
func (e *Engine) generation(collectionID string) uint64 {
	e.genMu.Lock()
	defer e.genMu.Unlock()
	return e.gens[collectionID]
}

// Retrieve runs one retrieval request. The pipeline order is fixed: search,
// fuse, filter, deduplicate, rerank. An empty query returns an empty
// successful result without touching any backend.
func (e *Engine) Retrieve(ctx context.Context, rawQuery, collectionID string, cfg types.RetrievalConfig) (*types.RetrievalResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	normalized := e.optimizer.Preprocess(rawQuery, false)
	if normalized == "" {
		return types.EmptyRetrievalResult(), nil
	}

	cacheKey := computeRequestHash(collectionID, normalized, e.generation(collectionID), cfg)
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	var (
		vector  rankedList
		keyword rankedList
		texts   = make(map[string]string)
		meta    = make(map[string]map[string]any)
	)

	switch cfg.SearchType {
	case types.SearchVector:
		hits, err := e.vectorSearch(ctx, normalized, collectionID, cfg)
		if err != nil {
			return nil, err
		}
		vector = collect(hits, texts, meta)

	case types.SearchKeyword:
		hits, err := e.keywordSearch(ctx, rawQuery, collectionID, cfg)
		if err != nil {
			return nil, err
		}
		keyword = collect(hits, texts, meta)

	case types.SearchHybrid:
		var vecHits, kwHits []vectorstore.SearchHit
		var kwErr error

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			hits, err := e.vectorSearch(gctx, normalized, collectionID, cfg)
			if err != nil {
				return err
			}
			vecHits = hits
			return nil
		})
		g.Go(func() error {
			// Keyword failure degrades hybrid to vector-only
			kwHits, kwErr = e.keywordSearch(gctx, rawQuery, collectionID, cfg)
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if kwErr != nil {
			e.logger.Warn("keyword search failed, serving vector-only results",
				"collection", collectionID, "error", kwErr)
			kwHits = nil
		}

		vector = collect(vecHits, texts, meta)
		keyword = collect(kwHits, texts, meta)
	}

	candidates := e.assemble(cfg, vector, keyword, texts, meta)
	candidates = filterCandidates(candidates, cfg.MetadataFilter)

	if cfg.DeduplicationEnabled {
		candidates = deduplicate(candidates, cfg.DeduplicationThreshold)
	}

	var rerankScores map[string]float64
	if cfg.RerankEnabled && cfg.RerankProvider != types.RerankProviderNone && e.reranker != nil {
		candidates, rerankScores = e.rerank(ctx, normalized, candidates, cfg.RerankTopN)
	}

	result := buildResult(candidates, vector, keyword, rerankScores)
	if e.cache != nil {
		e.cache.Add(cacheKey, result)
	}
	return result, nil
}

// Invalidate drops cached state for a collection after its document set
// changes: the keyword index and any cached query results. Other
// collections' cached results are unaffected.
func (e *Engine) Invalidate(collectionID string) {
	if e.keyword != nil {
		e.keyword.Invalidate(collectionID)
	}
	e.genMu.Lock()
	e.gens[collectionID]++
	e.genMu.Unlock()
}

func (e *Engine) vectorSearch(ctx context.Context, normalized, collectionID string, cfg types.RetrievalConfig) ([]vectorstore.SearchHit, error) {
	embedding, err := e.embedder.EmbedQuery(ctx, normalized)
	if err != nil {
		return nil, &types.RetrievalError{Stage: "embedding", Err: err}
	}

	hits, err := e.store.Search(ctx, collectionID, embedding, cfg.TopK, cfg.MetadataFilter)
	if err != nil {
		return nil, &types.RetrievalError{Stage: "vector_search", Err: err}
	}

	return hits, nil
}

// keywordSearch runs BM25 over the collection, building the index on demand
// from the store's document listing
func (e *Engine) keywordSearch(ctx context.Context, rawQuery, collectionID string, cfg types.RetrievalConfig) ([]vectorstore.SearchHit, error) {
	docs, err := e.store.ListDocuments(ctx, collectionID)
	if err != nil {
		return nil, &types.RetrievalError{Stage: "keyword_search", Err: err}
	}

	idx, ok := e.keyword.Get(collectionID)
	if !ok {
		indexDocs := make([]bm25.Document, len(docs))
		for i, d := range docs {
			indexDocs[i] = bm25.Document{ID: d.ID, Text: d.Text}
		}
		idx = e.keyword.Build(collectionID, indexDocs)
	}

	optimized := e.optimizer.Expand(e.optimizer.Preprocess(rawQuery, true))
	scored := idx.Search(optimized, cfg.TopK)

	byID := make(map[string]vectorstore.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	hits := make([]vectorstore.SearchHit, 0, len(scored))
	for _, s := range scored {
		doc := byID[s.ID]
		hits = append(hits, vectorstore.SearchHit{
			ID:       s.ID,
			Text:     doc.Text,
			Metadata: doc.Metadata,
			Score:    s.Score,
		})
	}

	return hits, nil
}

// assemble turns the path outputs into an ordered candidate list: fused for
// hybrid, the single path's own order otherwise, truncated to TopK
func (e *Engine) assemble(cfg types.RetrievalConfig, vector, keyword rankedList, texts map[string]string, meta map[string]map[string]any) []candidate {
	var ordered []scoredID

	switch cfg.SearchType {
	case types.SearchHybrid:
		ordered = fuse(cfg, vector, keyword)
	case types.SearchVector:
		for _, id := range vector.ids {
			ordered = append(ordered, scoredID{id: id, score: vector.scores[id]})
		}
	case types.SearchKeyword:
		for _, id := range keyword.ids {
			ordered = append(ordered, scoredID{id: id, score: keyword.scores[id]})
		}
	}

	if len(ordered) > cfg.TopK {
		ordered = ordered[:cfg.TopK]
	}

	candidates := make([]candidate, 0, len(ordered))
	for _, s := range ordered {
		candidates = append(candidates, candidate{
			id:       s.id,
			text:     texts[s.id],
			metadata: meta[s.id],
			score:    s.score,
		})
	}
	return candidates
}

// rerank sends the top candidates through the reranker. Unavailability is
// non-fatal: the pre-rerank ordering is kept and no rerank scores are
// reported.
func (e *Engine) rerank(ctx context.Context, normalized string, candidates []candidate, topN int) ([]candidate, map[string]float64) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	n := topN
	if n > len(candidates) {
		n = len(candidates)
	}

	input := make([]reranker.Candidate, n)
	byID := make(map[string]candidate, n)
	for i, cand := range candidates[:n] {
		input[i] = reranker.Candidate{ID: cand.id, Text: cand.text}
		byID[cand.id] = cand
	}

	results, err := e.reranker.Rerank(ctx, normalized, input, n)
	if err != nil {
		e.logger.Warn("reranker unavailable, keeping fused ordering", "error", err)
		return candidates, nil
	}

	reranked := make([]candidate, 0, len(results))
	scores := make(map[string]float64, len(results))
	for _, r := range results {
		cand, ok := byID[r.ID]
		if !ok {
			continue
		}
		cand.score = r.Score
		reranked = append(reranked, cand)
		scores[r.ID] = r.Score
	}

	return reranked, scores
}

func filterCandidates(candidates []candidate, filter map[string]any) []candidate {
	if len(filter) == 0 {
		return candidates
	}

	kept := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		if vectorstore.MatchesFilter(cand.metadata, filter) {
			kept = append(kept, cand)
		}
	}
	return kept
}

// collect records a path's hits into the shared text/metadata lookups and
// returns the path's ranked list
func collect(hits []vectorstore.SearchHit, texts map[string]string, meta map[string]map[string]any) rankedList {
	list := rankedList{scores: make(map[string]float64, len(hits))}
	for _, h := range hits {
		list.ids = append(list.ids, h.ID)
		list.scores[h.ID] = h.Score
		texts[h.ID] = h.Text
		meta[h.ID] = h.Metadata
	}
	return list
}

func buildResult(candidates []candidate, vector, keyword rankedList, rerankScores map[string]float64) *types.RetrievalResult {
	result := types.EmptyRetrievalResult()

	for _, cand := range candidates {
		result.IDs = append(result.IDs, cand.id)
		result.Documents = append(result.Documents, cand.text)
		result.Metadata = append(result.Metadata, cand.metadata)
		result.Scores = append(result.Scores, cand.score)
	}

	if len(vector.scores) > 0 {
		result.VectorScores = vector.scores
	}
	if len(keyword.scores) > 0 {
		result.KeywordScores = keyword.scores
	}
	if len(rerankScores) > 0 {
		result.RerankScores = rerankScores
	}

	return result
}

func computeRequestHash(collectionID, normalized string, generation uint64, cfg types.RetrievalConfig) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%#v", collectionID, normalized, generation, cfg)))
	return hex.EncodeToString(h[:])
}
