package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragworks/docrag/internal/bm25"
	"github.com/ragworks/docrag/internal/reranker"
	"github.com/ragworks/docrag/internal/vectorstore"
	"github.com/ragworks/docrag/pkg/types"
)

type stubEmbedder struct {
	queryVec []float32
	err      error
	calls    int
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.queryVec, nil
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.queryVec
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int   { return len(s.queryVec) }
func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub" }
func (s *stubEmbedder) Close() error     { return nil }

type stubReranker struct {
	results []reranker.Result
	err     error
}

func (s *stubReranker) Rerank(ctx context.Context, q string, c []reranker.Candidate, topN int) ([]reranker.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// brokenListStore fails document listings, simulating a keyword-index build
// failure
type brokenListStore struct {
	vectorstore.Store
}

func (b *brokenListStore) ListDocuments(ctx context.Context, collection string) ([]vectorstore.Document, error) {
	return nil, errors.New("listing unavailable")
}

func seedStore(t *testing.T) vectorstore.Store {
	t.Helper()

	ctx := context.Background()
	s := vectorstore.NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", []vectorstore.Document{
		{ID: "d1", Embedding: []float32{1, 0, 0}, Text: "Python is great", Metadata: map[string]any{"kind": "article"}},
		{ID: "d2", Embedding: []float32{0, 1, 0}, Text: "Machine learning rocks", Metadata: map[string]any{"kind": "article"}},
		{ID: "d3", Embedding: []float32{0.9, 0.1, 0}, Text: "Python web framework", Metadata: map[string]any{"kind": "tutorial"}},
	}))
	return s
}

func newTestEngine(store vectorstore.Store, emb *stubEmbedder, opts Options) *Engine {
	return NewEngine(store, emb, bm25.NewManager(), opts)
}

func TestRetrieveEmptyQuery(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	result, err := e.Retrieve(context.Background(), "   ", "docs", types.DefaultRetrievalConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
}

func TestRetrieveInvalidConfig(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	cfg := types.DefaultRetrievalConfig()
	cfg.FusionMethod = "borda"

	_, err := e.Retrieve(context.Background(), "python", "docs", cfg)
	require.Error(t, err)

	var cfgErr *types.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRetrieveVectorPath(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	cfg := types.DefaultRetrievalConfig()
	cfg.SearchType = types.SearchVector

	result, err := e.Retrieve(context.Background(), "python", "docs", cfg)
	require.NoError(t, err)
	require.NoError(t, result.Validate())
	require.Equal(t, 3, result.Len())

	assert.Equal(t, "d1", result.IDs[0])
	assert.Equal(t, "d3", result.IDs[1])
	assert.Equal(t, "d2", result.IDs[2])
	assert.Equal(t, "Python is great", result.Documents[0])

	assert.NotNil(t, result.VectorScores)
	assert.Nil(t, result.KeywordScores)
	assert.Nil(t, result.RerankScores)
}

func TestRetrieveKeywordPath(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	cfg := types.DefaultRetrievalConfig()
	cfg.SearchType = types.SearchKeyword

	result, err := e.Retrieve(context.Background(), "Python", "docs", cfg)
	require.NoError(t, err)
	require.NoError(t, result.Validate())
	require.Equal(t, 2, result.Len())

	assert.ElementsMatch(t, []string{"d1", "d3"}, result.IDs)
	assert.NotNil(t, result.KeywordScores)
	assert.Nil(t, result.VectorScores)
}

func TestRetrieveHybridAgreedTopResult(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	result, err := e.Retrieve(context.Background(), "Python", "docs", types.DefaultRetrievalConfig())
	require.NoError(t, err)
	require.NoError(t, result.Validate())
	require.GreaterOrEqual(t, result.Len(), 2)

	// d1 is rank 1 on both paths, so it must fuse to rank 1
	assert.Equal(t, "d1", result.IDs[0])
	assert.NotNil(t, result.VectorScores)
	assert.NotNil(t, result.KeywordScores)
}

func TestRetrieveHybridWeightedAndMean(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	for _, method := range []types.FusionMethod{types.FusionWeighted, types.FusionMean} {
		cfg := types.DefaultRetrievalConfig()
		cfg.FusionMethod = method

		result, err := e.Retrieve(context.Background(), "Python", "docs", cfg)
		require.NoError(t, err, string(method))
		require.NoError(t, result.Validate())
		assert.Equal(t, "d1", result.IDs[0], string(method))
	}
}

func TestRetrieveMetadataFilter(t *testing.T) {
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	cfg := types.DefaultRetrievalConfig()
	cfg.MetadataFilter = map[string]any{"kind": "tutorial"}

	result, err := e.Retrieve(context.Background(), "Python", "docs", cfg)
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, "d3", result.IDs[0])
}

func TestRetrieveEmbeddingFailureFatal(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("provider down")}
	e := newTestEngine(seedStore(t), emb, Options{})

	for _, st := range []types.SearchType{types.SearchVector, types.SearchHybrid} {
		cfg := types.DefaultRetrievalConfig()
		cfg.SearchType = st

		_, err := e.Retrieve(context.Background(), "python", "docs", cfg)
		require.Error(t, err, string(st))

		var retErr *types.RetrievalError
		require.ErrorAs(t, err, &retErr)
		assert.Equal(t, "embedding", retErr.Stage)
	}
}

func TestRetrieveHybridDegradesOnKeywordFailure(t *testing.T) {
	store := &brokenListStore{Store: seedStore(t)}
	e := newTestEngine(store, &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	result, err := e.Retrieve(context.Background(), "python", "docs", types.DefaultRetrievalConfig())
	require.NoError(t, err)
	require.Equal(t, 3, result.Len())

	// Vector-only ordering, no keyword diagnostics
	assert.Equal(t, "d1", result.IDs[0])
	assert.Nil(t, result.KeywordScores)
}

func TestRetrieveKeywordFailureFatalInKeywordMode(t *testing.T) {
	store := &brokenListStore{Store: seedStore(t)}
	e := newTestEngine(store, &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	cfg := types.DefaultRetrievalConfig()
	cfg.SearchType = types.SearchKeyword

	_, err := e.Retrieve(context.Background(), "python", "docs", cfg)
	require.Error(t, err)

	var retErr *types.RetrievalError
	require.ErrorAs(t, err, &retErr)
	assert.Equal(t, "keyword_search", retErr.Stage)
}

func TestRetrieveRerankReplacesOrdering(t *testing.T) {
	rr := &stubReranker{results: []reranker.Result{
		{ID: "d3", Score: 0.99},
		{ID: "d1", Score: 0.42},
	}}
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{Reranker: rr})

	cfg := types.DefaultRetrievalConfig()
	cfg.RerankEnabled = true
	cfg.RerankProvider = types.RerankProviderJina
	cfg.RerankTopN = 2

	result, err := e.Retrieve(context.Background(), "Python", "docs", cfg)
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())

	assert.Equal(t, "d3", result.IDs[0])
	assert.InDelta(t, 0.99, result.Scores[0], 1e-9)
	assert.Equal(t, "d1", result.IDs[1])
	require.NotNil(t, result.RerankScores)
	assert.InDelta(t, 0.99, result.RerankScores["d3"], 1e-9)
}

func TestRetrieveRerankFailureFallsBack(t *testing.T) {
	rr := &stubReranker{err: reranker.ErrUnavailable}
	e := newTestEngine(seedStore(t), &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{Reranker: rr})

	cfg := types.DefaultRetrievalConfig()
	cfg.RerankEnabled = true
	cfg.RerankProvider = types.RerankProviderJina
	cfg.RerankTopN = 3

	result, err := e.Retrieve(context.Background(), "Python", "docs", cfg)
	require.NoError(t, err)

	// Pre-rerank ordering survives, no rerank scores reported
	assert.Equal(t, "d1", result.IDs[0])
	assert.Nil(t, result.RerankScores)
}

func TestRetrieveQueryCache(t *testing.T) {
	emb := &stubEmbedder{queryVec: []float32{1, 0, 0}}
	e := newTestEngine(seedStore(t), emb, Options{CacheSize: 16})

	cfg := types.DefaultRetrievalConfig()
	cfg.SearchType = types.SearchVector

	_, err := e.Retrieve(context.Background(), "python", "docs", cfg)
	require.NoError(t, err)
	_, err = e.Retrieve(context.Background(), "python", "docs", cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, emb.calls)

	// Invalidation forces a fresh search
	e.Invalidate("docs")
	_, err = e.Retrieve(context.Background(), "python", "docs", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)
}

func TestInvalidateScopedToCollection(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{queryVec: []float32{1, 0, 0}}

	store := seedStore(t)
	require.NoError(t, store.CreateCollection(ctx, "other", ""))
	require.NoError(t, store.AddDocuments(ctx, "other", []vectorstore.Document{
		{ID: "o1", Embedding: []float32{1, 0, 0}, Text: "Unrelated corpus", Metadata: map[string]any{}},
	}))

	e := newTestEngine(store, emb, Options{CacheSize: 16})

	cfg := types.DefaultRetrievalConfig()
	cfg.SearchType = types.SearchVector

	_, err := e.Retrieve(ctx, "python", "docs", cfg)
	require.NoError(t, err)
	_, err = e.Retrieve(ctx, "python", "other", cfg)
	require.NoError(t, err)
	require.Equal(t, 2, emb.calls)

	// Invalidating one collection must not evict the other's cached result
	e.Invalidate("docs")

	_, err = e.Retrieve(ctx, "python", "other", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.calls)

	_, err = e.Retrieve(ctx, "python", "docs", cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, emb.calls)
}

func TestInvalidateRebuildsKeywordIndex(t *testing.T) {
	ctx := context.Background()
	store := seedStore(t)
	e := newTestEngine(store, &stubEmbedder{queryVec: []float32{1, 0, 0}}, Options{})

	cfg := types.DefaultRetrievalConfig()
	cfg.SearchType = types.SearchKeyword

	result, err := e.Retrieve(ctx, "golang", "docs", cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())

	require.NoError(t, store.AddDocuments(ctx, "docs", []vectorstore.Document{
		{ID: "d4", Embedding: []float32{0, 0, 1}, Text: "Golang services scale well"},
	}))

	// Stale index until invalidated
	result, err = e.Retrieve(ctx, "golang", "docs", cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())

	e.Invalidate("docs")
	result, err = e.Retrieve(ctx, "golang", "docs", cfg)
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, "d4", result.IDs[0])
}
