package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDocs() []Document {
	return []Document{
		{ID: "a", Embedding: []float32{1, 0, 0}, Text: "first document", Metadata: map[string]any{"kind": "report"}},
		{ID: "b", Embedding: []float32{0, 1, 0}, Text: "second document", Metadata: map[string]any{"kind": "contract"}},
		{ID: "c", Embedding: []float32{0.9, 0.1, 0}, Text: "third document", Metadata: map[string]any{"kind": "report"}},
	}
}

func TestMemoryStoreCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	exists, err := s.CollectionExists(ctx, "docs", "")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateCollection(ctx, "docs", ""))

	exists, err = s.CollectionExists(ctx, "docs", "")
	require.NoError(t, err)
	assert.True(t, exists)

	err = s.CreateCollection(ctx, "docs", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMemoryStoreTenantNamespacing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateCollection(ctx, "docs", "org-1"))

	exists, _ := s.CollectionExists(ctx, "docs", "org-1")
	assert.True(t, exists)

	exists, _ = s.CollectionExists(ctx, "docs", "org-2")
	assert.False(t, exists)

	exists, _ = s.CollectionExists(ctx, "docs", "")
	assert.False(t, exists)
}

func TestMemoryStoreSearchRanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", seedDocs()))

	hits, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "c", hits[1].ID)
	assert.Equal(t, "b", hits[2].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestMemoryStoreSearchFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", seedDocs()))

	hits, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 10,
		map[string]any{"kind": "contract"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ID)
}

func TestMemoryStoreSearchTopK(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", seedDocs()))

	hits, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestMemoryStoreSearchMissingCollection(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Search(context.Background(), "absent", []float32{1}, 5, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDeleteDocuments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", seedDocs()))

	require.NoError(t, s.DeleteDocuments(ctx, "docs", []string{"a", "c"}))

	docs, err := s.ListDocuments(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].ID)
}

func TestMemoryStoreListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", seedDocs()))

	docs, err := s.ListDocuments(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
	assert.Equal(t, "c", docs[2].ID)
}

func TestMemoryStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", seedDocs()))

	require.NoError(t, s.AddDocuments(ctx, "docs", []Document{
		{ID: "a", Embedding: []float32{0, 0, 1}, Text: "replaced"},
	}))

	docs, _ := s.ListDocuments(ctx, "docs")
	require.Len(t, docs, 3)
	assert.Equal(t, "replaced", docs[0].Text)
}

func TestMatchesFilter(t *testing.T) {
	md := map[string]any{"kind": "report", "year": 2024}

	assert.True(t, MatchesFilter(md, nil))
	assert.True(t, MatchesFilter(md, map[string]any{"kind": "report"}))
	assert.True(t, MatchesFilter(md, map[string]any{"kind": "report", "year": 2024}))
	assert.False(t, MatchesFilter(md, map[string]any{"kind": "contract"}))
	assert.False(t, MatchesFilter(md, map[string]any{"missing": true}))
	assert.False(t, MatchesFilter(nil, map[string]any{"kind": "report"}))
}

func TestMatchesFilterNumericTypes(t *testing.T) {
	// Chunker metadata carries ints, JSON round trips turn them into
	// float64; both must hit the same documents.
	md := map[string]any{"page_number": 2, "score": 0.5}

	assert.True(t, MatchesFilter(md, map[string]any{"page_number": float64(2)}))
	assert.True(t, MatchesFilter(md, map[string]any{"page_number": 2}))
	assert.True(t, MatchesFilter(md, map[string]any{"page_number": int64(2)}))
	assert.True(t, MatchesFilter(md, map[string]any{"score": 0.5}))
	assert.False(t, MatchesFilter(md, map[string]any{"page_number": float64(3)}))
	assert.False(t, MatchesFilter(md, map[string]any{"page_number": "2"}))

	roundTripped := map[string]any{"page_number": float64(2)}
	assert.True(t, MatchesFilter(roundTripped, map[string]any{"page_number": 2}))
}

func TestMemoryStoreSearchFilterNumeric(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	require.NoError(t, s.CreateCollection(ctx, "docs", ""))
	require.NoError(t, s.AddDocuments(ctx, "docs", []Document{
		{ID: "p1", Embedding: []float32{1, 0, 0}, Text: "page one", Metadata: map[string]any{"page_number": 1}},
		{ID: "p2", Embedding: []float32{0, 1, 0}, Text: "page two", Metadata: map[string]any{"page_number": 2}},
	}))

	hits, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 10,
		map[string]any{"page_number": float64(2)})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p2", hits[0].ID)
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "docs", CollectionName("docs", ""))
	assert.Equal(t, "org-1:docs", CollectionName("docs", "org-1"))
}
