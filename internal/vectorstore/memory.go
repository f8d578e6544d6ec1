package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store. Used for tests and single-process
// deployments where persistence is not required.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	docs  map[string]Document
	order []string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

func (s *MemoryStore) CreateCollection(ctx context.Context, name, tenant string) error {
	key := CollectionName(name, tenant)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[key]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, key)
	}

	s.collections[key] = &memoryCollection{docs: make(map[string]Document)}
	return nil
}

func (s *MemoryStore) CollectionExists(ctx context.Context, name, tenant string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.collections[CollectionName(name, tenant)]
	return ok, nil
}

func (s *MemoryStore) AddDocuments(ctx context.Context, collection string, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, collection)
	}

	for _, doc := range docs {
		if _, exists := col.docs[doc.ID]; !exists {
			col.order = append(col.order, doc.ID)
		}
		col.docs[doc.ID] = doc
	}

	return nil
}

func (s *MemoryStore) Search(ctx context.Context, collection string, queryEmbedding []float32, topK int, filter map[string]any) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, collection)
	}

	if topK <= 0 {
		return []SearchHit{}, nil
	}

	hits := make([]SearchHit, 0, len(col.docs))
	for _, id := range col.order {
		doc := col.docs[id]
		if !MatchesFilter(doc.Metadata, filter) {
			continue
		}

		hits = append(hits, SearchHit{
			ID:       doc.ID,
			Text:     doc.Text,
			Metadata: doc.Metadata,
			Score:    cosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *MemoryStore) DeleteDocuments(ctx context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, collection)
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
		delete(col.docs, id)
	}

	kept := col.order[:0]
	for _, id := range col.order {
		if _, gone := drop[id]; !gone {
			kept = append(kept, id)
		}
	}
	col.order = kept

	return nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, collection)
	}

	docs := make([]Document, 0, len(col.order))
	for _, id := range col.order {
		docs = append(docs, col.docs[id])
	}
	return docs, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
