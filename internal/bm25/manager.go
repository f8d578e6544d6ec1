package bm25

import "sync"

// Manager owns one BM25 index per collection. Builds for the same collection
// are serialized; readers always observe either the previous complete index
// or the newly built one, never a partial state.
type Manager struct {
	mu      sync.RWMutex
	indexes map[string]*Index

	buildMu sync.Mutex
	builds  map[string]*sync.Mutex
}

// NewManager returns an empty registry
func NewManager() *Manager {
	return &Manager{
		indexes: make(map[string]*Index),
		builds:  make(map[string]*sync.Mutex),
	}
}

// Build constructs a fresh index for the collection and swaps it in
// atomically. Concurrent builds of the same collection queue behind each
// other; builds of different collections do not interact.
func (m *Manager) Build(collectionID string, docs []Document) *Index {
	lock := m.buildLock(collectionID)
	lock.Lock()
	defer lock.Unlock()

	idx := NewIndex(docs)

	m.mu.Lock()
	m.indexes[collectionID] = idx
	m.mu.Unlock()

	return idx
}

// Get returns the collection's current index, if one has been built
func (m *Manager) Get(collectionID string) (*Index, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.indexes[collectionID]
	return idx, ok
}

// Invalidate drops the collection's index so the next search rebuilds it
func (m *Manager) Invalidate(collectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.indexes, collectionID)
}

func (m *Manager) buildLock(collectionID string) *sync.Mutex {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	lock, ok := m.builds[collectionID]
	if !ok {
		lock = &sync.Mutex{}
		m.builds[collectionID] = lock
	}
	return lock
}
