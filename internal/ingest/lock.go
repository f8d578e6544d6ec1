package ingest

import (
	"sync"
	"sync/atomic"
)

// collectionLock is a non-blocking lock guarding a single collection's
// ingest runs. Writers that cannot acquire it fail fast instead of queueing.
type collectionLock struct {
	state atomic.Int32
}

// TryAcquire attempts to take the lock without blocking. Returns true when
// the caller now holds it.
func (l *collectionLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release returns the lock to the free state
func (l *collectionLock) Release() {
	l.state.Store(0)
}

// lockTable hands out one collectionLock per collection name
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*collectionLock
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*collectionLock)}
}

func (t *lockTable) get(collection string) *collectionLock {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[collection]
	if !ok {
		l = &collectionLock{}
		t.locks[collection] = l
	}
	return l
}
