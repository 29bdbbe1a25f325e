package handlestore

import "sync"

// MemoryStore is a Store that lives as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uint64]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[uint64]Entry)}
}

func (m *MemoryStore) Get(inode uint64) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[inode]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *MemoryStore) Put(inode uint64, e Entry) error {
	m.mu.Lock()
	m.entries[inode] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(inode uint64) error {
	m.mu.Lock()
	delete(m.entries, inode)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
