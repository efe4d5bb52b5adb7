package sink

import (
	"context"
	"sync"

	"github.com/jfmyers9/albumlog/internal/album"
)

// MemoryStore keeps the tables in process. It is used for dry runs and
// by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	current *album.CurrentNormalized
	rows    []album.HistoryRow
	closed  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// WriteCurrent replaces the current album.
func (m *MemoryStore) WriteCurrent(ctx context.Context, current album.CurrentNormalized) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := current
	m.current = &c
	return nil
}

// WriteHistory replaces the history rows.
func (m *MemoryStore) WriteHistory(ctx context.Context, rows []album.HistoryRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append([]album.HistoryRow{}, rows...)
	return nil
}

// ReplaceAll replaces both tables under one lock.
func (m *MemoryStore) ReplaceAll(ctx context.Context, current album.CurrentNormalized, rows []album.HistoryRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := current
	m.current = &c
	m.rows = append([]album.HistoryRow{}, rows...)
	return nil
}

// ReadAll returns copies of both tables.
func (m *MemoryStore) ReadAll(ctx context.Context) (album.CurrentNormalized, []album.HistoryRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return album.CurrentNormalized{}, nil, ErrNoData
	}
	return *m.current, append([]album.HistoryRow{}, m.rows...), nil
}

// Close marks the store closed. The data stays readable.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MemoryStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.closed
}
