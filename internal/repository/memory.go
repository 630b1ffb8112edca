package repository

import (
	"context"
	"errors"
	"sync"
)

var errReadOnlyTx = errors.New("read-only transaction")

// MemoryStore in-memory хранилище. Update держит блокировку записи,
// изменения применяются только при успешном завершении fn.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memoryTx{store: m})
}

func (m *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{store: m, writable: true, staged: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, v := range tx.staged {
		if v == nil {
			delete(m.data, k)
			continue
		}
		m.data[k] = v
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// memoryTx читает сначала staged-записи, потом данные хранилища.
// nil в staged означает удаление.
type memoryTx struct {
	store    *MemoryStore
	writable bool
	staged   map[string][]byte
}

func (t *memoryTx) Get(key string) ([]byte, error) {
	if v, ok := t.staged[key]; ok {
		if v == nil {
			return nil, ErrNotFound
		}
		return clone(v), nil
	}
	v, ok := t.store.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (t *memoryTx) Put(key string, value []byte) error {
	if !t.writable {
		return errReadOnlyTx
	}
	if value == nil {
		value = []byte{}
	}
	t.staged[key] = clone(value)
	return nil
}

func (t *memoryTx) Delete(key string) error {
	if !t.writable {
		return errReadOnlyTx
	}
	t.staged[key] = nil
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
