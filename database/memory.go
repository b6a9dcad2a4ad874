package database

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemory returns an empty in-process store. A writable transaction holds
// the store's write lock until it ends.
func NewMemory() Store {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Backend() string { return BackendMemory }

func (s *memoryStore) Begin(_ context.Context, writable bool) (Tx, error) {
	if writable {
		s.mu.Lock()
	} else {
		s.mu.RLock()
	}
	tx := &memoryTx{store: s, writable: writable}
	if s.closed {
		tx.unlock()
		return nil, ErrClosed
	}
	if writable {
		tx.writes = make(map[string]memoryWrite)
	}
	return tx, nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}

type memoryWrite struct {
	value   []byte
	deleted bool
}

type memoryTx struct {
	store    *memoryStore
	writable bool
	writes   map[string]memoryWrite
	done     bool
}

func (tx *memoryTx) unlock() {
	if tx.writable {
		tx.store.mu.Unlock()
	} else {
		tx.store.mu.RUnlock()
	}
}

func (tx *memoryTx) Get(_ context.Context, key string) ([]byte, bool, error) {
	if tx.done {
		return nil, false, ErrTxDone
	}
	if w, ok := tx.writes[key]; ok {
		if w.deleted {
			return nil, false, nil
		}
		return clone(w.value), true, nil
	}
	v, ok := tx.store.data[key]
	return clone(v), ok, nil
}

func (tx *memoryTx) Set(_ context.Context, key string, value []byte) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	tx.writes[key] = memoryWrite{value: clone(value)}
	return nil
}

func (tx *memoryTx) Delete(_ context.Context, key string) error {
	if err := tx.checkWritable(); err != nil {
		return err
	}
	tx.writes[key] = memoryWrite{deleted: true}
	return nil
}

func (tx *memoryTx) Scan(_ context.Context, prefix string) ([]KeyValue, error) {
	if tx.done {
		return nil, ErrTxDone
	}
	merged := make(map[string][]byte)
	for k, v := range tx.store.data {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	for k, w := range tx.writes {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if w.deleted {
			delete(merged, k)
		} else {
			merged[k] = w.value
		}
	}
	out := make([]KeyValue, 0, len(merged))
	for k, v := range merged {
		out = append(out, KeyValue{Key: k, Value: clone(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (tx *memoryTx) Commit(_ context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	for k, w := range tx.writes {
		if w.deleted {
			delete(tx.store.data, k)
		} else {
			tx.store.data[k] = w.value
		}
	}
	tx.unlock()
	return nil
}

func (tx *memoryTx) Cancel(_ context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.writes = nil
	tx.unlock()
	return nil
}

func (tx *memoryTx) checkWritable() error {
	if tx.done {
		return ErrTxDone
	}
	if !tx.writable {
		return ErrReadOnly
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
