package memory

import (
	"context"
	"sync"
)

// RecordStore is an in-memory implementation of app.RecordStore. Contents are lost on exit.
type RecordStore struct {
	mu          sync.Mutex
	collections map[string][]byte
	counters    map[string]int64
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		collections: make(map[string][]byte),
		counters:    make(map[string]int64),
	}
}

func (s *RecordStore) Load(_ context.Context, collection string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.collections[collection]), nil
}

func (s *RecordStore) Save(_ context.Context, collection string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = clone(data)
	return nil
}

// Modify holds the store lock for the whole cycle, so fn must not call back into the store.
func (s *RecordStore) Modify(_ context.Context, collection string, fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(clone(s.collections[collection]))
	if err != nil {
		return err
	}
	s.collections[collection] = clone(next)
	return nil
}

func (s *RecordStore) NextID(_ context.Context, collection string, floor int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.counters[collection]
	if floor > current {
		current = floor
	}
	current++
	s.counters[collection] = current
	return current, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
