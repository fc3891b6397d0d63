package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
)

// MemoryScheduleStore is a process-local map. Nothing survives the process.
type MemoryScheduleStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ contract.ScheduleStore = &MemoryScheduleStore{} // Compile-time check

// NewMemoryScheduleStore returns an empty in-memory store.
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{entries: make(map[string][]byte)}
}

// Get implements the ScheduleStore interface.
func (s *MemoryScheduleStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, contract.ErrNotFound
	}
	return slices.Clone(v), nil
}

// PutIfAbsent implements the ScheduleStore interface.
func (s *MemoryScheduleStore) PutIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = slices.Clone(value)
	return true, nil
}

// Set overwrites key unconditionally. Tests use it to plant corrupt records.
func (s *MemoryScheduleStore) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = slices.Clone(value)
}

// Keys implements the ScheduleStore interface.
func (s *MemoryScheduleStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.entries)), nil
}

// Delete implements the ScheduleStore interface.
func (s *MemoryScheduleStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close implements the ScheduleStore interface.
func (s *MemoryScheduleStore) Close() error { return nil }

// GetStatus implements the ScheduleStore interface.
func (s *MemoryScheduleStore) GetStatus(ctx context.Context) (schema.ScheduleStoreStatus, error) {
	keys, _ := s.Keys(ctx)
	status := schema.ScheduleStoreStatus{
		Backend:      string(schema.MemoryBackend),
		Location:     "process memory",
		Connected:    true,
		TotalEntries: len(keys),
	}
	if len(keys) > 0 {
		status.OldestKey = keys[0]
		status.NewestKey = keys[len(keys)-1]
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.entries {
		status.SizeBytes += int64(len(v))
	}
	return status, nil
}
