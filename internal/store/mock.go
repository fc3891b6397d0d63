package store

import (
	"context"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetScheduleStore implements the StoreManager interface.
func (m *MockStoreManager) GetScheduleStore() contract.ScheduleStore {
	ret := m.Called()
	s, _ := ret.Get(0).(contract.ScheduleStore)
	return s
}

// GetHistoryStore implements the StoreManager interface.
func (m *MockStoreManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	s, _ := ret.Get(0).(contract.HistoryStore)
	return s
}

// MockScheduleStore is a mock implementation of ScheduleStore for testing.
type MockScheduleStore struct {
	mock.Mock
}

var _ contract.ScheduleStore = &MockScheduleStore{} // Compile-time check

// Get implements the ScheduleStore interface.
func (m *MockScheduleStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// PutIfAbsent implements the ScheduleStore interface.
func (m *MockScheduleStore) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

// Keys implements the ScheduleStore interface.
func (m *MockScheduleStore) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// Delete implements the ScheduleStore interface.
func (m *MockScheduleStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetStatus implements the ScheduleStore interface.
func (m *MockScheduleStore) GetStatus(ctx context.Context) (schema.ScheduleStoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.ScheduleStoreStatus), args.Error(1)
}

// Close implements the ScheduleStore interface.
func (m *MockScheduleStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(ctx context.Context, startedAt time.Time, scheduleDate string) (string, error) {
	args := m.Called(ctx, startedAt, scheduleDate)
	return args.String(0), args.Error(1)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(ctx context.Context, runID string, result schema.RunResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

// ListRuns implements the HistoryStore interface.
func (m *MockHistoryStore) ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]schema.RunRecord)
	return records, args.Error(1)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus(ctx context.Context) (schema.HistoryStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
