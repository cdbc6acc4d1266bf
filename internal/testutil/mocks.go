package testutil

import (
	"context"
	"sync"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/repository/storage"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/websocket"
)

// MockKeyValueStore is a mock implementation of domain.KeyValueStore.
// The *Fn hooks, when set, run before the default map behavior and can inject failures.
type MockKeyValueStore struct {
	Data     map[string][]byte
	GetFn    func(key string) ([]byte, error)
	SetFn    func(key string, value []byte) error
	RemoveFn func(key string) error

	// SetCalls records every key written, in order
	SetCalls []string
	mu       sync.Mutex
}

// NewMockKeyValueStore creates a new MockKeyValueStore
func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{
		Data: make(map[string][]byte),
	}
}

// Get retrieves a raw value
func (m *MockKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(key)
	}
	value, ok := m.Data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a raw value
func (m *MockKeyValueStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetFn != nil {
		if err := m.SetFn(key, value); err != nil {
			return err
		}
	}
	m.SetCalls = append(m.SetCalls, key)
	m.Data[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes a key
func (m *MockKeyValueStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RemoveFn != nil {
		if err := m.RemoveFn(key); err != nil {
			return err
		}
	}
	delete(m.Data, key)
	return nil
}

// Close does nothing
func (m *MockKeyValueStore) Close() error {
	return nil
}

// Raw returns the stored value as a string, for assertions
func (m *MockKeyValueStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.Data[key]
	return string(value), ok
}

// ResetCalls clears the recorded writes
func (m *MockKeyValueStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = nil
}

// MockBackupRepository is a mock implementation of storage.BackupRepository
type MockBackupRepository struct {
	Objects map[string][]byte
	PutFn   func(key string, data []byte) error
}

var _ storage.BackupRepository = (*MockBackupRepository)(nil)

// NewMockBackupRepository creates a new MockBackupRepository
func NewMockBackupRepository() *MockBackupRepository {
	return &MockBackupRepository{Objects: make(map[string][]byte)}
}

// Put stores an object
func (m *MockBackupRepository) Put(_ context.Context, key string, data []byte) error {
	if m.PutFn != nil {
		if err := m.PutFn(key, data); err != nil {
			return err
		}
	}
	m.Objects[key] = append([]byte(nil), data...)
	return nil
}

// Get retrieves an object
func (m *MockBackupRepository) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.Objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// List returns all objects with the given prefix
func (m *MockBackupRepository) List(_ context.Context, prefix string) ([]storage.BackupObject, error) {
	var objects []storage.BackupObject
	for key, data := range m.Objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			objects = append(objects, storage.BackupObject{Key: key, Size: int64(len(data))})
		}
	}
	return objects, nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	Events []websocket.Event
	mu     sync.Mutex
}

var _ websocket.EventPublisher = (*MockEventPublisher)(nil)

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the recorded event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}
