package memory

import (
	"context"
	"sync"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
)

// KeyValueStore is a process-local domain.KeyValueStore, used for demos and
// ephemeral runs. Contents are lost on exit.
type KeyValueStore struct {
	data map[string][]byte
	mu   sync.RWMutex
}

var _ domain.KeyValueStore = (*KeyValueStore)(nil)

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{data: make(map[string][]byte)}
}

func (s *KeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *KeyValueStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *KeyValueStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *KeyValueStore) Close() error {
	return nil
}
