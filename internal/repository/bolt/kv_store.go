package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// BucketName holds every persisted key
const BucketName = "budgetbook"

// KeyValueStore implements domain.KeyValueStore on a single bbolt file
type KeyValueStore struct {
	db *bolt.DB
}

var _ domain.KeyValueStore = (*KeyValueStore)(nil)

// Open opens (or creates) the database file at path and ensures the bucket exists
func Open(path string) (*KeyValueStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketName)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketName, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &KeyValueStore{db: db}, nil
}

// Get returns a copy of the stored value; bbolt slices are only valid inside the tx
func (s *KeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketName)
		}

		data := b.Get([]byte(key))
		if data == nil {
			return domain.ErrKeyNotFound
		}
		value = append([]byte(nil), data...)
		return nil
	})
	return value, err
}

func (s *KeyValueStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketName)
		}
		return b.Put([]byte(key), value)
	})
}

func (s *KeyValueStore) Remove(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketName))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketName)
		}
		return b.Delete([]byte(key))
	})
}

// Close closes the database file
func (s *KeyValueStore) Close() error {
	return s.db.Close()
}
