package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KeyValueStore implements domain.KeyValueStore on the kv_store table.
// Each Set is a single upsert statement, so a failed write leaves the old row intact.
type KeyValueStore struct {
	pool *pgxpool.Pool
}

var _ domain.KeyValueStore = (*KeyValueStore)(nil)

// NewKeyValueStore creates a new KeyValueStore. The pool is owned by the caller
// until Close is called.
func NewKeyValueStore(pool *pgxpool.Pool) *KeyValueStore {
	return &KeyValueStore{pool: pool}
}

const (
	getValueSQL    = `SELECT value FROM kv_store WHERE key = $1`
	upsertValueSQL = `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteValueSQL = `DELETE FROM kv_store WHERE key = $1`
)

func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, getValueSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, upsertValueSQL, key, value)
	return err
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, deleteValueSQL, key)
	return err
}

// Close releases the connection pool
func (s *KeyValueStore) Close() error {
	s.pool.Close()
	return nil
}
