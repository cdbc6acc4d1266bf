package domain

import (
	"context"
	"time"
)

// Persisted keys
const (
	KeyTransactions = "transactions"
	KeyCategories   = "categories"
	KeySettings     = "settings"
	KeyFirstLaunch  = "first_launch"
)

// CollectionKeys lists the three persisted collections
var CollectionKeys = []string{KeyTransactions, KeyCategories, KeySettings}

// KeyValueStore is the string-keyed blob medium the record store persists into.
// A single Set must either fully replace the value or leave the old one intact.
type KeyValueStore interface {
	// Get returns ErrKeyNotFound when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove succeeds when the key is already absent
	Remove(ctx context.Context, key string) error
	Close() error
}

// Snapshot is the export/import envelope. On import a nil collection means the
// field was absent and the stored collection is left untouched.
type Snapshot struct {
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	Settings     *Settings     `json:"settings"`
	ExportedAt   time.Time     `json:"exportedAt"`
}
