package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RecordStore owns the persisted transactions, categories and settings.
// Each collection is a single JSON document; every mutation rewrites it whole.
type RecordStore struct {
	kv     domain.KeyValueStore
	logger zerolog.Logger
	now    func() time.Time
	newID  func() (string, error)

	// mu serializes mutations so concurrent callers cannot lose updates
	mu sync.Mutex
}

// NewRecordStore creates a RecordStore backed by kv
func NewRecordStore(kv domain.KeyValueStore) *RecordStore {
	return &RecordStore{
		kv:     kv,
		logger: log.With().Str("component", "record_store").Logger(),
		now:    time.Now,
		newID:  newTimeOrderedID,
	}
}

// newTimeOrderedID returns a UUIDv7: a millisecond timestamp followed by random bits
func newTimeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Initialize seeds default categories, settings and an empty transaction list on
// first run. The sentinel is written last so a partially failed seed is retried.
func (s *RecordStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked(ctx)
}

func (s *RecordStore) initializeLocked(ctx context.Context) error {
	seeded, err := s.seeded(ctx)
	if err != nil || seeded {
		return err
	}

	if err := s.writeJSON(ctx, domain.KeyCategories, domain.DefaultCategories()); err != nil {
		return err
	}
	if err := s.writeJSON(ctx, domain.KeySettings, domain.DefaultSettings()); err != nil {
		return err
	}
	if err := s.writeJSON(ctx, domain.KeyTransactions, []domain.Transaction{}); err != nil {
		return err
	}
	if err := s.writeJSON(ctx, domain.KeyFirstLaunch, true); err != nil {
		return err
	}

	s.logger.Info().Msg("Seeded default categories and settings")
	return nil
}

// seeded reports whether the first-run sentinel is present
func (s *RecordStore) seeded(ctx context.Context) (bool, error) {
	_, err := s.kv.Get(ctx, domain.KeyFirstLaunch)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrKeyNotFound) {
		return false, nil
	}
	return false, s.storageFailure("get", domain.KeyFirstLaunch, err)
}

// GetTransactions returns every stored transaction, or an empty list if the
// collection is missing or unreadable.
func (s *RecordStore) GetTransactions(ctx context.Context) []domain.Transaction {
	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return []domain.Transaction{}
	}
	return txs
}

// GetTransactionsByDateRange returns transactions dated within [start, end]
func (s *RecordStore) GetTransactionsByDateRange(ctx context.Context, start, end time.Time) []domain.Transaction {
	out := []domain.Transaction{}
	for _, tx := range s.GetTransactions(ctx) {
		if !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out
}

// AddTransaction assigns an id and creation time and appends the record
func (s *RecordStore) AddTransaction(ctx context.Context, draft domain.TransactionDraft) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.uniqueID(func(id string) bool { return indexTransaction(txs, id) >= 0 })
	if err != nil {
		return nil, err
	}

	tx := domain.Transaction{
		ID:         id,
		Type:       draft.Type,
		Amount:     draft.Amount,
		CategoryID: draft.CategoryID,
		Date:       draft.Date,
		Comment:    copyString(draft.Comment),
		CreatedAt:  s.now().UTC(),
	}
	txs = append(txs, tx)

	if err := s.writeJSON(ctx, domain.KeyTransactions, txs); err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction merges patch onto the stored record and stamps UpdatedAt.
// Returns domain.ErrTransactionNotFound without writing if id is unknown.
func (s *RecordStore) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexTransaction(txs, id)
	if idx < 0 {
		return nil, domain.ErrTransactionNotFound
	}

	updated := patch.Apply(txs[idx])
	now := s.now().UTC()
	updated.UpdatedAt = &now
	txs[idx] = updated

	if err := s.writeJSON(ctx, domain.KeyTransactions, txs); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTransaction removes the record if present. Unknown ids are not an error.
func (s *RecordStore) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return err
	}

	kept := txs[:0]
	for _, tx := range txs {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	return s.writeJSON(ctx, domain.KeyTransactions, kept)
}

// GetCategories returns every stored category, or an empty list if the
// collection is missing or unreadable.
func (s *RecordStore) GetCategories(ctx context.Context) []domain.Category {
	cats, err := s.loadCategories(ctx)
	if err != nil {
		return []domain.Category{}
	}
	return cats
}

// GetCategoriesByType returns the categories of one transaction type
func (s *RecordStore) GetCategoriesByType(ctx context.Context, txType domain.TransactionType) []domain.Category {
	out := []domain.Category{}
	for _, c := range s.GetCategories(ctx) {
		if c.Type == txType {
			out = append(out, c)
		}
	}
	return out
}

// GetCategoryByID returns domain.ErrCategoryNotFound if id is unknown
func (s *RecordStore) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	cats := s.GetCategories(ctx)
	if idx := indexCategory(cats, id); idx >= 0 {
		return &cats[idx], nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (s *RecordStore) AddCategory(ctx context.Context, draft domain.CategoryDraft) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.uniqueID(func(id string) bool { return indexCategory(cats, id) >= 0 })
	if err != nil {
		return nil, err
	}

	cat := domain.Category{
		ID:    id,
		Name:  draft.Name,
		Type:  draft.Type,
		Icon:  draft.Icon,
		Color: draft.Color,
	}
	cats = append(cats, cat)

	if err := s.writeJSON(ctx, domain.KeyCategories, cats); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory returns domain.ErrCategoryNotFound without writing if id is unknown
func (s *RecordStore) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexCategory(cats, id)
	if idx < 0 {
		return nil, domain.ErrCategoryNotFound
	}

	cats[idx] = patch.Apply(cats[idx])
	updated := cats[idx]

	if err := s.writeJSON(ctx, domain.KeyCategories, cats); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory removes the category if present. It does not check for
// referencing transactions.
func (s *RecordStore) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.loadCategories(ctx)
	if err != nil {
		return err
	}

	kept := cats[:0]
	for _, c := range cats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.writeJSON(ctx, domain.KeyCategories, kept)
}

// GetSettings returns the stored settings, defaulting missing fields. A missing
// or unreadable document yields the defaults.
func (s *RecordStore) GetSettings(ctx context.Context) domain.Settings {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return domain.DefaultSettings()
	}
	return settings
}

// UpdateSettings merges patch onto the current settings and persists the result
func (s *RecordStore) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (*domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadSettings(ctx)
	if err != nil {
		// An undecodable settings blob is replaced by defaults; medium errors abort
		if !isDecodeFailure(err) {
			return nil, err
		}
		current = domain.DefaultSettings()
	}

	merged := patch.Apply(current)
	if err := s.writeJSON(ctx, domain.KeySettings, merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ResetAllData removes every collection and the sentinel, then re-seeds defaults.
// The sentinel goes first so an interrupted reset is completed by the next Initialize.
func (s *RecordStore) ResetAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := append([]string{domain.KeyFirstLaunch}, domain.CollectionKeys...)
	for _, key := range keys {
		if err := s.kv.Remove(ctx, key); err != nil {
			return s.storageFailure("remove", key, err)
		}
	}

	s.logger.Info().Msg("All data removed")
	return s.initializeLocked(ctx)
}

// ExportData snapshots all three collections. Unlike the plain getters it fails
// on an unreadable collection rather than exporting an empty one.
func (s *RecordStore) ExportData(ctx context.Context) (*domain.Snapshot, error) {
	txs, err := s.loadTransactions(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Snapshot{
		Transactions: txs,
		Categories:   cats,
		Settings:     &settings,
		ExportedAt:   s.now().UTC(),
	}, nil
}

// ImportData overwrites each collection present in snapshot. Absent (nil)
// collections are left untouched, or seeded with defaults on a store that was
// never initialized. Each key is written at most once.
func (s *RecordStore) ImportData(ctx context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded, err := s.seeded(ctx)
	if err != nil {
		return err
	}

	switch {
	case snapshot.Transactions != nil:
		err = s.writeJSON(ctx, domain.KeyTransactions, snapshot.Transactions)
	case !seeded:
		err = s.writeJSON(ctx, domain.KeyTransactions, []domain.Transaction{})
	}
	if err != nil {
		return err
	}

	switch {
	case snapshot.Categories != nil:
		err = s.writeJSON(ctx, domain.KeyCategories, snapshot.Categories)
	case !seeded:
		err = s.writeJSON(ctx, domain.KeyCategories, domain.DefaultCategories())
	}
	if err != nil {
		return err
	}

	switch {
	case snapshot.Settings != nil:
		err = s.writeJSON(ctx, domain.KeySettings, *snapshot.Settings)
	case !seeded:
		err = s.writeJSON(ctx, domain.KeySettings, domain.DefaultSettings())
	}
	if err != nil {
		return err
	}

	// Sentinel last, as in Initialize, so a later Initialize keeps the imported data
	if !seeded {
		if err := s.writeJSON(ctx, domain.KeyFirstLaunch, true); err != nil {
			return err
		}
	}

	s.logger.Info().
		Bool("transactions", snapshot.Transactions != nil).
		Bool("categories", snapshot.Categories != nil).
		Bool("settings", snapshot.Settings != nil).
		Bool("seeded", !seeded).
		Msg("Imported data")
	return nil
}

func (s *RecordStore) loadTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := s.readJSON(ctx, domain.KeyTransactions, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

func (s *RecordStore) loadCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	if err := s.readJSON(ctx, domain.KeyCategories, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

func (s *RecordStore) loadSettings(ctx context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	if err := s.readJSON(ctx, domain.KeySettings, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// errDecode marks a stored document that exists but cannot be decoded
var errDecode = errors.New("decode failed")

func isDecodeFailure(err error) bool {
	return errors.Is(err, errDecode)
}

// readJSON decodes key into dst. A missing key leaves dst untouched. Medium and
// decode errors are logged and wrapped in ErrStorageFailure.
func (s *RecordStore) readJSON(ctx context.Context, key string, dst any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return nil
		}
		return s.storageFailure("get", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return s.storageFailure("decode", key, fmt.Errorf("%w: %v", errDecode, err))
	}
	return nil
}

func (s *RecordStore) writeJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return s.storageFailure("encode", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return s.storageFailure("set", key, err)
	}
	return nil
}

func (s *RecordStore) storageFailure(op, key string, err error) error {
	s.logger.Error().Err(err).Str("op", op).Str("key", key).Msg("Storage operation failed")
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStorageFailure, op, key, err)
}

// uniqueID draws ids until taken reports false
func (s *RecordStore) uniqueID(taken func(string) bool) (string, error) {
	for {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("%w: generate id: %v", domain.ErrStorageFailure, err)
		}
		if !taken(id) {
			return id, nil
		}
	}
}

func indexTransaction(txs []domain.Transaction, id string) int {
	for i := range txs {
		if txs[i].ID == id {
			return i
		}
	}
	return -1
}

func indexCategory(cats []domain.Category, id string) int {
	for i := range cats {
		if cats[i].ID == id {
			return i
		}
	}
	return -1
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
