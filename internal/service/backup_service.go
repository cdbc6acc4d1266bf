package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/repository/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BackupPrefix is the object key prefix for ledger snapshots
const BackupPrefix = "backups/"

// BackupService copies ledger snapshots to and from object storage
type BackupService struct {
	repo   storage.BackupRepository
	ledger *LedgerService
	logger zerolog.Logger
}

// NewBackupService creates a BackupService. A nil repo disables backups.
func NewBackupService(repo storage.BackupRepository, ledger *LedgerService) *BackupService {
	return &BackupService{
		repo:   repo,
		ledger: ledger,
		logger: log.With().Str("component", "backup_service").Logger(),
	}
}

// Enabled reports whether an object store is configured
func (s *BackupService) Enabled() bool {
	return s.repo != nil
}

// BackupResult describes an uploaded snapshot
type BackupResult struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	ExportedAt time.Time `json:"exportedAt"`
}

// BackupKey returns the object key for a snapshot exported at t
func BackupKey(t time.Time) string {
	return BackupPrefix + t.UTC().Format("20060102T150405.000Z") + ".json"
}

// Backup exports the ledger and uploads it
func (s *BackupService) Backup(ctx context.Context) (*BackupResult, error) {
	if !s.Enabled() {
		return nil, domain.ErrBackupsDisabled
	}

	snapshot, err := s.ledger.ExportData(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := BackupKey(snapshot.ExportedAt)
	if err := s.repo.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("failed to upload backup: %w", err)
	}

	s.logger.Info().Str("key", key).Int("bytes", len(data)).Msg("Backup uploaded")
	return &BackupResult{Key: key, Size: int64(len(data)), ExportedAt: snapshot.ExportedAt}, nil
}

// List returns stored backups, newest first
func (s *BackupService) List(ctx context.Context) ([]storage.BackupObject, error) {
	if !s.Enabled() {
		return nil, domain.ErrBackupsDisabled
	}
	objects, err := s.repo.List(ctx, BackupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	if objects == nil {
		objects = []storage.BackupObject{}
	}
	return objects, nil
}

// Restore downloads the snapshot at key and imports it
func (s *BackupService) Restore(ctx context.Context, key string) error {
	if !s.Enabled() {
		return domain.ErrBackupsDisabled
	}
	if !strings.HasPrefix(key, BackupPrefix) || !strings.HasSuffix(key, ".json") {
		return fmt.Errorf("%w: backup key must match %s*.json", domain.ErrInvalidInput, BackupPrefix)
	}

	data, err := s.repo.Get(ctx, key)
	if err != nil {
		return err
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("%w: backup is not a valid snapshot: %v", domain.ErrInvalidInput, err)
	}

	if err := s.ledger.ImportData(ctx, snapshot); err != nil {
		return err
	}

	s.logger.Info().Str("key", key).Msg("Backup restored")
	return nil
}
