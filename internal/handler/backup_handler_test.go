package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/testutil"
)

func TestBackupHandler_Disabled(t *testing.T) {
	env := newTestEnv(t)
	h := NewBackupHandler(service.NewBackupService(nil, env.ledger))

	c, rec := env.newContext(http.MethodPost, "/api/v1/backups", "")
	if err := h.CreateBackup(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusServiceUnavailable)
}

func TestBackupHandler_CreateListRestore(t *testing.T) {
	env := newTestEnv(t)
	repo := testutil.NewMockBackupRepository()
	h := NewBackupHandler(service.NewBackupService(repo, env.ledger))
	seedTransaction(t, env, domain.TransactionTypeIncome, "500", "101", time.Now())

	c, rec := env.newContext(http.MethodPost, "/api/v1/backups", "")
	if err := h.CreateBackup(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)
	var result service.BackupResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	c, rec = env.newContext(http.MethodGet, "/api/v1/backups", "")
	if err := h.ListBackups(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	if err := env.ledger.ResetAllData(context.Background()); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}

	c, rec = env.newContext(http.MethodPost, "/api/v1/backups/restore", `{"key": "`+result.Key+`"}`)
	if err := h.RestoreBackup(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNoContent)
	if len(env.ledger.Transactions(domain.TransactionFilter{})) != 1 {
		t.Error("Expected restored transaction")
	}
}

func TestBackupHandler_RestoreValidation(t *testing.T) {
	env := newTestEnv(t)
	h := NewBackupHandler(service.NewBackupService(testutil.NewMockBackupRepository(), env.ledger))

	c, rec := env.newContext(http.MethodPost, "/api/v1/backups/restore", `{}`)
	if err := h.RestoreBackup(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
	if !hasFieldError(decodeProblem(t, rec), "key", "INVALID_REQUIRED") {
		t.Error("Expected key=INVALID_REQUIRED")
	}

	c, rec = env.newContext(http.MethodPost, "/api/v1/backups/restore", `{"key": "backups/missing.json"}`)
	if err := h.RestoreBackup(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNotFound)
}
