package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
)

func TestExportImport_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	h := NewDataHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "42.00", "1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	c, rec := env.newContext(http.MethodGet, "/api/v1/data/export", "")
	if err := h.ExportData(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Errorf("Expected attachment disposition, got %q", rec.Header().Get("Content-Disposition"))
	}
	exported := rec.Body.String()

	c, rec = env.newContext(http.MethodPost, "/api/v1/data/reset", "")
	if err := h.ResetData(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNoContent)
	if len(env.ledger.Transactions(domain.TransactionFilter{})) != 0 {
		t.Fatal("Expected reset to clear transactions")
	}

	c, rec = env.newContext(http.MethodPost, "/api/v1/data/import", exported)
	if err := h.ImportData(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNoContent)

	txs := env.ledger.Transactions(domain.TransactionFilter{})
	if len(txs) != 1 || txs[0].Amount.StringFixed(2) != "42.00" {
		t.Errorf("Expected imported transaction, got %+v", txs)
	}
}

func TestImportData_PartialSnapshot(t *testing.T) {
	env := newTestEnv(t)
	h := NewDataHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "1", "1", time.Now())

	body := `{"settings": {"currency": "UAH", "theme": "dark", "notifications": true, "language": "ru"}}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/data/import", body)
	if err := h.ImportData(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNoContent)

	if len(env.ledger.Transactions(domain.TransactionFilter{})) != 1 {
		t.Error("Expected transactions absent from the snapshot to be kept")
	}
	if env.ledger.Preferences().Currency.Symbol != "₴" {
		t.Errorf("Expected ₴, got %s", env.ledger.Preferences().Currency.Symbol)
	}
}

func TestImportData_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	h := NewDataHandler(env.ledger)

	c, rec := env.newContext(http.MethodPost, "/api/v1/data/import", `{"transactions": "nope"}`)
	if err := h.ImportData(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestExportData_CorruptStore(t *testing.T) {
	env := newTestEnv(t)
	h := NewDataHandler(env.ledger)
	env.kv.Data[domain.KeyTransactions] = []byte("{")

	c, rec := env.newContext(http.MethodGet, "/api/v1/data/export", "")
	if err := h.ExportData(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusInternalServerError)
}
