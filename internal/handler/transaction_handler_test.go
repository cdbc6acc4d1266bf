package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func seedTransaction(t *testing.T, env *testEnv, txType domain.TransactionType, amount, categoryID string, date time.Time) *domain.Transaction {
	t.Helper()
	tx, err := env.ledger.AddTransaction(context.Background(), domain.TransactionDraft{
		Type:       txType,
		Amount:     decimal.RequireFromString(amount),
		CategoryID: categoryID,
		Date:       date,
	})
	if err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}
	return tx
}

func TestCreateTransaction_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	body := `{"type": "expense", "amount": "50.00", "categoryId": "1", "date": "2024-06-01", "comment": "groceries"}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", body)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.ID == "" {
		t.Error("Expected an id to be assigned")
	}
	if response.Amount != "50.00" {
		t.Errorf("Expected amount '50.00', got %s", response.Amount)
	}
	if response.FormattedAmount != "$50.00" {
		t.Errorf("Expected formatted amount '$50.00', got %s", response.FormattedAmount)
	}
	if response.Date != "2024-06-01T00:00:00Z" {
		t.Errorf("Expected date '2024-06-01T00:00:00Z', got %s", response.Date)
	}
	if response.Comment == nil || *response.Comment != "groceries" {
		t.Errorf("Expected comment 'groceries', got %v", response.Comment)
	}
	if !env.ledger.Balance().Equal(decimal.NewFromInt(-50)) {
		t.Errorf("Expected balance -50, got %s", env.ledger.Balance())
	}
}

func TestCreateTransaction_NumericAmount(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	body := `{"type": "income", "amount": 1000, "categoryId": "101", "date": "2024-06-01T10:30:00Z"}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", body)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)
}

func TestCreateTransaction_ValidationCodes(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	body := `{"type": "expense", "amount": -5}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", body)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)

	problem := decodeProblem(t, rec)
	if problem.Type != ErrorTypeValidation {
		t.Errorf("Expected validation problem type, got %s", problem.Type)
	}
	for field, code := range map[string]string{
		"amount":   domain.CodeInvalidAmount,
		"category": domain.CodeSelectCategory,
		"date":     domain.CodeSelectDate,
	} {
		if !hasFieldError(problem, field, code) {
			t.Errorf("Expected %s=%s in %+v", field, code, problem.Errors)
		}
	}
	if len(env.ledger.Transactions(domain.TransactionFilter{})) != 0 {
		t.Error("Expected nothing to be stored")
	}
}

func TestCreateTransaction_InvalidTypeAndDate(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	body := `{"type": "transfer", "amount": "5", "categoryId": "1", "date": "June 1st"}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", body)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)

	problem := decodeProblem(t, rec)
	if !hasFieldError(problem, "type", domain.CodeInvalidType) {
		t.Errorf("Expected type=INVALID_TYPE in %+v", problem.Errors)
	}
	if !hasFieldError(problem, "date", domain.CodeSelectDate) {
		t.Errorf("Expected date=SELECT_DATE in %+v", problem.Errors)
	}
}

func TestCreateTransaction_TagAndDomainErrorsMerged(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	body := `{"type": "bogus", "amount": -5, "date": "2024-06-01"}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", body)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)

	problem := decodeProblem(t, rec)
	for field, code := range map[string]string{
		"type":     domain.CodeInvalidType,
		"amount":   domain.CodeInvalidAmount,
		"category": domain.CodeSelectCategory,
	} {
		if !hasFieldError(problem, field, code) {
			t.Errorf("Expected %s=%s in %+v", field, code, problem.Errors)
		}
	}
	if len(problem.Errors) != 3 {
		t.Errorf("Expected 3 field errors, got %+v", problem.Errors)
	}
}

func TestCreateTransaction_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", `{"amount": "abc"`)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestCreateTransaction_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	env.kv.SetFn = func(string, []byte) error { return context.DeadlineExceeded }

	body := `{"type": "expense", "amount": "5", "categoryId": "1", "date": "2024-06-01"}`
	c, rec := env.newContext(http.MethodPost, "/api/v1/transactions", body)

	if err := h.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusInternalServerError)
	if decodeProblem(t, rec).Type != ErrorTypeInternal {
		t.Error("Expected internal problem type")
	}
}

func TestGetTransactions_FilterByType(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, env, domain.TransactionTypeIncome, "20", "101", time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, env, domain.TransactionTypeExpense, "30", "2", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))

	c, rec := env.newContext(http.MethodGet, "/api/v1/transactions?type=expense", "")
	if err := h.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response []TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 expenses, got %d", len(response))
	}
	if response[0].Amount != "30.00" {
		t.Errorf("Expected newest first, got %s", response[0].Amount)
	}
}

func TestGetTransactions_AllAndInvalidType(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Now())

	c, rec := env.newContext(http.MethodGet, "/api/v1/transactions?type=all", "")
	if err := h.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	c, rec = env.newContext(http.MethodGet, "/api/v1/transactions?type=transfer", "")
	if err := h.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestGetTransactions_FilterByMonth(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC))
	seedTransaction(t, env, domain.TransactionTypeExpense, "20", "1", time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC))
	seedTransaction(t, env, domain.TransactionTypeExpense, "30", "1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	c, rec := env.newContext(http.MethodGet, "/api/v1/transactions?year=2024&month=2", "")
	if err := h.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response []TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 || response[0].Amount != "20.00" {
		t.Errorf("Expected only the February transaction, got %+v", response)
	}

	c, rec = env.newContext(http.MethodGet, "/api/v1/transactions?month=2", "")
	if err := h.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestGetTransactionsByRange(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))

	c, rec := env.newContext(http.MethodGet, "/api/v1/transactions/range?start=2024-06-01&end=2024-06-30", "")
	if err := h.GetTransactionsByRange(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response []TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("Expected inclusive range to return 2, got %d", len(response))
	}
}

func TestGetTransactionsByRange_EndBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))

	c, rec := env.newContext(http.MethodGet, "/api/v1/transactions/range?start=2024-06-30&end=2024-06-01", "")
	if err := h.GetTransactionsByRange(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response []TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 0 {
		t.Errorf("Expected an empty list, got %d", len(response))
	}
}

func TestGetTransactionsByRange_MissingParams(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	c, rec := env.newContext(http.MethodGet, "/api/v1/transactions/range?start=2024-06-01", "")
	if err := h.GetTransactionsByRange(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
	if !hasFieldError(decodeProblem(t, rec), "end", domain.CodeSelectDate) {
		t.Error("Expected end=SELECT_DATE")
	}
}

func TestUpdateTransaction_Success(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	tx := seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	c, rec := env.newContext(http.MethodPut, "/api/v1/transactions/"+tx.ID, `{"amount": "12.34", "categoryId": "2"}`)
	c.SetParamNames("id")
	c.SetParamValues(tx.ID)

	if err := h.UpdateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "12.34" || response.CategoryID != "2" {
		t.Errorf("Expected merged fields, got %+v", response)
	}
	if response.UpdatedAt == nil {
		t.Error("Expected updatedAt to be set")
	}
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)

	c, rec := env.newContext(http.MethodPut, "/api/v1/transactions/missing", `{"amount": "1"}`)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.UpdateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusNotFound)
	if len(env.kv.SetCalls) != 0 {
		t.Errorf("Expected no writes, got %v", env.kv.SetCalls)
	}
}

func TestUpdateTransaction_InvalidMerge(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	tx := seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Now())

	c, rec := env.newContext(http.MethodPut, "/api/v1/transactions/"+tx.ID, `{"amount": "1000000"}`)
	c.SetParamNames("id")
	c.SetParamValues(tx.ID)

	if err := h.UpdateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)
	if !hasFieldError(decodeProblem(t, rec), "amount", domain.CodeInvalidAmount) {
		t.Error("Expected amount=INVALID_AMOUNT")
	}
}

func TestUpdateTransaction_TagAndDomainErrorsMerged(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	tx := seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Now())

	c, rec := env.newContext(http.MethodPut, "/api/v1/transactions/"+tx.ID, `{"type": "bogus", "amount": "0"}`)
	c.SetParamNames("id")
	c.SetParamValues(tx.ID)

	if err := h.UpdateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expectStatus(t, rec, http.StatusBadRequest)

	problem := decodeProblem(t, rec)
	if !hasFieldError(problem, "type", domain.CodeInvalidType) {
		t.Errorf("Expected type=INVALID_TYPE in %+v", problem.Errors)
	}
	if !hasFieldError(problem, "amount", domain.CodeInvalidAmount) {
		t.Errorf("Expected amount=INVALID_AMOUNT in %+v", problem.Errors)
	}
	if len(env.kv.SetCalls) != 0 {
		t.Errorf("Expected no writes, got %v", env.kv.SetCalls)
	}
}

func TestDeleteTransaction(t *testing.T) {
	env := newTestEnv(t)
	h := NewTransactionHandler(env.ledger)
	tx := seedTransaction(t, env, domain.TransactionTypeExpense, "10", "1", time.Now())

	for _, id := range []string{tx.ID, "missing"} {
		c, rec := env.newContext(http.MethodDelete, "/api/v1/transactions/"+id, "")
		c.SetParamNames("id")
		c.SetParamValues(id)

		if err := h.DeleteTransaction(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		expectStatus(t, rec, http.StatusNoContent)
	}

	if len(env.ledger.Transactions(domain.TransactionFilter{})) != 0 {
		t.Error("Expected transaction to be removed")
	}
}
