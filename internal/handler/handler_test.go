package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

// testEnv wires a ledger over an in-memory mock store
type testEnv struct {
	e      *echo.Echo
	kv     *testutil.MockKeyValueStore
	ledger *service.LedgerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	kv := testutil.NewMockKeyValueStore()
	ledger := service.NewLedgerService(service.NewRecordStore(kv))
	if err := ledger.Load(context.Background()); err != nil {
		t.Fatalf("Failed to load ledger: %v", err)
	}
	kv.ResetCalls()

	e := echo.New()
	e.Validator = NewRequestValidator()
	return &testEnv{e: e, kv: kv, ledger: ledger}
}

// newContext builds an echo context for a request with an optional JSON body
func (env *testEnv) newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	return problem
}

func hasFieldError(problem ProblemDetails, field, message string) bool {
	for _, fe := range problem.Errors {
		if fe.Field == field && fe.Message == message {
			return true
		}
	}
	return false
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
