package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	ledger *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// CreateTransactionRequest represents the create transaction request body.
// Amount accepts a JSON number or a decimal string.
type CreateTransactionRequest struct {
	Type       string          `json:"type" validate:"omitempty,entry_type"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
	Date       string          `json:"date" validate:"omitempty,entry_date"`
	Comment    *string         `json:"comment"`
}

// UpdateTransactionRequest represents the update transaction request body.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Type       *string          `json:"type" validate:"omitempty,entry_type"`
	Amount     *decimal.Decimal `json:"amount"`
	CategoryID *string          `json:"categoryId"`
	Date       *string          `json:"date" validate:"omitempty,entry_date"`
	Comment    *string          `json:"comment"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	FormattedAmount string  `json:"formattedAmount"`
	CategoryID      string  `json:"categoryId"`
	Date            string  `json:"date"`
	Comment         *string `json:"comment,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       *string `json:"updatedAt,omitempty"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	tagErrs, ok, err := bindAndCollect(c, &req)
	if !ok {
		return err
	}

	draft := domain.TransactionDraft{
		Type:       domain.TransactionType(req.Type),
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Comment:    req.Comment,
	}
	if req.Date != "" {
		draft.Date, _ = parseDate(req.Date)
	}
	if len(tagErrs) > 0 {
		return mergedValidationError(c, tagErrs, domain.ValidateTransaction(draft))
	}

	tx, err := h.ledger.AddTransaction(c.Request().Context(), draft)
	if err != nil {
		return respondError(c, err, "create transaction")
	}

	log.Info().Str("transaction_id", tx.ID).Str("type", string(tx.Type)).Msg("Transaction created")
	return c.JSON(http.StatusCreated, h.toResponse(*tx))
}

// GetTransactions handles GET /api/v1/transactions?type=all|income|expense
// Optional start/end bound the date range; year+month selects one UTC month.
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	var filter domain.TransactionFilter

	switch t := c.QueryParam("type"); t {
	case "", "all":
	default:
		txType := domain.TransactionType(t)
		if !txType.IsValid() {
			return NewValidationError(c, "Invalid type filter", []ValidationError{
				{Field: "type", Message: domain.CodeInvalidType},
			})
		}
		filter.Type = &txType
	}

	if s := c.QueryParam("start"); s != "" {
		start, err := parseDate(s)
		if err != nil {
			return NewValidationError(c, "Invalid start date", nil)
		}
		filter.StartDate = &start
	}
	if s := c.QueryParam("end"); s != "" {
		end, err := parseDate(s)
		if err != nil {
			return NewValidationError(c, "Invalid end date", nil)
		}
		filter.EndDate = &end
	}

	if yearStr, monthStr := c.QueryParam("year"), c.QueryParam("month"); yearStr != "" || monthStr != "" {
		year, yErr := strconv.Atoi(yearStr)
		month, mErr := strconv.Atoi(monthStr)
		if yErr != nil || mErr != nil || month < 1 || month > 12 {
			return NewValidationError(c, "year and month must be given together", []ValidationError{
				{Field: "month", Message: "Must be between 1 and 12"},
			})
		}
		start, end := util.MonthBounds(year, time.Month(month), time.UTC)
		filter.StartDate = &start
		filter.EndDate = &end
	}

	return c.JSON(http.StatusOK, h.toResponses(h.ledger.Transactions(filter)))
}

// GetTransactionsByRange handles GET /api/v1/transactions/range?start=&end=
func (h *TransactionHandler) GetTransactionsByRange(c echo.Context) error {
	start, err := parseDate(c.QueryParam("start"))
	if err != nil {
		return NewValidationError(c, "start is required", []ValidationError{
			{Field: "start", Message: domain.CodeSelectDate},
		})
	}
	end, err := parseDate(c.QueryParam("end"))
	if err != nil {
		return NewValidationError(c, "end is required", []ValidationError{
			{Field: "end", Message: domain.CodeSelectDate},
		})
	}

	txs := h.ledger.TransactionsByDateRange(c.Request().Context(), start, end)
	return c.JSON(http.StatusOK, h.toResponses(txs))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id := c.Param("id")

	var req UpdateTransactionRequest
	tagErrs, ok, err := bindAndCollect(c, &req)
	if !ok {
		return err
	}

	patch := domain.TransactionPatch{
		Amount:     req.Amount,
		CategoryID: req.CategoryID,
		Comment:    req.Comment,
	}
	if req.Type != nil {
		txType := domain.TransactionType(*req.Type)
		patch.Type = &txType
	}
	if req.Date != nil {
		date, _ := parseDate(*req.Date)
		patch.Date = &date
	}
	if len(tagErrs) > 0 {
		current, err := h.ledger.TransactionByID(id)
		if err != nil {
			return respondError(c, err, "update transaction")
		}
		return mergedValidationError(c, tagErrs, domain.ValidateTransaction(patch.Apply(*current).Draft()))
	}

	tx, err := h.ledger.UpdateTransaction(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, err, "update transaction")
	}

	log.Info().Str("transaction_id", id).Msg("Transaction updated")
	return c.JSON(http.StatusOK, h.toResponse(*tx))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id := c.Param("id")

	if err := h.ledger.DeleteTransaction(c.Request().Context(), id); err != nil {
		return respondError(c, err, "delete transaction")
	}

	log.Info().Str("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *TransactionHandler) toResponses(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = h.toResponse(tx)
	}
	return out
}

func (h *TransactionHandler) toResponse(tx domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              tx.ID,
		Type:            string(tx.Type),
		Amount:          tx.Amount.StringFixed(2),
		FormattedAmount: h.ledger.FormatAmount(tx.Amount),
		CategoryID:      tx.CategoryID,
		Date:            tx.Date.Format(time.RFC3339),
		Comment:         tx.Comment,
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.UpdatedAt != nil {
		updatedAt := tx.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
