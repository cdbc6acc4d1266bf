package handler

import (
	"fmt"
	"net/http"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DataHandler handles export, import and reset of the whole ledger
type DataHandler struct {
	ledger *service.LedgerService
}

// NewDataHandler creates a new DataHandler
func NewDataHandler(ledger *service.LedgerService) *DataHandler {
	return &DataHandler{ledger: ledger}
}

// ExportData handles GET /api/v1/data/export
func (h *DataHandler) ExportData(c echo.Context) error {
	snapshot, err := h.ledger.ExportData(c.Request().Context())
	if err != nil {
		return respondError(c, err, "export data")
	}

	filename := fmt.Sprintf("budgetbook-%s.json", snapshot.ExportedAt.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.JSON(http.StatusOK, snapshot)
}

// ImportData handles POST /api/v1/data/import. Collections missing from the
// body are left untouched.
func (h *DataHandler) ImportData(c echo.Context) error {
	var snapshot domain.Snapshot
	if err := c.Bind(&snapshot); err != nil {
		return NewValidationError(c, "Invalid snapshot", nil)
	}

	if err := h.ledger.ImportData(c.Request().Context(), snapshot); err != nil {
		return respondError(c, err, "import data")
	}

	log.Info().
		Int("transactions", len(snapshot.Transactions)).
		Int("categories", len(snapshot.Categories)).
		Msg("Data imported")
	return c.NoContent(http.StatusNoContent)
}

// ResetData handles POST /api/v1/data/reset
func (h *DataHandler) ResetData(c echo.Context) error {
	if err := h.ledger.ResetAllData(c.Request().Context()); err != nil {
		return respondError(c, err, "reset data")
	}

	log.Warn().Msg("All data reset to defaults")
	return c.NoContent(http.StatusNoContent)
}
