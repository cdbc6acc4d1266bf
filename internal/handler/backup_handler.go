package handler

import (
	"net/http"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// BackupHandler handles object storage backup requests
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// RestoreBackupRequest represents the restore request body
type RestoreBackupRequest struct {
	Key string `json:"key" validate:"required"`
}

// CreateBackup handles POST /api/v1/backups
func (h *BackupHandler) CreateBackup(c echo.Context) error {
	result, err := h.backupService.Backup(c.Request().Context())
	if err != nil {
		return respondError(c, err, "create backup")
	}
	return c.JSON(http.StatusCreated, result)
}

// ListBackups handles GET /api/v1/backups
func (h *BackupHandler) ListBackups(c echo.Context) error {
	objects, err := h.backupService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "list backups")
	}
	return c.JSON(http.StatusOK, objects)
}

// RestoreBackup handles POST /api/v1/backups/restore
func (h *BackupHandler) RestoreBackup(c echo.Context) error {
	var req RestoreBackupRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.backupService.Restore(c.Request().Context(), req.Key); err != nil {
		return respondError(c, err, "restore backup")
	}
	return c.NoContent(http.StatusNoContent)
}
