package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups every route handler
type Handlers struct {
	Transaction *TransactionHandler
	Category    *CategoryHandler
	Settings    *SettingsHandler
	Statistics  *StatisticsHandler
	Data        *DataHandler
	Backup      *BackupHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes. Extra middleware (rate limiting) is
// applied to the /api/v1 group.
func RegisterRoutes(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	// API version 1
	api := e.Group("/api/v1", mw...)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/range", h.Transaction.GetTransactionsByRange)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	// Category routes
	categories := api.Group("/categories")
	categories.POST("", h.Category.CreateCategory)
	categories.GET("", h.Category.GetCategories)
	categories.PUT("/:id", h.Category.UpdateCategory)
	categories.DELETE("/:id", h.Category.DeleteCategory)
	categories.GET("/:id/can-delete", h.Category.CanDeleteCategory)

	// Settings routes
	settings := api.Group("/settings")
	settings.GET("", h.Settings.GetSettings)
	settings.PATCH("", h.Settings.UpdateSettings)
	settings.GET("/options", h.Settings.GetOptions)

	// Statistics routes
	statistics := api.Group("/statistics")
	statistics.GET("/summary", h.Statistics.GetSummary)
	statistics.GET("/categories", h.Statistics.GetCategoryBreakdown)

	// Data management routes
	data := api.Group("/data")
	data.GET("/export", h.Data.ExportData)
	data.POST("/import", h.Data.ImportData)
	data.POST("/reset", h.Data.ResetData)

	// Backup routes
	backups := api.Group("/backups")
	backups.POST("", h.Backup.CreateBackup)
	backups.GET("", h.Backup.ListBackups)
	backups.POST("/restore", h.Backup.RestoreBackup)

	// Live updates
	api.GET("/ws", h.WebSocket.HandleWS)
}
