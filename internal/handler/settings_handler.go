package handler

import (
	"net/http"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SettingsHandler handles settings HTTP requests
type SettingsHandler struct {
	ledger *service.LedgerService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(ledger *service.LedgerService) *SettingsHandler {
	return &SettingsHandler{ledger: ledger}
}

// UpdateSettingsRequest represents the settings patch body. Omitted fields are
// left unchanged.
type UpdateSettingsRequest struct {
	Currency      *string `json:"currency" validate:"omitempty,currency_code"`
	Theme         *string `json:"theme" validate:"omitempty,theme"`
	Notifications *bool   `json:"notifications"`
	Language      *string `json:"language" validate:"omitempty,language"`
}

// SettingsResponse carries the stored settings and the display configuration
// resolved from them
type SettingsResponse struct {
	Settings    domain.Settings    `json:"settings"`
	Preferences domain.Preferences `json:"preferences"`
}

// OptionsResponse lists the selectable settings values
type OptionsResponse struct {
	Currencies []domain.CurrencyInfo `json:"currencies"`
	Themes     []domain.Theme        `json:"themes"`
	Languages  []domain.Language     `json:"languages"`
}

// GetSettings handles GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, SettingsResponse{
		Settings:    h.ledger.Settings(),
		Preferences: h.ledger.Preferences(),
	})
}

// GetOptions handles GET /api/v1/settings/options
func (h *SettingsHandler) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, OptionsResponse{
		Currencies: domain.Currencies,
		Themes:     []domain.Theme{domain.ThemeLight, domain.ThemeDark},
		Languages:  domain.Languages,
	})
}

// UpdateSettings handles PATCH /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var req UpdateSettingsRequest
	tagErrs, ok, err := bindAndCollect(c, &req)
	if !ok {
		return err
	}

	patch := domain.SettingsPatch{Notifications: req.Notifications}
	if req.Currency != nil {
		currency := domain.Currency(*req.Currency)
		patch.Currency = &currency
	}
	if req.Theme != nil {
		theme := domain.Theme(*req.Theme)
		patch.Theme = &theme
	}
	if req.Language != nil {
		lang := domain.Language(*req.Language)
		patch.Language = &lang
	}
	if len(tagErrs) > 0 {
		return mergedValidationError(c, tagErrs, domain.ValidateSettingsPatch(patch))
	}

	settings, err := h.ledger.UpdateSettings(c.Request().Context(), patch)
	if err != nil {
		return respondError(c, err, "update settings")
	}

	log.Info().
		Str("currency", string(settings.Currency)).
		Str("theme", string(settings.Theme)).
		Str("language", string(settings.Language)).
		Msg("Settings updated")
	return c.JSON(http.StatusOK, SettingsResponse{
		Settings:    *settings,
		Preferences: h.ledger.Preferences(),
	})
}
