package handler

import (
	"net/http"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	ledger *service.LedgerService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(ledger *service.LedgerService) *CategoryHandler {
	return &CategoryHandler{ledger: ledger}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type" validate:"omitempty,entry_type"`
	Icon  string `json:"icon" validate:"max=16"`
	Color string `json:"color" validate:"omitempty,hex_color"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"type" validate:"omitempty,entry_type"`
	Icon  *string `json:"icon" validate:"omitempty,max=16"`
	Color *string `json:"color" validate:"omitempty,hex_color"`
}

// CategoryTotalResponse represents a category with its lifetime total
type CategoryTotalResponse struct {
	domain.Category
	Total string `json:"total"`
}

// CanDeleteResponse represents the can-delete check response
type CanDeleteResponse struct {
	CanDelete bool `json:"canDelete"`
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	tagErrs, ok, err := bindAndCollect(c, &req)
	if !ok {
		return err
	}

	draft := domain.CategoryDraft{
		Name:  req.Name,
		Type:  domain.TransactionType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	}
	if len(tagErrs) > 0 {
		return mergedValidationError(c, tagErrs, domain.ValidateCategory(draft))
	}

	category, err := h.ledger.AddCategory(c.Request().Context(), draft)
	if err != nil {
		return respondError(c, err, "create category")
	}

	log.Info().Str("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	return c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /api/v1/categories?type=&withTotals=true
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var txType *domain.TransactionType
	if t := c.QueryParam("type"); t != "" {
		parsed := domain.TransactionType(t)
		if !parsed.IsValid() {
			return NewValidationError(c, "Invalid type filter", []ValidationError{
				{Field: "type", Message: domain.CodeInvalidType},
			})
		}
		txType = &parsed
	}

	if c.QueryParam("withTotals") == "true" {
		response := []CategoryTotalResponse{}
		for _, ct := range h.ledger.CategoriesWithTotals() {
			if txType != nil && ct.Type != *txType {
				continue
			}
			response = append(response, CategoryTotalResponse{Category: ct.Category, Total: ct.Total.StringFixed(2)})
		}
		return c.JSON(http.StatusOK, response)
	}

	if txType != nil {
		return c.JSON(http.StatusOK, h.ledger.CategoriesByType(*txType))
	}
	return c.JSON(http.StatusOK, h.ledger.Categories())
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id := c.Param("id")

	var req UpdateCategoryRequest
	tagErrs, ok, err := bindAndCollect(c, &req)
	if !ok {
		return err
	}

	patch := domain.CategoryPatch{Name: req.Name, Icon: req.Icon, Color: req.Color}
	if req.Type != nil {
		txType := domain.TransactionType(*req.Type)
		patch.Type = &txType
	}
	if len(tagErrs) > 0 {
		current, err := h.ledger.CategoryByID(id)
		if err != nil {
			return respondError(c, err, "update category")
		}
		return mergedValidationError(c, tagErrs, domain.ValidateCategory(patch.Apply(*current).Draft()))
	}

	category, err := h.ledger.UpdateCategory(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, err, "update category")
	}

	log.Info().Str("category_id", id).Msg("Category updated")
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id := c.Param("id")

	if err := h.ledger.DeleteCategory(c.Request().Context(), id); err != nil {
		return respondError(c, err, "delete category")
	}

	log.Info().Str("category_id", id).Msg("Category deleted")
	return c.NoContent(http.StatusNoContent)
}

// CanDeleteCategory handles GET /api/v1/categories/:id/can-delete
func (h *CategoryHandler) CanDeleteCategory(c echo.Context) error {
	id := c.Param("id")

	if _, err := h.ledger.CategoryByID(id); err != nil {
		return respondError(c, err, "check category")
	}

	return c.JSON(http.StatusOK, CanDeleteResponse{CanDelete: h.ledger.CanDeleteCategory(id)})
}
