package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/service"
	"github.com/dafibh/budgetbook/budgetbook-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// StatisticsHandler handles statistics HTTP requests
type StatisticsHandler struct {
	ledger *service.LedgerService
	now    func() time.Time
}

// NewStatisticsHandler creates a new StatisticsHandler
func NewStatisticsHandler(ledger *service.LedgerService) *StatisticsHandler {
	return &StatisticsHandler{ledger: ledger, now: time.Now}
}

// MonthRef identifies a calendar month
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CategoryStatResponse represents one breakdown row
type CategoryStatResponse struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	Amount     string `json:"amount"`
	Percentage string `json:"percentage"`
}

// SummaryResponse represents the month summary
type SummaryResponse struct {
	Year              int                    `json:"year"`
	Month             int                    `json:"month"`
	Income            string                 `json:"income"`
	Expenses          string                 `json:"expenses"`
	Net               string                 `json:"net"`
	Balance           string                 `json:"balance"`
	FormattedBalance  string                 `json:"formattedBalance"`
	ExpenseCategories []CategoryStatResponse `json:"expenseCategories"`
	IncomeCategories  []CategoryStatResponse `json:"incomeCategories"`
	Previous          MonthRef               `json:"previous"`
	Next              MonthRef               `json:"next"`
}

// GetSummary handles GET /api/v1/statistics/summary?year=&month=
// Defaults to the current month.
func (h *StatisticsHandler) GetSummary(c echo.Context) error {
	ref, ok, err := h.parseMonth(c)
	if !ok {
		return err
	}

	stats := h.ledger.Statistics(ref)
	prevYear, prevMonth := util.PreviousMonth(stats.Year, stats.Month)
	nextYear, nextMonth := util.NextMonth(stats.Year, stats.Month)

	return c.JSON(http.StatusOK, SummaryResponse{
		Year:              stats.Year,
		Month:             stats.Month,
		Income:            stats.Summary.Income.StringFixed(2),
		Expenses:          stats.Summary.Expenses.StringFixed(2),
		Net:               stats.Summary.Net.StringFixed(2),
		Balance:           stats.Balance.StringFixed(2),
		FormattedBalance:  h.ledger.FormatAmount(stats.Balance),
		ExpenseCategories: toCategoryStatResponses(stats.Expenses),
		IncomeCategories:  toCategoryStatResponses(stats.Income),
		Previous:          MonthRef{Year: prevYear, Month: prevMonth},
		Next:              MonthRef{Year: nextYear, Month: nextMonth},
	})
}

// GetCategoryBreakdown handles GET /api/v1/statistics/categories?type=&year=&month=
func (h *StatisticsHandler) GetCategoryBreakdown(c echo.Context) error {
	txType := domain.TransactionTypeExpense
	if t := c.QueryParam("type"); t != "" {
		txType = domain.TransactionType(t)
		if !txType.IsValid() {
			return NewValidationError(c, "Invalid type", []ValidationError{
				{Field: "type", Message: domain.CodeInvalidType},
			})
		}
	}

	ref, ok, err := h.parseMonth(c)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, toCategoryStatResponses(h.ledger.CategoryStatistics(txType, ref)))
}

// parseMonth reads optional year/month query params. On failure it writes the
// problem response and returns ok=false.
func (h *StatisticsHandler) parseMonth(c echo.Context) (time.Time, bool, error) {
	now := h.now().UTC()
	year := now.Year()
	month := int(now.Month())

	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 1 {
			return time.Time{}, false, NewValidationError(c, "Invalid year", []ValidationError{{Field: "year", Message: "Must be a positive integer"}})
		}
		year = parsed
	}
	if monthStr := c.QueryParam("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil {
			return time.Time{}, false, NewValidationError(c, "Invalid month", []ValidationError{{Field: "month", Message: "Must be a valid integer"}})
		}
		month = parsed
	}

	ref, err := util.MonthReference(year, month, time.UTC)
	if err != nil {
		return time.Time{}, false, NewValidationError(c, err.Error(), []ValidationError{{Field: "month", Message: "Must be between 1 and 12"}})
	}
	return ref, true, nil
}

func toCategoryStatResponses(stats []service.CategoryStat) []CategoryStatResponse {
	out := make([]CategoryStatResponse, len(stats))
	for i, s := range stats {
		out[i] = CategoryStatResponse{
			CategoryID: s.CategoryID,
			Name:       s.Name,
			Icon:       s.Icon,
			Color:      s.Color,
			Amount:     s.Amount.StringFixed(2),
			Percentage: s.Percentage.StringFixed(2),
		}
	}
	return out
}
