package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation codes, rendered by the UI through its translation table
const (
	CodeInvalidAmount   = "INVALID_AMOUNT"
	CodeSelectCategory  = "SELECT_CATEGORY"
	CodeSelectDate      = "SELECT_DATE"
	CodeCommentTooLong  = "COMMENT_TOO_LONG"
	CodeInvalidType     = "INVALID_TYPE"
	CodeInvalidName     = "INVALID_NAME"
	CodeInvalidCurrency = "INVALID_CURRENCY"
	CodeInvalidTheme    = "INVALID_THEME"
	CodeInvalidLanguage = "INVALID_LANGUAGE"
)

// ValidationResult maps field names to validation codes
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Err returns a *ValidationError when the result is invalid, nil otherwise
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Result: r}
}

func newResult(errs map[string]string) ValidationResult {
	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidAmount reports whether 0 < amount <= MaxAmount
func ValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThanOrEqual(maxAmount)
}

// ValidComment accepts a missing or empty comment, otherwise 1..MaxCommentLength
// characters after trimming.
func ValidComment(comment *string) bool {
	if comment == nil || *comment == "" {
		return true
	}
	n := utf8.RuneCountInString(strings.TrimSpace(*comment))
	return n > 0 && n <= MaxCommentLength
}

// ValidCategoryName requires 1..MaxCategoryNameLength characters after trimming
func ValidCategoryName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n > 0 && n <= MaxCategoryNameLength
}

// ValidateTransaction checks a draft before it is handed to storage
func ValidateTransaction(d TransactionDraft) ValidationResult {
	errs := make(map[string]string)
	if !d.Type.IsValid() {
		errs["type"] = CodeInvalidType
	}
	if !ValidAmount(d.Amount) {
		errs["amount"] = CodeInvalidAmount
	}
	if d.CategoryID == "" {
		errs["category"] = CodeSelectCategory
	}
	if d.Date.IsZero() {
		errs["date"] = CodeSelectDate
	}
	if !ValidComment(d.Comment) {
		errs["comment"] = CodeCommentTooLong
	}
	return newResult(errs)
}

// ValidateCategory checks a category draft before it is handed to storage
func ValidateCategory(d CategoryDraft) ValidationResult {
	errs := make(map[string]string)
	if !ValidCategoryName(d.Name) {
		errs["name"] = CodeInvalidName
	}
	if !d.Type.IsValid() {
		errs["type"] = CodeInvalidType
	}
	return newResult(errs)
}

// ValidateSettingsPatch checks only the fields present in p
func ValidateSettingsPatch(p SettingsPatch) ValidationResult {
	errs := make(map[string]string)
	if p.Currency != nil && !p.Currency.IsValid() {
		errs["currency"] = CodeInvalidCurrency
	}
	if p.Theme != nil && !p.Theme.IsValid() {
		errs["theme"] = CodeInvalidTheme
	}
	if p.Language != nil && !p.Language.IsValid() {
		errs["language"] = CodeInvalidLanguage
	}
	return newResult(errs)
}
