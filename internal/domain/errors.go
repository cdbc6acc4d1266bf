package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrValidation          = errors.New("validation failed")
	ErrStorageFailure      = errors.New("storage failure")
	ErrKeyNotFound         = errors.New("key not found")
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrCategoryInUse       = errors.New("category has transactions")
	ErrBackupsDisabled     = errors.New("backups are not configured")
)

// Validation constants
const (
	MaxAmount             = "999999.99"
	MaxCommentLength      = 200
	MaxCategoryNameLength = 50
)

// ValidationError carries the field->code mapping produced by caller-side validation
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrValidation.Error(), len(e.Result.Errors))
}

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
