package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/dafibh/budgetbook/budgetbook-backend/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// dateLayouts are the accepted request date formats, tried in order
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// RequestValidator implements echo.Validator on top of go-playground/validator
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator with the budgetbook custom tags registered
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json field names so errors line up with the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("entry_type", validateEntryType)
	_ = v.RegisterValidation("entry_date", validateEntryDate)
	_ = v.RegisterValidation("currency_code", validateCurrencyCode)
	_ = v.RegisterValidation("theme", validateTheme)
	_ = v.RegisterValidation("language", validateLanguage)

	return &RequestValidator{validate: v}
}

// Validate implements echo.Validator
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateEntryType(fl validator.FieldLevel) bool {
	return domain.TransactionType(fl.Field().String()).IsValid()
}

func validateEntryDate(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return domain.Currency(fl.Field().String()).IsValid()
}

func validateTheme(fl validator.FieldLevel) bool {
	return domain.Theme(fl.Field().String()).IsValid()
}

func validateLanguage(fl validator.FieldLevel) bool {
	return domain.Language(fl.Field().String()).IsValid()
}

// parseDate accepts an RFC 3339 timestamp or a plain calendar date (UTC midnight)
func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// tagCodes maps validator tags onto the codes the domain validators emit
var tagCodes = map[string]string{
	"entry_type":    domain.CodeInvalidType,
	"entry_date":    domain.CodeSelectDate,
	"currency_code": domain.CodeInvalidCurrency,
	"theme":         domain.CodeInvalidTheme,
	"language":      domain.CodeInvalidLanguage,
	"hex_color":     "INVALID_COLOR",
}

// bindAndValidate binds the request body into req and runs struct validation.
// On failure it writes the problem response and returns ok=false.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	tagErrs, ok, err := bindAndCollect(c, req)
	if !ok {
		return false, err
	}
	if len(tagErrs) > 0 {
		return false, NewValidationError(c, "Validation failed", tagErrs)
	}
	return true, nil
}

// bindAndCollect binds the request body into req and returns the struct-tag
// failures instead of responding, so callers can merge them with domain
// validation. Only a malformed body writes the problem response (ok=false).
func bindAndCollect(c echo.Context, req interface{}) ([]ValidationError, bool, error) {
	if err := c.Bind(req); err != nil {
		return nil, false, NewValidationError(c, "Invalid request body", nil)
	}

	err := c.Validate(req)
	if err == nil {
		return nil, true, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false, NewValidationError(c, "Invalid request body", nil)
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		code, ok := tagCodes[fe.Tag()]
		if !ok {
			code = "INVALID_" + strings.ToUpper(fe.Tag())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: code})
	}
	return out, true, nil
}

// mergedValidationError responds with every failing field from both the
// struct tags and the domain result. The domain code wins on a shared field.
func mergedValidationError(c echo.Context, tagErrs []ValidationError, result domain.ValidationResult) error {
	merged := make(map[string]string, len(tagErrs)+len(result.Errors))
	for _, fe := range tagErrs {
		merged[fe.Field] = fe.Message
	}
	for field, code := range result.Errors {
		merged[field] = code
	}
	return NewValidationError(c, "Validation failed", fieldErrors(domain.ValidationResult{Errors: merged}))
}
