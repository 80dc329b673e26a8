package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MessageResponse is a plain acknowledgement body
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// Error types
const (
	ErrorTypeValidation   = "https://pocketledger.app/errors/validation"
	ErrorTypeNotFound     = "https://pocketledger.app/errors/not-found"
	ErrorTypeUnauthorized = "https://pocketledger.app/errors/unauthorized"
	ErrorTypeConflict     = "https://pocketledger.app/errors/conflict"
	ErrorTypeInternal     = "https://pocketledger.app/errors/internal"
	ErrorTypeUnavailable  = "https://pocketledger.app/errors/unavailable"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnavailableError creates a service unavailable error response
func NewUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps domain validation errors to the request field they concern
var fieldErrors = []struct {
	err     error
	field   string
	message string
}{
	{domain.ErrTitleRequired, "title", "Title is required"},
	{domain.ErrTitleTooLong, "title", "Title must be 255 characters or less"},
	{domain.ErrAmountRequired, "amount", "Amount is required"},
	{domain.ErrCategoryRequired, "category", "Category is required"},
	{domain.ErrUnknownCategory, "category", "Category is not one of the allowed categories"},
	{domain.ErrTotalBudgetRequired, "totalBudget", "Total budget is required"},
	{domain.ErrMonthRequired, "month", "Month is required"},
	{domain.ErrYearRequired, "year", "Year is required"},
	{domain.ErrInvalidMonth, "month", "Month must be between 1 and 12"},
	{domain.ErrInvalidYear, "year", "Year must be between 1900 and 2100"},
}

// newDomainValidationError renders a domain validation error with its field.
// amountField names the field ErrInvalidAmount refers to.
func newDomainValidationError(c echo.Context, err error, amountField string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: fe.field, Message: fe.message},
			})
		}
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: amountField, Message: "Amount must be between 0 and 999,999,999,999.99 and expenses must be greater than zero"},
		})
	}
	return NewValidationError(c, "Validation failed", nil)
}
