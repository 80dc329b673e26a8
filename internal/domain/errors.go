package domain

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors wrap one of these so callers can classify
// with errors.Is without knowing every individual sentinel.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("conflict")
	ErrInternalError = errors.New("internal error")
)

// Domain errors
var (
	ErrUserNotFound = fmt.Errorf("user: %w", ErrNotFound)

	ErrExpenseNotFound  = fmt.Errorf("expense: %w", ErrNotFound)
	ErrExpenseNotOwned  = fmt.Errorf("expense belongs to another owner: %w", ErrUnauthorized)
	ErrTitleRequired    = fmt.Errorf("title is required: %w", ErrValidation)
	ErrTitleTooLong     = fmt.Errorf("title exceeds maximum length: %w", ErrValidation)
	ErrAmountRequired   = fmt.Errorf("amount is required: %w", ErrValidation)
	ErrCategoryRequired = fmt.Errorf("category is required: %w", ErrValidation)
	ErrUnknownCategory  = fmt.Errorf("category is not allowed: %w", ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("invalid amount: %w", ErrValidation)

	ErrBudgetNotFound      = fmt.Errorf("budget: %w", ErrNotFound)
	ErrTotalBudgetRequired = fmt.Errorf("totalBudget is required: %w", ErrValidation)
	ErrMonthRequired       = fmt.Errorf("month is required: %w", ErrValidation)
	ErrYearRequired        = fmt.Errorf("year is required: %w", ErrValidation)
	ErrInvalidMonth        = fmt.Errorf("month must be between 1 and 12: %w", ErrValidation)
	ErrInvalidYear         = fmt.Errorf("year is out of range: %w", ErrValidation)
	ErrBudgetConflict      = fmt.Errorf("budget already exists for month: %w", ErrConflict)
)

// Validation constants
const (
	MaxExpenseTitleLength = 255
	MinBudgetYear         = 1900
	MaxBudgetYear         = 2100
)
