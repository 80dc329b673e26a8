package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/middleware"
	"github.com/pocketledger/pocketledger-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExpenseHandler handles ledger HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	location       *time.Location
}

// NewExpenseHandler creates a new ExpenseHandler. Date-only input is read as UTC midnight.
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, location: time.UTC}
}

// WithLocation sets the zone a bare YYYY-MM-DD date is read in
func (h *ExpenseHandler) WithLocation(loc *time.Location) *ExpenseHandler {
	if loc != nil {
		h.location = loc
	}
	return h
}

// CreateExpenseRequest represents the create expense request body.
// Amount accepts a JSON number or a numeric string.
type CreateExpenseRequest struct {
	Title    string           `json:"title"`
	Amount   *decimal.Decimal `json:"amount"`
	Category string           `json:"category"`
	Date     *string          `json:"date,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title"`
	Amount    string `json:"amount"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	CreatedAt string `json:"createdAt"`
}

// CategoriesResponse lists the allowed expense categories
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// GetExpenses handles GET /api/expenses
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	expenses, err := h.expenseService.ListExpenses(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to list expenses")
		return NewInternalError(c, "Failed to get expenses")
	}

	response := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		response[i] = toExpenseResponse(e)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateExpense handles POST /api/expenses
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := domain.ExpenseInput{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
	}
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		date, err := parseExpenseDate(*req.Date, h.location)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Date must be RFC 3339 or YYYY-MM-DD"},
			})
		}
		input.Date = &date
	}

	expense, err := h.expenseService.CreateExpense(c.Request().Context(), ownerID, input)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return newDomainValidationError(c, err, "amount")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to create expense")
		return NewInternalError(c, "Failed to create expense")
	}

	log.Info().
		Str("owner_id", ownerID.String()).
		Str("expense_id", expense.ID.String()).
		Msg("Expense created")

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /api/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return NewUnauthorizedError(c, "User not authorized")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Str("expense_id", id.String()).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}

	log.Info().Str("owner_id", ownerID.String()).Str("expense_id", id.String()).Msg("Expense deleted")

	return c.JSON(http.StatusOK, MessageResponse{Message: "Expense removed", ID: id.String()})
}

// GetCategories handles GET /api/categories
func (h *ExpenseHandler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, CategoriesResponse{Categories: h.expenseService.Categories()})
}

func parseExpenseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		OwnerID:   e.OwnerID.String(),
		Title:     e.Title,
		Amount:    e.Amount.StringFixed(2),
		Category:  e.Category,
		Date:      e.Date.Format(time.RFC3339),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}
