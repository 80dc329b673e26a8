package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/middleware"
	"github.com/pocketledger/pocketledger-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles monthly budget HTTP requests
type BudgetHandler struct {
	budgetService         *service.BudgetService
	reconciliationService *service.ReconciliationService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, reconciliationService *service.ReconciliationService) *BudgetHandler {
	return &BudgetHandler{
		budgetService:         budgetService,
		reconciliationService: reconciliationService,
	}
}

// SaveBudgetRequest represents the save budget request body
type SaveBudgetRequest struct {
	TotalBudget    *decimal.Decimal           `json:"totalBudget"`
	CategoryLimits map[string]decimal.Decimal `json:"categoryLimits"`
	Month          *int                       `json:"month"`
	Year           *int                       `json:"year"`
}

// BudgetResponse represents a budget in API responses.
// ID and timestamps are omitted for the default budget of a month with nothing saved.
type BudgetResponse struct {
	ID             *string           `json:"id,omitempty"`
	OwnerID        string            `json:"ownerId"`
	TotalBudget    string            `json:"totalBudget"`
	CategoryLimits map[string]string `json:"categoryLimits"`
	Month          int               `json:"month"`
	Year           int               `json:"year"`
	CreatedAt      *string           `json:"createdAt,omitempty"`
	UpdatedAt      *string           `json:"updatedAt,omitempty"`
}

// CategoryStatusResponse represents usage against one category limit
type CategoryStatusResponse struct {
	Limit      string `json:"limit"`
	Spent      string `json:"spent"`
	Remaining  string `json:"remaining"`
	Percentage string `json:"percentage"`
	Alert      string `json:"alert"`
}

// BudgetHealthResponse represents the reconciled budget view in API responses
type BudgetHealthResponse struct {
	Month          int                               `json:"month"`
	Year           int                               `json:"year"`
	Scope          string                            `json:"scope"`
	TotalBudget    string                            `json:"totalBudget"`
	TotalSpent     string                            `json:"totalSpent"`
	Remaining      string                            `json:"remaining"`
	Percentage     string                            `json:"percentage"`
	Alert          string                            `json:"alert"`
	Allocated      string                            `json:"allocated"`
	Unallocated    string                            `json:"unallocated"`
	CategoryUsage  map[string]string                 `json:"categoryUsage"`
	CategoryStatus map[string]CategoryStatusResponse `json:"categoryStatus"`
	OverBudget     []string                          `json:"overBudget"`
	Warning        []string                          `json:"warning"`
}

// GetBudget handles GET /api/budget?month=M&year=Y
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var fieldErrs []ValidationError
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		fieldErrs = append(fieldErrs, ValidationError{Field: "month", Message: "Month query parameter is required"})
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		fieldErrs = append(fieldErrs, ValidationError{Field: "year", Message: "Year query parameter is required"})
	}
	if len(fieldErrs) > 0 {
		return NewValidationError(c, "Month and year are required", fieldErrs)
	}

	budget, err := h.budgetService.GetBudget(c.Request().Context(), ownerID, month, year)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return newDomainValidationError(c, err, "totalBudget")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Int("month", month).Int("year", year).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// SaveBudget handles POST /api/budget. Responds 201 when a budget was created and 200 when one was updated.
func (h *BudgetHandler) SaveBudget(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SaveBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	budget, created, err := h.budgetService.SaveBudget(c.Request().Context(), ownerID, domain.BudgetInput{
		TotalBudget:    req.TotalBudget,
		CategoryLimits: domain.CategoryLimits(req.CategoryLimits),
		Month:          req.Month,
		Year:           req.Year,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return newDomainValidationError(c, err, "totalBudget")
		}
		if errors.Is(err, domain.ErrConflict) {
			return NewConflictError(c, "Budget was modified concurrently, please retry")
		}
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to save budget")
		return NewInternalError(c, "Failed to save budget")
	}

	log.Info().
		Str("owner_id", ownerID.String()).
		Int("month", budget.Month).
		Int("year", budget.Year).
		Bool("created", created).
		Msg("Budget saved")

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, toBudgetResponse(budget))
}

// GetHealth handles GET /api/budget/health
func (h *BudgetHandler) GetHealth(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	health, err := h.reconciliationService.GetHealth(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to compute budget health")
		return NewInternalError(c, "Failed to compute budget health")
	}

	return c.JSON(http.StatusOK, toBudgetHealthResponse(health))
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	limits := make(map[string]string, len(b.CategoryLimits))
	for name, limit := range b.CategoryLimits {
		limits[name] = limit.StringFixed(2)
	}

	resp := BudgetResponse{
		OwnerID:        b.OwnerID.String(),
		TotalBudget:    b.TotalBudget.StringFixed(2),
		CategoryLimits: limits,
		Month:          b.Month,
		Year:           b.Year,
	}
	if b.IsPersisted() {
		id := b.ID.String()
		createdAt := b.CreatedAt.Format(time.RFC3339)
		updatedAt := b.UpdatedAt.Format(time.RFC3339)
		resp.ID = &id
		resp.CreatedAt = &createdAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

func toBudgetHealthResponse(h *domain.BudgetHealth) BudgetHealthResponse {
	usage := make(map[string]string, len(h.CategoryUsage))
	for name, spent := range h.CategoryUsage {
		usage[name] = spent.StringFixed(2)
	}
	status := make(map[string]CategoryStatusResponse, len(h.CategoryStatus))
	for name, s := range h.CategoryStatus {
		status[name] = CategoryStatusResponse{
			Limit:      s.Limit.StringFixed(2),
			Spent:      s.Spent.StringFixed(2),
			Remaining:  s.Remaining.StringFixed(2),
			Percentage: s.Percentage.StringFixed(2),
			Alert:      string(s.Alert),
		}
	}

	return BudgetHealthResponse{
		Month:          h.Month,
		Year:           h.Year,
		Scope:          string(h.Scope),
		TotalBudget:    h.TotalBudget.StringFixed(2),
		TotalSpent:     h.TotalSpent.StringFixed(2),
		Remaining:      h.Remaining.StringFixed(2),
		Percentage:     h.Percentage.StringFixed(2),
		Alert:          string(h.Alert),
		Allocated:      h.Allocated.StringFixed(2),
		Unallocated:    h.Unallocated.StringFixed(2),
		CategoryUsage:  usage,
		CategoryStatus: status,
		OverBudget:     h.OverBudget,
		Warning:        h.Warning,
	}
}
