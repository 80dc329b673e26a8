package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/middleware"
	"github.com/pocketledger/pocketledger-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// AnalyticsHandler handles spending analytics HTTP requests
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// CategorySummaryResponse is one category row of the spending summary
type CategorySummaryResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int64  `json:"count"`
}

// GetSummary handles GET /api/analytics/summary
func (h *AnalyticsHandler) GetSummary(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.analyticsService.Summarize(c.Request().Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to summarize expenses")
		return NewInternalError(c, "Failed to get spending summary")
	}

	response := make([]CategorySummaryResponse, len(summary))
	for i, s := range summary {
		response[i] = CategorySummaryResponse{
			Category: s.Category,
			Total:    s.Total.StringFixed(2),
			Count:    s.Count,
		}
	}
	return c.JSON(http.StatusOK, response)
}
