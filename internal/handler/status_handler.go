package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler serves the liveness endpoint
type StatusHandler struct {
	db Pinger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(db Pinger) *StatusHandler {
	return &StatusHandler{db: db}
}

// Health handles GET /health
func (h *StatusHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Database ping failed")
		return NewUnavailableError(c, "Database unreachable")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
