package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/classpeak/group-booking/internal/booking"
)

// StatsHandler exposes the read-side stats aggregation.
type StatsHandler struct {
	Engine *booking.Engine
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(engine *booking.Engine) *StatsHandler {
	if engine == nil {
		panic("nil engine passed to NewStatsHandler")
	}
	return &StatsHandler{Engine: engine}
}

// GetStats handles GET /v1/stats?from=RFC3339&to=RFC3339.  Both
// bounds are required and from must not be after to.  Windows with no
// sessions, or sessions with zero capacity or zero participants,
// produce zero rates rather than errors.
func (h *StatsHandler) GetStats(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from timestamp"})
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to timestamp"})
	}
	if from.After(to) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must not be after to"})
	}
	window, err := h.Engine.Stats(c.Request().Context(), tenantID, from, to)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, window)
}
