package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports ok once the store answers.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.svc.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
