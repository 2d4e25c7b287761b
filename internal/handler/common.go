// Package handler adapts the marketplace service to HTTP.  Every handler
// reads the caller from the context populated by middleware.JWTAuth and
// maps service errors through Handler.fail.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/middleware"
	"github.com/iliyamo/campus-connect/internal/service"
)

const requestTimeout = 5 * time.Second

// Handler serves every route of the API.
type Handler struct {
	svc *service.Marketplace
	log *slog.Logger
}

func New(svc *service.Marketplace, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

var statusByCode = map[string]int{
	service.CodeNotFound:            http.StatusNotFound,
	service.CodeResourceUnavailable: http.StatusConflict,
	service.CodeUnauthorized:        http.StatusForbidden,
	service.CodeUnauthenticated:     http.StatusUnauthorized,
	service.CodeNotPending:          http.StatusConflict,
	service.CodeDuplicateEntry:      http.StatusConflict,
	service.CodeProtectedAccount:    http.StatusForbidden,
	service.CodeValidation:          http.StatusBadRequest,
	service.CodeConflict:            http.StatusConflict,
	service.CodeInternal:            http.StatusInternalServerError,
}

// fail writes err as {"error", "code"}.  Internal details are logged and
// never reach the client.
func (h *Handler) fail(c echo.Context, err error) error {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		appErr = service.NewInternalError(err)
	}
	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := appErr.Message
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(c.Request().Context(), "request failed", "path", c.Path(), "error", err)
		msg = "internal server error"
	}
	return c.JSON(status, echo.Map{"error": msg, "code": appErr.Code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": service.CodeValidation})
}

// callerID is the authenticated user.  Routes using it sit behind JWTAuth.
func callerID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, service.NewUnauthenticatedError("authentication required")
	}
	return id, nil
}

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.NewValidationError("invalid " + name)
	}
	return id, nil
}
