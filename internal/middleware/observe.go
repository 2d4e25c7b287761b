package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/logging"
	"github.com/iliyamo/campus-connect/internal/metrics"
)

// RequestContext copies the request id assigned by echo's RequestID
// middleware into the request context for the logger.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			if rid != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), rid)))
			}
			return next(c)
		}
	}
}

// Metrics records every request under its route template.  Errors are
// rendered first so the recorded status is the one the client sees.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			done := m.HTTPStart()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			done(c.Request().Method, route, c.Response().Status)
			return nil
		}
	}
}
