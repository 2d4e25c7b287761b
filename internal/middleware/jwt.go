package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/logging"
	"github.com/iliyamo/campus-connect/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the caller's id and
// role in the echo context (see UserID and Role).  The id is also
// attached to the request context so log records carry it.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthenticated(c, "missing bearer token")
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return unauthenticated(c, "invalid token")
			}
			id, _ := claims.UserID()

			c.Set(ctxUserID, id)
			c.Set(ctxRole, claims.Role)
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithUserID(req.Context(), id)))
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg, "code": "UNAUTHENTICATED"})
}
