// Package router wires handlers and middleware onto echo.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/campus-connect/internal/config"
	"github.com/iliyamo/campus-connect/internal/handler"
	"github.com/iliyamo/campus-connect/internal/metrics"
	"github.com/iliyamo/campus-connect/internal/middleware"
	"github.com/iliyamo/campus-connect/internal/model"
)

// Deps carries what the routes need.  Redis may be nil; the cache is
// then off and rate limiting runs in process.
type Deps struct {
	Handler   *handler.Handler
	JWTSecret string
	Metrics   *metrics.Metrics
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *slog.Logger
}

// RegisterRoutes mounts the whole API on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	h := d.Handler

	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	cache := middleware.NewRedisCache(d.Cache, d.Redis, d.Log)
	purge := middleware.PurgeCache(d.Cache, d.Redis, d.Log)

	registerAuth(e, h, d.JWTSecret, limit)
	registerPublic(e, h, limit, cache)
	registerMember(e, h, d.JWTSecret, limit, purge)
	registerAdmin(e, h, d.JWTSecret, limit, purge)
}

func registerAuth(e *echo.Echo, h *handler.Handler, secret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/refresh-access", h.RefreshAccess)
	g.POST("/logout", h.Logout)

	member := []echo.MiddlewareFunc{
		middleware.JWTAuth(secret),
		middleware.RequireRole(model.RoleStudent, model.RoleAdmin),
	}
	e.GET("/v1/me", h.Me, member...)
	e.POST("/v1/me/password", h.ChangePassword, append(member, limit)...)
}

// registerPublic mounts the browse endpoints.  The listing is cached and
// every write elsewhere purges it.
func registerPublic(e *echo.Echo, h *handler.Handler, limit, cache echo.MiddlewareFunc) {
	e.GET("/v1/resources", h.ListResources, limit, cache)
	e.GET("/v1/resources/:id", h.GetResource, limit)
}

func registerMember(e *echo.Echo, h *handler.Handler, secret string, limit, purge echo.MiddlewareFunc) {
	member := []echo.MiddlewareFunc{
		middleware.JWTAuth(secret),
		middleware.RequireRole(model.RoleStudent, model.RoleAdmin),
		limit,
	}
	e.POST("/v1/resources", h.CreateResource, append(member, purge)...)

	e.POST("/v1/requests", h.SubmitRequest, append(member, purge)...)
	e.GET("/v1/my-requests", h.ListMyRequests, member...)
	e.POST("/v1/requests/:id/accept", h.AcceptRequest, append(member, purge)...)
	e.POST("/v1/requests/:id/decline", h.DeclineRequest, append(member, purge)...)
	e.DELETE("/v1/requests/:id", h.CancelRequest, append(member, purge)...)

	e.GET("/v1/notifications", h.ListNotifications, member...)
	e.GET("/v1/notifications/unread-count", h.UnreadCount, member...)

	e.POST("/v1/favorites/:resourceId", h.ToggleFavorite, member...)
	e.GET("/v1/favorites", h.ListFavorites, member...)
}

func registerAdmin(e *echo.Echo, h *handler.Handler, secret string, limit, purge echo.MiddlewareFunc) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(secret),
		middleware.RequireRole(model.RoleAdmin),
		limit,
	)
	g.GET("/users", h.AdminListUsers)
	g.POST("/users", h.AdminCreateUser)
	g.DELETE("/users/:id", h.AdminDeleteUser, purge)
	g.POST("/users/:id/notify", h.AdminNotifyUser)

	g.GET("/resources", h.AdminListResources)
	g.POST("/resources", h.AdminCreateResource, purge)
	g.DELETE("/resources/:id", h.AdminDeleteResource, purge)

	g.GET("/requests", h.AdminListRequests)
}
