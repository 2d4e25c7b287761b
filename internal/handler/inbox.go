package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ListNotifications returns the caller's notifications and marks them
// read.  Each entry keeps the is_read value it had before this call.
func (h *Handler) ListNotifications(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListNotifications(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *Handler) UnreadCount(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.svc.UnreadCount(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

func (h *Handler) ToggleFavorite(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	rid, err := parseID(c, "resourceId")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	on, err := h.svc.ToggleFavorite(ctx, uid, rid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"resource_id": rid, "favorited": on})
}

// ListFavorites returns saved listings that are still available.
func (h *Handler) ListFavorites(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListFavorites(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
