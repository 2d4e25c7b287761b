package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/service"
)

// ListResources is the public browse view: available listings filtered
// by ?category= and ?search=.
func (h *Handler) ListResources(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListResources(ctx, service.ResourceQuery{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *Handler) GetResource(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := h.svc.GetResource(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CreateResource lists an item owned by the caller.
func (h *Handler) CreateResource(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req service.NewResource
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := h.svc.CreateResource(ctx, uid, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}
