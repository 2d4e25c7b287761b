package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/service"
)

type adminResourceReq struct {
	service.NewResource
	OwnerID uint64 `json:"owner_id"`
}

type notifyReq struct {
	Message string `json:"message"`
}

func (h *Handler) AdminListUsers(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListUsers(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *Handler) AdminCreateUser(c echo.Context) error {
	var req service.NewUser
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.svc.CreateUser(ctx, req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// AdminDeleteUser refuses the seeded admin and users that still own
// listings.
func (h *Handler) AdminDeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.svc.DeleteUser(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AdminNotifyUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req notifyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.svc.NotifyUser(ctx, id, req.Message)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, n)
}

// AdminListResources includes listings in every status.
func (h *Handler) AdminListResources(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListAllResources(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// AdminCreateResource lists an item on behalf of owner_id, or of the
// admin when owner_id is omitted.
func (h *Handler) AdminCreateResource(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req adminResourceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	owner := req.OwnerID
	if owner == 0 {
		owner = uid
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := h.svc.CreateResource(ctx, owner, req.NewResource)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// AdminDeleteResource removes a listing with its requests and favorites.
func (h *Handler) AdminDeleteResource(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.svc.DeleteResource(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AdminListRequests(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListAllRequests(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
