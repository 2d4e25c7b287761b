package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/service"
)

type submitReq struct {
	ResourceID  uint64              `json:"resource_id"`
	RequestType model.OwnershipType `json:"request_type"`
	PhoneNumber string              `json:"phone_number"`
	Department  string              `json:"department"`
}

// SubmitRequest claims a listing for the caller.  A listing that is
// already claimed answers 409 RESOURCE_UNAVAILABLE.
func (h *Handler) SubmitRequest(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ResourceID == 0 {
		return badRequest(c, "resource_id is required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := h.svc.SubmitRequest(ctx, service.SubmitInput{
		RequesterID: uid,
		ResourceID:  req.ResourceID,
		RequestType: req.RequestType,
		PhoneNumber: req.PhoneNumber,
		Department:  req.Department,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListMyRequests(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	items, err := h.svc.ListMyRequests(ctx, uid)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

func (h *Handler) AcceptRequest(c echo.Context) error {
	return h.decide(c, h.svc.AcceptRequest)
}

func (h *Handler) DeclineRequest(c echo.Context) error {
	return h.decide(c, h.svc.DeclineRequest)
}

type decision func(ctx context.Context, actorID, requestID uint64) (model.Request, error)

func (h *Handler) decide(c echo.Context, fn decision) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	r, err := fn(ctx, uid, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CancelRequest withdraws one of the caller's requests.
func (h *Handler) CancelRequest(c echo.Context) error {
	uid, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.svc.CancelRequest(ctx, uid, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
