package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/campus-connect/internal/model"
	"github.com/iliyamo/campus-connect/internal/service"
)

type registerReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    model.UserView `json:"user"`
	Access  tokenPart      `json:"access"`
	Refresh tokenPart      `json:"refresh"`
}

func sessionResp(s service.Session) authResp {
	return authResp{
		User:    s.User,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	}
}

// Register creates a student account and returns a token pair.
func (h *Handler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.svc.Register(ctx, req.FullName, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sessionResp(s))
}

func (h *Handler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

func bindRefresh(c echo.Context) (string, bool) {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return "", false
	}
	raw := strings.TrimSpace(req.RefreshToken)
	return raw, raw != ""
}

// Refresh rotates the refresh token: the presented one is revoked and a
// new pair is returned.
func (h *Handler) Refresh(c echo.Context) error {
	raw, ok := bindRefresh(c)
	if !ok {
		return badRequest(c, "refresh_token is required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.svc.Refresh(ctx, raw)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// RefreshAccess issues a new access token and leaves the refresh token
// in place.
func (h *Handler) RefreshAccess(c echo.Context) error {
	raw, ok := bindRefresh(c)
	if !ok {
		return badRequest(c, "refresh_token is required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	access, err := h.svc.RefreshAccess(ctx, raw)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: access.Token, Expires: access.Exp}})
}

func (h *Handler) Logout(c echo.Context) error {
	raw, ok := bindRefresh(c)
	if !ok {
		return badRequest(c, "refresh_token is required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.svc.Logout(ctx, raw); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Me(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.svc.Me(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// ChangePassword replaces the caller's password.  Existing refresh tokens
// stop working; the client logs in again with the new password.
func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest(c, "current_password and new_password are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return badRequest(c, "new passwords do not match")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.svc.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
