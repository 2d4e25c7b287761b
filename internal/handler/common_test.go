package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/campus-connect/internal/logging"
	"github.com/iliyamo/campus-connect/internal/service"
)

func TestFailMapsCodes(t *testing.T) {
	h := New(nil, logging.Discard())
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.NewNotFoundError("resource", 9), http.StatusNotFound, service.CodeNotFound},
		{service.NewResourceUnavailableError(9), http.StatusConflict, service.CodeResourceUnavailable},
		{service.NewUnauthorizedError("no"), http.StatusForbidden, service.CodeUnauthorized},
		{service.NewUnauthenticatedError("no"), http.StatusUnauthorized, service.CodeUnauthenticated},
		{service.NewNotPendingError(1, "accepted"), http.StatusConflict, service.CodeNotPending},
		{service.NewDuplicateEntryError("dup"), http.StatusConflict, service.CodeDuplicateEntry},
		{service.NewProtectedAccountError(), http.StatusForbidden, service.CodeProtectedAccount},
		{service.NewValidationError("bad"), http.StatusBadRequest, service.CodeValidation},
		{service.NewConflictError("busy"), http.StatusConflict, service.CodeConflict},
		{errors.New("db down"), http.StatusInternalServerError, service.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			assert.NoError(t, h.fail(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tc.code+`"`)
			assert.NotContains(t, rec.Body.String(), "db down")
		})
	}
}

func TestParseID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")

	c.SetParamValues("42")
	id, err := parseID(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	for _, bad := range []string{"0", "-1", "x"} {
		c.SetParamValues(bad)
		_, err := parseID(c, "id")
		assert.ErrorIs(t, err, service.ErrValidation)
	}
}
