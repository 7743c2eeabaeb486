package handler

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/homelet/lease-service/internal/lease"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPatch, "/v1/drafts/42", nil)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestDraftErrorMapping(t *testing.T) {
    cases := []struct {
        name string
        err  error
        code int
        body string
    }{
        {"terms failures carry the reason", &lease.TermsError{Reason: "financial.rent must be a positive number"}, http.StatusBadRequest, "financial.rent must be a positive number"},
        {"unknown action", lease.ErrUnknownAction, http.StatusBadRequest, "unknown action"},
        {"forbidden", lease.ErrForbidden, http.StatusForbidden, "forbidden"},
        {"draft not found", lease.ErrDraftNotFound, http.StatusNotFound, "draft not found"},
        {"property not found", lease.ErrPropertyNotFound, http.StatusNotFound, "property not found"},
        {"property unavailable", lease.ErrPropertyUnavailable, http.StatusConflict, "property not available for leasing"},
        {"draft exists", lease.ErrDraftExists, http.StatusConflict, "a draft already exists for this property"},
        {"invalid transition", lease.ErrInvalidTransition, http.StatusConflict, "invalid state transition"},
        {"anything else is opaque", assert.AnError, http.StatusInternalServerError, "internal error"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            c, rec := newTestContext(t)
            require.NoError(t, draftError(c, tc.err))
            assert.Equal(t, tc.code, rec.Code)
            assert.Contains(t, rec.Body.String(), tc.body)
        })
    }
}

func TestPrincipalFrom(t *testing.T) {
    t.Run("float64 claims from the token", func(t *testing.T) {
        c, _ := newTestContext(t)
        c.Set("user_id", float64(7))
        c.Set("role", "client")

        p, err := principalFrom(c)
        require.NoError(t, err)
        assert.Equal(t, uint64(7), p.ID)
        assert.Equal(t, "client", p.Role)
        assert.Nil(t, p.BranchID)
    })

    t.Run("branch claim becomes a pointer", func(t *testing.T) {
        c, _ := newTestContext(t)
        c.Set("user_id", float64(5))
        c.Set("role", "manager")
        c.Set("branch_id", float64(9))

        p, err := principalFrom(c)
        require.NoError(t, err)
        require.NotNil(t, p.BranchID)
        assert.Equal(t, uint64(9), *p.BranchID)
    })

    t.Run("missing claims", func(t *testing.T) {
        c, _ := newTestContext(t)
        _, err := principalFrom(c)
        assert.Error(t, err)
    })
}
