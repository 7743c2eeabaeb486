package handler

import (
    "errors"
    "strconv"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/lease"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound DTOs.
type RequestValidator struct {
    validate *validator.Validate
}

// NewRequestValidator returns a validator ready to attach to echo.Echo.
func NewRequestValidator() *RequestValidator {
    return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
    return v.validate.Struct(i)
}

var errNoPrincipal = errors.New("no authenticated principal")

// principalFrom rebuilds the authenticated principal from the claims
// the JWT middleware stored in the context.  Numeric JWT claims decode
// as float64, so both forms are accepted.
func principalFrom(c echo.Context) (lease.Principal, error) {
    id, err := claimUint64(c.Get("user_id"))
    if err != nil || id == 0 {
        return lease.Principal{}, errNoPrincipal
    }
    role, ok := c.Get("role").(string)
    if !ok || role == "" {
        return lease.Principal{}, errNoPrincipal
    }
    p := lease.Principal{ID: id, Role: role}
    if b, err := claimUint64(c.Get("branch_id")); err == nil && b != 0 {
        p.BranchID = &b
    }
    return p, nil
}

// claimUint64 converts a JWT claim value into a uint64.
func claimUint64(v interface{}) (uint64, error) {
    switch t := v.(type) {
    case float64:
        if t < 0 {
            return 0, errors.New("negative claim")
        }
        return uint64(t), nil
    case uint64:
        return t, nil
    case int64:
        if t < 0 {
            return 0, errors.New("negative claim")
        }
        return uint64(t), nil
    case string:
        return strconv.ParseUint(t, 10, 64)
    default:
        return 0, errors.New("missing claim")
    }
}

// pathID parses the :id path parameter as a positive integer.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
