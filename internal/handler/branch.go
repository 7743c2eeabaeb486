package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/repository"
)

// BranchHandler serves the public branch listing.
type BranchHandler struct {
    Branches *repository.BranchRepo
}

// NewBranchHandler constructs a BranchHandler.
func NewBranchHandler(branches *repository.BranchRepo) *BranchHandler {
    if branches == nil {
        panic("nil repository passed to NewBranchHandler")
    }
    return &BranchHandler{Branches: branches}
}

// List handles GET /v1/branches.
func (h *BranchHandler) List(c echo.Context) error {
    branches, err := h.Branches.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load branches"})
    }
    items := make([]echo.Map, 0, len(branches))
    for _, b := range branches {
        items = append(items, echo.Map{
            "id":   b.ID,
            "name": b.Name,
            "city": b.City,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
