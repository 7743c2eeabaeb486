package router

import (
    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/handler"
    "github.com/homelet/lease-service/internal/middleware"
    "github.com/homelet/lease-service/internal/model"
)

// RegisterStaff registers manager-scoped administration endpoints
// under /v1: deciding property applications and viewing requests.
func RegisterStaff(e *echo.Echo, p *handler.PropertyHandler, v *handler.ViewingHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleManager),
    )
    g.PATCH("/properties/:id/status", p.UpdateStatus)
    g.PATCH("/viewings/:id", v.UpdateStatus)
}
