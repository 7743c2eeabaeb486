package router

import (
    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/handler"
    "github.com/homelet/lease-service/internal/middleware"
    "github.com/homelet/lease-service/internal/model"
)

// RegisterClient registers client-scoped endpoints under /v1.  Clients
// can submit a property listing application, schedule viewings and
// list their own viewing requests.
func RegisterClient(e *echo.Echo, p *handler.PropertyHandler, v *handler.ViewingHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(model.RoleClient),
    )
    g.POST("/properties/apply", p.Apply)
    g.POST("/viewings", v.Schedule)
    g.GET("/viewings", v.ListMine)
}
