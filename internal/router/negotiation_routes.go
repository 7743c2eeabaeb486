package router

import (
    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/handler"
    "github.com/homelet/lease-service/internal/middleware"
    "github.com/homelet/lease-service/internal/model"
)

// RegisterNegotiation registers the lease-draft endpoints under /v1.
// The role middleware only gates who may reach a route at all; the
// per-action role rules (which role may take which transition) are
// enforced by the state machine's transition table, so a client and an
// assistant share the same PATCH route.
func RegisterNegotiation(e *echo.Echo, d *handler.DraftHandler, jwtSecret string) {
    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

    g.POST("/drafts", d.CreateDraft,
        middleware.RequireRole(model.RoleAssistant, model.RoleManager))
    g.PATCH("/drafts/:id", d.TransitionDraft,
        middleware.RequireRole(model.RoleClient, model.RoleAssistant, model.RoleManager))
    g.GET("/drafts/:id", d.GetDraft,
        middleware.RequireRole(model.RoleClient, model.RoleAssistant, model.RoleManager, model.RoleSupervisor, model.RoleOwner))
}
