package router

import (
    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/handler"
    "github.com/homelet/lease-service/internal/middleware"
    "github.com/homelet/lease-service/internal/model"
)

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Refresh rotates the refresh token; refresh-access issues a new
    // access token without rotation.
    g.POST("/refresh", a.Refresh)
    g.POST("/refresh-access", a.RefreshAccess)
    // Logout accepts a refresh token in the body and does not require a
    // JWT, so an expired session can still be terminated.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me, middleware.RequireRole(
        model.RoleClient, model.RoleAssistant, model.RoleManager, model.RoleSupervisor, model.RoleOwner,
    ))
}
