package handler

import (
    "database/sql"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/homelet/lease-service/internal/config"
    "github.com/homelet/lease-service/internal/middleware"
    "github.com/homelet/lease-service/internal/model"
    "github.com/homelet/lease-service/internal/repository"
)

// PropertyHandler serves the property application workflow and the
// public browse endpoints.  Listings submitted by clients start as
// pending applications; a manager of the owning branch approves or
// rejects them, which makes them visible to (or hides them from) the
// public list.
type PropertyHandler struct {
    Properties *repository.PropertyRepo
    Users      *repository.UserRepo
    CacheCfg   config.CacheConfig
    Redis      *redis.Client
}

// NewPropertyHandler constructs a PropertyHandler.  Redis may be nil;
// cache invalidation is skipped in that case.
func NewPropertyHandler(props *repository.PropertyRepo, users *repository.UserRepo, cacheCfg config.CacheConfig, rdb *redis.Client) *PropertyHandler {
    if props == nil || users == nil {
        panic("nil repository passed to NewPropertyHandler")
    }
    return &PropertyHandler{Properties: props, Users: users, CacheCfg: cacheCfg, Redis: rdb}
}

type applyPropertyReq struct {
    BranchID   uint64 `json:"branch_id" validate:"required"`
    AgentID    uint64 `json:"agent_id" validate:"required"`
    Title      string `json:"title" validate:"required"`
    Address    string `json:"address" validate:"required"`
    City       string `json:"city" validate:"required"`
    PriceCents uint32 `json:"price_cents" validate:"required"`
    Bedrooms   uint8  `json:"bedrooms"`
    Bathrooms  uint8  `json:"bathrooms"`
    Sqft       uint32 `json:"sqft"`
}

type propertyStatusReq struct {
    Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// propertyJSON is the public response shape for a property.
func propertyJSON(p model.Property) echo.Map {
    return echo.Map{
        "id":          p.ID,
        "branch_id":   p.BranchID,
        "agent_id":    p.AgentID,
        "title":       p.Title,
        "address":     p.Address,
        "city":        p.City,
        "price_cents": p.PriceCents,
        "bedrooms":    p.Bedrooms,
        "bathrooms":   p.Bathrooms,
        "sqft":        p.Sqft,
        "status":      p.Status,
        "created_at":  p.CreatedAt,
    }
}

// Apply handles POST /v1/properties/apply.  A client submits a listing
// application; it enters the pending state until a branch manager
// decides on it.  The named agent must be an assistant of the branch.
func (h *PropertyHandler) Apply(c echo.Context) error {
    if _, err := principalFrom(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req applyPropertyReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required listing fields"})
    }

    ctx := c.Request().Context()
    agent, err := h.Users.GetByID(ctx, req.AgentID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "agent not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if agent.Role != model.RoleAssistant || agent.BranchID == nil || *agent.BranchID != req.BranchID {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "agent must be an assistant of the branch"})
    }

    id, err := h.Properties.Create(ctx, &model.Property{
        BranchID:   req.BranchID,
        AgentID:    req.AgentID,
        Title:      req.Title,
        Address:    req.Address,
        City:       req.City,
        PriceCents: req.PriceCents,
        Bedrooms:   req.Bedrooms,
        Bathrooms:  req.Bathrooms,
        Sqft:       req.Sqft,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create property"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "property_id": id,
        "status":      model.PropertyPending,
    })
}

// ListApproved handles GET /v1/properties and returns all approved
// listings.  The route sits behind the response cache.
func (h *PropertyHandler) ListApproved(c echo.Context) error {
    props, err := h.Properties.ListByStatus(c.Request().Context(), model.PropertyApproved)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load properties"})
    }
    items := make([]echo.Map, 0, len(props))
    for _, p := range props {
        items = append(items, propertyJSON(p))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetProperty handles GET /v1/properties/:id.
func (h *PropertyHandler) GetProperty(c echo.Context) error {
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
    }
    p, err := h.Properties.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": propertyJSON(p)})
}

// UpdateStatus handles PATCH /v1/properties/:id/status.  A manager of
// the owning branch approves or rejects a pending application.  The
// decision is a conditional update from pending, so two managers
// racing on the same application cannot both win.
func (h *PropertyHandler) UpdateStatus(c echo.Context) error {
    p, err := principalFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property id"})
    }
    var req propertyStatusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be approved or rejected"})
    }

    ctx := c.Request().Context()
    prop, err := h.Properties.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if p.BranchID == nil || *p.BranchID != prop.BranchID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    n, err := h.Properties.UpdateStatusIf(ctx, id, model.PropertyPending, req.Status)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update property"})
    }
    if n == 0 {
        return c.JSON(http.StatusConflict, echo.Map{"error": "property is not pending"})
    }

    middleware.InvalidateCache(h.CacheCfg, h.Redis, c)
    return c.JSON(http.StatusOK, echo.Map{
        "property_id": id,
        "status":      req.Status,
    })
}
