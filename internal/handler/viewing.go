package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/model"
    "github.com/homelet/lease-service/internal/repository"
)

// ViewingHandler serves viewing-request endpoints.  Clients schedule a
// viewing against a listed property; the assistant assigned to the
// property is attached automatically and a manager later approves or
// rejects the request.
type ViewingHandler struct {
    ViewRequests *repository.ViewRequestRepo
    Properties   *repository.PropertyRepo
}

// NewViewingHandler constructs a ViewingHandler.  All dependencies must
// be non-nil.
func NewViewingHandler(views *repository.ViewRequestRepo, props *repository.PropertyRepo) *ViewingHandler {
    if views == nil || props == nil {
        panic("nil repository passed to NewViewingHandler")
    }
    return &ViewingHandler{ViewRequests: views, Properties: props}
}

type scheduleViewingReq struct {
    PropertyID    uint64 `json:"property_id" validate:"required"`
    Message       string `json:"message" validate:"required,min=10"`
    ScheduledTime string `json:"scheduled_time" validate:"required"`
}

type viewingStatusReq struct {
    Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// Schedule handles POST /v1/viewings.  The message must carry at least
// ten characters and the time must be RFC 3339.
func (h *ViewingHandler) Schedule(c echo.Context) error {
    p, err := principalFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req scheduleViewingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id, scheduled_time and a message of at least 10 characters are required"})
    }
    when, err := time.Parse(time.RFC3339, req.ScheduledTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_time is not a valid timestamp"})
    }

    ctx := c.Request().Context()
    prop, err := h.Properties.GetByID(ctx, req.PropertyID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if prop.AgentID == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "property has no assigned agent"})
    }

    id, err := h.ViewRequests.Create(ctx, &model.ViewRequest{
        ClientID:      p.ID,
        PropertyID:    prop.ID,
        AssistantID:   prop.AgentID,
        ScheduledTime: when,
        Message:       req.Message,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create viewing request"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "viewing_id": id,
        "status":     model.ViewRequestPending,
    })
}

// ListMine handles GET /v1/viewings and returns the client's requests.
func (h *ViewingHandler) ListMine(c echo.Context) error {
    p, err := principalFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.ViewRequests.ListByClient(c.Request().Context(), p.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load viewing requests"})
    }
    out := make([]echo.Map, 0, len(items))
    for _, v := range items {
        out = append(out, echo.Map{
            "viewing_id":     v.ID,
            "property_id":    v.PropertyID,
            "assistant_id":   v.AssistantID,
            "status":         v.Status,
            "scheduled_time": v.ScheduledTime,
            "message":        v.Message,
            "created_at":     v.CreatedAt,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateStatus handles PATCH /v1/viewings/:id.  Managers approve or
// reject a pending request.
func (h *ViewingHandler) UpdateStatus(c echo.Context) error {
    if _, err := principalFrom(c); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid viewing id"})
    }
    var req viewingStatusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be approved or rejected"})
    }

    n, err := h.ViewRequests.UpdateStatus(c.Request().Context(), id, req.Status)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update viewing request"})
    }
    if n == 0 {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "viewing request not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "viewing_id": id,
        "status":     req.Status,
    })
}
