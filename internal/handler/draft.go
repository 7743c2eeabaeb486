package handler

import (
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/homelet/lease-service/internal/lease"
    "github.com/homelet/lease-service/internal/queue"
    queue_publisher "github.com/homelet/lease-service/internal/service"
)

// DraftHandler exposes the lease-draft negotiation endpoints.  All
// business rules live in the lease.Machine; the handler binds request
// bodies, resolves the principal from the JWT claims and maps the
// machine's sentinel errors onto HTTP statuses.
type DraftHandler struct {
    Machine *lease.Machine
}

// NewDraftHandler constructs a DraftHandler.  The machine must be non-nil.
func NewDraftHandler(m *lease.Machine) *DraftHandler {
    if m == nil {
        panic("nil machine passed to NewDraftHandler")
    }
    return &DraftHandler{Machine: m}
}

type createDraftReq struct {
    PropertyID uint64       `json:"property_id" validate:"required"`
    ClientID   uint64       `json:"client_id" validate:"required"`
    Terms      *lease.Terms `json:"terms" validate:"required"`
}

type transitionDraftReq struct {
    Action string       `json:"action" validate:"required"`
    Terms  *lease.Terms `json:"terms"`
}

// CreateDraft handles POST /v1/drafts.  Staff open a negotiation on an
// approved property on behalf of a client.  Responds 201 with the new
// draft id, 404 when the property is missing, 409 when the property is
// not approved or already has a draft, 400 on invalid terms.
func (h *DraftHandler) CreateDraft(c echo.Context) error {
    p, err := principalFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createDraftReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "property_id, client_id and terms are required"})
    }

    id, err := h.Machine.CreateDraft(c.Request().Context(), p, req.PropertyID, req.ClientID, req.Terms)
    if err != nil {
        return draftError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "draft_id": id,
        "status":   lease.StatusDraft,
    })
}

// TransitionDraft handles PATCH /v1/drafts/:id.  The action in the
// body selects the transition; assistant_update additionally carries a
// replacement terms payload.  On the approval transition the response
// includes the id of the lease the finalizer created.
func (h *DraftHandler) TransitionDraft(c echo.Context) error {
    p, err := principalFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    draftID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid draft id"})
    }
    var req transitionDraftReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "action is required"})
    }

    res, err := h.Machine.Transition(c.Request().Context(), p, draftID, lease.Action(req.Action), req.Terms)
    if err != nil {
        return draftError(c, err)
    }

    if res.AutoLeaseCreated {
        h.publishLeaseSigned(c, p, res)
    }

    body := echo.Map{
        "draft_id":           res.DraftID,
        "status":             res.Status,
        "version":            res.Version,
        "auto_lease_created": res.AutoLeaseCreated,
    }
    if res.LeaseID != 0 {
        body["lease_id"] = res.LeaseID
    }
    return c.JSON(http.StatusOK, body)
}

// GetDraft handles GET /v1/drafts/:id and returns the draft with its
// parsed current terms.
func (h *DraftHandler) GetDraft(c echo.Context) error {
    p, err := principalFrom(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    draftID, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid draft id"})
    }
    draft, terms, err := h.Machine.GetDraft(c.Request().Context(), p, draftID)
    if err != nil {
        return draftError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "draft_id":      draft.ID,
        "property_id":   draft.PropertyID,
        "client_id":     draft.ClientID,
        "status":        draft.Status,
        "version":       draft.Version,
        "current_terms": terms,
        "created_at":    draft.CreatedAt,
        "updated_at":    draft.UpdatedAt,
    })
}

// publishLeaseSigned emits the lease.signed event after a successful
// finalization.  Publishing is best effort: a broker outage must not
// fail a transition that has already committed.
func (h *DraftHandler) publishLeaseSigned(c echo.Context, p lease.Principal, res *lease.TransitionResult) {
    ev := queue.LeaseSignedEvent{
        LeaseID:    res.LeaseID,
        DraftID:    res.DraftID,
        PropertyID: res.PropertyID,
        ClientID:   res.ClientID,
        ManagerID:  p.ID,
        SignedAt:   time.Now().UTC().Format(time.RFC3339),
    }
    if res.FinalTerms != nil {
        ev.Rent = res.FinalTerms.Financial.Rent
        ev.Deposit = res.FinalTerms.Financial.Deposit
        ev.StartDate = res.FinalTerms.Dates.Start
        ev.EndDate = res.FinalTerms.Dates.End
    }
    if err := queue_publisher.PublishLeaseSigned(c.Request().Context(), ev); err != nil {
        log.Printf("lease.signed publish failed for lease %d: %v", res.LeaseID, err)
    }
}

// draftError maps negotiation-core sentinel errors onto HTTP responses.
// Unknown errors become opaque 500s; storage-layer details are never
// surfaced to callers.
func draftError(c echo.Context, err error) error {
    var terr *lease.TermsError
    switch {
    case errors.As(err, &terr):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": terr.Reason})
    case errors.Is(err, lease.ErrUnknownAction):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
    case errors.Is(err, lease.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, lease.ErrDraftNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "draft not found"})
    case errors.Is(err, lease.ErrPropertyNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
    case errors.Is(err, lease.ErrPropertyUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "property not available for leasing"})
    case errors.Is(err, lease.ErrDraftExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "a draft already exists for this property"})
    case errors.Is(err, lease.ErrInvalidTransition):
        return c.JSON(http.StatusConflict, echo.Map{"error": "invalid state transition"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}
