package lease

import "github.com/homelet/lease-service/internal/model"

// Draft status values stored in lease_drafts.status.  Canceled and
// signed are terminal; no action is accepted once either is reached.
const (
    StatusDraft          = "draft"
    StatusClientAccepted = "client_accepted"
    StatusClientRejected = "client_rejected"
    StatusApproved       = "approved"
    StatusCanceled       = "canceled"
    StatusSigned         = "signed"
)

// Action identifies a requested draft transition.  Every role-gated
// negotiation endpoint dispatches through this closed set instead of
// carrying its own role checks.
type Action string

const (
    ActionClientAccept    Action = "client_accept"
    ActionClientReject    Action = "client_reject"
    ActionAssistantUpdate Action = "assistant_update"
    ActionAssistantCancel Action = "assistant_cancel"
    ActionManagerApprove  Action = "manager_approve"
)

// Principal is the authenticated actor resolved by the JWT middleware.
// The core treats it as an immutable input; it never persists one.
type Principal struct {
    ID       uint64
    Role     string
    BranchID *uint64
}

// transition describes one legal edge of the draft state machine: the
// role allowed to take it, the statuses it may start from, the status
// it lands in and whether a terms payload is required.
type transition struct {
    role       string
    from       []string
    to         string
    needsTerms bool
}

// transitions is the single source of truth for the negotiation
// workflow.  manager_approve lands in "approved" only transiently: the
// finalizer runs in the same transaction and moves the draft on to
// "signed" before commit.
var transitions = map[Action]transition{
    ActionClientAccept:    {role: model.RoleClient, from: []string{StatusDraft}, to: StatusClientAccepted},
    ActionClientReject:    {role: model.RoleClient, from: []string{StatusDraft}, to: StatusClientRejected},
    ActionAssistantUpdate: {role: model.RoleAssistant, from: []string{StatusDraft, StatusClientRejected}, to: StatusDraft, needsTerms: true},
    ActionAssistantCancel: {role: model.RoleAssistant, from: []string{StatusDraft, StatusClientRejected}, to: StatusCanceled},
    ActionManagerApprove:  {role: model.RoleManager, from: []string{StatusClientAccepted}, to: StatusApproved},
}

func statusIn(status string, set []string) bool {
    for _, s := range set {
        if s == status {
            return true
        }
    }
    return false
}
