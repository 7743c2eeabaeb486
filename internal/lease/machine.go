package lease

import (
    "context"
    "database/sql"
    "errors"

    "github.com/homelet/lease-service/internal/model"
    "github.com/homelet/lease-service/internal/repository"
)

// Machine drives the lease-draft lifecycle.  It holds no state of its
// own between requests: every transition re-reads the draft inside a
// transaction with a row lock and commits through conditional updates,
// so two concurrent transitions on the same draft can never both
// succeed.  The manager-approve transition runs the finalizer in the
// same transaction, making the lease insert and the property flip one
// atomic unit.
type Machine struct {
    db         *sql.DB
    drafts     *repository.LeaseDraftRepo
    properties *repository.PropertyRepo
    leases     *repository.LeaseRepo
}

// NewMachine constructs a Machine.  All dependencies must be non-nil.
func NewMachine(db *sql.DB, drafts *repository.LeaseDraftRepo, properties *repository.PropertyRepo, leases *repository.LeaseRepo) *Machine {
    if db == nil || drafts == nil || properties == nil || leases == nil {
        panic("nil dependency passed to NewMachine")
    }
    return &Machine{db: db, drafts: drafts, properties: properties, leases: leases}
}

// TransitionResult reports the outcome of a successful transition.
// FinalTerms is set only when this call finalized a lease.
type TransitionResult struct {
    DraftID          uint64
    PropertyID       uint64
    ClientID         uint64
    Status           string
    Version          uint32
    AutoLeaseCreated bool
    LeaseID          uint64
    FinalTerms       *Terms
}

// CreateDraft opens a negotiation on an approved property.  Only
// assistants and managers may create drafts.  The terms must validate,
// the property must exist with status approved, and no draft may
// already reference the property (whatever its status); the unique key
// on lease_drafts.property_id backs that last rule even under
// concurrent creation.
func (m *Machine) CreateDraft(ctx context.Context, p Principal, propertyID, clientID uint64, terms *Terms) (uint64, error) {
    if p.Role != model.RoleAssistant && p.Role != model.RoleManager {
        return 0, ErrForbidden
    }
    if err := terms.Validate(); err != nil {
        return 0, err
    }
    raw, err := terms.Encode()
    if err != nil {
        return 0, err
    }

    tx, err := m.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Lock the property so its status cannot change under us.
    prop, err := m.properties.GetByIDForUpdateTx(ctx, tx, propertyID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return 0, ErrPropertyNotFound
        }
        return 0, err
    }
    if prop.Status != model.PropertyApproved {
        return 0, ErrPropertyUnavailable
    }

    id, err := m.drafts.CreateTx(ctx, tx, propertyID, clientID, raw)
    if err != nil {
        if errors.Is(err, repository.ErrDuplicate) {
            return 0, ErrDraftExists
        }
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return id, nil
}

// Transition applies a single action to a draft on behalf of the
// principal.  Role and scope violations return ErrForbidden, unknown
// actions ErrUnknownAction, and illegal or raced transitions
// ErrInvalidTransition; in every failure case the draft is unchanged.
// manager_approve finalizes the lease (see finalizeTx) and is
// idempotent: re-applying it to an already signed draft returns the
// existing lease instead of failing.
func (m *Machine) Transition(ctx context.Context, p Principal, draftID uint64, action Action, terms *Terms) (*TransitionResult, error) {
    rule, ok := transitions[action]
    if !ok {
        return nil, ErrUnknownAction
    }
    if p.Role != rule.role {
        return nil, ErrForbidden
    }
    var raw string
    if rule.needsTerms {
        if err := terms.Validate(); err != nil {
            return nil, err
        }
        var err error
        if raw, err = terms.Encode(); err != nil {
            return nil, err
        }
    }

    tx, err := m.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Row lock: the status read below and the conditional writes that
    // follow form one critical section per draft id.
    draft, err := m.drafts.GetByIDForUpdateTx(ctx, tx, draftID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrDraftNotFound
        }
        return nil, err
    }

    if p.Role == model.RoleClient && draft.ClientID != p.ID {
        return nil, ErrForbidden
    }

    // Managers act only within their own branch; the property is locked
    // here as well because approval will flip its status.
    var prop model.Property
    if action == ActionManagerApprove {
        prop, err = m.properties.GetByIDForUpdateTx(ctx, tx, draft.PropertyID)
        if err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                return nil, ErrPropertyNotFound
            }
            return nil, err
        }
        if p.BranchID == nil || *p.BranchID != prop.BranchID {
            return nil, ErrForbidden
        }
        // Retried approval: the draft is already signed, so hand back
        // the lease created by the first attempt.
        if draft.Status == StatusSigned {
            existing, err := m.leases.GetByDraftIDTx(ctx, tx, draft.ID)
            if err != nil {
                if errors.Is(err, sql.ErrNoRows) {
                    return nil, ErrInvalidTransition
                }
                return nil, err
            }
            if err := tx.Commit(); err != nil {
                return nil, err
            }
            committed = true
            return &TransitionResult{
                DraftID:    draft.ID,
                PropertyID: draft.PropertyID,
                ClientID:   draft.ClientID,
                Status:     StatusSigned,
                Version:    draft.Version,
                LeaseID:    existing.ID,
            }, nil
        }
    }

    if !statusIn(draft.Status, rule.from) {
        return nil, ErrInvalidTransition
    }

    res := &TransitionResult{
        DraftID:    draft.ID,
        PropertyID: draft.PropertyID,
        ClientID:   draft.ClientID,
        Status:     rule.to,
        Version:    draft.Version,
    }

    switch action {
    case ActionAssistantUpdate:
        n, err := m.drafts.UpdateTermsTx(ctx, tx, draft.ID, draft.Status, draft.Version, raw)
        if err != nil {
            return nil, err
        }
        if n == 0 {
            return nil, ErrInvalidTransition
        }
        res.Version = draft.Version + 1
    case ActionManagerApprove:
        leaseID, finalTerms, err := m.finalizeTx(ctx, tx, &draft, prop.ID)
        if err != nil {
            return nil, err
        }
        res.Status = StatusSigned
        res.AutoLeaseCreated = true
        res.LeaseID = leaseID
        res.FinalTerms = finalTerms
    default:
        n, err := m.drafts.UpdateStatusTx(ctx, tx, draft.ID, draft.Status, rule.to)
        if err != nil {
            return nil, err
        }
        if n == 0 {
            return nil, ErrInvalidTransition
        }
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return res, nil
}

// finalizeTx materializes the lease for an approved draft inside the
// caller's transaction: the draft moves client_accepted -> approved ->
// signed, the current terms are snapshotted into the lease row, and
// the property becomes rented.  Everything commits or rolls back
// together.  Signature flags stay false at finalization; signature
// capture is a separate future action, not part of approval.
func (m *Machine) finalizeTx(ctx context.Context, tx *sql.Tx, draft *model.LeaseDraft, propertyID uint64) (uint64, *Terms, error) {
    // Serialization point: only one approval can win this update.
    n, err := m.drafts.UpdateStatusTx(ctx, tx, draft.ID, StatusClientAccepted, StatusApproved)
    if err != nil {
        return 0, nil, err
    }
    if n == 0 {
        return 0, nil, ErrInvalidTransition
    }

    terms, err := ParseTerms(draft.CurrentTerms)
    if err != nil {
        return 0, nil, err
    }
    leaseID, err := m.leases.CreateTx(ctx, tx, draft.ID, draft.CurrentTerms, false, false, terms.StartDate())
    if err != nil {
        // A lease row already exists for this draft (unique draft_id):
        // a prior attempt got as far as the insert.  Reuse it.
        if errors.Is(err, repository.ErrDuplicate) {
            existing, lookupErr := m.leases.GetByDraftIDTx(ctx, tx, draft.ID)
            if lookupErr != nil {
                return 0, nil, lookupErr
            }
            leaseID = existing.ID
        } else {
            return 0, nil, err
        }
    }

    if err := m.properties.UpdateStatusTx(ctx, tx, propertyID, model.PropertyRented); err != nil {
        return 0, nil, err
    }
    if _, err := m.drafts.UpdateStatusTx(ctx, tx, draft.ID, StatusApproved, StatusSigned); err != nil {
        return 0, nil, err
    }
    return leaseID, terms, nil
}

// GetDraft returns a draft with its parsed terms, applying the same
// scoping rules as transitions: clients see only their own drafts and
// managers only drafts of properties in their branch.
func (m *Machine) GetDraft(ctx context.Context, p Principal, draftID uint64) (model.LeaseDraft, *Terms, error) {
    draft, err := m.drafts.GetByID(ctx, draftID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return model.LeaseDraft{}, nil, ErrDraftNotFound
        }
        return model.LeaseDraft{}, nil, err
    }
    switch p.Role {
    case model.RoleClient:
        if draft.ClientID != p.ID {
            return model.LeaseDraft{}, nil, ErrForbidden
        }
    case model.RoleManager:
        prop, err := m.properties.GetByID(ctx, draft.PropertyID)
        if err != nil {
            return model.LeaseDraft{}, nil, err
        }
        if p.BranchID == nil || *p.BranchID != prop.BranchID {
            return model.LeaseDraft{}, nil, ErrForbidden
        }
    }
    terms, err := ParseTerms(draft.CurrentTerms)
    if err != nil {
        return model.LeaseDraft{}, nil, err
    }
    return draft, terms, nil
}
