package model

import "time"

// LeaseDraft is the mutable negotiation record between a client and the
// branch staff for a single property.  At most one draft exists per
// property at a time (enforced by a unique key on property_id).  The
// version counter increases by exactly one on every terms mutation so
// stale reads can be detected.
//
// Fields:
//  ID           – primary key identifier.
//  PropertyID   – property under negotiation (unique).
//  ClientID     – prospective tenant.
//  CurrentTerms – serialized lease terms JSON.
//  Status       – draft lifecycle state (see internal/lease).
//  Version      – monotonic counter, bumped on each terms change.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type LeaseDraft struct {
    ID           uint64    // lease_drafts.id
    PropertyID   uint64    // lease_drafts.property_id
    ClientID     uint64    // lease_drafts.client_id
    CurrentTerms string    // lease_drafts.current_terms (JSON)
    Status       string    // lease_drafts.status
    Version      uint32    // lease_drafts.version
    CreatedAt    time.Time // lease_drafts.created_at
    UpdatedAt    time.Time // lease_drafts.updated_at
}
