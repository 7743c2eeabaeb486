// Package queue defines message payloads exchanged over the message broker.
package queue

// LeaseSignedEvent is published when a manager approval finalizes a
// lease.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type LeaseSignedEvent struct {
    LeaseID    uint64  `json:"lease_id"`
    DraftID    uint64  `json:"draft_id"`
    PropertyID uint64  `json:"property_id"`
    ClientID   uint64  `json:"client_id"`
    ManagerID  uint64  `json:"manager_id"`
    Rent       float64 `json:"rent"`
    Deposit    float64 `json:"deposit"`
    StartDate  string  `json:"start_date"`
    EndDate    string  `json:"end_date"`
    SignedAt   string  `json:"signed_at"`
}
