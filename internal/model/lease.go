package model

import "time"

// Lease is the immutable record of a finalized tenancy.  It is created
// exactly once per draft when a manager approves, with the draft's
// terms frozen into FinalTerms.  Only the two signature flags may ever
// change after creation; the terms snapshot never does.
//
// Fields:
//  ID             – primary key identifier.
//  DraftID        – originating lease draft (unique).
//  FinalTerms     – terms JSON snapshot taken at finalization.
//  SignedByClient – whether the client has signed.
//  SignedByAgent  – whether the agent has signed.
//  ActiveFrom     – tenancy start date.
//  CreatedAt      – timestamp of creation.
type Lease struct {
    ID             uint64    // leases.id
    DraftID        uint64    // leases.draft_id
    FinalTerms     string    // leases.final_terms (JSON)
    SignedByClient bool      // leases.signed_by_client
    SignedByAgent  bool      // leases.signed_by_agent
    ActiveFrom     time.Time // leases.active_from
    CreatedAt      time.Time // leases.created_at
}
