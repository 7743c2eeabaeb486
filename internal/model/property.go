package model

import "time"

// Property status values.  A lease draft may only be created against an
// approved property; finalizing a lease transitions it to rented.
const (
    PropertyPending  = "pending"
    PropertyApproved = "approved"
    PropertyRejected = "rejected"
    PropertyRented   = "rented"
)

// Property represents a leasable unit listed with a branch.  Listings
// start as pending applications and must be approved by a manager
// before any lease negotiation can target them.
//
// Fields:
//  ID         – primary key identifier.
//  BranchID   – branch that administers this property.
//  AgentID    – staff member assigned to the property.
//  Title      – short listing title.
//  Address    – street address.
//  City       – city of the property.
//  PriceCents – asking monthly rent in cents.
//  Bedrooms   – number of bedrooms.
//  Bathrooms  – number of bathrooms.
//  Sqft       – floor area in square feet.
//  Status     – listing state (pending, approved, rejected, rented).
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Property struct {
    ID         uint64    // properties.id
    BranchID   uint64    // properties.branch_id
    AgentID    uint64    // properties.agent_id
    Title      string    // properties.title
    Address    string    // properties.address
    City       string    // properties.city
    PriceCents uint32    // properties.price_cents
    Bedrooms   uint8     // properties.bedrooms
    Bathrooms  uint8     // properties.bathrooms
    Sqft       uint32    // properties.sqft
    Status     string    // properties.status
    CreatedAt  time.Time // properties.created_at
    UpdatedAt  time.Time // properties.updated_at
}
