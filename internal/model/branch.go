package model

import "time"

// Branch represents an office of the agency.  Staff and properties
// are scoped to exactly one branch; managers may only act on
// drafts whose property belongs to their own branch.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the branch.
//  City      – city the branch operates in.
//  CreatedAt – timestamp of creation.
type Branch struct {
    ID        uint64    // branches.id
    Name      string    // branches.name
    City      string    // branches.city
    CreatedAt time.Time // branches.created_at
}
