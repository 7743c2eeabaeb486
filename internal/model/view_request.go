package model

import "time"

// View request status values.
const (
    ViewRequestPending  = "pending"
    ViewRequestApproved = "approved"
    ViewRequestRejected = "rejected"
)

// ViewRequest records a client's request to view a property before
// entering negotiation.  The assistant assigned to the property is
// attached at creation; a manager approves or rejects the request.
//
// Fields:
//  ID            – primary key identifier.
//  ClientID      – client requesting the viewing.
//  PropertyID    – property to be viewed.
//  AssistantID   – staff member assigned to accompany the viewing.
//  Status        – request state (pending, approved, rejected).
//  ScheduledTime – proposed time of the viewing.
//  Message       – free-text note from the client.
//  CreatedAt     – timestamp of creation.
type ViewRequest struct {
    ID            uint64    // view_requests.id
    ClientID      uint64    // view_requests.client_id
    PropertyID    uint64    // view_requests.property_id
    AssistantID   uint64    // view_requests.assistant_id
    Status        string    // view_requests.status
    ScheduledTime time.Time // view_requests.scheduled_time
    Message       string    // view_requests.message
    CreatedAt     time.Time // view_requests.created_at
}
