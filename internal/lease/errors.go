// Package lease implements the lease-draft negotiation core: the terms
// validator, the draft state machine and the finalizer that turns an
// approved draft into an immutable lease.  Handlers translate the
// sentinel errors defined here into HTTP responses.
package lease

import "errors"

// ErrForbidden is returned when the principal's role is not permitted
// to perform the requested action, or when a scoping rule fails (a
// manager acting outside their branch, a client acting on somebody
// else's draft).  Handlers should translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when the requested action is not
// legal from the draft's current status, including any action applied
// to a draft in a terminal state and the loser of a concurrent
// transition race.  Handlers should translate this into HTTP 409.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrDraftNotFound is returned when the referenced lease draft does not exist.
var ErrDraftNotFound = errors.New("draft not found")

// ErrPropertyNotFound is returned when the referenced property does not exist.
var ErrPropertyNotFound = errors.New("property not found")

// ErrPropertyUnavailable is returned when a draft is created against a
// property whose status is not approved.  Handlers should translate
// this into HTTP 409.
var ErrPropertyUnavailable = errors.New("property not available for leasing")

// ErrDraftExists is returned when a draft already references the target
// property, regardless of that draft's status.  Handlers should
// translate this into HTTP 409.
var ErrDraftExists = errors.New("draft already exists for property")

// ErrUnknownAction is returned when the requested action is not part of
// the transition table.  Handlers should translate this into HTTP 400.
var ErrUnknownAction = errors.New("unknown action")

// TermsError reports the first failing check of the terms validator.
// It is a client error (HTTP 400); the reason is safe to surface.
type TermsError struct {
    Reason string
}

func (e *TermsError) Error() string { return "invalid lease terms: " + e.Reason }
