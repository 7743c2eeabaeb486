package lease

import (
    "encoding/json"
    "time"
)

// Financial carries the monetary portion of a term set.  Rent and
// deposit are monthly amounts in the branch currency; PaymentDueDay is
// the day of month rent falls due (0 when unset).
type Financial struct {
    Rent          float64 `json:"rent"`
    Deposit       float64 `json:"deposit"`
    PaymentDueDay int     `json:"paymentDueDay"`
}

// DateRange holds the proposed tenancy window as date strings.  Both
// "2006-01-02" and RFC 3339 forms are accepted.
type DateRange struct {
    Start string `json:"start"`
    End   string `json:"end"`
}

// Utilities lists which utilities are included in the rent and which
// the tenant pays separately.  Absent arrays are treated as empty.
type Utilities struct {
    Included []string `json:"included"`
    Excluded []string `json:"excluded"`
}

// Terms is the structured term set negotiated on a draft.  It is stored
// as JSON in lease_drafts.current_terms and snapshotted verbatim into
// leases.final_terms at finalization.
type Terms struct {
    Financial Financial `json:"financial"`
    Dates     DateRange `json:"dates"`
    Utilities Utilities `json:"utilities"`
}

// parseTermsDate accepts a plain date or a full RFC 3339 timestamp.
func parseTermsDate(s string) (time.Time, error) {
    if t, err := time.Parse("2006-01-02", s); err == nil {
        return t, nil
    }
    return time.Parse(time.RFC3339, s)
}

// Validate checks the shape and basic domain sanity of a term set and
// returns the first failing reason as a *TermsError.  It performs no
// I/O and does not modify the receiver; callers run it before any
// transition that carries a terms payload.
func (t *Terms) Validate() error {
    if t == nil {
        return &TermsError{Reason: "terms are required"}
    }
    if !(t.Financial.Rent > 0) {
        return &TermsError{Reason: "financial.rent must be a positive number"}
    }
    if t.Financial.Deposit < 0 {
        return &TermsError{Reason: "financial.deposit must not be negative"}
    }
    start, err := parseTermsDate(t.Dates.Start)
    if err != nil {
        return &TermsError{Reason: "dates.start is not a valid date"}
    }
    end, err := parseTermsDate(t.Dates.End)
    if err != nil {
        return &TermsError{Reason: "dates.end is not a valid date"}
    }
    if !start.Before(end) {
        return &TermsError{Reason: "dates.start must be before dates.end"}
    }
    if t.Financial.PaymentDueDay != 0 && (t.Financial.PaymentDueDay < 1 || t.Financial.PaymentDueDay > 31) {
        return &TermsError{Reason: "financial.paymentDueDay must be between 1 and 31"}
    }
    return nil
}

// Encode serializes the term set to the JSON form stored in the
// database.  Nil utility arrays are normalized to empty arrays so the
// stored document never contains nulls.
func (t *Terms) Encode() (string, error) {
    cp := *t
    if cp.Utilities.Included == nil {
        cp.Utilities.Included = []string{}
    }
    if cp.Utilities.Excluded == nil {
        cp.Utilities.Excluded = []string{}
    }
    b, err := json.Marshal(&cp)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// ParseTerms decodes a stored terms JSON document.
func ParseTerms(raw string) (*Terms, error) {
    var t Terms
    if err := json.Unmarshal([]byte(raw), &t); err != nil {
        return nil, err
    }
    return &t, nil
}

// StartDate returns the tenancy start from the term set, falling back
// to the current UTC time when the field is absent or unparseable.
// The fallback is defensive; validated terms always carry a start date.
func (t *Terms) StartDate() time.Time {
    if start, err := parseTermsDate(t.Dates.Start); err == nil {
        return start
    }
    return time.Now().UTC()
}
