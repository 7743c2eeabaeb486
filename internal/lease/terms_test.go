package lease

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func validTerms() *Terms {
    return &Terms{
        Financial: Financial{Rent: 1200, Deposit: 2400, PaymentDueDay: 1},
        Dates:     DateRange{Start: "2026-09-01", End: "2027-08-31"},
        Utilities: Utilities{Included: []string{"water"}, Excluded: []string{"electricity"}},
    }
}

func TestTermsValidate(t *testing.T) {
    t.Run("valid terms pass", func(t *testing.T) {
        assert.NoError(t, validTerms().Validate())
    })

    t.Run("nil terms", func(t *testing.T) {
        var terms *Terms
        err := terms.Validate()
        require.Error(t, err)
        assert.Equal(t, "terms are required", err.(*TermsError).Reason)
    })

    cases := []struct {
        name   string
        mutate func(*Terms)
        reason string
    }{
        {
            name:   "zero rent",
            mutate: func(tr *Terms) { tr.Financial.Rent = 0 },
            reason: "financial.rent must be a positive number",
        },
        {
            name:   "negative rent",
            mutate: func(tr *Terms) { tr.Financial.Rent = -500 },
            reason: "financial.rent must be a positive number",
        },
        {
            name:   "negative deposit",
            mutate: func(tr *Terms) { tr.Financial.Deposit = -1 },
            reason: "financial.deposit must not be negative",
        },
        {
            name:   "garbage start date",
            mutate: func(tr *Terms) { tr.Dates.Start = "next tuesday" },
            reason: "dates.start is not a valid date",
        },
        {
            name:   "missing end date",
            mutate: func(tr *Terms) { tr.Dates.End = "" },
            reason: "dates.end is not a valid date",
        },
        {
            name:   "start after end",
            mutate: func(tr *Terms) { tr.Dates.Start = "2027-09-01" },
            reason: "dates.start must be before dates.end",
        },
        {
            name:   "start equal to end",
            mutate: func(tr *Terms) { tr.Dates.Start = tr.Dates.End },
            reason: "dates.start must be before dates.end",
        },
        {
            name:   "due day out of range",
            mutate: func(tr *Terms) { tr.Financial.PaymentDueDay = 32 },
            reason: "financial.paymentDueDay must be between 1 and 31",
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            terms := validTerms()
            tc.mutate(terms)
            err := terms.Validate()
            require.Error(t, err)
            var terr *TermsError
            require.ErrorAs(t, err, &terr)
            assert.Equal(t, tc.reason, terr.Reason)
        })
    }

    t.Run("zero due day means unset", func(t *testing.T) {
        terms := validTerms()
        terms.Financial.PaymentDueDay = 0
        assert.NoError(t, terms.Validate())
    })

    t.Run("rfc3339 dates accepted", func(t *testing.T) {
        terms := validTerms()
        terms.Dates.Start = "2026-09-01T00:00:00Z"
        terms.Dates.End = "2027-08-31T00:00:00Z"
        assert.NoError(t, terms.Validate())
    })
}

func TestTermsEncodeNormalizesNilArrays(t *testing.T) {
    terms := validTerms()
    terms.Utilities.Included = nil
    terms.Utilities.Excluded = nil

    raw, err := terms.Encode()
    require.NoError(t, err)
    assert.Contains(t, raw, `"included":[]`)
    assert.Contains(t, raw, `"excluded":[]`)
    assert.NotContains(t, raw, "null")

    // Encode works on a copy; the receiver keeps its nil slices.
    assert.Nil(t, terms.Utilities.Included)
}

func TestParseTermsRoundTrip(t *testing.T) {
    raw, err := validTerms().Encode()
    require.NoError(t, err)

    parsed, err := ParseTerms(raw)
    require.NoError(t, err)
    assert.Equal(t, 1200.0, parsed.Financial.Rent)
    assert.Equal(t, "2026-09-01", parsed.Dates.Start)
    assert.Equal(t, []string{"water"}, parsed.Utilities.Included)
}

func TestParseTermsRejectsGarbage(t *testing.T) {
    _, err := ParseTerms("{not json")
    assert.Error(t, err)
}

func TestTermsStartDate(t *testing.T) {
    terms := validTerms()
    start := terms.StartDate()
    assert.Equal(t, 2026, start.Year())
    assert.Equal(t, 9, int(start.Month()))

    terms.Dates.Start = "not a date"
    // Falls back to now rather than a zero time.
    assert.False(t, terms.StartDate().IsZero())
}
