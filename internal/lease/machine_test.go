package lease

import (
    "context"
    "database/sql"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/homelet/lease-service/internal/model"
    "github.com/homelet/lease-service/internal/repository"
)

func newTestMachine(t *testing.T) (*Machine, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    m := NewMachine(db,
        repository.NewLeaseDraftRepo(db),
        repository.NewPropertyRepo(db),
        repository.NewLeaseRepo(db))
    return m, mock
}

func branchPtr(v uint64) *uint64 { return &v }

func encodedTerms(t *testing.T) string {
    t.Helper()
    raw, err := validTerms().Encode()
    require.NoError(t, err)
    return raw
}

func draftRows(id, propertyID, clientID uint64, terms, status string, version uint32) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{
        "id", "property_id", "client_id", "current_terms", "status", "version", "created_at", "updated_at",
    }).AddRow(id, propertyID, clientID, terms, status, version, now, now)
}

func propertyRows(id, branchID uint64, status string) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{
        "id", "branch_id", "agent_id", "title", "address", "city",
        "price_cents", "bedrooms", "bathrooms", "sqft", "status", "created_at", "updated_at",
    }).AddRow(id, branchID, 3, "2 bed flat", "1 High St", "Leeds", 120000, 2, 1, 700, status, now, now)
}

func leaseRows(id, draftID uint64, terms string) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows([]string{
        "id", "draft_id", "final_terms", "signed_by_client", "signed_by_agent", "active_from", "created_at",
    }).AddRow(id, draftID, terms, false, false, now, now)
}

func TestCreateDraft(t *testing.T) {
    ctx := context.Background()
    assistant := Principal{ID: 3, Role: model.RoleAssistant, BranchID: branchPtr(9)}

    t.Run("clients cannot open drafts", func(t *testing.T) {
        m, mock := newTestMachine(t)
        _, err := m.CreateDraft(ctx, Principal{ID: 7, Role: model.RoleClient}, 11, 7, validTerms())
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("invalid terms rejected before any query", func(t *testing.T) {
        m, mock := newTestMachine(t)
        bad := validTerms()
        bad.Financial.Rent = 0
        _, err := m.CreateDraft(ctx, assistant, 11, 7, bad)
        var terr *TermsError
        require.ErrorAs(t, err, &terr)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("missing property", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnError(sql.ErrNoRows)
        mock.ExpectRollback()

        _, err := m.CreateDraft(ctx, assistant, 11, 7, validTerms())
        assert.ErrorIs(t, err, ErrPropertyNotFound)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("property not approved", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyPending))
        mock.ExpectRollback()

        _, err := m.CreateDraft(ctx, assistant, 11, 7, validTerms())
        assert.ErrorIs(t, err, ErrPropertyUnavailable)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("second draft on the same property", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))
        mock.ExpectExec(`INSERT INTO lease_drafts`).
            WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '11' for key 'lease_drafts.property_id'"))
        mock.ExpectRollback()

        _, err := m.CreateDraft(ctx, assistant, 11, 7, validTerms())
        assert.ErrorIs(t, err, ErrDraftExists)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("success", func(t *testing.T) {
        m, mock := newTestMachine(t)
        raw := encodedTerms(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))
        mock.ExpectExec(`INSERT INTO lease_drafts`).
            WithArgs(11, 7, raw).
            WillReturnResult(sqlmock.NewResult(42, 1))
        mock.ExpectCommit()

        id, err := m.CreateDraft(ctx, assistant, 11, 7, validTerms())
        require.NoError(t, err)
        assert.Equal(t, uint64(42), id)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestTransitionGuards(t *testing.T) {
    ctx := context.Background()

    t.Run("unknown action", func(t *testing.T) {
        m, mock := newTestMachine(t)
        _, err := m.Transition(ctx, Principal{ID: 7, Role: model.RoleClient}, 42, Action("sign"), nil)
        assert.ErrorIs(t, err, ErrUnknownAction)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("role does not match the action", func(t *testing.T) {
        m, mock := newTestMachine(t)
        _, err := m.Transition(ctx, Principal{ID: 7, Role: model.RoleClient}, 42, ActionManagerApprove, nil)
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("missing draft", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnError(sql.ErrNoRows)
        mock.ExpectRollback()

        _, err := m.Transition(ctx, Principal{ID: 7, Role: model.RoleClient}, 42, ActionClientAccept, nil)
        assert.ErrorIs(t, err, ErrDraftNotFound)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("client cannot act on another client's draft", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))
        mock.ExpectRollback()

        _, err := m.Transition(ctx, Principal{ID: 8, Role: model.RoleClient}, 42, ActionClientAccept, nil)
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("terminal draft rejects further actions", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusCanceled, 2))
        mock.ExpectRollback()

        _, err := m.Transition(ctx, Principal{ID: 7, Role: model.RoleClient}, 42, ActionClientAccept, nil)
        assert.ErrorIs(t, err, ErrInvalidTransition)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestTransitionClientAccept(t *testing.T) {
    ctx := context.Background()
    client := Principal{ID: 7, Role: model.RoleClient}

    t.Run("success", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))
        mock.ExpectExec(`UPDATE lease_drafts SET status`).
            WithArgs(StatusClientAccepted, 42, StatusDraft).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        res, err := m.Transition(ctx, client, 42, ActionClientAccept, nil)
        require.NoError(t, err)
        assert.Equal(t, StatusClientAccepted, res.Status)
        assert.Equal(t, uint64(42), res.DraftID)
        assert.False(t, res.AutoLeaseCreated)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("lost conditional update is a conflict", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))
        mock.ExpectExec(`UPDATE lease_drafts SET status`).
            WithArgs(StatusClientAccepted, 42, StatusDraft).
            WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectRollback()

        _, err := m.Transition(ctx, client, 42, ActionClientAccept, nil)
        assert.ErrorIs(t, err, ErrInvalidTransition)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestTransitionAssistantUpdate(t *testing.T) {
    ctx := context.Background()
    assistant := Principal{ID: 3, Role: model.RoleAssistant, BranchID: branchPtr(9)}

    t.Run("rejected draft returns to draft with bumped version", func(t *testing.T) {
        m, mock := newTestMachine(t)
        newTerms := validTerms()
        newTerms.Financial.Rent = 1100
        raw, err := newTerms.Encode()
        require.NoError(t, err)

        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusClientRejected, 3))
        mock.ExpectExec(`UPDATE lease_drafts SET current_terms`).
            WithArgs(raw, 42, StatusClientRejected, 3).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        res, err := m.Transition(ctx, assistant, 42, ActionAssistantUpdate, newTerms)
        require.NoError(t, err)
        assert.Equal(t, StatusDraft, res.Status)
        assert.Equal(t, uint32(4), res.Version)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("terms payload is mandatory", func(t *testing.T) {
        m, mock := newTestMachine(t)
        _, err := m.Transition(ctx, assistant, 42, ActionAssistantUpdate, nil)
        var terr *TermsError
        require.ErrorAs(t, err, &terr)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestTransitionManagerApprove(t *testing.T) {
    ctx := context.Background()
    manager := Principal{ID: 5, Role: model.RoleManager, BranchID: branchPtr(9)}

    t.Run("finalizes lease, property and draft atomically", func(t *testing.T) {
        m, mock := newTestMachine(t)
        raw := encodedTerms(t)

        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, raw, StatusClientAccepted, 3))
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))
        mock.ExpectExec(`UPDATE lease_drafts SET status`).
            WithArgs(StatusApproved, 42, StatusClientAccepted).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectExec(`INSERT INTO leases`).
            WithArgs(42, raw, false, false, "2026-09-01 00:00:00").
            WillReturnResult(sqlmock.NewResult(1001, 1))
        mock.ExpectExec(`UPDATE properties SET status`).
            WithArgs(model.PropertyRented, 11).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectExec(`UPDATE lease_drafts SET status`).
            WithArgs(StatusSigned, 42, StatusApproved).
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        res, err := m.Transition(ctx, manager, 42, ActionManagerApprove, nil)
        require.NoError(t, err)
        assert.Equal(t, StatusSigned, res.Status)
        assert.True(t, res.AutoLeaseCreated)
        assert.Equal(t, uint64(1001), res.LeaseID)
        require.NotNil(t, res.FinalTerms)
        assert.Equal(t, 1200.0, res.FinalTerms.Financial.Rent)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("manager of another branch is forbidden", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusClientAccepted, 3))
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))
        mock.ExpectRollback()

        outsider := Principal{ID: 6, Role: model.RoleManager, BranchID: branchPtr(2)}
        _, err := m.Transition(ctx, outsider, 42, ActionManagerApprove, nil)
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("re-approving a signed draft returns the existing lease", func(t *testing.T) {
        m, mock := newTestMachine(t)
        raw := encodedTerms(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, raw, StatusSigned, 3))
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyRented))
        mock.ExpectQuery(`FROM leases WHERE draft_id = \? LIMIT 1`).
            WithArgs(42).WillReturnRows(leaseRows(1001, 42, raw))
        mock.ExpectCommit()

        res, err := m.Transition(ctx, manager, 42, ActionManagerApprove, nil)
        require.NoError(t, err)
        assert.Equal(t, StatusSigned, res.Status)
        assert.Equal(t, uint64(1001), res.LeaseID)
        assert.False(t, res.AutoLeaseCreated)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("draft still in negotiation cannot be approved", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))
        mock.ExpectRollback()

        _, err := m.Transition(ctx, manager, 42, ActionManagerApprove, nil)
        assert.ErrorIs(t, err, ErrInvalidTransition)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("losing the approval race is a conflict", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectBegin()
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? FOR UPDATE`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusClientAccepted, 3))
        mock.ExpectQuery(`FROM properties WHERE id = \? FOR UPDATE`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))
        mock.ExpectExec(`UPDATE lease_drafts SET status`).
            WithArgs(StatusApproved, 42, StatusClientAccepted).
            WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectRollback()

        _, err := m.Transition(ctx, manager, 42, ActionManagerApprove, nil)
        assert.ErrorIs(t, err, ErrInvalidTransition)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestGetDraftScoping(t *testing.T) {
    ctx := context.Background()

    t.Run("owner sees any draft", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? LIMIT 1`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))

        draft, terms, err := m.GetDraft(ctx, Principal{ID: 1, Role: model.RoleOwner}, 42)
        require.NoError(t, err)
        assert.Equal(t, uint64(42), draft.ID)
        assert.Equal(t, 1200.0, terms.Financial.Rent)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("client sees only own drafts", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? LIMIT 1`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))

        _, _, err := m.GetDraft(ctx, Principal{ID: 8, Role: model.RoleClient}, 42)
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("manager limited to own branch", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? LIMIT 1`).
            WithArgs(42).WillReturnRows(draftRows(42, 11, 7, encodedTerms(t), StatusDraft, 1))
        mock.ExpectQuery(`FROM properties WHERE id = \? LIMIT 1`).
            WithArgs(11).WillReturnRows(propertyRows(11, 9, model.PropertyApproved))

        _, _, err := m.GetDraft(ctx, Principal{ID: 6, Role: model.RoleManager, BranchID: branchPtr(2)}, 42)
        assert.ErrorIs(t, err, ErrForbidden)
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("missing draft", func(t *testing.T) {
        m, mock := newTestMachine(t)
        mock.ExpectQuery(`FROM lease_drafts WHERE id = \? LIMIT 1`).
            WithArgs(42).WillReturnError(sql.ErrNoRows)

        _, _, err := m.GetDraft(ctx, Principal{ID: 1, Role: model.RoleOwner}, 42)
        assert.ErrorIs(t, err, ErrDraftNotFound)
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}
