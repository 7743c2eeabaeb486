package repository

import (
    "context"
    "database/sql"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
    t.Helper()
    mock.ExpectBegin()
    tx, err := db.Begin()
    require.NoError(t, err)
    return tx
}

func TestLeaseDraftCreateTx(t *testing.T) {
    t.Run("inserts with draft status and version 1", func(t *testing.T) {
        db, mock, err := sqlmock.New()
        require.NoError(t, err)
        defer db.Close()
        repo := NewLeaseDraftRepo(db)

        tx := beginTx(t, db, mock)
        mock.ExpectExec(`INSERT INTO lease_drafts \(property_id, client_id, current_terms, status, version\) VALUES \(\?, \?, \?, 'draft', 1\)`).
            WithArgs(11, 7, `{"rent":1200}`).
            WillReturnResult(sqlmock.NewResult(42, 1))
        mock.ExpectCommit()

        id, err := repo.CreateTx(context.Background(), tx, 11, 7, `{"rent":1200}`)
        require.NoError(t, err)
        assert.Equal(t, uint64(42), id)
        require.NoError(t, tx.Commit())
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("maps unique-key violations to ErrDuplicate", func(t *testing.T) {
        db, mock, err := sqlmock.New()
        require.NoError(t, err)
        defer db.Close()
        repo := NewLeaseDraftRepo(db)

        tx := beginTx(t, db, mock)
        mock.ExpectExec(`INSERT INTO lease_drafts`).
            WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '11' for key 'lease_drafts.property_id'"))
        mock.ExpectRollback()

        _, err = repo.CreateTx(context.Background(), tx, 11, 7, "{}")
        assert.ErrorIs(t, err, ErrDuplicate)
        require.NoError(t, tx.Rollback())
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestLeaseDraftUpdateStatusTx(t *testing.T) {
    t.Run("reports affected rows for the winner", func(t *testing.T) {
        db, mock, err := sqlmock.New()
        require.NoError(t, err)
        defer db.Close()
        repo := NewLeaseDraftRepo(db)

        tx := beginTx(t, db, mock)
        mock.ExpectExec(`UPDATE lease_drafts SET status = \?, updated_at = NOW\(\) WHERE id = \? AND status = \?`).
            WithArgs("client_accepted", 42, "draft").
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        n, err := repo.UpdateStatusTx(context.Background(), tx, 42, "draft", "client_accepted")
        require.NoError(t, err)
        assert.Equal(t, int64(1), n)
        require.NoError(t, tx.Commit())
        assert.NoError(t, mock.ExpectationsWereMet())
    })

    t.Run("reports zero rows when the status moved underneath", func(t *testing.T) {
        db, mock, err := sqlmock.New()
        require.NoError(t, err)
        defer db.Close()
        repo := NewLeaseDraftRepo(db)

        tx := beginTx(t, db, mock)
        mock.ExpectExec(`UPDATE lease_drafts SET status`).
            WithArgs("canceled", 42, "draft").
            WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectRollback()

        n, err := repo.UpdateStatusTx(context.Background(), tx, 42, "draft", "canceled")
        require.NoError(t, err)
        assert.Equal(t, int64(0), n)
        require.NoError(t, tx.Rollback())
        assert.NoError(t, mock.ExpectationsWereMet())
    })
}

func TestLeaseDraftUpdateTermsTx(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := NewLeaseDraftRepo(db)

    tx := beginTx(t, db, mock)
    // Conditional on both the expected status and the expected version.
    mock.ExpectExec(`UPDATE lease_drafts SET current_terms = \?, status = 'draft', version = version \+ 1, updated_at = NOW\(\) WHERE id = \? AND status = \? AND version = \?`).
        WithArgs(`{"rent":1100}`, 42, "client_rejected", 3).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    n, err := repo.UpdateTermsTx(context.Background(), tx, 42, "client_rejected", 3, `{"rent":1100}`)
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)
    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}
