package repository

import (
    "context"
    "database/sql"

    "github.com/homelet/lease-service/internal/model"
)

// LeaseDraftRepo encapsulates database operations for lease_drafts.
// The table carries a unique key on property_id, which enforces the
// at-most-one-draft-per-property rule at the storage layer.  Status
// changes go through conditional updates (compare-and-swap on the
// current status) so that concurrent transitions on the same draft
// serialize: the first writer wins and later writers see zero affected
// rows.
type LeaseDraftRepo struct {
    db *sql.DB
}

// NewLeaseDraftRepo returns a LeaseDraftRepo bound to the provided database.
func NewLeaseDraftRepo(db *sql.DB) *LeaseDraftRepo { return &LeaseDraftRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *LeaseDraftRepo) DB() *sql.DB { return r.db }

const draftColumns = `id, property_id, client_id, current_terms, status, version, created_at, updated_at`

func scanDraft(row *sql.Row) (model.LeaseDraft, error) {
    var d model.LeaseDraft
    err := row.Scan(&d.ID, &d.PropertyID, &d.ClientID, &d.CurrentTerms, &d.Status, &d.Version, &d.CreatedAt, &d.UpdatedAt)
    return d, err
}

// CreateTx inserts a new draft in the provided transaction with
// status "draft" and version 1.  A unique-key violation on property_id
// is mapped to ErrDuplicate.
func (r *LeaseDraftRepo) CreateTx(ctx context.Context, tx *sql.Tx, propertyID, clientID uint64, terms string) (uint64, error) {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO lease_drafts (property_id, client_id, current_terms, status, version) VALUES (?, ?, ?, 'draft', 1)`,
        propertyID, clientID, terms)
    if err != nil {
        if isDuplicateKey(err) {
            return 0, ErrDuplicate
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a draft outside any transaction.
func (r *LeaseDraftRepo) GetByID(ctx context.Context, id uint64) (model.LeaseDraft, error) {
    return scanDraft(r.db.QueryRowContext(ctx,
        `SELECT `+draftColumns+` FROM lease_drafts WHERE id = ? LIMIT 1`, id))
}

// GetByIDForUpdateTx fetches a draft inside the transaction and takes a
// row lock so the status read and the subsequent conditional write form
// one critical section per draft id.
func (r *LeaseDraftRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.LeaseDraft, error) {
    return scanDraft(tx.QueryRowContext(ctx,
        `SELECT `+draftColumns+` FROM lease_drafts WHERE id = ? FOR UPDATE`, id))
}

// UpdateStatusTx performs the conditional status transition
// (id, fromStatus) -> toStatus and returns the number of affected rows.
// Zero rows means another transition committed first; callers must
// treat that as a conflict, never overwrite.
func (r *LeaseDraftRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, fromStatus, toStatus string) (int64, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE lease_drafts SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
        toStatus, id, fromStatus)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// UpdateTermsTx replaces the current terms of a draft and bumps the
// version by exactly one, conditional on both the expected status and
// the expected version.  The draft returns to (or stays in) "draft".
// Returns the number of affected rows; zero signals a lost race.
func (r *LeaseDraftRepo) UpdateTermsTx(ctx context.Context, tx *sql.Tx, id uint64, fromStatus string, fromVersion uint32, terms string) (int64, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE lease_drafts SET current_terms = ?, status = 'draft', version = version + 1, updated_at = NOW() WHERE id = ? AND status = ? AND version = ?`,
        terms, id, fromStatus, fromVersion)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
