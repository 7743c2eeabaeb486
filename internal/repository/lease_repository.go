package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/homelet/lease-service/internal/model"
)

// LeaseRepo provides access to the leases table.  A unique key on
// draft_id guarantees at most one lease per draft; final_terms is
// written once at creation and never updated afterwards.
type LeaseRepo struct {
    db *sql.DB
}

// NewLeaseRepo returns a LeaseRepo bound to the provided database.
func NewLeaseRepo(db *sql.DB) *LeaseRepo { return &LeaseRepo{db: db} }

// CreateTx inserts the finalized lease inside the caller's transaction
// and returns its id.  A unique-key violation on draft_id is mapped to
// ErrDuplicate so the finalizer can fall back to the existing lease.
func (r *LeaseRepo) CreateTx(ctx context.Context, tx *sql.Tx, draftID uint64, finalTerms string, signedByClient, signedByAgent bool, activeFrom time.Time) (uint64, error) {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO leases (draft_id, final_terms, signed_by_client, signed_by_agent, active_from) VALUES (?, ?, ?, ?, ?)`,
        draftID, finalTerms, signedByClient, signedByAgent, activeFrom.UTC().Format("2006-01-02 15:04:05"))
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

const leaseColumns = `id, draft_id, final_terms, signed_by_client, signed_by_agent, active_from, created_at`

func scanLease(row *sql.Row) (model.Lease, error) {
    var l model.Lease
    err := row.Scan(&l.ID, &l.DraftID, &l.FinalTerms, &l.SignedByClient, &l.SignedByAgent, &l.ActiveFrom, &l.CreatedAt)
    return l, err
}

// GetByDraftIDTx fetches the lease belonging to a draft inside the
// caller's transaction.  Used by the idempotent re-approve path.
func (r *LeaseRepo) GetByDraftIDTx(ctx context.Context, tx *sql.Tx, draftID uint64) (model.Lease, error) {
    return scanLease(tx.QueryRowContext(ctx,
        `SELECT `+leaseColumns+` FROM leases WHERE draft_id = ? LIMIT 1`, draftID))
}

// GetByID fetches a lease by its primary key.
func (r *LeaseRepo) GetByID(ctx context.Context, id uint64) (model.Lease, error) {
    return scanLease(r.db.QueryRowContext(ctx,
        `SELECT `+leaseColumns+` FROM leases WHERE id = ? LIMIT 1`, id))
}
