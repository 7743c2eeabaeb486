package repository

import (
    "context"
    "database/sql"

    "github.com/homelet/lease-service/internal/model"
)

// PropertyRepo encapsulates database operations for properties.
type PropertyRepo struct {
    db *sql.DB
}

// NewPropertyRepo returns a PropertyRepo bound to the provided database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *PropertyRepo) DB() *sql.DB { return r.db }

const propertyColumns = `id, branch_id, agent_id, title, address, city, price_cents, bedrooms, bathrooms, sqft, status, created_at, updated_at`

func scanProperty(row *sql.Row) (model.Property, error) {
    var p model.Property
    err := row.Scan(&p.ID, &p.BranchID, &p.AgentID, &p.Title, &p.Address, &p.City,
        &p.PriceCents, &p.Bedrooms, &p.Bathrooms, &p.Sqft, &p.Status, &p.CreatedAt, &p.UpdatedAt)
    return p, err
}

// Create inserts a property application with status "pending" and
// returns its id.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO properties (branch_id, agent_id, title, address, city, price_cents, bedrooms, bathrooms, sqft, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
        p.BranchID, p.AgentID, p.Title, p.Address, p.City, p.PriceCents, p.Bedrooms, p.Bathrooms, p.Sqft)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a property outside any transaction.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (model.Property, error) {
    return scanProperty(r.db.QueryRowContext(ctx,
        `SELECT `+propertyColumns+` FROM properties WHERE id = ? LIMIT 1`, id))
}

// GetByIDForUpdateTx fetches a property inside the transaction with a
// row lock.  The negotiation core locks the property together with its
// draft so the finalizer's status flip cannot race another transition.
func (r *PropertyRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Property, error) {
    return scanProperty(tx.QueryRowContext(ctx,
        `SELECT `+propertyColumns+` FROM properties WHERE id = ? FOR UPDATE`, id))
}

// UpdateStatusTx sets a property's status inside the caller's
// transaction.  Used by the finalizer to flip the property to rented
// in the same atomic unit as the lease insert.
func (r *PropertyRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE properties SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
    return err
}

// UpdateStatusIf performs a conditional status change
// (id, fromStatus) -> toStatus and returns the number of affected
// rows.  Managers approve or reject pending applications through this.
func (r *PropertyRepo) UpdateStatusIf(ctx context.Context, id uint64, fromStatus, toStatus string) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE properties SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
        toStatus, id, fromStatus)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ListByStatus returns all properties in the given status, newest first.
func (r *PropertyRepo) ListByStatus(ctx context.Context, status string) ([]model.Property, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+propertyColumns+` FROM properties WHERE status = ? ORDER BY created_at DESC`, status)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Property
    for rows.Next() {
        var p model.Property
        if err := rows.Scan(&p.ID, &p.BranchID, &p.AgentID, &p.Title, &p.Address, &p.City,
            &p.PriceCents, &p.Bedrooms, &p.Bathrooms, &p.Sqft, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}
