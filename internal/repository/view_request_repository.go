package repository

import (
    "context"
    "database/sql"

    "github.com/homelet/lease-service/internal/model"
)

// ViewRequestRepo encapsulates database operations for view_requests.
type ViewRequestRepo struct {
    db *sql.DB
}

// NewViewRequestRepo returns a ViewRequestRepo bound to the provided database.
func NewViewRequestRepo(db *sql.DB) *ViewRequestRepo { return &ViewRequestRepo{db: db} }

// Create inserts a pending viewing request and returns its id.
func (r *ViewRequestRepo) Create(ctx context.Context, v *model.ViewRequest) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO view_requests (client_id, property_id, assistant_id, status, scheduled_time, message) VALUES (?, ?, ?, 'pending', ?, ?)`,
        v.ClientID, v.PropertyID, v.AssistantID, v.ScheduledTime.UTC().Format("2006-01-02 15:04:05"), v.Message)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a viewing request by id.
func (r *ViewRequestRepo) GetByID(ctx context.Context, id uint64) (model.ViewRequest, error) {
    var v model.ViewRequest
    err := r.db.QueryRowContext(ctx,
        `SELECT id, client_id, property_id, assistant_id, status, scheduled_time, message, created_at FROM view_requests WHERE id = ? LIMIT 1`,
        id).Scan(&v.ID, &v.ClientID, &v.PropertyID, &v.AssistantID, &v.Status, &v.ScheduledTime, &v.Message, &v.CreatedAt)
    return v, err
}

// UpdateStatus sets the status of a viewing request and returns the
// number of affected rows.
func (r *ViewRequestRepo) UpdateStatus(ctx context.Context, id uint64, status string) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE view_requests SET status = ? WHERE id = ?`, status, id)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// ListByClient returns all viewing requests created by a client,
// newest first.
func (r *ViewRequestRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.ViewRequest, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, client_id, property_id, assistant_id, status, scheduled_time, message, created_at FROM view_requests WHERE client_id = ? ORDER BY created_at DESC`,
        clientID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.ViewRequest
    for rows.Next() {
        var v model.ViewRequest
        if err := rows.Scan(&v.ID, &v.ClientID, &v.PropertyID, &v.AssistantID, &v.Status, &v.ScheduledTime, &v.Message, &v.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, v)
    }
    return out, rows.Err()
}
