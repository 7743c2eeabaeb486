package repository

import (
    "context"
    "database/sql"

    "github.com/homelet/lease-service/internal/model"
)

// BranchRepo provides read access to the branches table.
type BranchRepo struct {
    db *sql.DB
}

// NewBranchRepo returns a BranchRepo bound to the provided database.
func NewBranchRepo(db *sql.DB) *BranchRepo { return &BranchRepo{db: db} }

// GetByID fetches a branch by id.
func (r *BranchRepo) GetByID(ctx context.Context, id uint64) (model.Branch, error) {
    var b model.Branch
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, city, created_at FROM branches WHERE id = ? LIMIT 1`,
        id).Scan(&b.ID, &b.Name, &b.City, &b.CreatedAt)
    return b, err
}

// List returns all branches ordered by name.
func (r *BranchRepo) List(ctx context.Context) ([]model.Branch, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, name, city, created_at FROM branches ORDER BY name`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Branch
    for rows.Next() {
        var b model.Branch
        if err := rows.Scan(&b.ID, &b.Name, &b.City, &b.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    return out, rows.Err()
}
