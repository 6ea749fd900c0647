package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tyagiab3/user-service/internal/domain"
)

// AuditRepository persists audit records.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Insert(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (action_type, status, performed_by, details)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		entry.ActionType,
		entry.Status,
		entry.PerformedBy,
		entry.Details,
	).Scan(&entry.ID, &entry.Timestamp)
}
