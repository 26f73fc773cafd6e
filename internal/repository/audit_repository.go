package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trainup/training-api/internal/models"
)

// AuditRepository appends activity-log entries. Mutating repositories
// write entries through appendAuditTx so the log row commits or rolls
// back together with the mutation it describes.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// List returns audit entries newest first, optionally filtered by
// actor kind and id.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	query := `SELECT id, actor_kind, actor_id, action, details, timestamp FROM activity_logs`
	where := []string{}
	var args []interface{}
	if filter.ActorKind != "" {
		where = append(where, fmt.Sprintf("actor_kind = $%d", len(args)+1))
		args = append(args, filter.ActorKind)
	}
	if filter.ActorID != 0 {
		where = append(where, fmt.Sprintf("actor_id = $%d", len(args)+1))
		args = append(args, filter.ActorID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", limit)

	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return entries, nil
}

// appendAuditTx writes an audit entry inside an open transaction.
func appendAuditTx(ctx context.Context, tx *sqlx.Tx, actorKind string, actorID int64, action, details string) error {
	const query = `INSERT INTO activity_logs (actor_kind, actor_id, action, details, timestamp)
        VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, query, actorKind, actorID, action, details, time.Now().UTC()); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
