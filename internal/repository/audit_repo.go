package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// AuditRepository handles audit trail entries. Every workflow mutation is
// logged here by the handlers with request metadata attached.
//
// Immutability Note: audit logs are never modified or deleted once created.
type AuditRepository struct {
	db database.Querier
}

// NewAuditRepository creates a new repository over db.
func NewAuditRepository(db database.Querier) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log creates a new audit log entry.
//
// Common Action Types:
//   - "CREATE_DEPARTMENT_TASK", "ASSIGN_MEMBER_TASK"
//   - "TRANSITION_DEPARTMENT_TASK", "TRANSITION_MEMBER_TASK"
//   - "ACKNOWLEDGE_WARNING", "ISSUE_WARNING", "FILE_REPORT"
//
// Side Effects: populates log.ID and log.CreatedAt with the
// database-generated values.
func (r *AuditRepository) Log(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, object_type, object_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		log.ActorID, log.Action, log.ObjectType, log.ObjectID, log.IPAddress, log.UserAgent,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListRecent retrieves the most recent audit log entries, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, object_type, object_id, ip_address, user_agent, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID, // nullable, NULL for system actions
			&entry.Action,
			&entry.ObjectType,
			&entry.ObjectID, // nullable
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	return logs, nil
}
