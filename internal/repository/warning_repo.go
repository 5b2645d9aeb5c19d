package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// WarningRepository handles warning rows. Acknowledgement is a one-way
// transition enforced at the SQL level: the UPDATE only matches rows whose
// acknowledged_at is still null, so both columns are set together exactly
// once.
type WarningRepository struct {
	db database.Querier
}

// NewWarningRepository creates a new repository over db.
func NewWarningRepository(db database.Querier) *WarningRepository {
	return &WarningRepository{db: db}
}

// Create inserts a new unacknowledged warning.
//
// Side Effects: populates warning.ID and warning.CreatedAt with the
// database-generated values.
func (r *WarningRepository) Create(ctx context.Context, warning *models.Warning) error {
	query := `
		INSERT INTO project_warnings (project_id, warned_user_id, issued_by, warning_type, severity, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		warning.ProjectID, warning.WarnedUserID, warning.IssuedBy,
		warning.WarningType, warning.Severity, warning.Reason,
	).Scan(&warning.ID, &warning.CreatedAt)
}

// GetByID retrieves a single non-deleted warning.
func (r *WarningRepository) GetByID(ctx context.Context, warningID int) (*models.Warning, error) {
	return r.get(ctx, warningID, false)
}

// GetForUpdate retrieves a non-deleted warning and locks its row for the
// remainder of the transaction.
func (r *WarningRepository) GetForUpdate(ctx context.Context, warningID int) (*models.Warning, error) {
	return r.get(ctx, warningID, true)
}

func (r *WarningRepository) get(ctx context.Context, warningID int, forUpdate bool) (*models.Warning, error) {
	query := `
		SELECT id, project_id, warned_user_id, issued_by, warning_type, severity, reason,
		       acknowledged_at, acknowledged_by, created_at, deleted_at
		FROM project_warnings
		WHERE id = $1 AND deleted_at IS NULL
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var w models.Warning
	err := r.db.QueryRow(ctx, query, warningID).Scan(
		&w.ID, &w.ProjectID, &w.WarnedUserID, &w.IssuedBy, &w.WarningType,
		&w.Severity, &w.Reason, &w.AcknowledgedAt, &w.AcknowledgedBy,
		&w.CreatedAt, &w.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// Acknowledge sets acknowledged_at and acknowledged_by together. The WHERE
// clause refuses rows already acknowledged; a pgx.ErrNoRows from the Scan
// means someone acknowledged first and the original timestamp is untouched.
func (r *WarningRepository) Acknowledge(ctx context.Context, warning *models.Warning, actorID int) error {
	query := `
		UPDATE project_warnings
		SET acknowledged_at = NOW(), acknowledged_by = $1
		WHERE id = $2 AND acknowledged_at IS NULL AND deleted_at IS NULL
		RETURNING acknowledged_at, acknowledged_by
	`

	return r.db.QueryRow(ctx, query, actorID, warning.ID).
		Scan(&warning.AcknowledgedAt, &warning.AcknowledgedBy)
}

// ListByProject retrieves all non-deleted warnings of a project joined with
// user names, newest first.
func (r *WarningRepository) ListByProject(ctx context.Context, projectID int) ([]models.WarningView, error) {
	query := `
		SELECT w.id, w.project_id, w.warned_user_id, w.issued_by, w.warning_type, w.severity,
		       w.reason, w.acknowledged_at, w.acknowledged_by, w.created_at, w.deleted_at,
		       wu.name AS warned_user_name,
		       iu.name AS issued_by_name
		FROM project_warnings w
		JOIN users wu ON wu.id = w.warned_user_id
		JOIN users iu ON iu.id = w.issued_by
		WHERE w.project_id = $1 AND w.deleted_at IS NULL
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []models.WarningView
	for rows.Next() {
		var v models.WarningView
		if err := rows.Scan(
			&v.ID, &v.ProjectID, &v.WarnedUserID, &v.IssuedBy, &v.WarningType, &v.Severity,
			&v.Reason, &v.AcknowledgedAt, &v.AcknowledgedBy, &v.CreatedAt, &v.DeletedAt,
			&v.WarnedUserName, &v.IssuedByName,
		); err != nil {
			return nil, err
		}
		warnings = append(warnings, v)
	}

	return warnings, nil
}
