package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// ReportRepository handles task report rows. Reports are append-only
// narrative records; besides user-filed reports this table also holds the
// rejection reasons the workflow service persists as "issue" reports.
type ReportRepository struct {
	db database.Querier
}

// NewReportRepository creates a new repository over db.
func NewReportRepository(db database.Querier) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new task report.
//
// Side Effects: populates report.ID and report.CreatedAt with the
// database-generated values.
func (r *ReportRepository) Create(ctx context.Context, report *models.TaskReport) error {
	query := `
		INSERT INTO project_task_reports (project_id, reported_by, report_type, title, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return r.db.QueryRow(ctx, query,
		report.ProjectID, report.ReportedBy, report.ReportType, report.Title, report.Content,
	).Scan(&report.ID, &report.CreatedAt)
}

// ListByProject retrieves all non-deleted reports of a project, newest first.
// An empty reportType returns every type; otherwise results are filtered,
// which is how rejection notes (type "issue") are retrieved.
func (r *ReportRepository) ListByProject(ctx context.Context, projectID int, reportType string) ([]models.TaskReport, error) {
	query := `
		SELECT id, project_id, reported_by, report_type, title, content, created_at, deleted_at
		FROM project_task_reports
		WHERE project_id = $1
		  AND deleted_at IS NULL
		  AND ($2 = '' OR report_type = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, projectID, reportType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.TaskReport
	for rows.Next() {
		var rep models.TaskReport
		if err := rows.Scan(
			&rep.ID, &rep.ProjectID, &rep.ReportedBy, &rep.ReportType,
			&rep.Title, &rep.Content, &rep.CreatedAt, &rep.DeletedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}

	return reports, nil
}
