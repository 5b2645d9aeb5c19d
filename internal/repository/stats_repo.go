package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// StatsRepository handles statistical aggregation queries for project
// dashboards. Aggregates are computed in SQL in a single query; Go never
// recounts rows the database already counted.
type StatsRepository struct {
	db database.Querier
}

// NewStatsRepository creates a new repository over db.
func NewStatsRepository(db database.Querier) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetProjectStats retrieves workflow progress metrics for one project:
// department/member task counts, average member progress, open warnings and
// filed reports. Soft-deleted rows are excluded throughout.
func (r *StatsRepository) GetProjectStats(ctx context.Context, projectID int) (*models.ProjectStats, error) {
	query := `
		SELECT
			$1::int AS project_id,
			(SELECT COUNT(*) FROM project_department_tasks dt
			  WHERE dt.project_id = $1 AND dt.deleted_at IS NULL) AS department_task_count,
			(SELECT COUNT(*) FROM project_department_tasks dt
			  WHERE dt.project_id = $1 AND dt.status = 'approved' AND dt.deleted_at IS NULL) AS approved_task_count,
			(SELECT COUNT(*) FROM project_member_tasks mt
			  JOIN project_department_tasks dt ON dt.id = mt.department_task_id
			  WHERE dt.project_id = $1 AND mt.deleted_at IS NULL) AS member_task_count,
			COALESCE((SELECT AVG(mt.progress) FROM project_member_tasks mt
			  JOIN project_department_tasks dt ON dt.id = mt.department_task_id
			  WHERE dt.project_id = $1 AND mt.deleted_at IS NULL), 0) AS average_progress,
			(SELECT COUNT(*) FROM project_warnings w
			  WHERE w.project_id = $1 AND w.acknowledged_at IS NULL AND w.deleted_at IS NULL) AS open_warning_count,
			(SELECT COUNT(*) FROM project_task_reports tr
			  WHERE tr.project_id = $1 AND tr.deleted_at IS NULL) AS report_count,
			(SELECT MAX(tr.created_at) FROM project_task_reports tr
			  WHERE tr.project_id = $1 AND tr.deleted_at IS NULL) AS last_activity_at
	`

	stats := &models.ProjectStats{}
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&stats.ProjectID,
		&stats.DepartmentTaskCount,
		&stats.ApprovedTaskCount,
		&stats.MemberTaskCount,
		&stats.AverageProgress,
		&stats.OpenWarningCount,
		&stats.ReportCount,
		&stats.LastActivityAt,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
