package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// ProjectDepartmentRepository handles the project ↔ department assignment
// rows that gate department task creation: a department may only receive
// tasks on a project it has accepted.
type ProjectDepartmentRepository struct {
	db database.Querier
}

// NewProjectDepartmentRepository creates a new repository over db.
func NewProjectDepartmentRepository(db database.Querier) *ProjectDepartmentRepository {
	return &ProjectDepartmentRepository{db: db}
}

// GetByProjectAndDepartment retrieves the non-deleted assignment row for the
// (project, department) pair. Returns pgx.ErrNoRows when no assignment exists.
func (r *ProjectDepartmentRepository) GetByProjectAndDepartment(ctx context.Context, projectID, departmentID int) (*models.ProjectDepartment, error) {
	query := `
		SELECT id, project_id, department_id, acceptance, assigned_by, created_at, deleted_at
		FROM project_departments
		WHERE project_id = $1 AND department_id = $2 AND deleted_at IS NULL
	`

	var pd models.ProjectDepartment
	err := r.db.QueryRow(ctx, query, projectID, departmentID).Scan(
		&pd.ID, &pd.ProjectID, &pd.DepartmentID, &pd.Acceptance,
		&pd.AssignedBy, &pd.CreatedAt, &pd.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &pd, nil
}

// ListByProject retrieves all non-deleted department assignments of a project,
// newest first.
func (r *ProjectDepartmentRepository) ListByProject(ctx context.Context, projectID int) ([]models.ProjectDepartment, error) {
	query := `
		SELECT id, project_id, department_id, acceptance, assigned_by, created_at, deleted_at
		FROM project_departments
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.ProjectDepartment
	for rows.Next() {
		var pd models.ProjectDepartment
		if err := rows.Scan(
			&pd.ID, &pd.ProjectID, &pd.DepartmentID, &pd.Acceptance,
			&pd.AssignedBy, &pd.CreatedAt, &pd.DeletedAt,
		); err != nil {
			return nil, err
		}
		assignments = append(assignments, pd)
	}

	return assignments, nil
}
