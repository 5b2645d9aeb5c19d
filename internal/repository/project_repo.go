package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// ProjectRepository handles project lookups. Projects themselves are created
// and managed by the admin surface outside the workflow core; the workflow
// only needs to resolve and verify them.
type ProjectRepository struct {
	db database.Querier
}

// NewProjectRepository creates a new ProjectRepository over db.
func NewProjectRepository(db database.Querier) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// GetByID retrieves a single non-deleted project.
// Returns pgx.ErrNoRows when the project does not exist or is soft-deleted.
func (r *ProjectRepository) GetByID(ctx context.Context, projectID int) (*models.Project, error) {
	query := `
		SELECT id, name, status, priority, start_date, end_date, created_by, created_at, deleted_at
		FROM projects
		WHERE id = $1 AND deleted_at IS NULL
	`

	var p models.Project
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&p.ID, &p.Name, &p.Status, &p.Priority,
		&p.StartDate, &p.EndDate, &p.CreatedBy, &p.CreatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// Exists reports whether a non-deleted project with the given ID exists.
func (r *ProjectRepository) Exists(ctx context.Context, projectID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1 AND deleted_at IS NULL)`

	var exists bool
	err := r.db.QueryRow(ctx, query, projectID).Scan(&exists)
	return exists, err
}
