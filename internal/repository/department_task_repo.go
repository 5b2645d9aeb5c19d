package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// DepartmentTaskRepository handles department task rows. Status writes go
// through UpdateStatus only; deriving the status from member tasks is the
// workflow service's job, inside a transaction that locked the row first.
type DepartmentTaskRepository struct {
	db database.Querier
}

// NewDepartmentTaskRepository creates a new repository over db.
func NewDepartmentTaskRepository(db database.Querier) *DepartmentTaskRepository {
	return &DepartmentTaskRepository{db: db}
}

// Create inserts a new department task in the initial "assigned" status.
//
// Side Effects: populates task.ID, task.Status and task.CreatedAt with the
// database-generated values.
func (r *DepartmentTaskRepository) Create(ctx context.Context, task *models.DepartmentTask) error {
	query := `
		INSERT INTO project_department_tasks
			(project_id, department_id, title, description, priority, estimated_hours, status, deadline, assigned_by)
		VALUES ($1, $2, $3, $4, $5, $6, 'assigned', $7, $8)
		RETURNING id, status, created_at
	`

	return r.db.QueryRow(ctx, query,
		task.ProjectID, task.DepartmentID, task.Title, task.Description,
		task.Priority, task.EstimatedHours, task.Deadline, task.AssignedBy,
	).Scan(&task.ID, &task.Status, &task.CreatedAt)
}

// GetByID retrieves a single non-deleted department task.
// Returns pgx.ErrNoRows when the task does not exist or is soft-deleted.
func (r *DepartmentTaskRepository) GetByID(ctx context.Context, taskID int) (*models.DepartmentTask, error) {
	return r.get(ctx, taskID, false)
}

// GetForUpdate retrieves a non-deleted department task and locks its row for
// the remainder of the transaction. Every transition and recompute goes
// through this lock so concurrent sibling updates serialize on the parent.
func (r *DepartmentTaskRepository) GetForUpdate(ctx context.Context, taskID int) (*models.DepartmentTask, error) {
	return r.get(ctx, taskID, true)
}

func (r *DepartmentTaskRepository) get(ctx context.Context, taskID int, forUpdate bool) (*models.DepartmentTask, error) {
	query := `
		SELECT id, project_id, department_id, title, description, priority,
		       estimated_hours, status, deadline, assigned_by, created_at, deleted_at
		FROM project_department_tasks
		WHERE id = $1 AND deleted_at IS NULL
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var t models.DepartmentTask
	err := r.db.QueryRow(ctx, query, taskID).Scan(
		&t.ID, &t.ProjectID, &t.DepartmentID, &t.Title, &t.Description, &t.Priority,
		&t.EstimatedHours, &t.Status, &t.Deadline, &t.AssignedBy, &t.CreatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// UpdateStatus sets the task's status.
func (r *DepartmentTaskRepository) UpdateStatus(ctx context.Context, taskID int, status string) error {
	query := `UPDATE project_department_tasks SET status = $1 WHERE id = $2 AND deleted_at IS NULL`

	_, err := r.db.Exec(ctx, query, status, taskID)
	return err
}

// SoftDelete marks the task as logically deleted. The row stays queryable
// for audit and reporting but disappears from active workflow views.
func (r *DepartmentTaskRepository) SoftDelete(ctx context.Context, taskID int) error {
	query := `UPDATE project_department_tasks SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	_, err := r.db.Exec(ctx, query, taskID)
	return err
}

// ListByProject retrieves all non-deleted department tasks of a project with
// member task counters, newest first. The counters come out of the same query
// so list views never recompute aggregation in Go.
func (r *DepartmentTaskRepository) ListByProject(ctx context.Context, projectID int) ([]models.DepartmentTaskView, error) {
	query := `
		SELECT dt.id, dt.project_id, dt.department_id, dt.title, dt.description, dt.priority,
		       dt.estimated_hours, dt.status, dt.deadline, dt.assigned_by, dt.created_at, dt.deleted_at,
		       COUNT(mt.id) AS member_task_count,
		       COUNT(mt.id) FILTER (WHERE mt.status IN ('submitted', 'approved')) AS submitted_count
		FROM project_department_tasks dt
		LEFT JOIN project_member_tasks mt
		       ON mt.department_task_id = dt.id AND mt.deleted_at IS NULL
		WHERE dt.project_id = $1 AND dt.deleted_at IS NULL
		GROUP BY dt.id
		ORDER BY dt.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.DepartmentTaskView
	for rows.Next() {
		var v models.DepartmentTaskView
		if err := rows.Scan(
			&v.ID, &v.ProjectID, &v.DepartmentID, &v.Title, &v.Description, &v.Priority,
			&v.EstimatedHours, &v.Status, &v.Deadline, &v.AssignedBy, &v.CreatedAt, &v.DeletedAt,
			&v.MemberTaskCount, &v.SubmittedCount,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, v)
	}

	return tasks, nil
}
