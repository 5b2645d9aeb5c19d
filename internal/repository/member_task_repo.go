package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
)

// MemberTaskRepository handles member task rows. A member task is always
// anchored to exactly one department task; the foreign key is NOT NULL and
// creation is guarded by the workflow service's parent checks.
type MemberTaskRepository struct {
	db database.Querier
}

// NewMemberTaskRepository creates a new repository over db.
func NewMemberTaskRepository(db database.Querier) *MemberTaskRepository {
	return &MemberTaskRepository{db: db}
}

// Create inserts a new member task in the initial "assigned" status with
// zero progress.
//
// Side Effects: populates task.ID, task.Status, task.Progress and
// task.CreatedAt with the database-generated values.
func (r *MemberTaskRepository) Create(ctx context.Context, task *models.MemberTask) error {
	query := `
		INSERT INTO project_member_tasks
			(department_task_id, user_id, title, description, priority, estimated_hours, status, progress, deadline, assigned_by)
		VALUES ($1, $2, $3, $4, $5, $6, 'assigned', 0, $7, $8)
		RETURNING id, status, progress, created_at
	`

	return r.db.QueryRow(ctx, query,
		task.DepartmentTaskID, task.UserID, task.Title, task.Description,
		task.Priority, task.EstimatedHours, task.Deadline, task.AssignedBy,
	).Scan(&task.ID, &task.Status, &task.Progress, &task.CreatedAt)
}

// GetByID retrieves a single non-deleted member task.
func (r *MemberTaskRepository) GetByID(ctx context.Context, taskID int) (*models.MemberTask, error) {
	return r.get(ctx, taskID, false)
}

// GetForUpdate retrieves a non-deleted member task and locks its row for the
// remainder of the transaction.
func (r *MemberTaskRepository) GetForUpdate(ctx context.Context, taskID int) (*models.MemberTask, error) {
	return r.get(ctx, taskID, true)
}

func (r *MemberTaskRepository) get(ctx context.Context, taskID int, forUpdate bool) (*models.MemberTask, error) {
	query := `
		SELECT id, department_task_id, user_id, title, description, priority,
		       estimated_hours, status, progress, deadline, assigned_by, created_at, deleted_at
		FROM project_member_tasks
		WHERE id = $1 AND deleted_at IS NULL
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var t models.MemberTask
	err := r.db.QueryRow(ctx, query, taskID).Scan(
		&t.ID, &t.DepartmentTaskID, &t.UserID, &t.Title, &t.Description, &t.Priority,
		&t.EstimatedHours, &t.Status, &t.Progress, &t.Deadline, &t.AssignedBy,
		&t.CreatedAt, &t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// ListByDepartmentTask retrieves all non-deleted member tasks under a
// department task. The workflow service calls this inside the recompute
// transaction, after locking the parent row, so the aggregate never acts on
// stale children.
func (r *MemberTaskRepository) ListByDepartmentTask(ctx context.Context, departmentTaskID int) ([]models.MemberTask, error) {
	query := `
		SELECT id, department_task_id, user_id, title, description, priority,
		       estimated_hours, status, progress, deadline, assigned_by, created_at, deleted_at
		FROM project_member_tasks
		WHERE department_task_id = $1 AND deleted_at IS NULL
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, departmentTaskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.MemberTask
	for rows.Next() {
		var t models.MemberTask
		if err := rows.Scan(
			&t.ID, &t.DepartmentTaskID, &t.UserID, &t.Title, &t.Description, &t.Priority,
			&t.EstimatedHours, &t.Status, &t.Progress, &t.Deadline, &t.AssignedBy,
			&t.CreatedAt, &t.DeletedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}

// ListViewsByDepartmentTask retrieves member tasks joined with their
// assignees' names for the department task detail endpoint.
func (r *MemberTaskRepository) ListViewsByDepartmentTask(ctx context.Context, departmentTaskID int) ([]models.MemberTaskView, error) {
	query := `
		SELECT mt.id, mt.department_task_id, mt.user_id, mt.title, mt.description, mt.priority,
		       mt.estimated_hours, mt.status, mt.progress, mt.deadline, mt.assigned_by,
		       mt.created_at, mt.deleted_at,
		       u.name AS user_name, u.email AS user_email
		FROM project_member_tasks mt
		JOIN users u ON u.id = mt.user_id
		WHERE mt.department_task_id = $1 AND mt.deleted_at IS NULL
		ORDER BY mt.id
	`

	rows, err := r.db.Query(ctx, query, departmentTaskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.MemberTaskView
	for rows.Next() {
		var v models.MemberTaskView
		if err := rows.Scan(
			&v.ID, &v.DepartmentTaskID, &v.UserID, &v.Title, &v.Description, &v.Priority,
			&v.EstimatedHours, &v.Status, &v.Progress, &v.Deadline, &v.AssignedBy,
			&v.CreatedAt, &v.DeletedAt,
			&v.UserName, &v.UserEmail,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}

	return views, nil
}

// UpdateStatusProgress sets the task's status and progress in one statement.
func (r *MemberTaskRepository) UpdateStatusProgress(ctx context.Context, taskID int, status string, progress int) error {
	query := `
		UPDATE project_member_tasks
		SET status = $1, progress = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, status, progress, taskID)
	return err
}

// SoftDelete marks the task as logically deleted.
func (r *MemberTaskRepository) SoftDelete(ctx context.Context, taskID int) error {
	query := `UPDATE project_member_tasks SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	_, err := r.db.Exec(ctx, query, taskID)
	return err
}

// SoftDeleteByDepartmentTask marks every member task under a department task
// as logically deleted. Used when the parent itself is deleted, since a
// member task cannot outlive its parent.
func (r *MemberTaskRepository) SoftDeleteByDepartmentTask(ctx context.Context, departmentTaskID int) error {
	query := `
		UPDATE project_member_tasks
		SET deleted_at = NOW()
		WHERE department_task_id = $1 AND deleted_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, departmentTaskID)
	return err
}
