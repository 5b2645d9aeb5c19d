package workflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/workflow"
)

var (
	admin    = models.Actor{UserID: 1, Role: models.RoleAdmin}
	manager  = models.Actor{UserID: 4, Role: models.RoleManager}
	employee = models.Actor{UserID: 9, Role: models.RoleEmployee}
)

// TestService_CreateDepartmentTask verifies department task creation and the
// accepted-assignment gate.
//
// Related:
//   - tasks.go:CreateDepartmentTask()
//   - project_department_repo.go:GetByProjectAndDepartment()
func TestService_CreateDepartmentTask(t *testing.T) {
	spec := workflow.DepartmentTaskSpec{
		Title:          "Build backend",
		Priority:       models.PriorityMedium,
		EstimatedHours: 16,
	}

	tests := []struct {
		name      string
		actor     models.Actor
		spec      workflow.DepartmentTaskSpec
		mockSetup func(pgxmock.PgxPoolIface)
		wantKind  workflow.Kind
	}{
		{
			name:  "admin creates task on accepted assignment",
			actor: admin,
			spec:  spec,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptanceAccepted))
				mock.ExpectQuery(`INSERT INTO project_department_tasks`).
					WillReturnRows(pgxmock.NewRows([]string{"id", "status", "created_at"}).
						AddRow(7, models.StatusAssigned, testTime))
				mock.ExpectCommit()
			},
		},
		{
			name:  "department without assignment is refused",
			actor: admin,
			spec:  spec,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantKind: workflow.KindNotAssigned,
		},
		{
			name:  "pending acceptance is refused",
			actor: admin,
			spec:  spec,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptancePending))
				mock.ExpectRollback()
			},
			wantKind: workflow.KindNotAssigned,
		},
		{
			name:  "employee outside the department is refused",
			actor: employee,
			spec:  spec,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptanceAccepted))
				mock.ExpectQuery(`FROM department_members`).
					WithArgs(employee.UserID, 2).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectRollback()
			},
			wantKind: workflow.KindForbidden,
		},
		{
			name:      "missing title fails before touching the database",
			actor:     admin,
			spec:      workflow.DepartmentTaskSpec{Priority: models.PriorityLow},
			mockSetup: func(pgxmock.PgxPoolIface) {},
			wantKind:  workflow.KindValidation,
		},
		{
			name:      "unknown priority fails before touching the database",
			actor:     admin,
			spec:      workflow.DepartmentTaskSpec{Title: "x", Priority: "blocker"},
			mockSetup: func(pgxmock.PgxPoolIface) {},
			wantKind:  workflow.KindValidation,
		},
		{
			name:  "overlong title fails before touching the database",
			actor: admin,
			spec: workflow.DepartmentTaskSpec{
				Title:    strings.Repeat("x", 201),
				Priority: models.PriorityLow,
			},
			mockSetup: func(pgxmock.PgxPoolIface) {},
			wantKind:  workflow.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock, svc, _ := newServiceTest(t)
			tt.mockSetup(mock)

			// Act
			task, err := svc.CreateDepartmentTask(context.Background(), 1, 2, tt.spec, tt.actor)

			// Assert
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, workflow.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, 7, task.ID)
				assert.Equal(t, models.StatusAssigned, task.Status)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestService_AssignMemberTask verifies member task assignment: the parent
// gate, the accepted-assignment re-check, the department membership invariant
// and the aggregate recompute.
//
// Related:
//   - tasks.go:AssignMemberTask()
//   - statemachine.go:AggregateDepartmentStatus()
func TestService_AssignMemberTask(t *testing.T) {
	spec := workflow.MemberTaskSpec{
		Title:          "Implement API",
		Priority:       models.PriorityMedium,
		EstimatedHours: 8,
	}

	tests := []struct {
		name      string
		actor     models.Actor
		mockSetup func(pgxmock.PgxPoolIface)
		wantKind  workflow.Kind
	}{
		{
			name:  "manager assigns a member of the department",
			actor: manager,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptanceAccepted))
				// Assignee membership, then the acting manager's own.
				mock.ExpectQuery(`FROM department_members`).
					WithArgs(9, 2).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery(`FROM department_members`).
					WithArgs(manager.UserID, 2).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery(`INSERT INTO project_member_tasks`).
					WillReturnRows(pgxmock.NewRows([]string{"id", "status", "progress", "created_at"}).
						AddRow(55, models.StatusAssigned, 0, testTime))
				mock.ExpectQuery(`FROM project_member_tasks`).
					WithArgs(7).
					WillReturnRows(memberTaskRows(7, child(models.StatusAssigned, 0)))
				mock.ExpectCommit()
			},
		},
		{
			name:  "new child pulls a submitted parent back to in_progress",
			actor: admin,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusSubmitted))
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptanceAccepted))
				mock.ExpectQuery(`FROM department_members`).
					WithArgs(9, 2).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
				mock.ExpectQuery(`INSERT INTO project_member_tasks`).
					WillReturnRows(pgxmock.NewRows([]string{"id", "status", "progress", "created_at"}).
						AddRow(55, models.StatusAssigned, 0, testTime))
				mock.ExpectQuery(`FROM project_member_tasks`).
					WithArgs(7).
					WillReturnRows(memberTaskRows(7,
						child(models.StatusSubmitted, 100),
						child(models.StatusAssigned, 0)))
				mock.ExpectExec(`UPDATE project_department_tasks SET status`).
					WithArgs(models.StatusInProgress, 7).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectCommit()
			},
		},
		{
			name:  "approved parent refuses new children",
			actor: admin,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusApproved))
				mock.ExpectRollback()
			},
			wantKind: workflow.KindInvalidTransition,
		},
		{
			name:  "assignee outside the department is refused",
			actor: admin,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptanceAccepted))
				mock.ExpectQuery(`FROM department_members`).
					WithArgs(9, 2).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectRollback()
			},
			wantKind: workflow.KindNotMember,
		},
		{
			name:  "revoked assignment is refused",
			actor: admin,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantKind: workflow.KindNotAssigned,
		},
		{
			name:  "acceptance rolled back to pending is refused",
			actor: admin,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
				mock.ExpectQuery(`FROM project_departments`).
					WithArgs(1, 2).
					WillReturnRows(assignmentRow(1, 2, models.AcceptancePending))
				mock.ExpectRollback()
			},
			wantKind: workflow.KindNotAssigned,
		},
		{
			name:  "missing parent",
			actor: admin,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`FROM project_department_tasks`).
					WithArgs(7).
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantKind: workflow.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mock, svc, _ := newServiceTest(t)
			tt.mockSetup(mock)

			// Act
			task, err := svc.AssignMemberTask(context.Background(), 7, 9, spec, tt.actor)

			// Assert
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, workflow.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, 55, task.ID)
				assert.Equal(t, models.StatusAssigned, task.Status)
				assert.Zero(t, task.Progress)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestService_TransitionDepartmentTask verifies manager-driven department
// task transitions: approval authority, the all-children-submitted gate and
// the rejection rework loop.
//
// Related:
//   - tasks.go:TransitionDepartmentTask()
//   - policy.go:CanApprove()
func TestService_TransitionDepartmentTask(t *testing.T) {
	t.Run("admin approves a submitted task", func(t *testing.T) {
		mock, svc, captured := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusSubmitted))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(admin.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(`UPDATE project_department_tasks SET status`).
			WithArgs(models.StatusApproved, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		task, err := svc.TransitionDepartmentTask(context.Background(), 7, models.StatusApproved, "", admin)

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, task.Status)
		require.Len(t, captured.events, 1)
		assert.Equal(t, models.StatusSubmitted, captured.events[0].FromStatus)
		assert.Equal(t, models.StatusApproved, captured.events[0].ToStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("approving twice reports already in state", func(t *testing.T) {
		mock, svc, captured := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusApproved))
		mock.ExpectRollback()

		_, err := svc.TransitionDepartmentTask(context.Background(), 7, models.StatusApproved, "", admin)

		assert.Equal(t, workflow.KindAlreadyInState, workflow.KindOf(err))
		assert.Empty(t, captured.events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("submission requires all member tasks finished", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(7).
			WillReturnRows(memberTaskRows(7,
				child(models.StatusSubmitted, 100),
				child(models.StatusInProgress, 40)))
		mock.ExpectRollback()

		_, err := svc.TransitionDepartmentTask(context.Background(), 7, models.StatusSubmitted, "", employee)

		assert.Equal(t, workflow.KindInvalidTransition, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejection stores the reason and reopens the task", func(t *testing.T) {
		mock, svc, captured := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusSubmitted))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(manager.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(`INSERT INTO project_task_reports`).
			WithArgs(1, manager.UserID, models.ReportIssue, pgxmock.AnyArg(), "tests are missing").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(31, testTime))
		mock.ExpectExec(`UPDATE project_department_tasks SET status`).
			WithArgs(models.StatusInProgress, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		task, err := svc.TransitionDepartmentTask(context.Background(), 7, models.StatusRejected, "tests are missing", manager)

		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, task.Status, "rejected task reopens for rework")
		require.Len(t, captured.events, 2)
		assert.Equal(t, models.StatusRejected, captured.events[0].ToStatus)
		assert.Equal(t, models.StatusRejected, captured.events[1].FromStatus)
		assert.Equal(t, models.StatusInProgress, captured.events[1].ToStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejection without a reason is refused", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusSubmitted))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(manager.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := svc.TransitionDepartmentTask(context.Background(), 7, models.StatusRejected, "", manager)

		assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("employee lacks approval authority", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusSubmitted))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := svc.TransitionDepartmentTask(context.Background(), 7, models.StatusApproved, "", employee)

		assert.Equal(t, workflow.KindForbidden, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestService_TransitionMemberTask verifies member task transitions: the
// progress gate for submission and the parent recompute in the same
// transaction.
//
// Related:
//   - tasks.go:TransitionMemberTask()
//   - service.go:recomputeLocked()
func TestService_TransitionMemberTask(t *testing.T) {
	t.Run("submitting the last task completes the parent", func(t *testing.T) {
		mock, svc, captured := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusInProgress, 100))
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`UPDATE project_member_tasks`).
			WithArgs(models.StatusSubmitted, 100, 55).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(7).
			WillReturnRows(memberTaskRows(7,
				child(models.StatusSubmitted, 100),
				child(models.StatusSubmitted, 100)))
		mock.ExpectExec(`UPDATE project_department_tasks SET status`).
			WithArgs(models.StatusSubmitted, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		task, err := svc.TransitionMemberTask(context.Background(), 55, models.StatusSubmitted, nil, employee)

		require.NoError(t, err)
		assert.Equal(t, models.StatusSubmitted, task.Status)
		require.Len(t, captured.events, 2, "member transition plus parent recompute")
		assert.Equal(t, "member_task", captured.events[0].EntityType)
		assert.Equal(t, "department_task", captured.events[1].EntityType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("submission below full progress is refused", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusInProgress, 60))
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := svc.TransitionMemberTask(context.Background(), 55, models.StatusSubmitted, nil, employee)

		assert.Equal(t, workflow.KindIncompleteWork, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("progress may not decrease during a transition", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusAssigned, 60))
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		lower := 40
		_, err := svc.TransitionMemberTask(context.Background(), 55, models.StatusInProgress, &lower, employee)

		assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("approval by a department manager is terminal", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusSubmitted, 100))
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusSubmitted))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(manager.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`UPDATE project_member_tasks`).
			WithArgs(models.StatusApproved, 100, 55).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(7).
			WillReturnRows(memberTaskRows(7, child(models.StatusApproved, 100)))
		mock.ExpectCommit()

		task, err := svc.TransitionMemberTask(context.Background(), 55, models.StatusApproved, nil, manager)

		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, task.Status)
		assert.Equal(t, 100, task.Progress)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeating the current status reports already in state", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusSubmitted, 100))
		mock.ExpectRollback()

		_, err := svc.TransitionMemberTask(context.Background(), 55, models.StatusSubmitted, nil, employee)

		assert.Equal(t, workflow.KindAlreadyInState, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skipping states is refused", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusAssigned, 0))
		mock.ExpectRollback()

		_, err := svc.TransitionMemberTask(context.Background(), 55, models.StatusApproved, nil, admin)

		assert.Equal(t, workflow.KindInvalidTransition, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestService_UpdateMemberTaskProgress verifies monotonic progress updates
// and the automatic move out of assigned.
//
// Related:
//   - tasks.go:UpdateMemberTaskProgress()
func TestService_UpdateMemberTaskProgress(t *testing.T) {
	t.Run("first progress moves the task to in_progress", func(t *testing.T) {
		mock, svc, captured := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusAssigned, 0))
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusAssigned))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`UPDATE project_member_tasks`).
			WithArgs(models.StatusInProgress, 30, 55).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(7).
			WillReturnRows(memberTaskRows(7, child(models.StatusInProgress, 30)))
		mock.ExpectExec(`UPDATE project_department_tasks SET status`).
			WithArgs(models.StatusInProgress, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		task, err := svc.UpdateMemberTaskProgress(context.Background(), 55, 30, employee)

		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, task.Status)
		assert.Equal(t, 30, task.Progress)
		require.Len(t, captured.events, 2, "auto-start plus parent recompute")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("progress on an approved task is refused", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusApproved, 100))
		mock.ExpectRollback()

		_, err := svc.UpdateMemberTaskProgress(context.Background(), 55, 100, employee)

		assert.Equal(t, workflow.KindInvalidTransition, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lower progress is refused", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusInProgress, 60))
		mock.ExpectRollback()

		_, err := svc.UpdateMemberTaskProgress(context.Background(), 55, 40, employee)

		assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("out of range progress fails before touching the database", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		_, err := svc.UpdateMemberTaskProgress(context.Background(), 55, 120, employee)

		assert.Equal(t, workflow.KindValidation, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestService_DeleteDepartmentTask verifies the cascading soft delete.
//
// Related:
//   - tasks.go:DeleteDepartmentTask()
func TestService_DeleteDepartmentTask(t *testing.T) {
	t.Run("manager deletes the task and its member tasks", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(manager.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`UPDATE project_member_tasks`).
			WithArgs(7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))
		mock.ExpectExec(`UPDATE project_department_tasks`).
			WithArgs(7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := svc.DeleteDepartmentTask(context.Background(), 7, manager)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("employee may not delete", func(t *testing.T) {
		mock, svc, _ := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(employee.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		err := svc.DeleteDepartmentTask(context.Background(), 7, employee)

		assert.Equal(t, workflow.KindForbidden, workflow.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestService_DeleteMemberTask verifies the soft delete with a parent
// recompute, since deleted children stop counting toward the aggregate.
//
// Related:
//   - tasks.go:DeleteMemberTask()
func TestService_DeleteMemberTask(t *testing.T) {
	t.Run("deleting the unfinished child completes the parent", func(t *testing.T) {
		mock, svc, captured := newServiceTest(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(55).
			WillReturnRows(memberTaskRow(55, 7, employee.UserID, models.StatusAssigned, 0))
		mock.ExpectQuery(`FROM project_department_tasks`).
			WithArgs(7).
			WillReturnRows(departmentTaskRow(7, 1, 2, models.StatusInProgress))
		mock.ExpectQuery(`FROM department_members`).
			WithArgs(manager.UserID, 2).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`UPDATE project_member_tasks`).
			WithArgs(55).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`FROM project_member_tasks`).
			WithArgs(7).
			WillReturnRows(memberTaskRows(7, child(models.StatusSubmitted, 100)))
		mock.ExpectExec(`UPDATE project_department_tasks SET status`).
			WithArgs(models.StatusSubmitted, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := svc.DeleteMemberTask(context.Background(), 55, manager)

		require.NoError(t, err)
		require.Len(t, captured.events, 1)
		assert.Equal(t, models.StatusSubmitted, captured.events[0].ToStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
