package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/notify"
	"github.com/avissapr/projectdesk/internal/repository"
)

// CreateDepartmentTask creates a department task on a project. The department
// must hold an accepted assignment on the project; anything else fails with a
// not-assigned error. Only admins and members of the department may create
// its tasks.
func (s *Service) CreateDepartmentTask(ctx context.Context, projectID, departmentID int, spec DepartmentTaskSpec, actor models.Actor) (*models.DepartmentTask, error) {
	if err := s.validateTaskInput(spec.Title, spec.Priority, spec.EstimatedHours); err != nil {
		return nil, err
	}

	var task *models.DepartmentTask
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		pd, err := repos.ProjectDepartments.GetByProjectAndDepartment(ctx, projectID, departmentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotAssigned("department %d is not assigned to project %d", departmentID, projectID)
			}
			return fmt.Errorf("failed to load project department assignment: %w", err)
		}
		if pd.Acceptance != models.AcceptanceAccepted {
			return errNotAssigned("department %d has not accepted project %d (acceptance is %q)",
				departmentID, projectID, pd.Acceptance)
		}

		allowed, err := canActOnDepartment(ctx, repos, actor, departmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}
		if !allowed {
			return errForbidden("user %d may not create tasks for department %d", actor.UserID, departmentID)
		}

		task = &models.DepartmentTask{
			ProjectID:      projectID,
			DepartmentID:   departmentID,
			Title:          spec.Title,
			Description:    spec.Description,
			Priority:       spec.Priority,
			EstimatedHours: spec.EstimatedHours,
			Deadline:       spec.Deadline,
			AssignedBy:     actor.UserID,
		}
		if err := repos.DepartmentTasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create department task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// AssignMemberTask creates a member task under a department task. The parent
// must exist and not be soft-deleted or approved, its department must still
// hold an accepted assignment on the project, and the assignee must belong to
// the parent's department. Together these keep member tasks inside the
// project, department and user chain.
func (s *Service) AssignMemberTask(ctx context.Context, departmentTaskID, userID int, spec MemberTaskSpec, actor models.Actor) (*models.MemberTask, error) {
	if err := s.validateTaskInput(spec.Title, spec.Priority, spec.EstimatedHours); err != nil {
		return nil, err
	}

	var task *models.MemberTask
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		parent, err := repos.DepartmentTasks.GetForUpdate(ctx, departmentTaskID)
		if err != nil {
			return notFoundOr(err, "department task %d not found", departmentTaskID)
		}
		if parent.Status == models.StatusApproved {
			return errInvalidTransition(fmt.Sprintf("department task %d", parent.ID),
				parent.Status, models.StatusAssigned)
		}

		// Acceptance can be revoked after the parent was created; re-check it
		// on every assignment rather than trusting creation-time state.
		pd, err := repos.ProjectDepartments.GetByProjectAndDepartment(ctx, parent.ProjectID, parent.DepartmentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotAssigned("department %d is not assigned to project %d",
					parent.DepartmentID, parent.ProjectID)
			}
			return fmt.Errorf("failed to load project department assignment: %w", err)
		}
		if pd.Acceptance != models.AcceptanceAccepted {
			return errNotAssigned("department %d has not accepted project %d (acceptance is %q)",
				parent.DepartmentID, parent.ProjectID, pd.Acceptance)
		}

		member, err := repos.Memberships.IsMember(ctx, userID, parent.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}
		if !member {
			return errNotMember("user %d is not a member of department %d", userID, parent.DepartmentID)
		}

		allowed, err := canActOnDepartment(ctx, repos, actor, parent.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}
		if !allowed {
			return errForbidden("user %d may not assign tasks in department %d", actor.UserID, parent.DepartmentID)
		}

		task = &models.MemberTask{
			DepartmentTaskID: parent.ID,
			UserID:           userID,
			Title:            spec.Title,
			Description:      spec.Description,
			Priority:         spec.Priority,
			EstimatedHours:   spec.EstimatedHours,
			Deadline:         spec.Deadline,
			AssignedBy:       actor.UserID,
		}
		if err := repos.MemberTasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create member task: %w", err)
		}

		// A fresh assigned child can pull a submitted parent back to
		// in_progress; recompute keeps the aggregate honest.
		return s.recomputeLocked(ctx, repos, parent, actor.UserID, events)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// TransitionDepartmentTask applies a manager-driven status change. Approving
// requires approval authority and the submitted state; rejecting additionally
// requires a reason, which is persisted as an "issue" report before the task
// returns to in_progress for rework.
func (s *Service) TransitionDepartmentTask(ctx context.Context, taskID int, newStatus, reason string, actor models.Actor) (*models.DepartmentTask, error) {
	if !models.ValidDepartmentTaskStatus(newStatus) {
		return nil, errValidation("unknown department task status %q", newStatus)
	}

	var task *models.DepartmentTask
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		var err error
		task, err = repos.DepartmentTasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "department task %d not found", taskID)
		}

		entity := fmt.Sprintf("department task %d", task.ID)
		if newStatus == task.Status {
			return errAlreadyInState(entity, task.Status)
		}
		if !CanTransitionDepartmentTask(task.Status, newStatus) {
			return errInvalidTransition(entity, task.Status, newStatus)
		}

		member, err := repos.Memberships.IsMember(ctx, actor.UserID, task.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}

		switch newStatus {
		case models.StatusApproved, models.StatusRejected:
			if !s.policy.CanApprove(actor, member) {
				return errForbidden("user %d lacks approval authority for department %d",
					actor.UserID, task.DepartmentID)
			}
		default:
			if !actor.IsAdmin() && !member {
				return errForbidden("user %d may not act on department %d tasks",
					actor.UserID, task.DepartmentID)
			}
		}

		if newStatus == models.StatusSubmitted {
			children, err := repos.MemberTasks.ListByDepartmentTask(ctx, task.ID)
			if err != nil {
				return fmt.Errorf("failed to load member tasks of department task %d: %w", task.ID, err)
			}
			for _, mt := range children {
				if mt.Status != models.StatusSubmitted && mt.Status != models.StatusApproved {
					return errInvalidTransition(entity, task.Status, newStatus)
				}
			}
		}

		if newStatus == models.StatusRejected {
			if reason == "" {
				return errValidation("a rejection reason is required")
			}

			// Persist the reason as an issue report so it stays retrievable
			// through the regular reports query.
			note := &models.TaskReport{
				ProjectID:  task.ProjectID,
				ReportedBy: actor.UserID,
				ReportType: models.ReportIssue,
				Title:      fmt.Sprintf("Department task %d rejected: %s", task.ID, task.Title),
				Content:    reason,
			}
			if err := repos.Reports.Create(ctx, note); err != nil {
				return fmt.Errorf("failed to persist rejection reason: %w", err)
			}

			// Rejection lands in rejected and immediately continues to
			// in_progress; both hops are reported to the notifier.
			if err := repos.DepartmentTasks.UpdateStatus(ctx, task.ID, models.StatusInProgress); err != nil {
				return fmt.Errorf("failed to update department task %d status: %w", task.ID, err)
			}
			*events = append(*events,
				notify.NewTransitionEvent(EntityDepartmentTask, task.ID, task.Status, models.StatusRejected, actor.UserID),
				notify.NewTransitionEvent(EntityDepartmentTask, task.ID, models.StatusRejected, models.StatusInProgress, actor.UserID),
			)
			task.Status = models.StatusInProgress
			return nil
		}

		if err := repos.DepartmentTasks.UpdateStatus(ctx, task.ID, newStatus); err != nil {
			return fmt.Errorf("failed to update department task %d status: %w", task.ID, err)
		}
		*events = append(*events,
			notify.NewTransitionEvent(EntityDepartmentTask, task.ID, task.Status, newStatus, actor.UserID))
		task.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// TransitionMemberTask applies a status change to a member task and then
// recomputes the parent's aggregate inside the same transaction. Submission
// requires progress 100; approval requires approval authority, forces
// progress to 100 and is terminal.
func (s *Service) TransitionMemberTask(ctx context.Context, taskID int, newStatus string, progress *int, actor models.Actor) (*models.MemberTask, error) {
	if !models.ValidMemberTaskStatus(newStatus) {
		return nil, errValidation("unknown member task status %q", newStatus)
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return nil, errValidation("progress must be between 0 and 100")
	}

	var task *models.MemberTask
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		var err error
		task, err = repos.MemberTasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "member task %d not found", taskID)
		}

		entity := fmt.Sprintf("member task %d", task.ID)
		if newStatus == task.Status {
			return errAlreadyInState(entity, task.Status)
		}
		if !CanTransitionMemberTask(task.Status, newStatus) {
			return errInvalidTransition(entity, task.Status, newStatus)
		}

		parent, err := repos.DepartmentTasks.GetForUpdate(ctx, task.DepartmentTaskID)
		if err != nil {
			return notFoundOr(err, "department task %d not found", task.DepartmentTaskID)
		}

		member, err := repos.Memberships.IsMember(ctx, actor.UserID, parent.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}

		newProgress := task.Progress
		if progress != nil {
			if *progress < task.Progress {
				return errValidation("progress may not decrease (current %d, requested %d)",
					task.Progress, *progress)
			}
			newProgress = *progress
		}

		switch newStatus {
		case models.StatusApproved:
			if !s.policy.CanApprove(actor, member) {
				return errForbidden("user %d lacks approval authority for department %d",
					actor.UserID, parent.DepartmentID)
			}
			newProgress = 100
		case models.StatusSubmitted:
			if actor.UserID != task.UserID && !actor.IsAdmin() && !(actor.IsManager() && member) {
				return errForbidden("user %d may not submit member task %d", actor.UserID, task.ID)
			}
			if newProgress != 100 {
				return errIncompleteWork(newProgress)
			}
		default:
			if actor.UserID != task.UserID && !actor.IsAdmin() && !(actor.IsManager() && member) {
				return errForbidden("user %d may not act on member task %d", actor.UserID, task.ID)
			}
		}

		if err := repos.MemberTasks.UpdateStatusProgress(ctx, task.ID, newStatus, newProgress); err != nil {
			return fmt.Errorf("failed to update member task %d: %w", task.ID, err)
		}
		*events = append(*events,
			notify.NewTransitionEvent(EntityMemberTask, task.ID, task.Status, newStatus, actor.UserID))
		task.Status = newStatus
		task.Progress = newProgress

		return s.recomputeLocked(ctx, repos, parent, actor.UserID, events)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateMemberTaskProgress records progress without an explicit status
// change. Progress is monotonically non-decreasing; first progress on an
// assigned task moves it to in_progress automatically.
func (s *Service) UpdateMemberTaskProgress(ctx context.Context, taskID, progress int, actor models.Actor) (*models.MemberTask, error) {
	if progress < 0 || progress > 100 {
		return nil, errValidation("progress must be between 0 and 100")
	}

	var task *models.MemberTask
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		var err error
		task, err = repos.MemberTasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "member task %d not found", taskID)
		}

		if task.Status == models.StatusApproved {
			return errInvalidTransition(fmt.Sprintf("member task %d", task.ID),
				task.Status, task.Status)
		}
		if progress < task.Progress {
			return errValidation("progress may not decrease (current %d, requested %d)",
				task.Progress, progress)
		}

		parent, err := repos.DepartmentTasks.GetForUpdate(ctx, task.DepartmentTaskID)
		if err != nil {
			return notFoundOr(err, "department task %d not found", task.DepartmentTaskID)
		}

		member, err := repos.Memberships.IsMember(ctx, actor.UserID, parent.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}
		if actor.UserID != task.UserID && !actor.IsAdmin() && !(actor.IsManager() && member) {
			return errForbidden("user %d may not act on member task %d", actor.UserID, task.ID)
		}

		newStatus := task.Status
		if task.Status == models.StatusAssigned && progress > 0 {
			newStatus = models.StatusInProgress
		}

		if err := repos.MemberTasks.UpdateStatusProgress(ctx, task.ID, newStatus, progress); err != nil {
			return fmt.Errorf("failed to update member task %d: %w", task.ID, err)
		}
		if newStatus != task.Status {
			*events = append(*events,
				notify.NewTransitionEvent(EntityMemberTask, task.ID, task.Status, newStatus, actor.UserID))
		}
		task.Status = newStatus
		task.Progress = progress

		return s.recomputeLocked(ctx, repos, parent, actor.UserID, events)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// DeleteDepartmentTask soft-deletes a department task together with all its
// member tasks; a member task cannot outlive its parent. Approval authority
// is required.
func (s *Service) DeleteDepartmentTask(ctx context.Context, taskID int, actor models.Actor) error {
	return s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		task, err := repos.DepartmentTasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "department task %d not found", taskID)
		}

		member, err := repos.Memberships.IsMember(ctx, actor.UserID, task.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}
		if !s.policy.CanApprove(actor, member) {
			return errForbidden("user %d may not delete department task %d", actor.UserID, task.ID)
		}

		if err := repos.MemberTasks.SoftDeleteByDepartmentTask(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to delete member tasks of department task %d: %w", task.ID, err)
		}
		if err := repos.DepartmentTasks.SoftDelete(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to delete department task %d: %w", task.ID, err)
		}
		return nil
	})
}

// DeleteMemberTask soft-deletes a member task and recomputes the parent's
// aggregate, since deleted children no longer count toward it.
func (s *Service) DeleteMemberTask(ctx context.Context, taskID int, actor models.Actor) error {
	return s.inTx(ctx, func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error {
		task, err := repos.MemberTasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return notFoundOr(err, "member task %d not found", taskID)
		}

		parent, err := repos.DepartmentTasks.GetForUpdate(ctx, task.DepartmentTaskID)
		if err != nil {
			return notFoundOr(err, "department task %d not found", task.DepartmentTaskID)
		}

		member, err := repos.Memberships.IsMember(ctx, actor.UserID, parent.DepartmentID)
		if err != nil {
			return fmt.Errorf("failed to check department membership: %w", err)
		}
		if !s.policy.CanApprove(actor, member) {
			return errForbidden("user %d may not delete member task %d", actor.UserID, task.ID)
		}

		if err := repos.MemberTasks.SoftDelete(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to delete member task %d: %w", task.ID, err)
		}

		return s.recomputeLocked(ctx, repos, parent, actor.UserID, events)
	})
}
