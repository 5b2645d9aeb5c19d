package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/notify"
	"github.com/avissapr/projectdesk/internal/repository"
)

// FileReport appends a narrative report to a project. Pure append, no state
// machine: the only checks are the report type enum, required fields, the
// configured size limits and project existence.
func (s *Service) FileReport(ctx context.Context, projectID int, spec ReportSpec, actor models.Actor) (*models.TaskReport, error) {
	if !models.ValidReportType(spec.ReportType) {
		return nil, errValidation("unknown report_type %q", spec.ReportType)
	}
	if strings.TrimSpace(spec.Title) == "" {
		return nil, errValidation("title is required")
	}
	if s.limits.MaxTitleLength > 0 && len(spec.Title) > s.limits.MaxTitleLength {
		return nil, errValidation("title exceeds %d characters", s.limits.MaxTitleLength)
	}
	if s.limits.MaxContentLength > 0 && len(spec.Content) > s.limits.MaxContentLength {
		return nil, errValidation("content exceeds %d bytes", s.limits.MaxContentLength)
	}

	var report *models.TaskReport
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, _ *[]notify.TransitionEvent) error {
		exists, err := repos.Projects.Exists(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to check project %d: %w", projectID, err)
		}
		if !exists {
			return errNotFound("project %d not found", projectID)
		}

		report = &models.TaskReport{
			ProjectID:  projectID,
			ReportedBy: actor.UserID,
			ReportType: spec.ReportType,
			Title:      spec.Title,
			Content:    spec.Content,
		}
		if err := repos.Reports.Create(ctx, report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// IssueWarning creates a warning against a user within a project. Only
// managers and admins may issue warnings, and the warned user must be
// affiliated with the project through an accepted department assignment.
func (s *Service) IssueWarning(ctx context.Context, projectID int, spec WarningSpec, actor models.Actor) (*models.Warning, error) {
	if !models.ValidSeverity(spec.Severity) {
		return nil, errValidation("unknown severity %q", spec.Severity)
	}
	if strings.TrimSpace(spec.WarningType) == "" {
		return nil, errValidation("warning_type is required")
	}
	if strings.TrimSpace(spec.Reason) == "" {
		return nil, errValidation("reason is required")
	}
	if s.limits.MaxContentLength > 0 && len(spec.Reason) > s.limits.MaxContentLength {
		return nil, errValidation("reason exceeds %d bytes", s.limits.MaxContentLength)
	}
	if !actor.IsAdmin() && !actor.IsManager() {
		return nil, errForbidden("user %d may not issue warnings", actor.UserID)
	}

	var warning *models.Warning
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, _ *[]notify.TransitionEvent) error {
		exists, err := repos.Projects.Exists(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to check project %d: %w", projectID, err)
		}
		if !exists {
			return errNotFound("project %d not found", projectID)
		}

		member, err := repos.Memberships.IsMemberOfProject(ctx, spec.WarnedUserID, projectID)
		if err != nil {
			return fmt.Errorf("failed to check project membership: %w", err)
		}
		if !member {
			return errNotMember("user %d is not affiliated with project %d", spec.WarnedUserID, projectID)
		}

		warning = &models.Warning{
			ProjectID:    projectID,
			WarnedUserID: spec.WarnedUserID,
			IssuedBy:     actor.UserID,
			WarningType:  spec.WarningType,
			Severity:     spec.Severity,
			Reason:       spec.Reason,
		}
		if err := repos.Warnings.Create(ctx, warning); err != nil {
			return fmt.Errorf("failed to create warning: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return warning, nil
}

// AcknowledgeWarning records the one-time acknowledgement of a warning.
// Allowed to the warned user, an admin, or a manager affiliated with the
// warning's project (the delegate case). acknowledged_at and acknowledged_by
// are set together in one statement; a second call fails without touching
// the original timestamp.
func (s *Service) AcknowledgeWarning(ctx context.Context, warningID int, actor models.Actor) (*models.Warning, error) {
	var warning *models.Warning
	err := s.inTx(ctx, func(ctx context.Context, repos *repository.Store, _ *[]notify.TransitionEvent) error {
		var err error
		warning, err = repos.Warnings.GetForUpdate(ctx, warningID)
		if err != nil {
			return notFoundOr(err, "warning %d not found", warningID)
		}

		if warning.AcknowledgedAt != nil {
			return errAlreadyAcknowledged(warning.ID)
		}

		if actor.UserID != warning.WarnedUserID && !actor.IsAdmin() {
			delegate := false
			if actor.IsManager() {
				delegate, err = repos.Memberships.IsMemberOfProject(ctx, actor.UserID, warning.ProjectID)
				if err != nil {
					return fmt.Errorf("failed to check project membership: %w", err)
				}
			}
			if !delegate {
				return errForbidden("user %d may not acknowledge warning %d", actor.UserID, warning.ID)
			}
		}

		if err := repos.Warnings.Acknowledge(ctx, warning, actor.UserID); err != nil {
			// The row was locked above, so a miss here means it vanished or
			// was acknowledged between the lock and the update; report the
			// conflict rather than a database failure.
			if errors.Is(err, pgx.ErrNoRows) {
				return errAlreadyAcknowledged(warning.ID)
			}
			return fmt.Errorf("failed to acknowledge warning %d: %w", warning.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return warning, nil
}
