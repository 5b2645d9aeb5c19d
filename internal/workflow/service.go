package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/avissapr/projectdesk/internal/database"
	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/notify"
	"github.com/avissapr/projectdesk/internal/repository"
)

// Entity type names carried in transition events.
const (
	EntityDepartmentTask = "department_task"
	EntityMemberTask     = "member_task"
)

// Service enforces the task workflow: allowed status transitions, aggregation
// of department task status from member tasks, and the assignment invariants
// of the project ↔ department ↔ user chain.
//
// Every mutating operation runs in its own transaction obtained from the
// injected pool; there is no shared mutable state between requests.
// Transition events are emitted to the notifier only after a successful
// commit.
type Service struct {
	pool     database.Pool
	notifier notify.Notifier
	policy   ApprovalPolicy
	limits   Limits
	log      *logrus.Logger
}

// Limits bounds user-supplied text fields and the database time spent per
// operation. A zero value disables the corresponding limit.
type Limits struct {
	MaxTitleLength   int
	MaxContentLength int
	QueryTimeout     time.Duration
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxTitleLength:   200,
		MaxContentLength: 1024 * 1024,
		QueryTimeout:     30 * time.Second,
	}
}

// NewService creates a workflow service over pool. A nil notifier disables
// event emission.
func NewService(pool database.Pool, notifier notify.Notifier, policy ApprovalPolicy, limits Limits, log *logrus.Logger) *Service {
	return &Service{
		pool:     pool,
		notifier: notifier,
		policy:   policy,
		limits:   limits,
		log:      log,
	}
}

// DepartmentTaskSpec carries validated-at-the-edge input for department task
// creation. Deadline is already parsed by the handler.
type DepartmentTaskSpec struct {
	Title          string
	Description    string
	Priority       string
	EstimatedHours float64
	Deadline       *time.Time
}

// MemberTaskSpec carries input for member task assignment.
type MemberTaskSpec struct {
	Title          string
	Description    string
	Priority       string
	EstimatedHours float64
	Deadline       *time.Time
}

// ReportSpec carries input for filing a task report.
type ReportSpec struct {
	ReportType string
	Title      string
	Content    string
}

// WarningSpec carries input for issuing a warning.
type WarningSpec struct {
	WarnedUserID int
	WarningType  string
	Severity     string
	Reason       string
}

// inTx runs fn in a transaction, bounded by the configured query timeout,
// and on success emits the events fn collected. Notification is
// fire-and-forget; it can never fail the operation.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Store, events *[]notify.TransitionEvent) error) error {
	if s.limits.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.limits.QueryTimeout)
		defer cancel()
	}

	var events []notify.TransitionEvent

	err := database.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, repository.NewStore(tx), &events)
	})
	if err != nil {
		return err
	}

	if s.notifier != nil {
		for _, event := range events {
			s.notifier.NotifyTransition(ctx, event)
		}
	}
	return nil
}

// notFoundOr converts pgx.ErrNoRows into a typed not-found error and wraps
// anything else as a plain database failure.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errNotFound(format, args...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func (s *Service) validateTaskInput(title, priority string, estimatedHours float64) error {
	if strings.TrimSpace(title) == "" {
		return errValidation("title is required")
	}
	if s.limits.MaxTitleLength > 0 && len(title) > s.limits.MaxTitleLength {
		return errValidation("title exceeds %d characters", s.limits.MaxTitleLength)
	}
	if !models.ValidPriority(priority) {
		return errValidation("unknown priority %q", priority)
	}
	if estimatedHours < 0 {
		return errValidation("estimated_hours must not be negative")
	}
	return nil
}

// recomputeLocked derives the department task's status from its non-deleted
// member tasks and persists the result when it changed. The caller must have
// locked the department task row (GetForUpdate) in the same transaction, so
// concurrent sibling updates serialize here and the children read below are
// never stale. Aggregation intentionally bypasses the manual edge table: it
// restores derived consistency rather than acting on a manager's behalf.
func (s *Service) recomputeLocked(ctx context.Context, repos *repository.Store, task *models.DepartmentTask, actorID int, events *[]notify.TransitionEvent) error {
	children, err := repos.MemberTasks.ListByDepartmentTask(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to load member tasks of department task %d: %w", task.ID, err)
	}

	next := AggregateDepartmentStatus(task.Status, children)
	if next == task.Status {
		return nil
	}

	if err := repos.DepartmentTasks.UpdateStatus(ctx, task.ID, next); err != nil {
		return fmt.Errorf("failed to update department task %d status: %w", task.ID, err)
	}

	*events = append(*events, notify.NewTransitionEvent(EntityDepartmentTask, task.ID, task.Status, next, actorID))
	task.Status = next
	return nil
}

// canActOnDepartment reports whether the actor may drive non-approval
// transitions for tasks of the given department: admins always, everyone
// else only as a member of that department.
func canActOnDepartment(ctx context.Context, repos *repository.Store, actor models.Actor, departmentID int) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	return repos.Memberships.IsMember(ctx, actor.UserID, departmentID)
}
