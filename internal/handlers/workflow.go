package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/avissapr/projectdesk/internal/middleware"
	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/repository"
	"github.com/avissapr/projectdesk/internal/workflow"
)

// WorkflowHandler exposes the workflow service over REST. Mutations go
// through the service; reads go straight to the pool-scoped repositories.
type WorkflowHandler struct {
	svc   *workflow.Service
	repos *repository.Store
	log   *logrus.Logger
}

// NewWorkflowHandler creates a WorkflowHandler. repos must be pool-scoped;
// the service manages its own transactions.
func NewWorkflowHandler(svc *workflow.Service, repos *repository.Store, log *logrus.Logger) *WorkflowHandler {
	return &WorkflowHandler{svc: svc, repos: repos, log: log}
}

func paramID(c *fiber.Ctx, name string) (int, error) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id <= 0 {
		return 0, fiber.ErrBadRequest
	}
	return id, nil
}

// parseDeadline accepts an empty string or RFC 3339.
func parseDeadline(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// audit writes an audit trail entry for a completed mutation. Audit failures
// are logged but never fail the request that already committed.
func (h *WorkflowHandler) audit(c *fiber.Ctx, actor models.Actor, action, objectType string, objectID int) {
	entry := &models.AuditLog{
		ActorID:    &actor.UserID,
		Action:     action,
		ObjectType: objectType,
		ObjectID:   &objectID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	if err := h.repos.Audit.Log(c.Context(), entry); err != nil {
		h.log.WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}

// CreateDepartmentTask creates a department task on a project.
//
// Route: POST /api/projects/:id/departments/:deptID/tasks
func (h *WorkflowHandler) CreateDepartmentTask(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}
	departmentID, err := paramID(c, "deptID")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid department ID")
	}

	var form models.DepartmentTaskForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	deadline, valid := parseDeadline(form.Deadline)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "deadline must be RFC 3339")
	}

	actor := middleware.ActorFromContext(c)
	task, err := h.svc.CreateDepartmentTask(c.Context(), projectID, departmentID, workflow.DepartmentTaskSpec{
		Title:          form.Title,
		Description:    form.Description,
		Priority:       form.Priority,
		EstimatedHours: form.EstimatedHours,
		Deadline:       deadline,
	}, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "CREATE_DEPARTMENT_TASK", "department_task", task.ID)
	return created(c, task)
}

// ListDepartmentTasks lists a project's department tasks with member task
// counters.
//
// Route: GET /api/projects/:id/tasks
func (h *WorkflowHandler) ListDepartmentTasks(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}

	tasks, err := h.repos.DepartmentTasks.ListByProject(c.Context(), projectID)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, tasks)
}

// AssignMemberTask creates a member task under a department task.
//
// Route: POST /api/department-tasks/:id/members
func (h *WorkflowHandler) AssignMemberTask(c *fiber.Ctx) error {
	departmentTaskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid department task ID")
	}

	var form models.MemberTaskForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if form.UserID <= 0 {
		return fail(c, fiber.StatusBadRequest, "user_id is required")
	}
	deadline, valid := parseDeadline(form.Deadline)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "deadline must be RFC 3339")
	}

	actor := middleware.ActorFromContext(c)
	task, err := h.svc.AssignMemberTask(c.Context(), departmentTaskID, form.UserID, workflow.MemberTaskSpec{
		Title:          form.Title,
		Description:    form.Description,
		Priority:       form.Priority,
		EstimatedHours: form.EstimatedHours,
		Deadline:       deadline,
	}, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "ASSIGN_MEMBER_TASK", "member_task", task.ID)
	return created(c, task)
}

// ListMemberTasks lists the member tasks under a department task with
// assignee names.
//
// Route: GET /api/department-tasks/:id/members
func (h *WorkflowHandler) ListMemberTasks(c *fiber.Ctx) error {
	departmentTaskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid department task ID")
	}

	tasks, err := h.repos.MemberTasks.ListViewsByDepartmentTask(c.Context(), departmentTaskID)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, tasks)
}

// TransitionDepartmentTask applies a status change to a department task.
//
// Route: POST /api/department-tasks/:id/status
func (h *WorkflowHandler) TransitionDepartmentTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid department task ID")
	}

	var form models.TransitionForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFromContext(c)
	task, err := h.svc.TransitionDepartmentTask(c.Context(), taskID, form.Status, form.Reason, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "TRANSITION_DEPARTMENT_TASK", "department_task", task.ID)
	return ok(c, task)
}

// TransitionMemberTask applies a status change to a member task; the parent
// aggregate is recomputed in the same transaction.
//
// Route: POST /api/member-tasks/:id/status
func (h *WorkflowHandler) TransitionMemberTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid member task ID")
	}

	var form models.TransitionForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFromContext(c)
	task, err := h.svc.TransitionMemberTask(c.Context(), taskID, form.Status, form.Progress, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "TRANSITION_MEMBER_TASK", "member_task", task.ID)
	return ok(c, task)
}

// UpdateMemberTaskProgress records progress on a member task.
//
// Route: POST /api/member-tasks/:id/progress
func (h *WorkflowHandler) UpdateMemberTaskProgress(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid member task ID")
	}

	var form models.ProgressForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFromContext(c)
	task, err := h.svc.UpdateMemberTaskProgress(c.Context(), taskID, form.Progress, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "UPDATE_MEMBER_TASK_PROGRESS", "member_task", task.ID)
	return ok(c, task)
}

// DeleteDepartmentTask soft-deletes a department task and its member tasks.
//
// Route: DELETE /api/department-tasks/:id
func (h *WorkflowHandler) DeleteDepartmentTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid department task ID")
	}

	actor := middleware.ActorFromContext(c)
	if err := h.svc.DeleteDepartmentTask(c.Context(), taskID, actor); err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "DELETE_DEPARTMENT_TASK", "department_task", taskID)
	return ok(c, nil)
}

// DeleteMemberTask soft-deletes a member task.
//
// Route: DELETE /api/member-tasks/:id
func (h *WorkflowHandler) DeleteMemberTask(c *fiber.Ctx) error {
	taskID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid member task ID")
	}

	actor := middleware.ActorFromContext(c)
	if err := h.svc.DeleteMemberTask(c.Context(), taskID, actor); err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "DELETE_MEMBER_TASK", "member_task", taskID)
	return ok(c, nil)
}

// FileReport appends a narrative report to a project.
//
// Route: POST /api/projects/:id/reports
func (h *WorkflowHandler) FileReport(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}

	var form models.ReportForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFromContext(c)
	report, err := h.svc.FileReport(c.Context(), projectID, workflow.ReportSpec{
		ReportType: form.ReportType,
		Title:      form.Title,
		Content:    form.Content,
	}, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "FILE_REPORT", "task_report", report.ID)
	return created(c, report)
}

// ListReports lists a project's reports, optionally filtered by type. The
// "issue" filter surfaces rejection reasons among the rest.
//
// Route: GET /api/projects/:id/reports?type=issue
func (h *WorkflowHandler) ListReports(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}

	reportType := c.Query("type")
	if reportType != "" && !models.ValidReportType(reportType) {
		return fail(c, fiber.StatusBadRequest, "unknown report type")
	}

	reports, err := h.repos.Reports.ListByProject(c.Context(), projectID, reportType)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, reports)
}

// IssueWarning creates a warning against a project member.
//
// Route: POST /api/projects/:id/warnings
func (h *WorkflowHandler) IssueWarning(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}

	var form models.WarningForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor := middleware.ActorFromContext(c)
	warning, err := h.svc.IssueWarning(c.Context(), projectID, workflow.WarningSpec{
		WarnedUserID: form.WarnedUserID,
		WarningType:  form.WarningType,
		Severity:     form.Severity,
		Reason:       form.Reason,
	}, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "ISSUE_WARNING", "warning", warning.ID)
	return created(c, warning)
}

// ListWarnings lists a project's warnings with user names.
//
// Route: GET /api/projects/:id/warnings
func (h *WorkflowHandler) ListWarnings(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}

	warnings, err := h.repos.Warnings.ListByProject(c.Context(), projectID)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, warnings)
}

// AcknowledgeWarning records the one-time acknowledgement of a warning.
//
// Route: POST /api/warnings/:id/acknowledge
func (h *WorkflowHandler) AcknowledgeWarning(c *fiber.Ctx) error {
	warningID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid warning ID")
	}

	actor := middleware.ActorFromContext(c)
	warning, err := h.svc.AcknowledgeWarning(c.Context(), warningID, actor)
	if err != nil {
		return workflowError(c, err)
	}

	h.audit(c, actor, "ACKNOWLEDGE_WARNING", "warning", warning.ID)
	return ok(c, warning)
}

// GetProjectStats returns aggregate workflow metrics for a project.
//
// Route: GET /api/projects/:id/stats
func (h *WorkflowHandler) GetProjectStats(c *fiber.Ctx) error {
	projectID, err := paramID(c, "id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid project ID")
	}

	stats, err := h.repos.Stats.GetProjectStats(c.Context(), projectID)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, stats)
}

// ViewAuditLog returns recent audit entries. Admin only (enforced by route
// middleware).
//
// Route: GET /api/audit?limit=100
func (h *WorkflowHandler) ViewAuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	logs, err := h.repos.Audit.ListRecent(c.Context(), limit)
	if err != nil {
		return workflowError(c, err)
	}
	return ok(c, logs)
}
