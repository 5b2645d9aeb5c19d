package models

// Role values for users.role.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Acceptance status values for project_departments.acceptance.
const (
	AcceptancePending  = "pending"
	AcceptanceAccepted = "accepted"
	AcceptanceRejected = "rejected"
)

// Department task status values. Submitted can only be reached once every
// non-deleted member task underneath is submitted or approved; rejected is a
// transient state that immediately returns to in_progress (rework loop).
const (
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

// Priority values shared by department and member tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Warning severity values.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Report type values for project_task_reports.report_type.
const (
	ReportDaily      = "daily"
	ReportWeekly     = "weekly"
	ReportMonthly    = "monthly"
	ReportCompletion = "completion"
	ReportIssue      = "issue"
)

// ValidPriority reports whether p is a recognized task priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a recognized warning severity.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidReportType reports whether t is one of the five recognized report types.
func ValidReportType(t string) bool {
	switch t {
	case ReportDaily, ReportWeekly, ReportMonthly, ReportCompletion, ReportIssue:
		return true
	}
	return false
}

// ValidDepartmentTaskStatus reports whether s is a department task status.
func ValidDepartmentTaskStatus(s string) bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ValidMemberTaskStatus reports whether s is a member task status.
// Member tasks have no rejected state; rework happens at the department level.
func ValidMemberTaskStatus(s string) bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusSubmitted, StatusApproved:
		return true
	}
	return false
}
