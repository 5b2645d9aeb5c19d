package models

import "time"

// ============================================================================
// View Models - List Endpoints
// ============================================================================

// DepartmentTaskView is an enriched department task for project listings.
// Member task counters are computed in the repository query, not in Go.
type DepartmentTaskView struct {
	DepartmentTask
	MemberTaskCount int `json:"member_task_count"` // non-deleted children
	SubmittedCount  int `json:"submitted_count"`   // children submitted or approved
}

// MemberTaskView is a member task joined with its assignee's name for
// department task detail views.
type MemberTaskView struct {
	MemberTask
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// WarningView is a warning joined with user names for project listings.
type WarningView struct {
	Warning
	WarnedUserName string `json:"warned_user_name"`
	IssuedByName   string `json:"issued_by_name"`
}

// ProjectStats summarizes workflow progress for one project.
// Produced by a single aggregate query in the stats repository.
type ProjectStats struct {
	ProjectID           int        `json:"project_id"`
	DepartmentTaskCount int        `json:"department_task_count"`
	ApprovedTaskCount   int        `json:"approved_task_count"`
	MemberTaskCount     int        `json:"member_task_count"`
	AverageProgress     float64    `json:"average_progress"` // over non-deleted member tasks
	OpenWarningCount    int        `json:"open_warning_count"`
	ReportCount         int        `json:"report_count"`
	LastActivityAt      *time.Time `json:"last_activity_at"`
}
