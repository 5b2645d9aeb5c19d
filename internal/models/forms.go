package models

// ============================================================================
// Data Transfer Objects (DTOs) - JSON Input
// ============================================================================

// LoginForm represents user login credentials.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DepartmentTaskForm is the payload for creating a department task.
// Deadline uses RFC 3339 and is parsed at the handler boundary.
type DepartmentTaskForm struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
	Deadline       string  `json:"deadline"`
}

// MemberTaskForm is the payload for assigning a member task to a user.
type MemberTaskForm struct {
	UserID         int     `json:"user_id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
	Deadline       string  `json:"deadline"`
}

// TransitionForm is the payload for status transition endpoints.
// Progress is only meaningful for member tasks; Reason is required when
// rejecting a department task.
type TransitionForm struct {
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ProgressForm is the payload for member task progress updates.
type ProgressForm struct {
	Progress int `json:"progress"`
}

// ReportForm is the payload for filing a task report.
type ReportForm struct {
	ReportType string `json:"report_type"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// WarningForm is the payload for issuing a warning against a user.
type WarningForm struct {
	WarnedUserID int    `json:"warned_user_id"`
	WarningType  string `json:"warning_type"`
	Severity     string `json:"severity"`
	Reason       string `json:"reason"`
}
