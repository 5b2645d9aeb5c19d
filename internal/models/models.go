// Package models defines the domain entities and data transfer objects for
// ProjectDesk. It includes database models mapped to PostgreSQL tables, form
// DTOs for JSON input, and view models returned by list endpoints.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a system user account with role-based access control.
// Roles: "admin" (full access), "manager" (approval authority within own
// departments), "employee" (member-task work only).
//
// Database Table: users
// Security Note: PasswordHash should never be exposed in API responses or logs
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"` // Unique, used for login
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"` // "admin", "manager" or "employee"
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Project represents a company project that departments are assigned to.
//
// Database Table: projects
// Related: ProjectDepartment (one-to-many), DepartmentTask (one-to-many)
type Project struct {
	ID        int        `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Status    string     `db:"status" json:"status"`
	Priority  string     `db:"priority" json:"priority"`
	StartDate *time.Time `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date"`
	CreatedBy int        `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// ProjectDepartment records the assignment of a department to a project and
// whether the department has accepted the work. Department tasks may only be
// created once the acceptance status is "accepted".
//
// Database Table: project_departments
// Acceptance Values: "pending", "accepted", "rejected"
type ProjectDepartment struct {
	ID           int        `db:"id" json:"id"`
	ProjectID    int        `db:"project_id" json:"project_id"`
	DepartmentID int        `db:"department_id" json:"department_id"`
	Acceptance   string     `db:"acceptance" json:"acceptance"`
	AssignedBy   int        `db:"assigned_by" json:"assigned_by"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// DepartmentTask represents a unit of work assigned to an entire department
// within a project. Its status aggregates the states of its member tasks.
//
// Database Table: project_department_tasks
// Status Values: "assigned", "in_progress", "submitted", "approved", "rejected"
// Related: MemberTask (one-to-many, owning side)
type DepartmentTask struct {
	ID             int        `db:"id" json:"id"`
	ProjectID      int        `db:"project_id" json:"project_id"`
	DepartmentID   int        `db:"department_id" json:"department_id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	Priority       string     `db:"priority" json:"priority"` // "low", "medium", "high", "urgent"
	EstimatedHours float64    `db:"estimated_hours" json:"estimated_hours"`
	Status         string     `db:"status" json:"status"`
	Deadline       *time.Time `db:"deadline" json:"deadline"`
	AssignedBy     int        `db:"assigned_by" json:"assigned_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// MemberTask represents a unit of work assigned to one individual. A member
// task cannot exist without its parent department task, and the assignee must
// belong to the parent's department.
//
// Database Table: project_member_tasks
// Status Values: "assigned", "in_progress", "submitted", "approved"
// Invariant: Progress is 0-100 and never decreases until the task is approved
type MemberTask struct {
	ID               int        `db:"id" json:"id"`
	DepartmentTaskID int        `db:"department_task_id" json:"department_task_id"`
	UserID           int        `db:"user_id" json:"user_id"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Priority         string     `db:"priority" json:"priority"`
	EstimatedHours   float64    `db:"estimated_hours" json:"estimated_hours"`
	Status           string     `db:"status" json:"status"`
	Progress         int        `db:"progress" json:"progress"` // 0-100
	Deadline         *time.Time `db:"deadline" json:"deadline"`
	AssignedBy       int        `db:"assigned_by" json:"assigned_by"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	DeletedAt        *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// TaskReport is a free-form narrative report tied to a project and a
// reporting user. Rejection reasons for department tasks are persisted as
// reports of type "issue" so they remain retrievable through the same query.
//
// Database Table: project_task_reports
// Report Types: "daily", "weekly", "monthly", "completion", "issue"
type TaskReport struct {
	ID         int        `db:"id" json:"id"`
	ProjectID  int        `db:"project_id" json:"project_id"`
	ReportedBy int        `db:"reported_by" json:"reported_by"`
	ReportType string     `db:"report_type" json:"report_type"`
	Title      string     `db:"title" json:"title"`
	Content    string     `db:"content" json:"content"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Warning is a disciplinary or quality flag issued against a user within a
// project. Acknowledgement is a one-way transition: AcknowledgedAt and
// AcknowledgedBy are either both null or both set.
//
// Database Table: project_warnings
// Severity Values: "low", "medium", "high", "critical"
type Warning struct {
	ID             int        `db:"id" json:"id"`
	ProjectID      int        `db:"project_id" json:"project_id"`
	WarnedUserID   int        `db:"warned_user_id" json:"warned_user_id"`
	IssuedBy       int        `db:"issued_by" json:"issued_by"`
	WarningType    string     `db:"warning_type" json:"warning_type"`
	Severity       string     `db:"severity" json:"severity"`
	Reason         string     `db:"reason" json:"reason"`
	AcknowledgedAt *time.Time `db:"acknowledged_at" json:"acknowledged_at"`
	AcknowledgedBy *int       `db:"acknowledged_by" json:"acknowledged_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// AuditLog represents an audit trail entry for compliance monitoring.
// All workflow mutations are logged here.
//
// Database Table: audit_logs
// Immutability: entries are never modified or deleted once created
type AuditLog struct {
	ID         int       `json:"id"`
	ActorID    *int      `json:"actor_id"` // nullable for system actions
	Action     string    `json:"action"`   // e.g. "APPROVE_DEPARTMENT_TASK"
	ObjectType string    `json:"object_type"`
	ObjectID   *int      `json:"object_id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

// Actor identifies the authenticated user performing a workflow operation.
// Supplied by the session middleware; the workflow service trusts it.
type Actor struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsManager reports whether the actor holds the manager role.
func (a Actor) IsManager() bool { return a.Role == RoleManager }
