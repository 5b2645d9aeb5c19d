// Package repository implements the database access layer for ProjectDesk.
// Repositories issue raw parameterized SQL through an injected Querier and
// return typed records; pgx rows never leak past this boundary. Constructing
// a repository over a pgx.Tx yields a transaction-scoped repository.
package repository

import "github.com/avissapr/projectdesk/internal/database"

// Store bundles all repositories over one Querier. The workflow service
// builds a transaction-scoped Store per operation; handlers keep a
// pool-scoped Store for reads.
type Store struct {
	Projects           *ProjectRepository
	ProjectDepartments *ProjectDepartmentRepository
	DepartmentTasks    *DepartmentTaskRepository
	MemberTasks        *MemberTaskRepository
	Reports            *ReportRepository
	Warnings           *WarningRepository
	Memberships        *MembershipRepository
	Users              *UserRepository
	Audit              *AuditRepository
	Stats              *StatsRepository
}

// NewStore creates a Store whose repositories all share db.
func NewStore(db database.Querier) *Store {
	return &Store{
		Projects:           NewProjectRepository(db),
		ProjectDepartments: NewProjectDepartmentRepository(db),
		DepartmentTasks:    NewDepartmentTaskRepository(db),
		MemberTasks:        NewMemberTaskRepository(db),
		Reports:            NewReportRepository(db),
		Warnings:           NewWarningRepository(db),
		Memberships:        NewMembershipRepository(db),
		Users:              NewUserRepository(db),
		Audit:              NewAuditRepository(db),
		Stats:              NewStatsRepository(db),
	}
}
