package repository

import (
	"context"

	"github.com/avissapr/projectdesk/internal/database"
)

// MembershipRepository answers the affiliation questions behind the
// assignment invariants: whether a user belongs to a department, and whether
// a user is affiliated with a project through any accepted department
// assignment. Department membership itself is managed by the admin surface;
// the workflow only reads it.
type MembershipRepository struct {
	db database.Querier
}

// NewMembershipRepository creates a new repository over db.
func NewMembershipRepository(db database.Querier) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// IsMember reports whether the user belongs to the department.
func (r *MembershipRepository) IsMember(ctx context.Context, userID, departmentID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM department_members
			WHERE user_id = $1 AND department_id = $2
		)
	`

	var member bool
	err := r.db.QueryRow(ctx, query, userID, departmentID).Scan(&member)
	return member, err
}

// IsMemberOfProject reports whether the user belongs to any department with
// an accepted, non-deleted assignment on the project. Used for warning
// delegate checks and for validating warning targets.
func (r *MembershipRepository) IsMemberOfProject(ctx context.Context, userID, projectID int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM department_members dm
			JOIN project_departments pd
			  ON pd.department_id = dm.department_id
			 AND pd.project_id = $2
			 AND pd.acceptance = 'accepted'
			 AND pd.deleted_at IS NULL
			WHERE dm.user_id = $1
		)
	`

	var member bool
	err := r.db.QueryRow(ctx, query, userID, projectID).Scan(&member)
	return member, err
}
