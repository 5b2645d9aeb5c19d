package workflow

import "github.com/avissapr/projectdesk/internal/models"

// ApprovalPolicy decides which actors may approve or reject a department
// task and which may act as acknowledgement delegates for warnings. The
// source system never pinned this down, so it is configuration rather than a
// hardcoded rule; the default grants authority to admins and to managers of
// the department concerned.
type ApprovalPolicy struct {
	// ApproverRoles are the roles allowed to approve or reject, besides admin.
	ApproverRoles []string

	// RequireDepartmentMembership demands that non-admin approvers belong to
	// the department whose task they are deciding.
	RequireDepartmentMembership bool
}

// DefaultApprovalPolicy grants approval authority to department managers and
// admins.
func DefaultApprovalPolicy() ApprovalPolicy {
	return ApprovalPolicy{
		ApproverRoles:               []string{models.RoleManager},
		RequireDepartmentMembership: true,
	}
}

// allows reports whether the actor's role is an approver role. Admins always
// qualify.
func (p ApprovalPolicy) allows(actor models.Actor) bool {
	if actor.IsAdmin() {
		return true
	}
	for _, role := range p.ApproverRoles {
		if actor.Role == role {
			return true
		}
	}
	return false
}

// CanApprove reports whether the actor may approve or reject a task of the
// given department. isDepartmentMember is the actor's membership in that
// department, resolved by the caller inside the surrounding transaction.
func (p ApprovalPolicy) CanApprove(actor models.Actor, isDepartmentMember bool) bool {
	if actor.IsAdmin() {
		return true
	}
	if !p.allows(actor) {
		return false
	}
	return !p.RequireDepartmentMembership || isDepartmentMember
}
