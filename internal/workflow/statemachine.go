package workflow

import "github.com/avissapr/projectdesk/internal/models"

// Legal status edges for department tasks. Rejected is transient: a rejection
// lands in rejected and immediately continues to in_progress (rework loop),
// so a stored department task is never left in rejected.
var departmentTaskEdges = map[string][]string{
	models.StatusAssigned:   {models.StatusInProgress},
	models.StatusInProgress: {models.StatusSubmitted},
	models.StatusSubmitted:  {models.StatusApproved, models.StatusRejected},
	models.StatusRejected:   {models.StatusInProgress},
	models.StatusApproved:   {}, // terminal
}

// Legal status edges for member tasks. Approved is terminal; there is no
// reopening of an approved member task.
var memberTaskEdges = map[string][]string{
	models.StatusAssigned:   {models.StatusInProgress},
	models.StatusInProgress: {models.StatusSubmitted},
	models.StatusSubmitted:  {models.StatusApproved},
	models.StatusApproved:   {}, // terminal
}

func canTransition(edges map[string][]string, from, to string) bool {
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionDepartmentTask reports whether from → to is a legal department
// task edge.
func CanTransitionDepartmentTask(from, to string) bool {
	return canTransition(departmentTaskEdges, from, to)
}

// CanTransitionMemberTask reports whether from → to is a legal member task edge.
func CanTransitionMemberTask(from, to string) bool {
	return canTransition(memberTaskEdges, from, to)
}

// AggregateDepartmentStatus derives a department task's status from its
// non-deleted member tasks:
//
//   - approved is never changed by aggregation (manager action only)
//   - all children submitted or approved  → submitted
//   - any child past assigned (status or progress) → in_progress
//   - otherwise the current status is kept; aggregation never moves a task
//     backwards to assigned
//
// With no children there is nothing to derive and the current status stands.
func AggregateDepartmentStatus(current string, children []models.MemberTask) string {
	if current == models.StatusApproved || len(children) == 0 {
		return current
	}

	allDone := true
	anyStarted := false
	for _, mt := range children {
		switch mt.Status {
		case models.StatusSubmitted, models.StatusApproved:
			anyStarted = true
		case models.StatusInProgress:
			anyStarted = true
			allDone = false
		default:
			allDone = false
			if mt.Progress > 0 {
				anyStarted = true
			}
		}
	}

	if allDone {
		return models.StatusSubmitted
	}
	if anyStarted {
		return models.StatusInProgress
	}
	return current
}
