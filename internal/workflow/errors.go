// Package workflow implements the department/member task state model:
// status transitions, aggregate recomputation, assignment invariants, warning
// acknowledgement and report filing. Every mutating operation runs inside a
// single database transaction; a failed check aborts the transaction and
// leaves all entities unchanged.
package workflow

import (
	"errors"
	"fmt"
)

// Kind classifies workflow errors so the HTTP layer can map them to status
// codes without string matching.
type Kind int

const (
	// KindValidation - malformed input (unknown enum value, missing field). 400.
	KindValidation Kind = iota + 1

	// KindNotFound - referenced entity missing or soft-deleted. 404.
	KindNotFound

	// KindNotAssigned - department has no accepted assignment on the project. 400.
	KindNotAssigned

	// KindNotMember - user is not affiliated with the required department. 403.
	KindNotMember

	// KindForbidden - actor lacks authority for the requested action. 403.
	KindForbidden

	// KindInvalidTransition - the requested state change is not a legal edge. 409.
	KindInvalidTransition

	// KindIncompleteWork - submission attempted before progress reached 100. 409.
	KindIncompleteWork

	// KindAlreadyInState - the entity is already in the requested state. 409.
	KindAlreadyInState

	// KindAlreadyAcknowledged - the warning was acknowledged earlier. 409.
	KindAlreadyAcknowledged
)

// Error is a typed workflow failure. Conflict errors carry the attempted and
// current states so callers can name both in responses.
type Error struct {
	Kind      Kind
	Message   string
	Current   string // current state, when relevant
	Attempted string // attempted state, when relevant
}

func (e *Error) Error() string { return e.Message }

// KindOf extracts the workflow error kind from err, or 0 when err is not a
// workflow error (e.g. a raw database failure).
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return 0
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// errValidation reports malformed input.
func errValidation(format string, args ...interface{}) *Error {
	return newError(KindValidation, format, args...)
}

// errNotFound reports a missing or soft-deleted entity.
func errNotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func errNotAssigned(format string, args ...interface{}) *Error {
	return newError(KindNotAssigned, format, args...)
}

func errNotMember(format string, args ...interface{}) *Error {
	return newError(KindNotMember, format, args...)
}

func errForbidden(format string, args ...interface{}) *Error {
	return newError(KindForbidden, format, args...)
}

// errInvalidTransition names the attempted and current states per the error
// contract for state-machine violations.
func errInvalidTransition(entity string, current, attempted string) *Error {
	e := newError(KindInvalidTransition,
		"invalid transition for %s: cannot move from %q to %q", entity, current, attempted)
	e.Current = current
	e.Attempted = attempted
	return e
}

func errIncompleteWork(progress int) *Error {
	return newError(KindIncompleteWork,
		"cannot submit: progress is %d, submission requires 100", progress)
}

func errAlreadyInState(entity, state string) *Error {
	e := newError(KindAlreadyInState, "%s is already %q", entity, state)
	e.Current = state
	e.Attempted = state
	return e
}

func errAlreadyAcknowledged(warningID int) *Error {
	return newError(KindAlreadyAcknowledged, "warning %d is already acknowledged", warningID)
}
