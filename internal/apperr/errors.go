// Package apperr provides the error taxonomy shared by the enrollment and
// scheduling services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and transports.
type Kind string

const (
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION"
	KindForbidden  Kind = "FORBIDDEN"
)

// Code is a machine-readable reason within a Kind.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeForbidden             Code = "FORBIDDEN"
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeDuplicateEnrollment   Code = "DUPLICATE_ENROLLMENT"
	CodeSelfPartner           Code = "SELF_PARTNER"
	CodeEnrollmentClosed      Code = "ENROLLMENT_CLOSED"
	CodeGuestsNotAllowed      Code = "GUESTS_NOT_ALLOWED"
	CodeCapacityExceeded      Code = "CAPACITY_EXCEEDED"
	CodeEnrollmentTerminal    Code = "ENROLLMENT_TERMINAL"
	CodeNotOnWaitingList      Code = "NOT_ON_WAITING_LIST"
	CodeSlotOccupied          Code = "SLOT_OCCUPIED"
	CodeSlotBlocked           Code = "SLOT_BLOCKED"
	CodeSlotNotBlocked        Code = "SLOT_NOT_BLOCKED"
	CodeSlotInProgress        Code = "SLOT_IN_PROGRESS"
	CodeSlotNotScheduled      Code = "SLOT_NOT_SCHEDULED"
	CodeScheduleEmpty         Code = "SCHEDULE_EMPTY"
	CodeScheduleHasConflicts  Code = "SCHEDULE_HAS_CONFLICTS"
	CodeIntegrationDisabled   Code = "INTEGRATION_DISABLED"
	CodeSlotOutsideTournament Code = "SLOT_OUTSIDE_TOURNAMENT"
)

// Error is the domain error type.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by Kind, and also by Code when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return true
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrValidation = &Error{Kind: KindValidation}
	ErrForbidden  = &Error{Kind: KindForbidden}

	ErrDuplicateEnrollment = &Error{Kind: KindValidation, Code: CodeDuplicateEnrollment}
	ErrCapacityExceeded    = &Error{Kind: KindValidation, Code: CodeCapacityExceeded}
	ErrEnrollmentClosed    = &Error{Kind: KindValidation, Code: CodeEnrollmentClosed}
	ErrEnrollmentTerminal  = &Error{Kind: KindValidation, Code: CodeEnrollmentTerminal}
	ErrSlotOccupied        = &Error{Kind: KindValidation, Code: CodeSlotOccupied}
	ErrSlotBlocked         = &Error{Kind: KindValidation, Code: CodeSlotBlocked}
	ErrSlotInProgress      = &Error{Kind: KindValidation, Code: CodeSlotInProgress}
)

// NotFound reports a missing entity.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// Validation reports a violated precondition or invariant.
func Validation(code Code, format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Forbidden reports a permission or ownership failure.
func Forbidden(format string, args ...any) *Error {
	return &Error{
		Kind:    KindForbidden,
		Code:    CodeForbidden,
		Message: fmt.Sprintf(format, args...),
	}
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
