package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrCatalogueInconsistent signals the Catalogue Snapshot could not
	// be built cleanly — e.g. a course references a department or
	// group that no longer exists.
	ErrCatalogueInconsistent = New("CATALOGUE_INCONSISTENT", http.StatusUnprocessableEntity, "catalogue data is inconsistent")
	// ErrNoCompatibleRoom signals a session has no room satisfying its
	// course's preferred room type.
	ErrNoCompatibleRoom = New("NO_COMPATIBLE_ROOM", http.StatusUnprocessableEntity, "no compatible room for session")
	// ErrInfeasible signals the Level Solver exhausted its search space
	// for a level without finding a valid assignment.
	ErrInfeasible = New("INFEASIBLE", http.StatusUnprocessableEntity, "no feasible timetable for this level")
	// ErrTimeout signals the Level Solver hit its per-level time budget
	// before proving feasibility or infeasibility.
	ErrTimeout = New("SOLVE_TIMEOUT", http.StatusGatewayTimeout, "level solve exceeded its time budget")
	// ErrPersistence wraps a Slot Materialiser write failure.
	ErrPersistence = New("PERSISTENCE_FAILED", http.StatusInternalServerError, "failed to persist generated slots")
	// ErrCancelled signals a run was cancelled by the caller.
	ErrCancelled = New("CANCELLED", http.StatusConflict, "generation run was cancelled")
	// ErrAlreadyRunning signals a second generation run was requested
	// for a timetableId that already has one in flight.
	ErrAlreadyRunning = New("ALREADY_RUNNING", http.StatusConflict, "a generation run is already in progress for this timetable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
