package service

import "errors"

// Common service errors
var (
	// ErrPermissionDenied is returned when a caller doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when the caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDiagnosisClosed is returned when acting on a decided or cancelled diagnosis
	ErrDiagnosisClosed = errors.New("diagnosis request is closed")

	// ErrInvalidTransition is returned when an invoice status change is not allowed
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoMoreMoves is returned when an article is already at the boundary
	// of the display order
	ErrNoMoreMoves = errors.New("cannot move any further")

	// ErrInsufficientDeposit is returned when a referral fee exceeds the
	// partner's deposit balance
	ErrInsufficientDeposit = errors.New("insufficient deposit balance")
)
