package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrInvalidRange means the end date is not after the start date.
	ErrInvalidRange = errors.New("end date must be after start date")

	// ErrStayTooShort and ErrStayTooLong mean the night count falls
	// outside the property policy bounds.
	ErrStayTooShort = errors.New("stay is shorter than the property minimum")
	ErrStayTooLong  = errors.New("stay is longer than the property maximum")

	// ErrDateRangeUnavailable means the range overlaps a non-cancelled
	// reservation or starts in the past.
	ErrDateRangeUnavailable = errors.New("date range is unavailable")

	ErrInsufficientBalance = errors.New("insufficient usage-day balance")

	// ErrPermissionDenied means the requester's membership does not
	// belong to the property being reserved.
	ErrPermissionDenied = errors.New("membership does not belong to this property")

	// ErrConcurrentModification means the atomic confirm-and-debit step
	// lost a race with a conflicting write. Safe to retry.
	ErrConcurrentModification = errors.New("conflicting concurrent modification")

	// ErrStatusConflict means a status transition found the reservation
	// in a state it cannot move from, usually because a concurrent
	// request transitioned it first.
	ErrStatusConflict = errors.New("reservation status does not allow this transition")
)
