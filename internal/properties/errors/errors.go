package errors

import "errors"

var (
	ErrNotFound = errors.New("property not found")

	ErrInvalidID = errors.New("invalid property ID format")

	ErrMembershipNotFound = errors.New("membership not found")

	ErrInvalidMembershipID = errors.New("invalid membership ID format")

	// ErrBalanceConflict means a guarded balance update matched no
	// document: either the membership is gone or the balance no longer
	// covers the debit.
	ErrBalanceConflict = errors.New("balance update conflicts with current balance")
)
