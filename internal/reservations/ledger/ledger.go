// Package ledger implements the usage-day balance arithmetic for
// memberships. The stored balance is fractional because credit accrues
// over the year; arithmetic always uses the precise value and only
// display formatting floors it.
package ledger

import "math"

// CanAfford reports whether a balance covers the requested number of
// nights. Fails closed: any duration greater than the precise balance
// is rejected, even by a fraction of a day.
func CanAfford(balanceDays float64, durationDays int) bool {
	return float64(durationDays) <= balanceDays
}

// Debit returns the balance after subtracting the given nights. Callers
// must have checked CanAfford and durably confirmed the reservation
// first; the shared balance is never debited speculatively.
func Debit(balanceDays float64, durationDays int) float64 {
	return balanceDays - float64(durationDays)
}

// Credit returns the balance after restoring the given nights, as
// happens when a reservation is cancelled before the deadline.
func Credit(balanceDays float64, durationDays int) float64 {
	return balanceDays + float64(durationDays)
}

// DisplayDays floors a balance to whole days for end-user display.
func DisplayDays(balanceDays float64) int {
	return int(math.Floor(balanceDays))
}
