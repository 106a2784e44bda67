package model

import "time"

// ReservationLock is an advisory lock held across the availability and
// balance checks of a single submission. One lock is keyed by property,
// a second by membership, so concurrent submissions for the same dates
// or the same balance serialize instead of racing.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
