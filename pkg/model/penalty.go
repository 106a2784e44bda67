package model

import "time"

const (
	PenaltyLateCancellation = "late_cancellation"
	PenaltyNoShow           = "no_show"
)

type Penalty struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	MembershipID  string    `json:"membership_id" bson:"membership_id" validate:"required,mongodb"`
	ReservationID string    `json:"reservation_id" bson:"reservation_id" validate:"required,mongodb"`
	Reason        string    `json:"reason" bson:"reason" validate:"required,oneof=late_cancellation no_show"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
