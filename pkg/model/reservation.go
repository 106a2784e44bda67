package model

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Reservation occupies the half-open day interval [StartDate, EndDate):
// the checkout day is not occupied, so it can serve as the next
// reservation's check-in day.
type Reservation struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID   string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	MembershipID string    `json:"membership_id" bson:"membership_id" validate:"required,mongodb"`
	StartDate    time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	GuestCount   int       `json:"guest_count" bson:"guest_count" validate:"required,min=1,max=50"`
	GuestLabel   string    `json:"guest_label,omitempty" bson:"guest_label,omitempty" validate:"omitempty,max=100"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Penalized    bool      `json:"penalized" bson:"penalized"`
	CheckedIn    bool      `json:"checked_in" bson:"checked_in"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Active reports whether the reservation still occupies its date range.
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled
}
