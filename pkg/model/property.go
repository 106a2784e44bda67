package model

import "time"

// PropertyPolicy holds the reservation rules every membership of the
// property is subject to. Stay bounds are measured in nights, the
// cancellation deadline in whole days before check-in.
type PropertyPolicy struct {
	MinStayDays              int    `json:"min_stay_days" bson:"min_stay_days" validate:"required,min=1,max=365"`
	MaxStayDays              int    `json:"max_stay_days" bson:"max_stay_days" validate:"required,gtefield=MinStayDays,max=365"`
	CheckinTime              string `json:"checkin_time" bson:"checkin_time" validate:"omitempty"`
	CheckoutTime             string `json:"checkout_time" bson:"checkout_time" validate:"omitempty"`
	CancellationDeadlineDays int    `json:"cancellation_deadline_days" bson:"cancellation_deadline_days" validate:"min=0,max=365"`

	// Optional per-member caps. Nil means no cap.
	MaxHolidaysPerMember           *int `json:"max_holidays_per_member,omitempty" bson:"max_holidays_per_member,omitempty" validate:"omitempty"`
	MaxActiveReservationsPerMember *int `json:"max_active_reservations_per_member,omitempty" bson:"max_active_reservations_per_member,omitempty" validate:"omitempty"`
}

type Property struct {
	ID        string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string         `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Address   string         `json:"address" bson:"address" validate:"required,min=2,max=200"`
	TimeZone  string         `json:"time_zone" bson:"time_zone" validate:"omitempty,timezone"`
	Policy    PropertyPolicy `json:"policy" bson:"policy" validate:"required"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type PropertyUpdate struct {
	Name     string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Address  string          `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	TimeZone string          `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	Policy   *PropertyPolicy `json:"policy,omitempty" validate:"omitempty"`
}
