package model

import "time"

const (
	RoleMaster = "master"
	RoleCommon = "common"
)

// Membership links a member to a property they co-own. CurrentBalanceDays
// is the usage-day credit derived from FractionCount; it is fractional
// because credit accrues over the year, and only display flooring rounds it.
type Membership struct {
	ID                 string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID         string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	MemberName         string    `json:"member_name" bson:"member_name" validate:"required,min=2,max=100"`
	MemberPhone        string    `json:"member_phone" bson:"member_phone" validate:"required,e164"`
	FractionCount      int       `json:"fraction_count" bson:"fraction_count" validate:"required,min=1,max=52"`
	CurrentBalanceDays float64   `json:"current_balance_days" bson:"current_balance_days" validate:"min=0"`
	Role               string    `json:"role" bson:"role" validate:"required,oneof=master common"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type MembershipUpdate struct {
	MemberName    string `json:"member_name,omitempty" validate:"omitempty,min=2,max=100"`
	MemberPhone   string `json:"member_phone,omitempty" validate:"omitempty,e164"`
	FractionCount *int   `json:"fraction_count,omitempty" validate:"omitempty,min=1,max=52"`
	Role          string `json:"role,omitempty" validate:"omitempty,oneof=master common"`
}
