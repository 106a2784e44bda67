package validator

import (
	"errors"
	"testing"
	"time"

	reservationserrors "qota/internal/reservations/errors"
	"qota/pkg/logger"
	"qota/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateStay(t *testing.T) {
	v := NewReservationValidator(testLogger())

	policy := model.PropertyPolicy{
		MinStayDays:              2,
		MaxStayDays:              14,
		CancellationDeadlineDays: 7,
	}

	tests := []struct {
		name        string
		start       time.Time
		end         time.Time
		wantErr     error
		description string
	}{
		{
			name:        "valid stay",
			start:       date(2025, 6, 1),
			end:         date(2025, 6, 5),
			wantErr:     nil,
			description: "4 nights within [2, 14]",
		},
		{
			name:        "one night below minimum",
			start:       date(2025, 6, 1),
			end:         date(2025, 6, 2),
			wantErr:     reservationserrors.ErrStayTooShort,
			description: "1 night against minStay 2",
		},
		{
			name:        "exactly minimum",
			start:       date(2025, 6, 1),
			end:         date(2025, 6, 3),
			wantErr:     nil,
			description: "2 nights is allowed",
		},
		{
			name:        "exactly maximum",
			start:       date(2025, 6, 1),
			end:         date(2025, 6, 15),
			wantErr:     nil,
			description: "14 nights is allowed",
		},
		{
			name:        "above maximum",
			start:       date(2025, 6, 1),
			end:         date(2025, 6, 16),
			wantErr:     reservationserrors.ErrStayTooLong,
			description: "15 nights against maxStay 14",
		},
		{
			name:        "end equals start",
			start:       date(2025, 6, 1),
			end:         date(2025, 6, 1),
			wantErr:     reservationserrors.ErrInvalidRange,
			description: "zero-night range",
		},
		{
			name:        "end before start",
			start:       date(2025, 6, 5),
			end:         date(2025, 6, 1),
			wantErr:     reservationserrors.ErrInvalidRange,
			description: "reversed range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStay(policy, tt.start, tt.end)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("%s: ValidateStay() error = %v, want nil", tt.description, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: ValidateStay() error = %v, want %v", tt.description, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStayOrderingCheckedFirst(t *testing.T) {
	v := NewReservationValidator(testLogger())

	// A reversed range also produces a negative night count; the
	// ordering error must win over the stay-length errors.
	policy := model.PropertyPolicy{MinStayDays: 2, MaxStayDays: 14}
	err := v.ValidateStay(policy, date(2025, 6, 10), date(2025, 6, 5))
	if !errors.Is(err, reservationserrors.ErrInvalidRange) {
		t.Errorf("ValidateStay() error = %v, want ErrInvalidRange", err)
	}
}

func TestValidateReservation(t *testing.T) {
	v := NewReservationValidator(testLogger())

	tests := []struct {
		name        string
		reservation *model.Reservation
		wantError   bool
	}{
		{
			name: "valid reservation",
			reservation: &model.Reservation{
				PropertyID:   "507f1f77bcf86cd799439011",
				MembershipID: "507f1f77bcf86cd799439012",
				StartDate:    date(2025, 6, 1),
				EndDate:      date(2025, 6, 5),
				GuestCount:   4,
				Status:       model.StatusConfirmed,
			},
			wantError: false,
		},
		{
			name: "missing property",
			reservation: &model.Reservation{
				MembershipID: "507f1f77bcf86cd799439012",
				StartDate:    date(2025, 6, 1),
				EndDate:      date(2025, 6, 5),
				GuestCount:   4,
				Status:       model.StatusConfirmed,
			},
			wantError: true,
		},
		{
			name: "malformed membership ID",
			reservation: &model.Reservation{
				PropertyID:   "507f1f77bcf86cd799439011",
				MembershipID: "not-an-object-id",
				StartDate:    date(2025, 6, 1),
				EndDate:      date(2025, 6, 5),
				GuestCount:   4,
				Status:       model.StatusConfirmed,
			},
			wantError: true,
		},
		{
			name: "end date not after start date",
			reservation: &model.Reservation{
				PropertyID:   "507f1f77bcf86cd799439011",
				MembershipID: "507f1f77bcf86cd799439012",
				StartDate:    date(2025, 6, 5),
				EndDate:      date(2025, 6, 5),
				GuestCount:   4,
				Status:       model.StatusConfirmed,
			},
			wantError: true,
		},
		{
			name: "zero guests",
			reservation: &model.Reservation{
				PropertyID:   "507f1f77bcf86cd799439011",
				MembershipID: "507f1f77bcf86cd799439012",
				StartDate:    date(2025, 6, 1),
				EndDate:      date(2025, 6, 5),
				GuestCount:   0,
				Status:       model.StatusConfirmed,
			},
			wantError: true,
		},
		{
			name: "unknown status",
			reservation: &model.Reservation{
				PropertyID:   "507f1f77bcf86cd799439011",
				MembershipID: "507f1f77bcf86cd799439012",
				StartDate:    date(2025, 6, 1),
				EndDate:      date(2025, 6, 5),
				GuestCount:   4,
				Status:       "archived",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.reservation)
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
