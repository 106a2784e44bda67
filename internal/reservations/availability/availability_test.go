package availability

import (
	"testing"
	"time"

	"qota/pkg/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func reservation(start, end time.Time, status string) *model.Reservation {
	return &model.Reservation{
		ID:           "res-1",
		PropertyID:   "prop-1",
		MembershipID: "mem-1",
		StartDate:    start,
		EndDate:      end,
		Status:       status,
	}
}

func TestDayStart(t *testing.T) {
	in := time.Date(2025, 1, 10, 17, 45, 12, 0, time.UTC)
	got := DayStart(in)
	want := date(2025, 1, 10)
	if !got.Equal(want) {
		t.Errorf("DayStart(%v) = %v, want %v", in, got, want)
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			name:  "five nights",
			start: date(2025, 1, 10),
			end:   date(2025, 1, 15),
			want:  5,
		},
		{
			name:  "one night",
			start: date(2025, 1, 10),
			end:   date(2025, 1, 11),
			want:  1,
		},
		{
			name:  "time of day ignored",
			start: time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 1, 12, 1, 0, 0, 0, time.UTC),
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nights(tt.start, tt.end); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsRangeFree(t *testing.T) {
	today := date(2025, 1, 1)
	existing := []*model.Reservation{
		reservation(date(2025, 1, 10), date(2025, 1, 15), model.StatusConfirmed),
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{
			name:  "checkout day reused as check-in",
			start: date(2025, 1, 15),
			end:   date(2025, 1, 20),
			want:  true,
		},
		{
			name:  "candidate ends on existing start",
			start: date(2025, 1, 5),
			end:   date(2025, 1, 10),
			want:  true,
		},
		{
			name:  "overlap in the middle",
			start: date(2025, 1, 12),
			end:   date(2025, 1, 18),
			want:  false,
		},
		{
			name:  "candidate fully covers existing",
			start: date(2025, 1, 8),
			end:   date(2025, 1, 20),
			want:  false,
		},
		{
			name:  "identical range",
			start: date(2025, 1, 10),
			end:   date(2025, 1, 15),
			want:  false,
		},
		{
			name:  "start in the past",
			start: date(2024, 12, 31),
			end:   date(2025, 1, 3),
			want:  false,
		},
		{
			name:  "starts today",
			start: date(2025, 1, 1),
			end:   date(2025, 1, 4),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRangeFree(existing, tt.start, tt.end, today); got != tt.want {
				t.Errorf("IsRangeFree(%v, %v) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestIsRangeFreeIgnoresCancelled(t *testing.T) {
	today := date(2025, 1, 1)
	existing := []*model.Reservation{
		reservation(date(2025, 1, 10), date(2025, 1, 15), model.StatusCancelled),
	}

	if !IsRangeFree(existing, date(2025, 1, 12), date(2025, 1, 14), today) {
		t.Error("range covered only by a cancelled reservation should be free")
	}
}

func TestFindConflict(t *testing.T) {
	conflicting := reservation(date(2025, 1, 10), date(2025, 1, 15), model.StatusConfirmed)
	existing := []*model.Reservation{
		reservation(date(2025, 1, 2), date(2025, 1, 4), model.StatusCancelled),
		conflicting,
	}

	got := FindConflict(existing, date(2025, 1, 14), date(2025, 1, 16))
	if got != conflicting {
		t.Errorf("FindConflict returned %v, want the confirmed reservation", got)
	}

	if got := FindConflict(existing, date(2025, 1, 15), date(2025, 1, 20)); got != nil {
		t.Errorf("FindConflict returned %v for a free range, want nil", got)
	}
}

func TestIsRangeFreeNoExisting(t *testing.T) {
	today := date(2025, 1, 1)
	if !IsRangeFree(nil, date(2025, 1, 10), date(2025, 1, 12), today) {
		t.Error("range with no existing reservations should be free")
	}
}
