package service

import (
	"context"
	"testing"
	"time"

	reservationserrors "qota/internal/reservations/errors"
	"qota/pkg/model"
)

func newSweeperFixture(today time.Time) (*Sweeper, *mockReservationRepository, *mockEventPublisher) {
	repo := &mockReservationRepository{}
	events := &mockEventPublisher{}
	s := &Sweeper{
		repo:   repo,
		events: events,
		cfg:    testConfig(),
		now:    func() time.Time { return today },
	}
	return s, repo, events
}

func elapsedReservation(checkedIn bool) *model.Reservation {
	return &model.Reservation{
		ID:           testReservation,
		PropertyID:   testPropertyID,
		MembershipID: testMembershipID,
		StartDate:    date(2025, 1, 11),
		EndDate:      date(2025, 1, 15),
		Status:       model.StatusConfirmed,
		CheckedIn:    checkedIn,
	}
}

func TestSweepCompletesCheckedInStay(t *testing.T) {
	s, repo, events := newSweeperFixture(date(2025, 1, 20))
	repo.findElapsedFunc = func(ctx context.Context, before time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{elapsedReservation(true)}, nil
	}

	var gotTo string
	var gotPenalized bool
	repo.updateStatusFunc = func(ctx context.Context, id string, from []string, to string, penalized bool) error {
		gotTo = to
		gotPenalized = penalized
		return nil
	}

	completed, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v, want nil", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if gotTo != model.StatusCompleted {
		t.Errorf("transitioned to %q, want %q", gotTo, model.StatusCompleted)
	}
	if gotPenalized {
		t.Error("checked-in stay was marked penalized")
	}
	if len(events.penalties) != 0 {
		t.Errorf("penalties = %v, want none for a checked-in stay", events.penalties)
	}
}

func TestSweepAssessesNoShow(t *testing.T) {
	s, repo, events := newSweeperFixture(date(2025, 1, 20))
	repo.findElapsedFunc = func(ctx context.Context, before time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{elapsedReservation(false)}, nil
	}

	var gotPenalized bool
	repo.updateStatusFunc = func(ctx context.Context, id string, from []string, to string, penalized bool) error {
		gotPenalized = penalized
		return nil
	}

	completed, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v, want nil", err)
	}
	if completed != 1 {
		t.Errorf("completed = %d, want 1", completed)
	}
	if !gotPenalized {
		t.Error("no-show stay not marked penalized")
	}
	if len(events.penalties) != 1 || events.penalties[0] != model.PenaltyNoShow {
		t.Errorf("penalties = %v, want one no_show", events.penalties)
	}
}

func TestSweepSkipsStaysAnotherWorkerCompleted(t *testing.T) {
	s, repo, events := newSweeperFixture(date(2025, 1, 20))
	repo.findElapsedFunc = func(ctx context.Context, before time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{elapsedReservation(false)}, nil
	}
	repo.updateStatusFunc = func(ctx context.Context, id string, from []string, to string, penalized bool) error {
		return reservationserrors.ErrStatusConflict
	}

	completed, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep() error = %v, want nil", err)
	}
	if completed != 0 {
		t.Errorf("completed = %d, want 0 when the transition lost the race", completed)
	}
	if len(events.penalties) != 0 {
		t.Errorf("penalties = %v, want none when the stay was not ours to complete", events.penalties)
	}
}
