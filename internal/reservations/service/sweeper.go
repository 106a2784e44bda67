package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qota/internal/reservations/availability"
	reservationserrors "qota/internal/reservations/errors"
	reservationsrepo "qota/internal/reservations/repository"
	"qota/pkg/config"
	"qota/pkg/model"
)

// Sweeper closes out confirmed reservations whose checkout day has
// passed. A stay the member checked into completes quietly; one they
// never checked into completes with a no_show penalty assessed against
// the membership.
type Sweeper struct {
	repo   reservationsrepo.ReservationRepository
	events EventPublisher
	cfg    *config.Config

	// now is swapped out in tests
	now func() time.Time
}

func NewSweeper(repo reservationsrepo.ReservationRepository, events EventPublisher, cfg *config.Config) *Sweeper {
	return &Sweeper{
		repo:   repo,
		events: events,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run sweeps on the given interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.cfg.Log.Error("Reservation sweep failed", "error", err)
			}
		}
	}
}

// Sweep completes every elapsed stay once and returns how many it
// transitioned. The conditional status update makes concurrent sweeps
// safe: a reservation another worker already completed matches nothing
// and is skipped without a second penalty.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	today := availability.DayStart(s.now())

	elapsed, err := s.repo.FindElapsed(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to find elapsed reservations: %w", err)
	}

	completed := 0
	for _, reservation := range elapsed {
		noShow := !reservation.CheckedIn

		err := s.repo.UpdateStatus(ctx, reservation.ID,
			[]string{model.StatusConfirmed}, model.StatusCompleted,
			reservation.Penalized || noShow)
		if err != nil {
			if errors.Is(err, reservationserrors.ErrStatusConflict) || errors.Is(err, reservationserrors.ErrNotFound) {
				continue
			}
			s.cfg.Log.Error("Failed to complete reservation", "id", reservation.ID, "error", err)
			continue
		}
		completed++

		if noShow {
			s.events.PenaltyAssessed(ctx, reservation, model.PenaltyNoShow)
			s.cfg.Log.Warn("No-show recorded",
				"id", reservation.ID,
				"membership_id", reservation.MembershipID,
				"end_date", reservation.EndDate,
			)
		}
	}

	if completed > 0 {
		s.cfg.Log.Info("Reservation sweep finished", "completed", completed, "scanned", len(elapsed))
	}
	return completed, nil
}
