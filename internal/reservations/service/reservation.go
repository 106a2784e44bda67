package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"qota/internal/properties/repository"
	"qota/internal/reservations/availability"
	reservationserrors "qota/internal/reservations/errors"
	"qota/internal/reservations/ledger"
	reservationsrepo "qota/internal/reservations/repository"
	"qota/internal/reservations/validator"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
	"qota/pkg/sanitizer"

	propertieserrors "qota/internal/properties/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Submit(ctx context.Context, reservation *model.Reservation) error
	Cancel(ctx context.Context, reservationID, requesterMembershipID string) error
	CheckIn(ctx context.Context, reservationID, requesterMembershipID string) error
	CheckAvailability(ctx context.Context, propertyID string, start, end time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type reservationService struct {
	repo           reservationsrepo.ReservationRepository
	lockRepo       reservationsrepo.ReservationLockRepository
	propertyRepo   repository.PropertyRepository
	membershipRepo repository.MembershipRepository
	validator      *validator.ReservationValidator
	events         EventPublisher
	cfg            *config.Config

	// now is swapped out in tests
	now func() time.Time
}

func NewReservationService(
	repo reservationsrepo.ReservationRepository,
	lockRepo reservationsrepo.ReservationLockRepository,
	propertyRepo repository.PropertyRepository,
	membershipRepo repository.MembershipRepository,
	validator *validator.ReservationValidator,
	events EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:           repo,
		lockRepo:       lockRepo,
		propertyRepo:   propertyRepo,
		membershipRepo: membershipRepo,
		validator:      validator,
		events:         events,
		cfg:            cfg,
		now:            time.Now,
	}
}

// Submit runs the full eligibility pipeline: stay rules, availability,
// balance, then the atomic confirm-and-debit. Checks short-circuit on
// the first failure so the caller always gets the specific rule that
// was violated.
func (s *reservationService) Submit(ctx context.Context, reservation *model.Reservation) error {
	s.applyDefaults(reservation)
	s.sanitize(reservation)
	if err := s.validate(reservation); err != nil {
		return err
	}

	membership, err := s.loadMembership(ctx, reservation.MembershipID)
	if err != nil {
		return err
	}
	if membership.PropertyID != reservation.PropertyID {
		return apperrors.Forbidden("Membership does not belong to this property")
	}

	property, err := s.loadProperty(ctx, reservation.PropertyID)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateStay(property.Policy, reservation.StartDate, reservation.EndDate); err != nil {
		return mapStayError(err)
	}

	if err := s.checkActiveReservationCap(ctx, property, membership); err != nil {
		return err
	}

	nights := availability.Nights(reservation.StartDate, reservation.EndDate)
	if !ledger.CanAfford(membership.CurrentBalanceDays, nights) {
		return insufficientBalance(nights, membership.CurrentBalanceDays)
	}

	// Serialize against concurrent submissions for the same calendar and
	// the same balance.
	propertyLock, err := s.acquireLock(ctx, propertyLockID(reservation.PropertyID))
	if err != nil {
		return err
	}
	defer s.releaseLock(ctx, propertyLock)

	membershipLock, err := s.acquireLock(ctx, membershipLockID(reservation.MembershipID))
	if err != nil {
		return err
	}
	defer s.releaseLock(ctx, membershipLock)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindActiveByPropertyAndWindow(sessCtx, reservation.PropertyID, reservation.StartDate, reservation.EndDate)
		if err != nil {
			return apperrors.Internal("Failed to check existing reservations", err)
		}

		if !availability.IsRangeFree(existing, reservation.StartDate, reservation.EndDate, s.now()) {
			return dateRangeUnavailable(existing, reservation.StartDate, reservation.EndDate)
		}

		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}

		if err := s.membershipRepo.DebitBalance(sessCtx, reservation.MembershipID, float64(nights)); err != nil {
			if errors.Is(err, propertieserrors.ErrBalanceConflict) {
				// A concurrent debit drained the balance between our
				// precheck and this write. The transaction rolls back.
				return apperrors.Conflict(fmt.Sprintf(
					"%s: balance changed while confirming, please retry",
					reservationserrors.ErrConcurrentModification.Error()))
			}
			return apperrors.Internal("Failed to debit balance", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to submit reservation",
			"property_id", reservation.PropertyID,
			"membership_id", reservation.MembershipID,
			"error", err,
		)
		return err
	}

	s.events.ReservationConfirmed(ctx, reservation)

	s.cfg.Log.Info("Reservation confirmed",
		"id", reservation.ID,
		"property_id", reservation.PropertyID,
		"membership_id", reservation.MembershipID,
		"start_date", reservation.StartDate,
		"end_date", reservation.EndDate,
		"nights", nights,
	)
	return nil
}

// Cancel marks a confirmed reservation cancelled. Before the property's
// cancellation deadline the debited nights are restored; at or past the
// deadline the nights are forfeit and a late_cancellation penalty is
// assessed against the membership.
func (s *reservationService) Cancel(ctx context.Context, reservationID, requesterMembershipID string) error {
	if reservationID == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if reservation.MembershipID != requesterMembershipID {
		return apperrors.Forbidden("Reservation belongs to another membership")
	}

	if reservation.Status == model.StatusCancelled {
		return apperrors.Conflict("Reservation is already cancelled")
	}
	if reservation.Status == model.StatusCompleted {
		return apperrors.Conflict("Completed reservations cannot be cancelled")
	}

	property, err := s.loadProperty(ctx, reservation.PropertyID)
	if err != nil {
		return err
	}

	daysUntilCheckin := availability.Nights(s.now(), reservation.StartDate)
	penalized := daysUntilCheckin < property.Policy.CancellationDeadlineDays
	nights := availability.Nights(reservation.StartDate, reservation.EndDate)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The transition is conditional on the stored status still being
		// cancellable, so when two cancels race only one of them lands
		// and credits. The loser sees ErrStatusConflict.
		cancellable := []string{model.StatusPending, model.StatusConfirmed}
		if err := s.repo.UpdateStatus(sessCtx, reservationID, cancellable, model.StatusCancelled, penalized); err != nil {
			if errors.Is(err, reservationserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Reservation", reservationID)
			}
			if errors.Is(err, reservationserrors.ErrStatusConflict) {
				return apperrors.Conflict("Reservation is already cancelled")
			}
			return apperrors.Internal("Failed to cancel reservation", err)
		}

		if !penalized {
			if err := s.membershipRepo.CreditBalance(sessCtx, reservation.MembershipID, float64(nights)); err != nil {
				return apperrors.Internal("Failed to restore balance", err)
			}
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", reservationID, "error", err)
		return err
	}

	reservation.Status = model.StatusCancelled
	reservation.Penalized = penalized
	s.events.ReservationCancelled(ctx, reservation, penalized)
	if penalized {
		s.events.PenaltyAssessed(ctx, reservation, model.PenaltyLateCancellation)
	}

	s.cfg.Log.Info("Reservation cancelled",
		"id", reservationID,
		"penalized", penalized,
		"days_until_checkin", daysUntilCheckin,
		"deadline_days", property.Policy.CancellationDeadlineDays,
	)
	return nil
}

// CheckIn records the member's arrival. Arrival is only accepted while
// the stay is underway, from the check-in day up to but not including
// the checkout day. A reservation still unchecked when the completion
// sweep passes its checkout day is treated as a no-show.
func (s *reservationService) CheckIn(ctx context.Context, reservationID, requesterMembershipID string) error {
	if reservationID == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if reservation.MembershipID != requesterMembershipID {
		return apperrors.Forbidden("Reservation belongs to another membership")
	}

	if reservation.Status != model.StatusConfirmed {
		return apperrors.Conflict("Only confirmed reservations can be checked in")
	}
	if reservation.CheckedIn {
		return nil
	}

	today := availability.DayStart(s.now())
	if today.Before(reservation.StartDate) {
		return apperrors.Conflict("Check-in opens on the reservation start date")
	}
	if !today.Before(reservation.EndDate) {
		return apperrors.Conflict("The stay has already ended")
	}

	if err := s.repo.SetCheckedIn(ctx, reservationID); err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", reservationID)
		}
		if errors.Is(err, reservationserrors.ErrStatusConflict) {
			return apperrors.Conflict("Only confirmed reservations can be checked in")
		}
		return apperrors.Internal("Failed to check in reservation", err)
	}

	s.cfg.Log.Info("Reservation checked in", "id", reservationID, "membership_id", requesterMembershipID)
	return nil
}

// CheckAvailability is the read-only pre-flight check used by clients
// before submitting. It takes no locks, so a true result can still race
// with a concurrent submission.
func (s *reservationService) CheckAvailability(ctx context.Context, propertyID string, start, end time.Time) (bool, error) {
	if propertyID == "" {
		return false, apperrors.InvalidInput("Property ID cannot be empty")
	}
	if !availability.DayStart(end).After(availability.DayStart(start)) {
		return false, apperrors.InvalidInput("End date must be after start date")
	}

	existing, err := s.repo.FindActiveByPropertyAndWindow(ctx, propertyID, start, end)
	if err != nil {
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return availability.IsRangeFree(existing, start, end, s.now()), nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID cannot be empty")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByProperty(ctx, propertyID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "property_id", propertyID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByProperty(ctx, propertyID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "property_id", propertyID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

// --- Helpers ---

// applyDefaults resets the lifecycle fields the engine owns. A submission
// always enters as a fresh confirmed reservation regardless of what the
// client put in those fields.
func (s *reservationService) applyDefaults(r *model.Reservation) {
	r.ID = ""
	r.Status = model.StatusConfirmed
	r.Penalized = false
	r.CheckedIn = false
	r.CreatedAt = time.Time{}
	r.StartDate = availability.DayStart(r.StartDate)
	r.EndDate = availability.DayStart(r.EndDate)
}

func (s *reservationService) sanitize(r *model.Reservation) {
	r.GuestLabel = sanitizer.SanitizeLabel(r.GuestLabel)
	r.GuestCount = sanitizer.ClampGuestCount(r.GuestCount)
}

func (s *reservationService) validate(r *model.Reservation) error {
	if err := s.validator.Validate(r); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) loadMembership(ctx context.Context, id string) (*model.Membership, error) {
	membership, err := s.membershipRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrMembershipNotFound) {
			return nil, apperrors.NotFoundWithID("Membership", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidMembershipID) {
			return nil, apperrors.InvalidInput("Invalid membership ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve membership", err)
	}
	return membership, nil
}

func (s *reservationService) loadProperty(ctx context.Context, id string) (*model.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}
	return property, nil
}

func (s *reservationService) checkActiveReservationCap(ctx context.Context, property *model.Property, membership *model.Membership) error {
	maxActive := property.Policy.MaxActiveReservationsPerMember
	if maxActive == nil {
		return nil
	}

	active, err := s.repo.CountActiveByMembership(ctx, membership.ID)
	if err != nil {
		return apperrors.Internal("Failed to count active reservations", err)
	}
	if active >= int64(*maxActive) {
		return apperrors.Conflict(fmt.Sprintf(
			"Membership already holds %d active reservation(s), the property allows at most %d", active, *maxActive))
	}
	return nil
}

func mapStayError(err error) error {
	switch {
	case errors.Is(err, reservationserrors.ErrInvalidRange):
		return apperrors.Validation(err.Error(), map[string]any{"reason": "invalid_range"})
	case errors.Is(err, reservationserrors.ErrStayTooShort):
		return apperrors.Validation(err.Error(), map[string]any{"reason": "stay_too_short"})
	case errors.Is(err, reservationserrors.ErrStayTooLong):
		return apperrors.Validation(err.Error(), map[string]any{"reason": "stay_too_long"})
	default:
		return apperrors.Validation(err.Error(), nil)
	}
}

// insufficientBalance builds the rejection for an overdrawn request.
// The message carries both the requested nights and the floored balance
// so the member sees exactly how far short they are.
func insufficientBalance(nights int, balanceDays float64) error {
	return apperrors.Conflict(fmt.Sprintf(
		"%s: %d night(s) requested, %d day(s) available",
		reservationserrors.ErrInsufficientBalance.Error(),
		nights,
		ledger.DisplayDays(balanceDays),
	))
}

func dateRangeUnavailable(existing []*model.Reservation, start, end time.Time) error {
	if conflict := availability.FindConflict(existing, start, end); conflict != nil {
		return apperrors.Conflict(fmt.Sprintf(
			"%s: overlaps reservation [%s, %s)",
			reservationserrors.ErrDateRangeUnavailable.Error(),
			conflict.StartDate.Format(time.DateOnly),
			conflict.EndDate.Format(time.DateOnly),
		))
	}
	return apperrors.Conflict(fmt.Sprintf(
		"%s: start date is in the past",
		reservationserrors.ErrDateRangeUnavailable.Error(),
	))
}

func propertyLockID(propertyID string) string {
	return fmt.Sprintf("reservation_lock_property_%s", propertyID)
}

func membershipLockID(membershipID string) string {
	return fmt.Sprintf("reservation_lock_membership_%s", membershipID)
}

// acquireLock creates an advisory lock document. A duplicate key means
// another submission holds the lock right now.
func (s *reservationService) acquireLock(ctx context.Context, lockID string) (string, error) {
	lock := &model.ReservationLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(s.cfg.LockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("These dates are currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire reservation lock", err)
	}

	return lockID, nil
}

func (s *reservationService) releaseLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", err)
	}
}
