package service

import (
	"context"
	"errors"
	"sync"

	penaltieserrors "qota/internal/penalties/errors"
	"qota/internal/penalties/repository"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
)

type PenaltyService interface {
	Record(ctx context.Context, penalty *model.Penalty) error
	GetByID(ctx context.Context, id string) (*model.Penalty, error)
	GetByMembership(ctx context.Context, membershipID string, limit int, offset int64) ([]*model.Penalty, int64, error)
}

type penaltyService struct {
	repo repository.PenaltyRepository
	cfg  *config.Config
}

func NewPenaltyService(repo repository.PenaltyRepository, cfg *config.Config) PenaltyService {
	return &penaltyService{
		repo: repo,
		cfg:  cfg,
	}
}

// Record persists a penalty unless one already exists for the same
// reservation and reason. Kafka redelivers on consumer restart, so the
// write has to tolerate duplicates.
func (s *penaltyService) Record(ctx context.Context, penalty *model.Penalty) error {
	if penalty.MembershipID == "" || penalty.ReservationID == "" {
		return apperrors.InvalidInput("Penalty must reference a membership and a reservation")
	}
	if penalty.Reason != model.PenaltyLateCancellation && penalty.Reason != model.PenaltyNoShow {
		return apperrors.InvalidInput("Unknown penalty reason: " + penalty.Reason)
	}

	exists, err := s.repo.ExistsForReservation(ctx, penalty.ReservationID, penalty.Reason)
	if err != nil {
		return apperrors.Internal("Failed to check for existing penalty", err)
	}
	if exists {
		s.cfg.Log.Info("Penalty already recorded, skipping",
			"reservation_id", penalty.ReservationID,
			"reason", penalty.Reason,
		)
		return nil
	}

	if err := s.repo.Create(ctx, penalty); err != nil {
		s.cfg.Log.Error("Failed to record penalty",
			"membership_id", penalty.MembershipID,
			"reservation_id", penalty.ReservationID,
			"error", err,
		)
		return apperrors.Internal("Failed to record penalty", err)
	}

	s.cfg.Log.Info("Penalty recorded",
		"id", penalty.ID,
		"membership_id", penalty.MembershipID,
		"reservation_id", penalty.ReservationID,
		"reason", penalty.Reason,
	)
	return nil
}

func (s *penaltyService) GetByID(ctx context.Context, id string) (*model.Penalty, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Penalty ID cannot be empty")
	}

	penalty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, penaltieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Penalty", id)
		}
		if errors.Is(err, penaltieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid penalty ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve penalty", err)
	}

	return penalty, nil
}

func (s *penaltyService) GetByMembership(ctx context.Context, membershipID string, limit int, offset int64) ([]*model.Penalty, int64, error) {
	if membershipID == "" {
		return nil, 0, apperrors.InvalidInput("Membership ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var penalties []*model.Penalty
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByMembership(ctx, membershipID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count penalties", "membership_id", membershipID, "error", errCount)
			errCount = apperrors.Internal("Failed to count penalties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		penalties, errFind = s.repo.FindByMembership(ctx, membershipID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list penalties", "membership_id", membershipID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve penalties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return penalties, count, nil
}
