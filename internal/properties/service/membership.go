package service

import (
	"context"
	"errors"
	"sync"

	propertieserrors "qota/internal/properties/errors"
	"qota/internal/properties/repository"
	"qota/internal/properties/validator"
	"qota/internal/reservations/ledger"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
	"qota/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// DaysPerFraction is the yearly usage-day credit one ownership fraction
// grants. 52 fractions of 7 days cover the full year.
const DaysPerFraction = 7

// MembershipBalance is the display form of a membership's usage-day
// credit. BalanceDays keeps the fractional value the engine computes
// with; DisplayDays is the floored number members see.
type MembershipBalance struct {
	MembershipID string  `json:"membership_id"`
	BalanceDays  float64 `json:"balance_days"`
	DisplayDays  int     `json:"display_days"`
}

type MembershipService interface {
	Create(ctx context.Context, membership *model.Membership) error
	GetByID(ctx context.Context, id string) (*model.Membership, error)
	GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Membership, int64, error)
	GetBalance(ctx context.Context, id string) (*MembershipBalance, error)
	Update(ctx context.Context, id string, updates *model.MembershipUpdate) error
	Delete(ctx context.Context, id string) error
}

type membershipService struct {
	repo         repository.MembershipRepository
	propertyRepo repository.PropertyRepository
	validator    *validator.MembershipValidator
	cfg          *config.Config
}

func NewMembershipService(
	repo repository.MembershipRepository,
	propertyRepo repository.PropertyRepository,
	validator *validator.MembershipValidator,
	cfg *config.Config,
) MembershipService {
	return &membershipService{
		repo:         repo,
		propertyRepo: propertyRepo,
		validator:    validator,
		cfg:          cfg,
	}
}

func (s *membershipService) Create(ctx context.Context, membership *model.Membership) error {
	s.sanitize(membership)
	s.applyDefaults(membership)

	if err := s.validator.Validate(membership); err != nil {
		s.cfg.Log.Warn("Membership validation failed",
			"member_phone", membership.MemberPhone,
			"error", err,
		)
		return apperrors.Validation("Membership validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.propertyRepo.FindByID(ctx, membership.PropertyID); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", membership.PropertyID)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid property ID format")
		}
		return apperrors.Internal("Failed to verify property", err)
	}

	if err := s.repo.Create(ctx, membership); err != nil {
		// Unique index on property_id + member_phone
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("This phone number already holds a membership for this property")
		}
		s.cfg.Log.Error("Failed to create membership",
			"property_id", membership.PropertyID,
			"member_phone", membership.MemberPhone,
			"error", err,
		)
		return apperrors.Internal("Failed to create membership", err)
	}

	s.cfg.Log.Info("Membership created successfully",
		"id", membership.ID,
		"property_id", membership.PropertyID,
		"fraction_count", membership.FractionCount,
		"balance_days", membership.CurrentBalanceDays,
	)
	return nil
}

func (s *membershipService) GetByID(ctx context.Context, id string) (*model.Membership, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Membership ID cannot be empty")
	}

	membership, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrMembershipNotFound) {
			return nil, apperrors.NotFoundWithID("Membership", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidMembershipID) {
			return nil, apperrors.InvalidInput("Invalid membership ID format")
		}
		s.cfg.Log.Error("Failed to get membership by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve membership", err)
	}

	return membership, nil
}

func (s *membershipService) GetByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Membership, int64, error) {
	if propertyID == "" {
		return nil, 0, apperrors.InvalidInput("Property ID cannot be empty")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var memberships []*model.Membership
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, errCount = s.repo.CountByProperty(ctx, propertyID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count memberships", "property_id", propertyID, "error", errCount)
			errCount = apperrors.Internal("Failed to count memberships", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		memberships, errFind = s.repo.FindByProperty(ctx, propertyID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list memberships", "property_id", propertyID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve memberships", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return memberships, count, nil
}

func (s *membershipService) GetBalance(ctx context.Context, id string) (*MembershipBalance, error) {
	membership, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &MembershipBalance{
		MembershipID: membership.ID,
		BalanceDays:  membership.CurrentBalanceDays,
		DisplayDays:  ledger.DisplayDays(membership.CurrentBalanceDays),
	}, nil
}

func (s *membershipService) Update(ctx context.Context, id string, updates *model.MembershipUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Membership ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Membership validation failed", "id", id, "error", err)
		return apperrors.Validation("Membership validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update membership", "id", id, "error", err)
		return apperrors.Internal("Failed to update membership", err)
	}

	s.cfg.Log.Info("Membership updated successfully", "id", id)
	return nil
}

func (s *membershipService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Membership ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, propertieserrors.ErrMembershipNotFound) {
			return apperrors.NotFoundWithID("Membership", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidMembershipID) {
			return apperrors.InvalidInput("Invalid membership ID format")
		}
		s.cfg.Log.Error("Failed to delete membership", "id", id, "error", err)
		return apperrors.Internal("Failed to delete membership", err)
	}

	s.cfg.Log.Info("Membership deleted successfully", "id", id)
	return nil
}

func (s *membershipService) sanitize(membership *model.Membership) {
	membership.MemberName = sanitizer.TrimAndNormalize(membership.MemberName)
	membership.MemberPhone = sanitizer.SanitizePhone(membership.MemberPhone)
}

func (s *membershipService) applyDefaults(membership *model.Membership) {
	if membership.Role == "" {
		membership.Role = model.RoleCommon
	}
	if membership.CurrentBalanceDays == 0 {
		membership.CurrentBalanceDays = float64(membership.FractionCount * DaysPerFraction)
	}
}

func (s *membershipService) sanitizeUpdate(updates *model.MembershipUpdate) {
	if updates.MemberName != "" {
		updates.MemberName = sanitizer.TrimAndNormalize(updates.MemberName)
	}
	if updates.MemberPhone != "" {
		updates.MemberPhone = sanitizer.SanitizePhone(updates.MemberPhone)
	}
}

// mergeUpdates applies the allowed field updates. Balance never comes
// through here; only reservation debits and credits move it.
func (s *membershipService) mergeUpdates(existing *model.Membership, updates *model.MembershipUpdate) *model.Membership {
	merged := *existing

	if updates.MemberName != "" {
		merged.MemberName = updates.MemberName
	}
	if updates.MemberPhone != "" {
		merged.MemberPhone = updates.MemberPhone
	}
	if updates.FractionCount != nil {
		merged.FractionCount = *updates.FractionCount
	}
	if updates.Role != "" {
		merged.Role = updates.Role
	}

	merged.ID = existing.ID
	merged.PropertyID = existing.PropertyID
	merged.CurrentBalanceDays = existing.CurrentBalanceDays
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
