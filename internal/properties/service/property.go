package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	propertieserrors "qota/internal/properties/errors"
	"qota/internal/properties/repository"
	"qota/internal/properties/validator"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/model"
	"qota/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type PropertyService interface {
	Create(ctx context.Context, property *model.Property) error
	GetByID(ctx context.Context, id string) (*model.Property, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, id string, updates *model.PropertyUpdate) error
	Delete(ctx context.Context, id string) error
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	validator *validator.PropertyValidator,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, property *model.Property) error {
	s.sanitize(property)
	s.applyPolicyDefaults(property)

	if err := s.validator.Validate(property); err != nil {
		s.cfg.Log.Warn("Property validation failed",
			"name", property.Name,
			"error", err,
		)
		return apperrors.Validation("Property validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindAll(sessCtx, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}

		for _, existingProperty := range existing {
			if s.isDuplicate(property, existingProperty) {
				return apperrors.Conflict(fmt.Sprintf(
					"Property with the same name and address already exists (id: %s)",
					existingProperty.ID,
				))
			}
		}

		if err := s.repo.Create(sessCtx, property); err != nil {
			return fmt.Errorf("failed to create property: %w", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create property",
			"name", property.Name,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Property created successfully",
		"id", property.ID,
		"name", property.Name,
		"min_stay_days", property.Policy.MinStayDays,
		"max_stay_days", property.Policy.MaxStayDays,
	)
	return nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		s.cfg.Log.Error("Failed to get property by ID", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve property", err)
	}

	return property, nil
}

func (s *propertyService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count properties", "error", errCount)
			errCount = apperrors.Internal("Failed to count properties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		properties, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to get all properties", "limit", limit, "offset", offset, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve properties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return properties, count, nil
}

func (s *propertyService) Update(ctx context.Context, id string, updates *model.PropertyUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Property ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Property validation failed", "id", id, "error", err)
		return apperrors.Validation("Property validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return apperrors.Internal("Failed to update property", err)
	}

	s.cfg.Log.Info("Property updated successfully", "id", id, "name", merged.Name)
	return nil
}

func (s *propertyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Property ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid property ID format")
		}
		s.cfg.Log.Error("Failed to delete property", "id", id, "error", err)
		return apperrors.Internal("Failed to delete property", err)
	}

	s.cfg.Log.Info("Property deleted successfully", "id", id)
	return nil
}

func (s *propertyService) sanitize(property *model.Property) {
	property.Name = sanitizer.TrimAndNormalize(property.Name)
	property.Address = sanitizer.TrimAndNormalize(property.Address)
	property.TimeZone = sanitizer.TrimAndNormalize(property.TimeZone)
}

func (s *propertyService) sanitizeUpdate(updates *model.PropertyUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.TrimAndNormalize(updates.Name)
	}
	if updates.Address != "" {
		updates.Address = sanitizer.TrimAndNormalize(updates.Address)
	}
	if updates.TimeZone != "" {
		updates.TimeZone = sanitizer.TrimAndNormalize(updates.TimeZone)
	}
}

// applyPolicyDefaults fills in the policy fields a new property leaves
// at zero. A property that wants no cancellation penalty window sets
// the deadline explicitly after creation.
func (s *propertyService) applyPolicyDefaults(property *model.Property) {
	if property.Policy.MinStayDays == 0 {
		property.Policy.MinStayDays = s.cfg.DefaultMinStayDays
	}
	if property.Policy.MaxStayDays == 0 {
		property.Policy.MaxStayDays = s.cfg.DefaultMaxStayDays
	}
	if property.Policy.CancellationDeadlineDays == 0 {
		property.Policy.CancellationDeadlineDays = s.cfg.DefaultCancellationDeadlineDays
	}
	if property.Policy.CheckinTime == "" {
		property.Policy.CheckinTime = s.cfg.DefaultCheckinTime
	}
	if property.Policy.CheckoutTime == "" {
		property.Policy.CheckoutTime = s.cfg.DefaultCheckoutTime
	}
}

func (s *propertyService) mergeUpdates(existing *model.Property, updates *model.PropertyUpdate) *model.Property {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Address != "" {
		merged.Address = updates.Address
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}
	if updates.Policy != nil {
		merged.Policy = *updates.Policy
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}

// isDuplicate compares the aggressively normalized name and address so
// that casing, punctuation and accents do not hide a duplicate.
func (s *propertyService) isDuplicate(newProperty, existingProperty *model.Property) bool {
	if sanitizer.SanitizeNameOrAddress(newProperty.Name) != sanitizer.SanitizeNameOrAddress(existingProperty.Name) {
		return false
	}
	return sanitizer.SanitizeNameOrAddress(newProperty.Address) == sanitizer.SanitizeNameOrAddress(existingProperty.Address)
}
