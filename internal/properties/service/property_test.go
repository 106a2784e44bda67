package service

import (
	"context"
	"strings"
	"testing"
	"time"

	propertieserrors "qota/internal/properties/errors"
	"qota/internal/properties/validator"
	"qota/pkg/config"
	mongotx "qota/pkg/db/mongo"
	apperrors "qota/pkg/errors"
	"qota/pkg/logger"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockPropertyRepository struct {
	createFunc   func(ctx context.Context, p *model.Property) error
	findByIDFunc func(ctx context.Context, id string) (*model.Property, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Property, error)
	updateFunc   func(ctx context.Context, id string, p *model.Property) (*mongo.UpdateResult, error)
	deleteFunc   func(ctx context.Context, id string) error
	countFunc    func(ctx context.Context) (int64, error)
}

func (m *mockPropertyRepository) Create(ctx context.Context, p *model.Property) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, propertieserrors.ErrNotFound
}

func (m *mockPropertyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Property{}, nil
}

func (m *mockPropertyRepository) Update(ctx context.Context, id string, p *model.Property) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, p)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockPropertyRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockPropertyRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockPropertyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:                     5 * time.Second,
		WriteTimeout:                    5 * time.Second,
		DefaultMinStayDays:              2,
		DefaultMaxStayDays:              14,
		DefaultCancellationDeadlineDays: 7,
		DefaultCheckinTime:              "15:00",
		DefaultCheckoutTime:             "11:00",
	}
}

func newPropertyService(repo *mockPropertyRepository) *propertyService {
	cfg := testConfig()
	return &propertyService{
		repo:      repo,
		validator: validator.NewPropertyValidator(cfg.Log),
		cfg:       cfg,
	}
}

func TestPropertyCreateAppliesPolicyDefaults(t *testing.T) {
	svc := newPropertyService(&mockPropertyRepository{})

	property := &model.Property{
		Name:    "Casa do Mar",
		Address: "Rua das Flores 12, Lisboa",
	}
	if err := svc.Create(context.Background(), property); err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}

	if property.Policy.MinStayDays != 2 {
		t.Errorf("MinStayDays = %d, want default 2", property.Policy.MinStayDays)
	}
	if property.Policy.MaxStayDays != 14 {
		t.Errorf("MaxStayDays = %d, want default 14", property.Policy.MaxStayDays)
	}
	if property.Policy.CancellationDeadlineDays != 7 {
		t.Errorf("CancellationDeadlineDays = %d, want default 7", property.Policy.CancellationDeadlineDays)
	}
	if property.Policy.CheckinTime != "15:00" || property.Policy.CheckoutTime != "11:00" {
		t.Errorf("check-in/out = %q/%q, want defaults", property.Policy.CheckinTime, property.Policy.CheckoutTime)
	}
}

func TestPropertyCreateKeepsExplicitPolicy(t *testing.T) {
	svc := newPropertyService(&mockPropertyRepository{})

	property := &model.Property{
		Name:    "Casa do Mar",
		Address: "Rua das Flores 12, Lisboa",
		Policy: model.PropertyPolicy{
			MinStayDays:              3,
			MaxStayDays:              21,
			CancellationDeadlineDays: 14,
		},
	}
	if err := svc.Create(context.Background(), property); err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}

	if property.Policy.MinStayDays != 3 || property.Policy.MaxStayDays != 21 {
		t.Errorf("stay bounds = %d/%d, want explicit 3/21", property.Policy.MinStayDays, property.Policy.MaxStayDays)
	}
}

func TestPropertyCreateRejectsInvalidPolicy(t *testing.T) {
	svc := newPropertyService(&mockPropertyRepository{})

	property := &model.Property{
		Name:    "Casa do Mar",
		Address: "Rua das Flores 12, Lisboa",
		Policy: model.PropertyPolicy{
			MinStayDays: 10,
			MaxStayDays: 5,
		},
	}
	err := svc.Create(context.Background(), property)
	if err == nil {
		t.Fatal("Create() error = nil, want validation failure for max < min")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeValidation {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeValidation)
	}
}

func TestPropertyCreateDetectsDuplicate(t *testing.T) {
	repo := &mockPropertyRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
			return []*model.Property{
				{
					ID:      "507f1f77bcf86cd799439011",
					Name:    "casa do mar",
					Address: "Rua das Flores, 12 - Lisboa",
					Policy:  model.PropertyPolicy{MinStayDays: 2, MaxStayDays: 14},
				},
			}, nil
		},
	}
	svc := newPropertyService(repo)

	property := &model.Property{
		Name:    "Casa do Mar",
		Address: "Rua das Flores 12 Lisboa",
	}
	err := svc.Create(context.Background(), property)
	if err == nil {
		t.Fatal("Create() error = nil, want duplicate conflict")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
	if !strings.Contains(appErr.Message, "507f1f77bcf86cd799439011") {
		t.Errorf("message = %q, want it to name the existing property", appErr.Message)
	}
}

func TestPropertyUpdateMergesFields(t *testing.T) {
	existing := &model.Property{
		ID:      "507f1f77bcf86cd799439011",
		Name:    "Casa do Mar",
		Address: "Rua das Flores 12, Lisboa",
		Policy:  model.PropertyPolicy{MinStayDays: 2, MaxStayDays: 14, CancellationDeadlineDays: 7},
	}

	var updated *model.Property
	repo := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, p *model.Property) (*mongo.UpdateResult, error) {
			updated = p
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newPropertyService(repo)

	err := svc.Update(context.Background(), existing.ID, &model.PropertyUpdate{Name: "Casa da Serra"})
	if err != nil {
		t.Fatalf("Update() error = %v, want nil", err)
	}

	if updated.Name != "Casa da Serra" {
		t.Errorf("name = %q, want updated name", updated.Name)
	}
	if updated.Address != existing.Address {
		t.Errorf("address = %q, want unchanged", updated.Address)
	}
	if updated.Policy.MinStayDays != 2 {
		t.Errorf("policy min stay = %d, want unchanged 2", updated.Policy.MinStayDays)
	}
}

func TestPropertyGetByIDNotFound(t *testing.T) {
	svc := newPropertyService(&mockPropertyRepository{})

	_, err := svc.GetByID(context.Background(), "507f1f77bcf86cd799439099")
	if err == nil {
		t.Fatal("GetByID() error = nil, want not found")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeNotFound)
	}
}

func TestPropertyGetByIDEmpty(t *testing.T) {
	svc := newPropertyService(&mockPropertyRepository{})

	_, err := svc.GetByID(context.Background(), "")
	if err == nil {
		t.Fatal("GetByID() error = nil, want invalid input")
	}
}
