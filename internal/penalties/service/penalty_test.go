package service

import (
	"context"
	"testing"
	"time"

	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"qota/pkg/logger"
	"qota/pkg/model"
)

type mockPenaltyRepository struct {
	createFunc func(ctx context.Context, p *model.Penalty) error
	existsFunc func(ctx context.Context, reservationID, reason string) (bool, error)

	created []*model.Penalty
}

func (m *mockPenaltyRepository) Create(ctx context.Context, p *model.Penalty) error {
	m.created = append(m.created, p)
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = "507f1f77bcf86cd799439021"
	return nil
}

func (m *mockPenaltyRepository) FindByID(ctx context.Context, id string) (*model.Penalty, error) {
	return nil, nil
}

func (m *mockPenaltyRepository) FindByMembership(ctx context.Context, membershipID string, limit int, offset int64) ([]*model.Penalty, error) {
	return []*model.Penalty{}, nil
}

func (m *mockPenaltyRepository) CountByMembership(ctx context.Context, membershipID string) (int64, error) {
	return 0, nil
}

func (m *mockPenaltyRepository) ExistsForReservation(ctx context.Context, reservationID, reason string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, reservationID, reason)
	}
	return false, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func testPenalty() *model.Penalty {
	return &model.Penalty{
		MembershipID:  "507f1f77bcf86cd799439012",
		ReservationID: "507f1f77bcf86cd799439013",
		Reason:        model.PenaltyLateCancellation,
	}
}

func TestRecordPersistsPenalty(t *testing.T) {
	repo := &mockPenaltyRepository{}
	svc := &penaltyService{repo: repo, cfg: testConfig()}

	if err := svc.Record(context.Background(), testPenalty()); err != nil {
		t.Fatalf("Record() error = %v, want nil", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created = %d penalties, want 1", len(repo.created))
	}
}

func TestRecordSkipsDuplicate(t *testing.T) {
	repo := &mockPenaltyRepository{
		existsFunc: func(ctx context.Context, reservationID, reason string) (bool, error) {
			return true, nil
		},
	}
	svc := &penaltyService{repo: repo, cfg: testConfig()}

	if err := svc.Record(context.Background(), testPenalty()); err != nil {
		t.Fatalf("Record() error = %v, want duplicate to be acknowledged silently", err)
	}

	if len(repo.created) != 0 {
		t.Errorf("created = %d penalties, want none for a redelivered event", len(repo.created))
	}
}

func TestRecordRejectsUnknownReason(t *testing.T) {
	repo := &mockPenaltyRepository{}
	svc := &penaltyService{repo: repo, cfg: testConfig()}

	penalty := testPenalty()
	penalty.Reason = "rain"
	err := svc.Record(context.Background(), penalty)
	if err == nil {
		t.Fatal("Record() error = nil, want unknown reason rejection")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeInvalidInput)
	}
}

func TestRecordRejectsMissingReferences(t *testing.T) {
	svc := &penaltyService{repo: &mockPenaltyRepository{}, cfg: testConfig()}

	penalty := testPenalty()
	penalty.MembershipID = ""
	if err := svc.Record(context.Background(), penalty); err == nil {
		t.Fatal("Record() error = nil, want missing membership rejection")
	}
}
