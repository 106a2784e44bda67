package service

import (
	"context"
	"strings"
	"testing"
	"time"

	propertieserrors "qota/internal/properties/errors"
	reservationserrors "qota/internal/reservations/errors"
	"qota/internal/reservations/validator"
	"qota/pkg/config"
	mongotx "qota/pkg/db/mongo"
	apperrors "qota/pkg/errors"
	"qota/pkg/logger"
	"qota/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testPropertyID   = "507f1f77bcf86cd799439011"
	testMembershipID = "507f1f77bcf86cd799439012"
	testReservation  = "507f1f77bcf86cd799439013"
)

// Mock repositories for testing

type mockReservationRepository struct {
	createFunc           func(ctx context.Context, r *model.Reservation) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Reservation, error)
	findActiveFunc       func(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Reservation, error)
	countActiveFunc      func(ctx context.Context, membershipID string) (int64, error)
	updateStatusFunc     func(ctx context.Context, id string, from []string, to string, penalized bool) error
	setCheckedInFunc     func(ctx context.Context, id string) error
	findElapsedFunc      func(ctx context.Context, before time.Time) ([]*model.Reservation, error)
	findByPropertyFunc   func(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Reservation, error)
	countByPropertyFunc  func(ctx context.Context, propertyID string) (int64, error)
	executeTransactionFn func(ctx context.Context, fn mongotx.TransactionFunc) error

	checkedIn []string
}

func (m *mockReservationRepository) Create(ctx context.Context, r *model.Reservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	r.ID = testReservation
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockReservationRepository) FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findByPropertyFunc != nil {
		return m.findByPropertyFunc(ctx, propertyID, limit, offset)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	if m.countByPropertyFunc != nil {
		return m.countByPropertyFunc(ctx, propertyID)
	}
	return 0, nil
}

func (m *mockReservationRepository) FindActiveByPropertyAndWindow(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Reservation, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, propertyID, start, end)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) CountActiveByMembership(ctx context.Context, membershipID string) (int64, error) {
	if m.countActiveFunc != nil {
		return m.countActiveFunc(ctx, membershipID)
	}
	return 0, nil
}

func (m *mockReservationRepository) UpdateStatus(ctx context.Context, id string, from []string, to string, penalized bool) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to, penalized)
	}
	return nil
}

func (m *mockReservationRepository) SetCheckedIn(ctx context.Context, id string) error {
	m.checkedIn = append(m.checkedIn, id)
	if m.setCheckedInFunc != nil {
		return m.setCheckedInFunc(ctx, id)
	}
	return nil
}

func (m *mockReservationRepository) FindElapsed(ctx context.Context, before time.Time) ([]*model.Reservation, error) {
	if m.findElapsedFunc != nil {
		return m.findElapsedFunc(ctx, before)
	}
	return []*model.Reservation{}, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFn != nil {
		return m.executeTransactionFn(ctx, fn)
	}
	return fn(nil)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	deleted    []string
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockPropertyRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Property, error)
}

func (m *mockPropertyRepository) Create(ctx context.Context, p *model.Property) error { return nil }
func (m *mockPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}
func (m *mockPropertyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
	return []*model.Property{}, nil
}
func (m *mockPropertyRepository) Update(ctx context.Context, id string, p *model.Property) (*mongo.UpdateResult, error) {
	return nil, nil
}
func (m *mockPropertyRepository) Delete(ctx context.Context, id string) error { return nil }
func (m *mockPropertyRepository) Count(ctx context.Context) (int64, error)    { return 0, nil }
func (m *mockPropertyRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockMembershipRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Membership, error)
	debitFunc    func(ctx context.Context, id string, days float64) error
	creditFunc   func(ctx context.Context, id string, days float64) error

	debits  []float64
	credits []float64
}

func (m *mockMembershipRepository) Create(ctx context.Context, mem *model.Membership) error {
	return nil
}
func (m *mockMembershipRepository) FindByID(ctx context.Context, id string) (*model.Membership, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}
func (m *mockMembershipRepository) FindByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Membership, error) {
	return []*model.Membership{}, nil
}
func (m *mockMembershipRepository) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	return 0, nil
}
func (m *mockMembershipRepository) Update(ctx context.Context, id string, mem *model.Membership) (*mongo.UpdateResult, error) {
	return nil, nil
}
func (m *mockMembershipRepository) Delete(ctx context.Context, id string) error { return nil }

func (m *mockMembershipRepository) DebitBalance(ctx context.Context, id string, days float64) error {
	m.debits = append(m.debits, days)
	if m.debitFunc != nil {
		return m.debitFunc(ctx, id, days)
	}
	return nil
}

func (m *mockMembershipRepository) CreditBalance(ctx context.Context, id string, days float64) error {
	m.credits = append(m.credits, days)
	if m.creditFunc != nil {
		return m.creditFunc(ctx, id, days)
	}
	return nil
}

type mockEventPublisher struct {
	confirmed []string
	cancelled []string
	penalties []string
}

func (m *mockEventPublisher) ReservationConfirmed(ctx context.Context, r *model.Reservation) {
	m.confirmed = append(m.confirmed, r.ID)
}

func (m *mockEventPublisher) ReservationCancelled(ctx context.Context, r *model.Reservation, penalized bool) {
	m.cancelled = append(m.cancelled, r.ID)
}

func (m *mockEventPublisher) PenaltyAssessed(ctx context.Context, r *model.Reservation, reason string) {
	m.penalties = append(m.penalties, reason)
}

// Test fixtures

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		LockTTL:      10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func testProperty() *model.Property {
	return &model.Property{
		ID:      testPropertyID,
		Name:    "Casa do Mar",
		Address: "Rua das Flores 12",
		Policy: model.PropertyPolicy{
			MinStayDays:              2,
			MaxStayDays:              14,
			CancellationDeadlineDays: 7,
		},
	}
}

func testMembership(balance float64) *model.Membership {
	return &model.Membership{
		ID:                 testMembershipID,
		PropertyID:         testPropertyID,
		MemberName:         "Ana Silva",
		MemberPhone:        "+351912345678",
		FractionCount:      4,
		CurrentBalanceDays: balance,
		Role:               model.RoleCommon,
	}
}

type serviceFixture struct {
	svc            *reservationService
	repo           *mockReservationRepository
	lockRepo       *mockLockRepository
	propertyRepo   *mockPropertyRepository
	membershipRepo *mockMembershipRepository
	events         *mockEventPublisher
}

func newFixture(today time.Time, balance float64) *serviceFixture {
	cfg := testConfig()
	f := &serviceFixture{
		repo:     &mockReservationRepository{},
		lockRepo: &mockLockRepository{},
		propertyRepo: &mockPropertyRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
				return testProperty(), nil
			},
		},
		membershipRepo: &mockMembershipRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Membership, error) {
				return testMembership(balance), nil
			},
		},
		events: &mockEventPublisher{},
	}
	f.svc = &reservationService{
		repo:           f.repo,
		lockRepo:       f.lockRepo,
		propertyRepo:   f.propertyRepo,
		membershipRepo: f.membershipRepo,
		validator:      validator.NewReservationValidator(cfg.Log),
		events:         f.events,
		cfg:            cfg,
		now:            func() time.Time { return today },
	}
	return f
}

func candidate(start, end time.Time) *model.Reservation {
	return &model.Reservation{
		PropertyID:   testPropertyID,
		MembershipID: testMembershipID,
		StartDate:    start,
		EndDate:      end,
		GuestCount:   2,
	}
}

// Submit

func TestSubmitConfirmsAndDebits(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)

	r := candidate(date(2025, 1, 10), date(2025, 1, 14))
	if err := f.svc.Submit(context.Background(), r); err != nil {
		t.Fatalf("Submit() error = %v, want nil", err)
	}

	if r.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want %q", r.Status, model.StatusConfirmed)
	}
	if len(f.membershipRepo.debits) != 1 || f.membershipRepo.debits[0] != 4 {
		t.Errorf("debits = %v, want one debit of 4", f.membershipRepo.debits)
	}
	if len(f.events.confirmed) != 1 {
		t.Errorf("confirmed events = %d, want 1", len(f.events.confirmed))
	}
	// Both advisory locks released
	if len(f.lockRepo.deleted) != 2 {
		t.Errorf("released locks = %v, want property and membership locks", f.lockRepo.deleted)
	}
}

func TestSubmitStayTooShort(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)

	// 1 night against a 2-night minimum
	r := candidate(date(2025, 1, 10), date(2025, 1, 11))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want stay-too-short rejection")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeValidation)
	}
	if !strings.Contains(appErr.Message, "minimum is 2") {
		t.Errorf("message = %q, want it to name the 2-night minimum", appErr.Message)
	}
	if len(f.membershipRepo.debits) != 0 {
		t.Errorf("debits = %v, want none", f.membershipRepo.debits)
	}
}

func TestSubmitStayTooLong(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 30)

	// 15 nights against a 14-night maximum
	r := candidate(date(2025, 1, 10), date(2025, 1, 25))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want stay-too-long rejection")
	}
	if !strings.Contains(apperrors.AsAppError(err).Message, "maximum is 14") {
		t.Errorf("message = %q, want it to name the 14-night maximum", err.Error())
	}
}

func TestSubmitInsufficientBalance(t *testing.T) {
	// 6 nights against a balance of 5 days
	f := newFixture(date(2025, 1, 1), 5)

	r := candidate(date(2025, 1, 10), date(2025, 1, 16))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want insufficient-balance rejection")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
	if !strings.Contains(appErr.Message, "6") || !strings.Contains(appErr.Message, "5") {
		t.Errorf("message = %q, want it to reference 6 requested and 5 available", appErr.Message)
	}
	if len(f.membershipRepo.debits) != 0 {
		t.Errorf("debits = %v, want none", f.membershipRepo.debits)
	}
}

func TestSubmitFractionalBalanceFloorsInMessage(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 5.9)

	r := candidate(date(2025, 1, 10), date(2025, 1, 16))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want insufficient-balance rejection")
	}
	// Display floors 5.9 to 5, arithmetic still compared against 5.9
	if !strings.Contains(apperrors.AsAppError(err).Message, "5 day(s) available") {
		t.Errorf("message = %q, want floored balance 5", err.Error())
	}
}

func TestSubmitCheckoutDayReusedAsCheckin(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findActiveFunc = func(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{
			{
				ID:           "existing",
				PropertyID:   testPropertyID,
				MembershipID: testMembershipID,
				StartDate:    date(2025, 1, 10),
				EndDate:      date(2025, 1, 15),
				Status:       model.StatusConfirmed,
			},
		}, nil
	}

	r := candidate(date(2025, 1, 15), date(2025, 1, 20))
	if err := f.svc.Submit(context.Background(), r); err != nil {
		t.Fatalf("Submit() error = %v, want checkout day to be reusable as check-in", err)
	}
}

func TestSubmitOverlapRejected(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findActiveFunc = func(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{
			{
				ID:        "existing",
				StartDate: date(2025, 1, 10),
				EndDate:   date(2025, 1, 15),
				Status:    model.StatusConfirmed,
			},
		}, nil
	}

	r := candidate(date(2025, 1, 12), date(2025, 1, 18))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want overlap rejection")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeConflict)
	}
	if len(f.membershipRepo.debits) != 0 {
		t.Errorf("debits = %v, want none when the insert never happens", f.membershipRepo.debits)
	}
}

func TestSubmitPastStartRejected(t *testing.T) {
	f := newFixture(date(2025, 1, 10), 10)

	r := candidate(date(2025, 1, 9), date(2025, 1, 12))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want past-date rejection")
	}
	if !strings.Contains(err.Error(), "past") {
		t.Errorf("error = %v, want past-date message", err)
	}
}

func TestSubmitForeignMembershipRejected(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.membershipRepo.findByIDFunc = func(ctx context.Context, id string) (*model.Membership, error) {
		m := testMembership(10)
		m.PropertyID = "507f1f77bcf86cd799439099" // different property
		return m, nil
	}

	r := candidate(date(2025, 1, 10), date(2025, 1, 14))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want permission rejection")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeForbidden)
	}
}

func TestSubmitLockContention(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.lockRepo.createFunc = func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
		return nil, mongo.WriteException{
			WriteErrors: mongo.WriteErrors{{Code: 11000}},
		}
	}

	r := candidate(date(2025, 1, 10), date(2025, 1, 14))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want lock-contention conflict")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeConflict)
	}
}

func TestSubmitBalanceRaceSurfacesAsConflict(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.membershipRepo.debitFunc = func(ctx context.Context, id string, days float64) error {
		return propertieserrors.ErrBalanceConflict
	}

	r := candidate(date(2025, 1, 10), date(2025, 1, 14))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want concurrent-modification conflict")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", appErr.Code, apperrors.CodeConflict)
	}
	if !strings.Contains(appErr.Message, "retry") {
		t.Errorf("message = %q, want retry hint", appErr.Message)
	}
}

func TestSubmitActiveReservationCap(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	two := 2
	f.propertyRepo.findByIDFunc = func(ctx context.Context, id string) (*model.Property, error) {
		p := testProperty()
		p.Policy.MaxActiveReservationsPerMember = &two
		return p, nil
	}
	f.repo.countActiveFunc = func(ctx context.Context, membershipID string) (int64, error) {
		return 2, nil
	}

	r := candidate(date(2025, 1, 10), date(2025, 1, 14))
	err := f.svc.Submit(context.Background(), r)
	if err == nil {
		t.Fatal("Submit() error = nil, want active-reservation cap rejection")
	}
	if !strings.Contains(err.Error(), "at most 2") {
		t.Errorf("error = %v, want cap of 2 in the message", err)
	}
}

func TestSubmitOverridesClientLifecycleFields(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)

	var persisted *model.Reservation
	f.repo.createFunc = func(ctx context.Context, r *model.Reservation) error {
		persisted = r
		r.ID = testReservation
		return nil
	}

	// A client trying to smuggle in terminal lifecycle state
	r := candidate(date(2025, 1, 10), date(2025, 1, 14))
	r.Status = model.StatusCancelled
	r.Penalized = true
	r.CheckedIn = true

	if err := f.svc.Submit(context.Background(), r); err != nil {
		t.Fatalf("Submit() error = %v, want nil", err)
	}

	if persisted == nil {
		t.Fatal("reservation was never persisted")
	}
	if persisted.Status != model.StatusConfirmed {
		t.Errorf("persisted status = %q, want %q", persisted.Status, model.StatusConfirmed)
	}
	if persisted.Penalized {
		t.Error("client-supplied penalized flag survived submission")
	}
	if persisted.CheckedIn {
		t.Error("client-supplied checked_in flag survived submission")
	}
	if len(f.membershipRepo.debits) != 1 || f.membershipRepo.debits[0] != 4 {
		t.Errorf("debits = %v, want one debit of 4", f.membershipRepo.debits)
	}
}

// Cancel

func confirmedReservation(start, end time.Time) *model.Reservation {
	return &model.Reservation{
		ID:           testReservation,
		PropertyID:   testPropertyID,
		MembershipID: testMembershipID,
		StartDate:    start,
		EndDate:      end,
		GuestCount:   2,
		Status:       model.StatusConfirmed,
	}
}

func TestCancelBeforeDeadlineRestoresBalance(t *testing.T) {
	// Check-in 10 days out, deadline 7 days: on-time cancellation
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	if err := f.svc.Cancel(context.Background(), testReservation, testMembershipID); err != nil {
		t.Fatalf("Cancel() error = %v, want nil", err)
	}

	if len(f.membershipRepo.credits) != 1 || f.membershipRepo.credits[0] != 4 {
		t.Errorf("credits = %v, want one credit of 4", f.membershipRepo.credits)
	}
	if len(f.events.penalties) != 0 {
		t.Errorf("penalties = %v, want none for on-time cancellation", f.events.penalties)
	}
	if len(f.events.cancelled) != 1 {
		t.Errorf("cancelled events = %d, want 1", len(f.events.cancelled))
	}
}

func TestCancelPastDeadlinePenalizes(t *testing.T) {
	// Check-in 3 days out, deadline 7 days: late cancellation
	f := newFixture(date(2025, 1, 8), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	var gotPenalized bool
	f.repo.updateStatusFunc = func(ctx context.Context, id string, from []string, to string, penalized bool) error {
		gotPenalized = penalized
		return nil
	}

	if err := f.svc.Cancel(context.Background(), testReservation, testMembershipID); err != nil {
		t.Fatalf("Cancel() error = %v, want nil", err)
	}

	if !gotPenalized {
		t.Error("reservation not marked penalized")
	}
	if len(f.membershipRepo.credits) != 0 {
		t.Errorf("credits = %v, want no refund for late cancellation", f.membershipRepo.credits)
	}
	if len(f.events.penalties) != 1 || f.events.penalties[0] != model.PenaltyLateCancellation {
		t.Errorf("penalties = %v, want one late_cancellation", f.events.penalties)
	}
}

func TestCancelExactlyAtDeadlineIsOnTime(t *testing.T) {
	// Check-in exactly 7 days out with a 7-day deadline: still on time
	f := newFixture(date(2025, 1, 4), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	if err := f.svc.Cancel(context.Background(), testReservation, testMembershipID); err != nil {
		t.Fatalf("Cancel() error = %v, want nil", err)
	}

	if len(f.membershipRepo.credits) != 1 {
		t.Errorf("credits = %v, want refund at the deadline boundary", f.membershipRepo.credits)
	}
	if len(f.events.penalties) != 0 {
		t.Errorf("penalties = %v, want none at the deadline boundary", f.events.penalties)
	}
}

func TestCancelForeignReservationRejected(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	err := f.svc.Cancel(context.Background(), testReservation, "507f1f77bcf86cd799439099")
	if err == nil {
		t.Fatal("Cancel() error = nil, want permission rejection")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeForbidden)
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		r := confirmedReservation(date(2025, 1, 11), date(2025, 1, 15))
		r.Status = model.StatusCancelled
		return r, nil
	}

	err := f.svc.Cancel(context.Background(), testReservation, testMembershipID)
	if err == nil {
		t.Fatal("Cancel() error = nil, want already-cancelled conflict")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeConflict)
	}
}

func TestCancelRaceCreditsOnlyOnce(t *testing.T) {
	// Both cancels read the reservation while it was still confirmed.
	// The conditional status transition lets only the first one land;
	// the second must not credit the balance again.
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	transitions := 0
	f.repo.updateStatusFunc = func(ctx context.Context, id string, from []string, to string, penalized bool) error {
		transitions++
		if transitions > 1 {
			return reservationserrors.ErrStatusConflict
		}
		return nil
	}

	if err := f.svc.Cancel(context.Background(), testReservation, testMembershipID); err != nil {
		t.Fatalf("first Cancel() error = %v, want nil", err)
	}

	err := f.svc.Cancel(context.Background(), testReservation, testMembershipID)
	if err == nil {
		t.Fatal("second Cancel() error = nil, want conflict")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeConflict)
	}

	if len(f.membershipRepo.credits) != 1 {
		t.Errorf("credits = %v, want exactly one refund", f.membershipRepo.credits)
	}
	if len(f.events.cancelled) != 1 {
		t.Errorf("cancelled events = %d, want 1", len(f.events.cancelled))
	}
}

// CheckIn

func TestCheckInMarksArrival(t *testing.T) {
	// Stay underway: Jan 11 check-in, today Jan 12
	f := newFixture(date(2025, 1, 12), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	if err := f.svc.CheckIn(context.Background(), testReservation, testMembershipID); err != nil {
		t.Fatalf("CheckIn() error = %v, want nil", err)
	}
	if len(f.repo.checkedIn) != 1 || f.repo.checkedIn[0] != testReservation {
		t.Errorf("checkedIn = %v, want the reservation marked", f.repo.checkedIn)
	}
}

func TestCheckInBeforeStartRejected(t *testing.T) {
	f := newFixture(date(2025, 1, 5), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	err := f.svc.CheckIn(context.Background(), testReservation, testMembershipID)
	if err == nil {
		t.Fatal("CheckIn() error = nil, want too-early rejection")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeConflict)
	}
	if len(f.repo.checkedIn) != 0 {
		t.Errorf("checkedIn = %v, want none", f.repo.checkedIn)
	}
}

func TestCheckInForeignReservationRejected(t *testing.T) {
	f := newFixture(date(2025, 1, 12), 10)
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return confirmedReservation(date(2025, 1, 11), date(2025, 1, 15)), nil
	}

	err := f.svc.CheckIn(context.Background(), testReservation, "507f1f77bcf86cd799439099")
	if err == nil {
		t.Fatal("CheckIn() error = nil, want permission rejection")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Errorf("code = %q, want %q", apperrors.AsAppError(err).Code, apperrors.CodeForbidden)
	}
}

// CheckAvailability

func TestCheckAvailability(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)
	f.repo.findActiveFunc = func(ctx context.Context, propertyID string, start, end time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{
			{
				ID:        "existing",
				StartDate: date(2025, 1, 10),
				EndDate:   date(2025, 1, 15),
				Status:    model.StatusConfirmed,
			},
		}, nil
	}

	free, err := f.svc.CheckAvailability(context.Background(), testPropertyID, date(2025, 1, 15), date(2025, 1, 20))
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}
	if !free {
		t.Error("expected checkout-day boundary range to be free")
	}

	free, err = f.svc.CheckAvailability(context.Background(), testPropertyID, date(2025, 1, 12), date(2025, 1, 18))
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}
	if free {
		t.Error("expected overlapping range to be blocked")
	}
}

func TestCheckAvailabilityRejectsReversedRange(t *testing.T) {
	f := newFixture(date(2025, 1, 1), 10)

	_, err := f.svc.CheckAvailability(context.Background(), testPropertyID, date(2025, 1, 20), date(2025, 1, 15))
	if err == nil {
		t.Fatal("CheckAvailability() error = nil, want invalid-range rejection")
	}
}
