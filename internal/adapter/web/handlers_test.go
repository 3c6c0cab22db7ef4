package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/scheduler"
)

// MockPortfolioRepository is a mock implementation of domain.PortfolioRepository
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) UpsertInvestor(ctx context.Context, ref domain.InvestorRef) (*domain.Investor, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investor), args.Error(1)
}

func (m *MockPortfolioRepository) ListHoldings(ctx context.Context, investorID uuid.UUID) ([]*domain.Holding, error) {
	args := m.Called(ctx, investorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Holding), args.Error(1)
}

func (m *MockPortfolioRepository) ListDeals(ctx context.Context, investorID uuid.UUID, dealType domain.DealType) ([]*domain.Deal, error) {
	args := m.Called(ctx, investorID, dealType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deal), args.Error(1)
}

func (m *MockPortfolioRepository) ApplyChanges(ctx context.Context, investorID uuid.UUID, changes *domain.ChangeSet) error {
	args := m.Called(ctx, investorID, changes)
	return args.Error(0)
}

func (m *MockPortfolioRepository) HoldingsSnapshot(ctx context.Context) ([]*domain.HoldingView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HoldingView), args.Error(1)
}

func (m *MockPortfolioRepository) DealsSnapshot(ctx context.Context, dealType domain.DealType) ([]*domain.DealView, error) {
	args := m.Called(ctx, dealType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DealView), args.Error(1)
}

// MockScheduleService is a mock implementation of ScheduleService
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Get(ctx context.Context) (*domain.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

func (m *MockScheduleService) Set(ctx context.Context, hour, minute int, timezone string) (*domain.Schedule, error) {
	args := m.Called(ctx, hour, minute, timezone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Schedule), args.Error(1)
}

// stubTrigger is a fixed TriggerStatus for handler tests
type stubTrigger struct {
	state scheduler.State
	next  time.Time
}

func (s *stubTrigger) State() scheduler.State { return s.state }
func (s *stubTrigger) NextFire() time.Time    { return s.next }

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(portfolio domain.PortfolioRepository, schedules ScheduleService, trigger TriggerStatus) *Server {
	return NewServer(portfolio, schedules, trigger, "../../../templates/*", newTestLogger())
}

func int64Ptr(n int64) *int64 { return &n }

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDashboard(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)

	reported := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	portfolio.On("HoldingsSnapshot", mock.Anything).Return([]*domain.HoldingView{
		{Ticker: "INFY", Investor: "Alpha Fund", PercentHolding: decimalPtr("2.75"), Shares: int64Ptr(120000), ReportedDate: &reported},
		{Ticker: "TCS", Investor: "Alpha Fund"},
	}, nil)
	portfolio.On("DealsSnapshot", mock.Anything, domain.DealTypeBulk).Return([]*domain.DealView{
		{Ticker: "INFY", Investor: "Alpha Fund", DealDate: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC), Quantity: int64Ptr(50000), Price: decimalPtr("1520.50")},
	}, nil)
	portfolio.On("DealsSnapshot", mock.Anything, domain.DealTypeBlock).Return([]*domain.DealView{}, nil)
	schedules.On("Get", mock.Anything).Return(&domain.Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}, nil)

	next := time.Date(2026, 8, 26, 2, 0, 0, 0, time.UTC)
	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed, next: next})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "INFY")
	assert.Contains(t, body, "Alpha Fund")
	assert.Contains(t, body, "2.75%")
	assert.Contains(t, body, "120000")
	assert.Contains(t, body, "2026-06-30")
	assert.Contains(t, body, "1520.5")
	assert.Contains(t, body, "02:00 UTC")
	assert.Contains(t, body, "armed")
	assert.Contains(t, body, "No block deals yet")
}

func TestDashboardSnapshotFailure(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)
	portfolio.On("HoldingsSnapshot", mock.Anything).Return(nil, assert.AnError)

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateIdle})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestScheduleForm(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)
	schedules.On("Get", mock.Anything).Return(&domain.Schedule{Hour: 5, Minute: 45, Timezone: "Asia/Kolkata"}, nil)

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schedule", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="5"`)
	assert.Contains(t, body, `value="45"`)
	assert.Contains(t, body, `value="Asia/Kolkata"`)
	assert.NotContains(t, body, "Schedule updated")
}

func TestScheduleFormUpdatedFlag(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)
	schedules.On("Get", mock.Anything).Return(&domain.Schedule{Hour: 2, Minute: 0, Timezone: "UTC"}, nil)

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schedule?updated=1", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Schedule updated")
}

func postForm(srv *Server, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUpdateSchedule(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)
	schedules.On("Set", mock.Anything, 5, 45, "Asia/Kolkata").
		Return(&domain.Schedule{Hour: 5, Minute: 45, Timezone: "Asia/Kolkata"}, nil)

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed})

	rec := postForm(srv, url.Values{
		"hour":     {"5"},
		"minute":   {"45"},
		"timezone": {"Asia/Kolkata"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/schedule?updated=1", rec.Header().Get("Location"))
	schedules.AssertExpectations(t)
}

func TestUpdateScheduleDefaultsTimezone(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)
	schedules.On("Set", mock.Anything, 2, 30, "UTC").
		Return(&domain.Schedule{Hour: 2, Minute: 30, Timezone: "UTC"}, nil)

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed})

	rec := postForm(srv, url.Values{
		"hour":   {"2"},
		"minute": {"30"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	schedules.AssertExpectations(t)
}

func TestUpdateScheduleNonNumericInput(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed})

	rec := postForm(srv, url.Values{
		"hour":   {"two"},
		"minute": {"0"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "hour and minute must be numbers")
	schedules.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateScheduleValidationError(t *testing.T) {
	portfolio := new(MockPortfolioRepository)
	schedules := new(MockScheduleService)
	schedules.On("Set", mock.Anything, 25, 0, "UTC").
		Return(nil, &domain.ValidationError{Field: "hour", Message: "must be between 0 and 23"})

	srv := newTestServer(portfolio, schedules, &stubTrigger{state: scheduler.StateArmed})

	rec := postForm(srv, url.Values{
		"hour":     {"25"},
		"minute":   {"0"},
		"timezone": {"UTC"},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "invalid hour")
	// Submitted values come back so the user can correct them
	assert.Contains(t, body, `value="25"`)
}
