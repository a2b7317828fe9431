package handler_test

import (
	"context"
	"time"

	"go-quota-availability/internal/cache"
	"go-quota-availability/internal/model"
	"go-quota-availability/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type QuotaServiceMock struct {
	mock.Mock
}

func (m *QuotaServiceMock) List(ctx context.Context) ([]*model.Quota, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quota), args.Error(1)
}

func (m *QuotaServiceMock) ListByEvent(ctx context.Context, eventID uuid.UUID) (*model.Event, []*model.Quota, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Event), args.Get(1).([]*model.Quota), args.Error(2)
}

func (m *QuotaServiceMock) GetByQuotaID(ctx context.Context, quotaID uuid.UUID) (*model.Quota, error) {
	args := m.Called(ctx, quotaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quota), args.Error(1)
}

func (m *QuotaServiceMock) Create(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	args := m.Called(ctx, quota)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quota), args.Error(1)
}

func (m *QuotaServiceMock) CloseByQuotaID(ctx context.Context, quotaID uuid.UUID) error {
	args := m.Called(ctx, quotaID)
	return args.Error(0)
}

func (m *QuotaServiceMock) ReopenByQuotaID(ctx context.Context, quotaID uuid.UUID) error {
	args := m.Called(ctx, quotaID)
	return args.Error(0)
}

type AvailabilityServiceMock struct {
	mock.Mock
}

func (m *AvailabilityServiceMock) ComputeAvailability(ctx context.Context, quotas []*model.Quota, opts service.ComputeOptions) (map[int]model.Availability, error) {
	args := m.Called(ctx, quotas, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]model.Availability), args.Error(1)
}

func (m *AvailabilityServiceMock) ComputeBreakdown(ctx context.Context, quotas []*model.Quota, opts service.ComputeOptions) (map[int]model.AvailabilityBreakdown, error) {
	args := m.Called(ctx, quotas, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]model.AvailabilityBreakdown), args.Error(1)
}

type RefreshServiceMock struct {
	mock.Mock
}

func (m *RefreshServiceMock) RunScheduledRefresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *RefreshServiceMock) RefreshQuota(ctx context.Context, quotaID int) error {
	args := m.Called(ctx, quotaID)
	return args.Error(0)
}

type AvailabilityCacheMock struct {
	mock.Mock
}

func (m *AvailabilityCacheMock) Set(ctx context.Context, quotaID int, availability model.Availability, computedAt time.Time) error {
	args := m.Called(ctx, quotaID, availability, computedAt)
	return args.Error(0)
}

func (m *AvailabilityCacheMock) Get(ctx context.Context, quotaID int) (cache.AvailabilitySnapshot, bool, error) {
	args := m.Called(ctx, quotaID)
	return args.Get(0).(cache.AvailabilitySnapshot), args.Bool(1), args.Error(2)
}

func (m *AvailabilityCacheMock) Delete(ctx context.Context, quotaID int) error {
	args := m.Called(ctx, quotaID)
	return args.Error(0)
}
