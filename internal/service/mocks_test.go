package service_test

import (
	"context"
	"time"

	"go-quota-availability/internal/cache"
	"go-quota-availability/internal/model"
	"go-quota-availability/internal/queue"
	"go-quota-availability/internal/repository"
	"go-quota-availability/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// 手寫 Mock，搭配 testify 的 mock.Mock 使用

type QuotaRepositoryMock struct {
	mock.Mock
}

func (m *QuotaRepositoryMock) Create(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	args := m.Called(ctx, quota)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quota), args.Error(1)
}

func (m *QuotaRepositoryMock) List(ctx context.Context) ([]*model.Quota, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quota), args.Error(1)
}

func (m *QuotaRepositoryMock) ListByEventID(ctx context.Context, eventID int) ([]*model.Quota, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quota), args.Error(1)
}

func (m *QuotaRepositoryMock) FindByID(ctx context.Context, id int) (*model.Quota, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quota), args.Error(1)
}

func (m *QuotaRepositoryMock) FindByQuotaID(ctx context.Context, quotaID uuid.UUID) (*model.Quota, error) {
	args := m.Called(ctx, quotaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quota), args.Error(1)
}

func (m *QuotaRepositoryMock) SetClosed(ctx context.Context, id int, closed bool) error {
	args := m.Called(ctx, id, closed)
	return args.Error(0)
}

func (m *QuotaRepositoryMock) ListMemberships(ctx context.Context, quotaIDs []int) ([]model.QuotaMembership, error) {
	args := m.Called(ctx, quotaIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuotaMembership), args.Error(1)
}

func (m *QuotaRepositoryMock) ListStale(ctx context.Context, eventID int, lastActivity time.Time, staleBefore time.Time, horizon time.Time) ([]*model.Quota, error) {
	args := m.Called(ctx, eventID, lastActivity, staleBefore, horizon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Quota), args.Error(1)
}

func (m *QuotaRepositoryMock) UpdateCachedAvailability(ctx context.Context, id int, availability model.Availability, computedAt time.Time) error {
	args := m.Called(ctx, id, availability, computedAt)
	return args.Error(0)
}

type ConsumptionRepositoryMock struct {
	mock.Mock
}

func (m *ConsumptionRepositoryMock) CountOrderPositions(ctx context.Context, scope repository.ConsumptionScope) ([]repository.OrderPositionCount, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OrderPositionCount), args.Error(1)
}

func (m *ConsumptionRepositoryMock) CountBlockingVouchers(ctx context.Context, scope repository.ConsumptionScope, now time.Time) ([]repository.VoucherCount, error) {
	args := m.Called(ctx, scope, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VoucherCount), args.Error(1)
}

func (m *ConsumptionRepositoryMock) CountWaitingList(ctx context.Context, scope repository.ConsumptionScope) ([]repository.ConsumptionCount, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ConsumptionCount), args.Error(1)
}

func (m *ConsumptionRepositoryMock) CountCartPositions(ctx context.Context, scope repository.ConsumptionScope, now time.Time) ([]repository.ConsumptionCount, error) {
	args := m.Called(ctx, scope, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ConsumptionCount), args.Error(1)
}

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) FindByID(ctx context.Context, id int) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) FindSubEventByID(ctx context.Context, id int) (*model.SubEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubEvent), args.Error(1)
}

func (m *EventRepositoryMock) ListActiveEvents(ctx context.Context, since time.Time) ([]model.EventActivity, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EventActivity), args.Error(1)
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

type RefreshGuardMock struct {
	mock.Mock
}

func (m *RefreshGuardMock) TryAcquire(ctx context.Context, quotaID int) (bool, error) {
	args := m.Called(ctx, quotaID)
	return args.Bool(0), args.Error(1)
}

func (m *RefreshGuardMock) Release(ctx context.Context, quotaID int) error {
	args := m.Called(ctx, quotaID)
	return args.Error(0)
}

type RefreshQueueMock struct {
	mock.Mock
}

func (m *RefreshQueueMock) PublishTask(ctx context.Context, task *queue.RefreshTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *RefreshQueueMock) SubscribeTasks(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
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
