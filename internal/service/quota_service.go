package service

import (
	"context"

	"go-quota-availability/internal/model"
	"go-quota-availability/internal/repository"

	"github.com/google/uuid"
)

type QuotaService interface {
	List(ctx context.Context) ([]*model.Quota, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) (*model.Event, []*model.Quota, error)
	GetByQuotaID(ctx context.Context, quotaID uuid.UUID) (*model.Quota, error)
	Create(ctx context.Context, quota *model.Quota) (*model.Quota, error)
	CloseByQuotaID(ctx context.Context, quotaID uuid.UUID) error
	ReopenByQuotaID(ctx context.Context, quotaID uuid.UUID) error
}

type QuotaServiceImpl struct {
	repo      repository.QuotaRepository
	eventRepo repository.EventRepository
}

func NewQuotaService(repo repository.QuotaRepository, eventRepo repository.EventRepository) QuotaService {
	return &QuotaServiceImpl{repo: repo, eventRepo: eventRepo}
}

func (s *QuotaServiceImpl) List(ctx context.Context) ([]*model.Quota, error) {
	return s.repo.List(ctx)
}

func (s *QuotaServiceImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) (*model.Event, []*model.Quota, error) {
	event, err := s.eventRepo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	quotas, err := s.repo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, nil, err
	}
	return event, quotas, nil
}

func (s *QuotaServiceImpl) GetByQuotaID(ctx context.Context, quotaID uuid.UUID) (*model.Quota, error) {
	return s.repo.FindByQuotaID(ctx, quotaID)
}

func (s *QuotaServiceImpl) Create(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	if quota.QuotaID == uuid.Nil {
		quota.QuotaID = uuid.New()
	}
	return s.repo.Create(ctx, quota)
}

func (s *QuotaServiceImpl) CloseByQuotaID(ctx context.Context, quotaID uuid.UUID) error {
	quota, err := s.repo.FindByQuotaID(ctx, quotaID)
	if err != nil {
		return err
	}
	return s.repo.SetClosed(ctx, quota.ID, true)
}

func (s *QuotaServiceImpl) ReopenByQuotaID(ctx context.Context, quotaID uuid.UUID) error {
	quota, err := s.repo.FindByQuotaID(ctx, quotaID)
	if err != nil {
		return err
	}
	return s.repo.SetClosed(ctx, quota.ID, false)
}
