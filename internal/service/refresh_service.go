package service

import (
	"context"
	"errors"
	"time"

	"go-quota-availability/config"
	"go-quota-availability/internal/cache"
	"go-quota-availability/internal/model"
	"go-quota-availability/internal/queue"
	"go-quota-availability/internal/repository"
	apperrors "go-quota-availability/pkg/app_errors"
	"go-quota-availability/pkg/logger"

	"go.uber.org/zap"
)

type RefreshService interface {
	// RunScheduledRefresh 一次掃描：找出近期有活動的事件，挑出其中快取
	// 過期的配額，逐一丟進重算隊列。單一事件或配額失敗只記錄並跳過，
	// 不中斷整趟掃描。由外部排程器定期呼叫。
	RunScheduledRefresh(ctx context.Context) error
	// RefreshQuota 重算單一配額並覆寫兩層快取（資料庫欄位與店面快照）
	RefreshQuota(ctx context.Context, quotaID int) error
}

type RefreshServiceImpl struct {
	eventRepo    repository.EventRepository
	quotaRepo    repository.QuotaRepository
	availability AvailabilityService
	snapshot     cache.AvailabilityCacheManager
	guard        cache.RefreshGuard
	taskQueue    queue.RefreshQueue
	cfg          config.SchedulerConfig
	now          func() time.Time
}

func NewRefreshService(
	eventRepo repository.EventRepository,
	quotaRepo repository.QuotaRepository,
	availability AvailabilityService,
	snapshot cache.AvailabilityCacheManager,
	guard cache.RefreshGuard,
	taskQueue queue.RefreshQueue,
	cfg config.SchedulerConfig,
) RefreshService {
	return &RefreshServiceImpl{
		eventRepo:    eventRepo,
		quotaRepo:    quotaRepo,
		availability: availability,
		snapshot:     snapshot,
		guard:        guard,
		taskQueue:    taskQueue,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *RefreshServiceImpl) RunScheduledRefresh(ctx context.Context) error {
	now := s.now().UTC()
	log := logger.WithComponent("refresher")

	active, err := s.eventRepo.ListActiveEvents(ctx, now.Add(-s.cfg.ActivityWindow))
	if err != nil {
		return err
	}

	for _, activity := range active {
		event, err := s.eventRepo.FindByID(ctx, activity.EventID)
		if err != nil {
			// 事件在掃描與處理之間被刪掉也不致命，跳過即可
			if errors.Is(err, apperrors.ErrEventNotFound) {
				log.Info("event vanished during sweep, skipping", zap.Int("event_id", activity.EventID))
			} else {
				log.Error("load event failed, skipping", zap.Int("event_id", activity.EventID), zap.Error(err))
			}
			continue
		}

		quotas, err := s.quotaRepo.ListStale(ctx, event.ID,
			activity.LastActivity,
			now.Add(-s.cfg.StaleCeiling),
			now.Add(-s.cfg.SubEventHorizon),
		)
		if err != nil {
			log.Error("select stale quotas failed, skipping event", zap.Int("event_id", event.ID), zap.Error(err))
			continue
		}

		for _, q := range quotas {
			s.enqueueRefresh(ctx, event.ID, q, now, log)
		}
	}

	return nil
}

func (s *RefreshServiceImpl) enqueueRefresh(ctx context.Context, eventID int, quota *model.Quota, now time.Time, log *zap.Logger) {
	acquired, err := s.guard.TryAcquire(ctx, quota.ID)
	if err != nil {
		// 標記失效時寧可多算一次也不要漏算
		log.Warn("refresh guard unavailable, enqueueing anyway", zap.Int("quota_id", quota.ID), zap.Error(err))
	} else if !acquired {
		log.Info("refresh already in flight, skipping", zap.Int("quota_id", quota.ID))
		return
	}

	task := &queue.RefreshTask{QuotaID: quota.ID, EventID: eventID, RequestedAt: now}
	if err := s.taskQueue.PublishTask(ctx, task); err != nil {
		log.Error("publish refresh task failed", zap.Int("quota_id", quota.ID), zap.Error(err))
		if releaseErr := s.guard.Release(context.Background(), quota.ID); releaseErr != nil {
			log.Warn("release refresh guard failed", zap.Int("quota_id", quota.ID), zap.Error(releaseErr))
		}
	}
}

func (s *RefreshServiceImpl) RefreshQuota(ctx context.Context, quotaID int) error {
	defer func() {
		// Release 用獨立 context：呼叫端取消也要放掉在途標記
		if err := s.guard.Release(context.Background(), quotaID); err != nil {
			logger.WithComponent("refresher").Warn("release refresh guard failed", zap.Int("quota_id", quotaID), zap.Error(err))
		}
	}()

	quota, err := s.quotaRepo.FindByID(ctx, quotaID)
	if err != nil {
		return err
	}

	result, err := s.availability.ComputeAvailability(ctx, []*model.Quota{quota}, DefaultComputeOptions())
	if err != nil {
		return err
	}
	availability, ok := result[quota.ID]
	if !ok {
		return apperrors.ErrInternalServerError
	}

	computedAt := s.now().UTC()
	if err := s.quotaRepo.UpdateCachedAvailability(ctx, quota.ID, availability, computedAt); err != nil {
		return err
	}
	if err := s.snapshot.Set(ctx, quota.ID, availability, computedAt); err != nil {
		// 快照寫入失敗不影響已持久化的結果，店面會退回同步計算
		logger.WithComponent("refresher").Warn("write availability snapshot failed", zap.Int("quota_id", quota.ID), zap.Error(err))
	}

	return nil
}
