package worker

import (
	"context"
	"errors"
	"time"

	"go-quota-availability/internal/queue"
	"go-quota-availability/internal/service"
	apperrors "go-quota-availability/pkg/app_errors"
	"go-quota-availability/pkg/logger"

	"go.uber.org/zap"
)

type RefreshWorker interface {
	// 訂閱重算工作隊列
	Start(ctx context.Context) error
	// StartPeriodicTrigger 定期觸發排程掃描，直到 ctx 結束
	StartPeriodicTrigger(ctx context.Context, period time.Duration)
}

type RefreshWorkerImpl struct {
	service service.RefreshService
	queue   queue.RefreshQueue
}

func NewRefreshWorker(service service.RefreshService, queue queue.RefreshQueue) RefreshWorker {
	return &RefreshWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *RefreshWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeTasks(ctx)
	if err != nil {
		return err
	}

	go func() {
		log := logger.WithComponent("worker")
		for msg := range msgs {
			err := w.service.RefreshQuota(ctx, msg.Data.QuotaID)

			switch {
			case err == nil:
				msg.Ack()
			case errors.Is(err, apperrors.ErrQuotaNotFound), errors.Is(err, apperrors.ErrEventNotFound):
				// 掃描到處理之間被刪掉，重試也不會回來
				log.Info("quota vanished before refresh, dropping task", zap.Int("quota_id", msg.Data.QuotaID))
				msg.Ack()
			default:
				log.Warn("refresh failed, will retry", zap.Int("quota_id", msg.Data.QuotaID), zap.Error(err))
				msg.Nack(true)
			}
		}
	}()
	return nil
}

func (w *RefreshWorkerImpl) StartPeriodicTrigger(ctx context.Context, period time.Duration) {
	go func() {
		log := logger.WithComponent("refresher")
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.service.RunScheduledRefresh(ctx); err != nil {
					log.Error("scheduled refresh sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
