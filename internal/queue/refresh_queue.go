package queue

import (
	"context"
	"time"
)

// RefreshTask 排程選出的一筆重算工作
type RefreshTask struct {
	QuotaID     int       `json:"quota_id"`
	EventID     int       `json:"event_id"`
	RequestedAt time.Time `json:"requested_at"`
}

type Delivery struct {
	Data *RefreshTask
	Ack  func()
	Nack func(requeue bool)
}

type RefreshQueue interface {
	// 發送重算工作到隊列
	PublishTask(ctx context.Context, task *RefreshTask) error
	// 訂閱重算工作隊列
	SubscribeTasks(ctx context.Context) (<-chan Delivery, error)
}

type RefreshQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *RefreshTask
}

func NewRefreshQueue(bufferSize int) RefreshQueue {
	return &RefreshQueueImpl{
		ch: make(chan *RefreshTask, bufferSize),
	}
}

func (q *RefreshQueueImpl) PublishTask(ctx context.Context, task *RefreshTask) error {
	select {
	case q.ch <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *RefreshQueueImpl) SubscribeTasks(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case task, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始 Task 包裝成 Delivery 格式給 Worker
				out <- Delivery{
					Data: task,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- task // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
