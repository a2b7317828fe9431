package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go-quota-availability/internal/model"

	"github.com/redis/go-redis/v9"
)

// AvailabilitySnapshot 店面讀取的快取三元組
type AvailabilitySnapshot struct {
	Status     model.AvailabilityStatus
	Remaining  *int
	ComputedAt time.Time
}

type AvailabilityCacheManager interface {
	// Set 無條件覆寫快照（結果冪等，最後寫入者勝出）
	Set(ctx context.Context, quotaID int, availability model.Availability, computedAt time.Time) error
	// Get 讀取快照；不存在時回傳 found=false
	Get(ctx context.Context, quotaID int) (AvailabilitySnapshot, bool, error)
	Delete(ctx context.Context, quotaID int) error
}

type AvailabilityCacheManagerImpl struct {
	client *redis.Client
}

func NewAvailabilityCacheManager(client *redis.Client) AvailabilityCacheManager {
	return &AvailabilityCacheManagerImpl{
		client: client,
	}
}

// 快照 key
func (m *AvailabilityCacheManagerImpl) getSnapshotKey(quotaID int) string {
	return fmt.Sprintf("quota:%d:availability", quotaID)
}

func (m *AvailabilityCacheManagerImpl) Set(ctx context.Context, quotaID int, availability model.Availability, computedAt time.Time) error {
	key := m.getSnapshotKey(quotaID)
	fields := map[string]interface{}{
		"status":      availability.Status.String(),
		"computed_at": computedAt.UTC().Format(time.RFC3339Nano),
	}
	if availability.Remaining != nil {
		fields["remaining"] = *availability.Remaining
	}

	pipe := m.client.TxPipeline()
	// 先刪再寫，避免上一筆的 remaining 欄位殘留（無上限配額沒有 remaining）
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	_, err := pipe.Exec(ctx)
	return err
}

func (m *AvailabilityCacheManagerImpl) Get(ctx context.Context, quotaID int) (AvailabilitySnapshot, bool, error) {
	key := m.getSnapshotKey(quotaID)
	result, err := m.client.HGetAll(ctx, key).Result()
	if err != nil {
		return AvailabilitySnapshot{}, false, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return AvailabilitySnapshot{}, false, nil
	}

	snapshot, err := parseSnapshot(result)
	if err != nil {
		return AvailabilitySnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (m *AvailabilityCacheManagerImpl) Delete(ctx context.Context, quotaID int) error {
	return m.client.Del(ctx, m.getSnapshotKey(quotaID)).Err()
}

func parseSnapshot(fields map[string]string) (AvailabilitySnapshot, error) {
	status, err := model.ParseAvailabilityStatus(fields["status"])
	if err != nil {
		return AvailabilitySnapshot{}, fmt.Errorf("invalid status: %v", err)
	}

	computedAt, err := time.Parse(time.RFC3339Nano, fields["computed_at"])
	if err != nil {
		return AvailabilitySnapshot{}, fmt.Errorf("invalid computed_at: %v", err)
	}

	snapshot := AvailabilitySnapshot{
		Status:     status,
		ComputedAt: computedAt,
	}

	if raw, ok := fields["remaining"]; ok {
		remaining, err := strconv.Atoi(raw)
		if err != nil {
			return AvailabilitySnapshot{}, fmt.Errorf("invalid remaining: %v", err)
		}
		snapshot.Remaining = &remaining
	}

	return snapshot, nil
}
