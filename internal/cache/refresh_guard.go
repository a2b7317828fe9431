package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshGuard 單一配額同時只允許一個重算在途，避免多個 sweep
// 重疊時重複計算同一配額
type RefreshGuard interface {
	// TryAcquire 嘗試取得在途標記；已有人持有時回傳 false
	TryAcquire(ctx context.Context, quotaID int) (bool, error)
	Release(ctx context.Context, quotaID int) error
}

type RedisRefreshGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRefreshGuard 建立以 SET NX EX 實作的在途標記。ttl 為安全網：
// worker 掛掉時標記過期，配額不會被永遠卡住。
func NewRedisRefreshGuard(client *redis.Client, ttl time.Duration) RefreshGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisRefreshGuard{
		client: client,
		ttl:    ttl,
	}
}

func (g *RedisRefreshGuard) getGuardKey(quotaID int) string {
	return fmt.Sprintf("quota:%d:refresh-inflight", quotaID)
}

func (g *RedisRefreshGuard) TryAcquire(ctx context.Context, quotaID int) (bool, error) {
	return g.client.SetNX(ctx, g.getGuardKey(quotaID), 1, g.ttl).Result()
}

func (g *RedisRefreshGuard) Release(ctx context.Context, quotaID int) error {
	return g.client.Del(ctx, g.getGuardKey(quotaID)).Err()
}
