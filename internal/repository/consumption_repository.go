package repository

import (
	"context"
	"fmt"
	"time"

	"go-quota-availability/internal/database"
	"go-quota-availability/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConsumptionScope 限定四個讀取 pass 的查詢範圍：只查尚未判定配額的成員關係
type ConsumptionScope struct {
	EventIDs    []int
	SubEventIDs []int
	// AllSubEvents 只要有一個未綁定場次的配額就為 true，此時不以場次過濾
	AllSubEvents bool
	ProductIDs   []int
	VariantIDs   []int
	QuotaIDs     []int
}

// OrderPositionCount 訂單明細分組計數，依 (狀態, 商品或規格, 場次) 分組
type OrderPositionCount struct {
	Status     model.OrderStatus
	ProductID  int
	VariantID  *int
	SubEventID *int
	Count      int
}

// VoucherCount 佔用配額的票券代碼分組計數。範圍欄位至多一個非 nil；
// 全為 nil 時代表範圍是整個配額 (QuotaID)。Free 為尚可兌換次數加總。
type VoucherCount struct {
	ProductID  *int
	VariantID  *int
	QuotaID    *int
	SubEventID *int
	Free       int
}

// ConsumptionCount 候補名單與購物車暫留共用的分組計數形狀
type ConsumptionCount struct {
	ProductID  int
	VariantID  *int
	SubEventID *int
	Count      int
}

// ConsumptionRepository 四個互相獨立的佔用來源讀取 pass。
// 全部只讀，且分組形狀一致：(商品或規格, 場次) → 佔用數。
type ConsumptionRepository interface {
	CountOrderPositions(ctx context.Context, scope ConsumptionScope) ([]OrderPositionCount, error)
	CountBlockingVouchers(ctx context.Context, scope ConsumptionScope, now time.Time) ([]VoucherCount, error)
	CountWaitingList(ctx context.Context, scope ConsumptionScope) ([]ConsumptionCount, error)
	CountCartPositions(ctx context.Context, scope ConsumptionScope, now time.Time) ([]ConsumptionCount, error)
}

type ConsumptionRepositoryImpl struct {
	pool     *pgxpool.Pool
	greatest database.GreatestFunc
}

func NewConsumptionRepository(pool *pgxpool.Pool, greatest database.GreatestFunc) ConsumptionRepository {
	return &ConsumptionRepositoryImpl{
		pool:     pool,
		greatest: greatest,
	}
}

func (r *ConsumptionRepositoryImpl) CountOrderPositions(ctx context.Context, scope ConsumptionScope) ([]OrderPositionCount, error) {
	query := `
		SELECT o.status, op.product_id, op.variant_id, op.sub_event_id, COUNT(*) AS c
		FROM order_positions op
		JOIN orders o ON o.id = op.order_id
		WHERE o.status IN ('paid', 'pending')
			AND o.event_id = ANY($1::int[])
			AND ($2 OR op.sub_event_id = ANY($3::int[]))
			AND ((op.variant_id IS NULL AND op.product_id = ANY($4::int[]))
				OR op.variant_id = ANY($5::int[]))
		GROUP BY o.status, op.product_id, op.variant_id, op.sub_event_id
	`

	rows, err := r.pool.Query(ctx, query,
		scope.EventIDs, scope.AllSubEvents, scope.SubEventIDs, scope.ProductIDs, scope.VariantIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]OrderPositionCount, 0)
	for rows.Next() {
		var c OrderPositionCount
		if err := rows.Scan(&c.Status, &c.ProductID, &c.VariantID, &c.SubEventID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *ConsumptionRepositoryImpl) CountBlockingVouchers(ctx context.Context, scope ConsumptionScope, now time.Time) ([]VoucherCount, error) {
	query := fmt.Sprintf(`
		SELECT v.product_id, v.variant_id, v.quota_id, v.sub_event_id,
				SUM(%s(v.max_usages - v.redeemed, 0)) AS free
		FROM vouchers v
		WHERE v.block_quota
			AND v.event_id = ANY($1::int[])
			AND (v.valid_until IS NULL OR v.valid_until >= $2)
			AND ($3 OR v.sub_event_id = ANY($4::int[]))
			AND ((v.variant_id IS NULL AND v.product_id = ANY($5::int[]))
				OR v.variant_id = ANY($6::int[])
				OR v.quota_id = ANY($7::int[]))
		GROUP BY v.product_id, v.variant_id, v.quota_id, v.sub_event_id
	`, r.greatest)

	rows, err := r.pool.Query(ctx, query,
		scope.EventIDs, now, scope.AllSubEvents, scope.SubEventIDs,
		scope.ProductIDs, scope.VariantIDs, scope.QuotaIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]VoucherCount, 0)
	for rows.Next() {
		var c VoucherCount
		var free int64
		if err := rows.Scan(&c.ProductID, &c.VariantID, &c.QuotaID, &c.SubEventID, &free); err != nil {
			return nil, err
		}
		c.Free = int(free)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *ConsumptionRepositoryImpl) CountWaitingList(ctx context.Context, scope ConsumptionScope) ([]ConsumptionCount, error) {
	query := `
		SELECT w.product_id, w.variant_id, w.sub_event_id, COUNT(*) AS c
		FROM waiting_list_entries w
		WHERE w.voucher_id IS NULL
			AND w.event_id = ANY($1::int[])
			AND ($2 OR w.sub_event_id = ANY($3::int[]))
			AND ((w.variant_id IS NULL AND w.product_id = ANY($4::int[]))
				OR w.variant_id = ANY($5::int[]))
		GROUP BY w.product_id, w.variant_id, w.sub_event_id
	`

	return r.queryCounts(ctx, query,
		scope.EventIDs, scope.AllSubEvents, scope.SubEventIDs, scope.ProductIDs, scope.VariantIDs,
	)
}

func (r *ConsumptionRepositoryImpl) CountCartPositions(ctx context.Context, scope ConsumptionScope, now time.Time) ([]ConsumptionCount, error) {
	// 暫留若掛在仍有效的佔用型票券代碼上，容量已由代碼 pass 計入，不重複計
	query := `
		SELECT cp.product_id, cp.variant_id, cp.sub_event_id, COUNT(*) AS c
		FROM cart_positions cp
		LEFT JOIN vouchers v ON v.id = cp.voucher_id
		WHERE cp.expires_at >= $2
			AND cp.event_id = ANY($1::int[])
			AND (cp.voucher_id IS NULL OR NOT v.block_quota OR v.valid_until < $2)
			AND ($3 OR cp.sub_event_id = ANY($4::int[]))
			AND ((cp.variant_id IS NULL AND cp.product_id = ANY($5::int[]))
				OR cp.variant_id = ANY($6::int[]))
		GROUP BY cp.product_id, cp.variant_id, cp.sub_event_id
	`

	return r.queryCounts(ctx, query,
		scope.EventIDs, now, scope.AllSubEvents, scope.SubEventIDs, scope.ProductIDs, scope.VariantIDs,
	)
}

func (r *ConsumptionRepositoryImpl) queryCounts(ctx context.Context, query string, args ...interface{}) ([]ConsumptionCount, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]ConsumptionCount, 0)
	for rows.Next() {
		var c ConsumptionCount
		if err := rows.Scan(&c.ProductID, &c.VariantID, &c.SubEventID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
