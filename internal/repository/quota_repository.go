package repository

import (
	"context"
	"time"

	"go-quota-availability/internal/model"
	apperrors "go-quota-availability/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuotaRepository interface {
	Create(ctx context.Context, quota *model.Quota) (*model.Quota, error)
	List(ctx context.Context) ([]*model.Quota, error)
	ListByEventID(ctx context.Context, eventID int) ([]*model.Quota, error)
	FindByID(ctx context.Context, id int) (*model.Quota, error)
	FindByQuotaID(ctx context.Context, quotaID uuid.UUID) (*model.Quota, error)
	SetClosed(ctx context.Context, id int, closed bool) error
	ListMemberships(ctx context.Context, quotaIDs []int) ([]model.QuotaMembership, error)
	// ListStale 選出需要重算的配額：快取缺失、早於活動最後紀錄、或早於絕對過期上限；
	// 且場次未綁定，或場次結束（無結束時間則取開始時間）落在 horizon 之後
	ListStale(ctx context.Context, eventID int, lastActivity time.Time, staleBefore time.Time, horizon time.Time) ([]*model.Quota, error)
	// UpdateCachedAvailability 無條件覆寫快取欄位（最後寫入者勝出）
	UpdateCachedAvailability(ctx context.Context, id int, availability model.Availability, computedAt time.Time) error
}

type QuotaRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewQuotaRepository(pool *pgxpool.Pool) QuotaRepository {
	return &QuotaRepositoryImpl{
		pool: pool,
	}
}

const quotaColumns = `id, quota_id, event_id, name, size, closed, sub_event_id,
		cached_status, cached_remaining, cached_at, created_at, updated_at`

func scanQuota(row pgx.Row) (*model.Quota, error) {
	var quota model.Quota
	var cachedStatus *string
	err := row.Scan(
		&quota.ID,
		&quota.QuotaID,
		&quota.EventID,
		&quota.Name,
		&quota.Size,
		&quota.Closed,
		&quota.SubEventID,
		&cachedStatus,
		&quota.CachedRemaining,
		&quota.CachedAt,
		&quota.CreatedAt,
		&quota.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cachedStatus != nil {
		status, err := model.ParseAvailabilityStatus(*cachedStatus)
		if err != nil {
			return nil, err
		}
		quota.CachedStatus = &status
	}
	return &quota, nil
}

func (r *QuotaRepositoryImpl) Create(ctx context.Context, quota *model.Quota) (*model.Quota, error) {
	query := `
		INSERT INTO quotas (quota_id, event_id, name, size, closed, sub_event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + quotaColumns + `
	`

	created, err := scanQuota(r.pool.QueryRow(ctx, query,
		quota.QuotaID, quota.EventID, quota.Name, quota.Size, quota.Closed, quota.SubEventID,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *QuotaRepositoryImpl) List(ctx context.Context) ([]*model.Quota, error) {
	query := `
		SELECT ` + quotaColumns + `
		FROM quotas
		ORDER BY created_at DESC
	`
	return r.queryQuotas(ctx, query)
}

func (r *QuotaRepositoryImpl) ListByEventID(ctx context.Context, eventID int) ([]*model.Quota, error) {
	query := `
		SELECT ` + quotaColumns + `
		FROM quotas
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	return r.queryQuotas(ctx, query, eventID)
}

func (r *QuotaRepositoryImpl) queryQuotas(ctx context.Context, query string, args ...interface{}) ([]*model.Quota, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotas := make([]*model.Quota, 0)
	for rows.Next() {
		quota, err := scanQuota(rows)
		if err != nil {
			return nil, err
		}
		quotas = append(quotas, quota)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return quotas, nil
}

func (r *QuotaRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Quota, error) {
	query := `
		SELECT ` + quotaColumns + `
		FROM quotas
		WHERE id = $1
	`

	quota, err := scanQuota(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrQuotaNotFound
		}
		return nil, err
	}

	return quota, nil
}

func (r *QuotaRepositoryImpl) FindByQuotaID(ctx context.Context, quotaID uuid.UUID) (*model.Quota, error) {
	query := `
		SELECT ` + quotaColumns + `
		FROM quotas
		WHERE quota_id = $1
	`

	quota, err := scanQuota(r.pool.QueryRow(ctx, query, quotaID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrQuotaNotFound
		}
		return nil, err
	}

	return quota, nil
}

func (r *QuotaRepositoryImpl) SetClosed(ctx context.Context, id int, closed bool) error {
	query := `
		UPDATE quotas
		SET closed = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, closed, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrQuotaNotFound
	}

	return nil
}

func (r *QuotaRepositoryImpl) ListMemberships(ctx context.Context, quotaIDs []int) ([]model.QuotaMembership, error) {
	query := `
		SELECT quota_id, product_id, NULL AS variant_id
		FROM quota_products
		WHERE quota_id = ANY($1::int[])
		UNION ALL
		SELECT quota_id, NULL AS product_id, variant_id
		FROM quota_variants
		WHERE quota_id = ANY($1::int[])
	`

	rows, err := r.pool.Query(ctx, query, quotaIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]model.QuotaMembership, 0)
	for rows.Next() {
		var m model.QuotaMembership
		if err := rows.Scan(&m.QuotaID, &m.ProductID, &m.VariantID); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memberships, nil
}

func (r *QuotaRepositoryImpl) ListStale(ctx context.Context, eventID int, lastActivity time.Time, staleBefore time.Time, horizon time.Time) ([]*model.Quota, error) {
	query := `
		SELECT q.id, q.quota_id, q.event_id, q.name, q.size, q.closed, q.sub_event_id,
				q.cached_status, q.cached_remaining, q.cached_at, q.created_at, q.updated_at
		FROM quotas q
		LEFT JOIN sub_events se ON se.id = q.sub_event_id
		WHERE q.event_id = $1
			AND (q.cached_at IS NULL OR q.cached_at < $2 OR q.cached_at < $3)
			AND (q.sub_event_id IS NULL
				OR (se.date_to IS NOT NULL AND se.date_to >= $4)
				OR (se.date_to IS NULL AND se.date_from >= $4))
	`
	return r.queryQuotas(ctx, query, eventID, lastActivity, staleBefore, horizon)
}

func (r *QuotaRepositoryImpl) UpdateCachedAvailability(ctx context.Context, id int, availability model.Availability, computedAt time.Time) error {
	query := `
		UPDATE quotas
		SET cached_status = $1, cached_remaining = $2, cached_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, availability.Status.String(), availability.Remaining, computedAt, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrQuotaNotFound
	}

	return nil
}
