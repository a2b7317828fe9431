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

type EventRepository interface {
	FindByID(ctx context.Context, id int) (*model.Event, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	FindSubEventByID(ctx context.Context, id int) (*model.SubEvent, error)
	// ListActiveEvents 回傳 since 之後有活動紀錄的事件與各自最後一筆紀錄時間
	ListActiveEvents(ctx context.Context, since time.Time) ([]model.EventActivity, error)
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := `
		SELECT id, event_id, name, description, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	query := `
		SELECT id, event_id, name, description, created_at, updated_at
		FROM events
		WHERE event_id = $1
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) FindSubEventByID(ctx context.Context, id int) (*model.SubEvent, error) {
	query := `
		SELECT id, event_id, name, date_from, date_to
		FROM sub_events
		WHERE id = $1
	`

	var subEvent model.SubEvent
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&subEvent.ID,
		&subEvent.EventID,
		&subEvent.Name,
		&subEvent.DateFrom,
		&subEvent.DateTo,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrSubEventNotFound
		}
		return nil, err
	}

	return &subEvent, nil
}

func (r *EventRepositoryImpl) ListActiveEvents(ctx context.Context, since time.Time) ([]model.EventActivity, error) {
	query := `
		SELECT event_id, MAX(occurred_at) AS last_activity
		FROM activity_log
		WHERE occurred_at > $1
		GROUP BY event_id
	`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]model.EventActivity, 0)
	for rows.Next() {
		var a model.EventActivity
		if err := rows.Scan(&a.EventID, &a.LastActivity); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return activities, nil
}
