package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          int       `json:"id" db:"id"`
	EventID     uuid.UUID `json:"event_id" db:"event_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SubEvent 系列活動中的單一場次
type SubEvent struct {
	ID       int        `json:"id" db:"id"`
	EventID  int        `json:"event_id" db:"event_id"`
	Name     string     `json:"name" db:"name"`
	DateFrom time.Time  `json:"date_from" db:"date_from"`
	DateTo   *time.Time `json:"date_to,omitempty" db:"date_to"`
}

// EventActivity 活動紀錄掃描的結果：事件與其最後一筆活動時間
type EventActivity struct {
	EventID      int       `json:"event_id" db:"event_id"`
	LastActivity time.Time `json:"last_activity" db:"last_activity"`
}
