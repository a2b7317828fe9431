package model

import (
	"time"

	"github.com/google/uuid"
)

// Quota 容量上限，由一個或多個商品/規格共用，可選擇性綁定單一場次
type Quota struct {
	ID      int       `json:"id" db:"id"`
	QuotaID uuid.UUID `json:"quota_id" db:"quota_id"`
	EventID int       `json:"event_id" db:"event_id"`
	Name    string    `json:"name" db:"name"`
	// Size 為 nil 表示無上限
	Size *int `json:"size" db:"size"`
	// Closed 手動關閉，無論實際容量如何都不可售
	Closed bool `json:"closed" db:"closed"`
	// SubEventID 為 nil 表示跨所有場次共用
	SubEventID *int `json:"sub_event_id,omitempty" db:"sub_event_id"`

	// 快取欄位只由計算引擎/排程寫入，屬最終一致的快照
	CachedStatus    *AvailabilityStatus `json:"cached_status,omitempty" db:"cached_status"`
	CachedRemaining *int                `json:"cached_remaining,omitempty" db:"cached_remaining"`
	CachedAt        *time.Time          `json:"cached_at,omitempty" db:"cached_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsUnlimited 檢查配額是否無上限
func (q *Quota) IsUnlimited() bool {
	return q.Size == nil
}

// MatchesSubEvent 檢查一筆佔用紀錄的場次是否影響此配額。
// 無場次綁定的配額跨所有場次計算。
func (q *Quota) MatchesSubEvent(subEventID *int) bool {
	if q.SubEventID == nil {
		return true
	}
	if subEventID == nil {
		return false
	}
	return *q.SubEventID == *subEventID
}

// QuotaMembership 配額與商品/規格的多對多對應，一列只會有其中一個非 nil
type QuotaMembership struct {
	QuotaID   int  `json:"quota_id" db:"quota_id"`
	ProductID *int `json:"product_id,omitempty" db:"product_id"`
	VariantID *int `json:"variant_id,omitempty" db:"variant_id"`
}
