package model

import "time"

// CartPosition 購物車暫留，到期前佔用配額
type CartPosition struct {
	ID         int       `json:"id" db:"id"`
	EventID    int       `json:"event_id" db:"event_id"`
	CartID     string    `json:"cart_id" db:"cart_id"`
	ProductID  int       `json:"product_id" db:"product_id"`
	VariantID  *int      `json:"variant_id,omitempty" db:"variant_id"`
	SubEventID *int      `json:"sub_event_id,omitempty" db:"sub_event_id"`
	VoucherID  *int      `json:"voucher_id,omitempty" db:"voucher_id"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// IsLive 檢查暫留在指定時間點是否仍然有效
func (c *CartPosition) IsLive(now time.Time) bool {
	return !c.ExpiresAt.Before(now)
}
