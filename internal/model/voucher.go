package model

import "time"

// Voucher 票券代碼。BlockQuota 為 true 時會在有效期間內佔住配額容量。
// 範圍可以是單一商品、單一規格、單一配額，或不指定（整個活動）。
type Voucher struct {
	ID         int        `json:"id" db:"id"`
	EventID    int        `json:"event_id" db:"event_id"`
	Code       string     `json:"code" db:"code"`
	BlockQuota bool       `json:"block_quota" db:"block_quota"`
	MaxUsages  int        `json:"max_usages" db:"max_usages"`
	Redeemed   int        `json:"redeemed" db:"redeemed"`
	ValidUntil *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	ProductID  *int       `json:"product_id,omitempty" db:"product_id"`
	VariantID  *int       `json:"variant_id,omitempty" db:"variant_id"`
	QuotaID    *int       `json:"quota_id,omitempty" db:"quota_id"`
	SubEventID *int       `json:"sub_event_id,omitempty" db:"sub_event_id"`
}

// FreeUsages 尚未兌換的使用次數，不為負
func (v *Voucher) FreeUsages() int {
	free := v.MaxUsages - v.Redeemed
	if free < 0 {
		return 0
	}
	return free
}

// BlocksAt 檢查票券代碼在指定時間點是否佔用配額
func (v *Voucher) BlocksAt(now time.Time) bool {
	if !v.BlockQuota {
		return false
	}
	return v.ValidUntil == nil || !v.ValidUntil.Before(now)
}
