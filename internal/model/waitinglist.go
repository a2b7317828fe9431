package model

import "time"

// WaitingListEntry 候補名單。已配發票券代碼的候補不再計入佔用
// （容量已轉由該代碼佔住）。
type WaitingListEntry struct {
	ID         int       `json:"id" db:"id"`
	EventID    int       `json:"event_id" db:"event_id"`
	Email      string    `json:"email" db:"email"`
	ProductID  int       `json:"product_id" db:"product_id"`
	VariantID  *int      `json:"variant_id,omitempty" db:"variant_id"`
	SubEventID *int      `json:"sub_event_id,omitempty" db:"sub_event_id"`
	VoucherID  *int      `json:"voucher_id,omitempty" db:"voucher_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CountsAgainstQuota 檢查此候補是否佔用配額
func (w *WaitingListEntry) CountsAgainstQuota() bool {
	return w.VoucherID == nil
}
