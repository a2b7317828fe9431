package model

import "time"

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusExpired  OrderStatus = "expired"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPaid, OrderStatusPending, OrderStatusCanceled, OrderStatusExpired:
		return true
	}
	return false
}

// ConsumesQuota 只有已付款與待付款訂單會佔用配額
func (s OrderStatus) ConsumesQuota() bool {
	return s == OrderStatusPaid || s == OrderStatusPending
}

// Order 訂單模型
type Order struct {
	ID        int         `json:"id" db:"id"`
	EventID   int         `json:"event_id" db:"event_id"`
	Status    OrderStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderPosition 訂單明細，參照商品、可選規格與可選場次
type OrderPosition struct {
	ID         int  `json:"id" db:"id"`
	OrderID    int  `json:"order_id" db:"order_id"`
	ProductID  int  `json:"product_id" db:"product_id"`
	VariantID  *int `json:"variant_id,omitempty" db:"variant_id"`
	SubEventID *int `json:"sub_event_id,omitempty" db:"sub_event_id"`
}
