package model

import "fmt"

// AvailabilityStatus 配額可售狀態。數值越小優先權越高：
// 一旦被標記為更高優先權的狀態就不會再降級。
type AvailabilityStatus int

const (
	// AvailabilityGone 已被付款訂單買斷，基本上不會再釋出
	AvailabilityGone AvailabilityStatus = iota
	// AvailabilityOrdered 被未付款訂單、票券代碼或候補名單佔滿，可能釋出
	AvailabilityOrdered
	// AvailabilityReserved 被購物車暫留佔滿，過期後會釋出
	AvailabilityReserved
	// AvailabilityOK 尚有可售數量
	AvailabilityOK
)

func (s AvailabilityStatus) String() string {
	switch s {
	case AvailabilityGone:
		return "gone"
	case AvailabilityOrdered:
		return "ordered"
	case AvailabilityReserved:
		return "reserved"
	case AvailabilityOK:
		return "ok"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Outranks 判斷 s 是否優先於 other
func (s AvailabilityStatus) Outranks(other AvailabilityStatus) bool {
	return s < other
}

func ParseAvailabilityStatus(value string) (AvailabilityStatus, error) {
	switch value {
	case "gone":
		return AvailabilityGone, nil
	case "ordered":
		return AvailabilityOrdered, nil
	case "reserved":
		return AvailabilityReserved, nil
	case "ok":
		return AvailabilityOK, nil
	}
	return 0, fmt.Errorf("invalid availability status: %q", value)
}

// Availability 單一配額的計算結果。Remaining 為 nil 表示未知（無上限配額不計算剩餘量）。
type Availability struct {
	Status    AvailabilityStatus `json:"status"`
	Remaining *int               `json:"remaining"`
}

// AvailabilityBreakdown 診斷模式的逐來源計數，不做狀態判定
type AvailabilityBreakdown struct {
	OrderedPaid    int `json:"ordered_paid"`
	OrderedPending int `json:"ordered_pending"`
	Vouchers       int `json:"vouchers"`
	WaitingList    int `json:"waiting_list"`
	CartHolds      int `json:"cart_holds"`
}
