package service

import (
	"context"
	"sort"
	"time"

	"go-quota-availability/internal/model"
	"go-quota-availability/internal/repository"
	"go-quota-availability/pkg/logger"

	"go.uber.org/zap"
)

// ComputeOptions 一次計算的參數。Now 為零值時取當下時間。
type ComputeOptions struct {
	Now time.Time
	// IncludeWaitingList 是否計入候補名單（預設 true，見 DefaultComputeOptions）
	IncludeWaitingList bool
	// IgnoreClosed 忽略手動關閉旗標，照實計算容量
	IgnoreClosed bool
}

func DefaultComputeOptions() ComputeOptions {
	return ComputeOptions{IncludeWaitingList: true}
}

type AvailabilityService interface {
	// ComputeAvailability 計算一組配額的可售狀態。回傳以配額主鍵為 key 的
	// (狀態, 剩餘量) 映射；無上限配額的剩餘量為 nil。
	ComputeAvailability(ctx context.Context, quotas []*model.Quota, opts ComputeOptions) (map[int]model.Availability, error)
	// ComputeBreakdown 診斷模式：逐來源計數，不做狀態判定、不提前結束，
	// 關閉與無上限的配額也照算
	ComputeBreakdown(ctx context.Context, quotas []*model.Quota, opts ComputeOptions) (map[int]model.AvailabilityBreakdown, error)
}

type AvailabilityServiceImpl struct {
	quotaRepo       repository.QuotaRepository
	consumptionRepo repository.ConsumptionRepository
}

func NewAvailabilityService(quotaRepo repository.QuotaRepository, consumptionRepo repository.ConsumptionRepository) AvailabilityService {
	return &AvailabilityServiceImpl{
		quotaRepo:       quotaRepo,
		consumptionRepo: consumptionRepo,
	}
}

func soldOut(status model.AvailabilityStatus) model.Availability {
	zero := 0
	return model.Availability{Status: status, Remaining: &zero}
}

func (s *AvailabilityServiceImpl) ComputeAvailability(ctx context.Context, quotas []*model.Quota, opts ComputeOptions) (map[int]model.Availability, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result := make(map[int]model.Availability, len(quotas))
	remaining := make(map[int]int, len(quotas))

	// Seed pass：不碰資料，先判定關閉與無上限的配額
	for _, q := range quotas {
		switch {
		case q.Closed && !opts.IgnoreClosed:
			result[q.ID] = soldOut(model.AvailabilityOrdered)
		case q.IsUnlimited():
			result[q.ID] = model.Availability{Status: model.AvailabilityOK}
		default:
			remaining[q.ID] = *q.Size
		}
	}
	if len(result) == len(quotas) {
		return result, nil
	}

	memberships, err := s.quotaRepo.ListMemberships(ctx, unresolvedIDs(quotas, result))
	if err != nil {
		return nil, err
	}
	idx := buildMembershipIndex(quotas, memberships, result)
	scope := buildScope(quotas, memberships, result)

	// Orders pass：先處理 paid 再處理 pending。兩者在同一批都會越線時，
	// 處理順序決定標成 GONE 還是 ORDERED。
	orderRows, err := s.consumptionRepo.CountOrderPositions(ctx, scope)
	if err != nil {
		return nil, err
	}
	sortPaidFirst(orderRows)
	for _, row := range orderRows {
		status := model.AvailabilityOrdered
		if row.Status == model.OrderStatusPaid {
			status = model.AvailabilityGone
		}
		applyConsumption(idx.quotasFor(row.ProductID, row.VariantID), row.SubEventID, row.Count, status, result, remaining)
	}
	if len(result) == len(quotas) {
		return result, nil
	}

	// Vouchers pass：有效期間內的佔用型票券代碼，以尚可兌換次數計
	voucherRows, err := s.consumptionRepo.CountBlockingVouchers(ctx, scope, now)
	if err != nil {
		return nil, err
	}
	for _, row := range voucherRows {
		applyConsumption(voucherQuotas(idx, row), row.SubEventID, row.Free, model.AvailabilityOrdered, result, remaining)
	}
	if len(result) == len(quotas) {
		return result, nil
	}

	// Waiting-list pass：未配發票券代碼的候補
	if opts.IncludeWaitingList {
		waitingRows, err := s.consumptionRepo.CountWaitingList(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, row := range waitingRows {
			applyConsumption(idx.quotasFor(row.ProductID, row.VariantID), row.SubEventID, row.Count, model.AvailabilityOrdered, result, remaining)
		}
		if len(result) == len(quotas) {
			return result, nil
		}
	}

	// Cart-holds pass：未到期且未掛在有效佔用型代碼上的暫留
	cartRows, err := s.consumptionRepo.CountCartPositions(ctx, scope, now)
	if err != nil {
		return nil, err
	}
	for _, row := range cartRows {
		applyConsumption(idx.quotasFor(row.ProductID, row.VariantID), row.SubEventID, row.Count, model.AvailabilityReserved, result, remaining)
	}

	// 剩下的都還有量，OK 並附上剩餘量
	for _, q := range quotas {
		if _, done := result[q.ID]; done {
			continue
		}
		left := remaining[q.ID]
		result[q.ID] = model.Availability{Status: model.AvailabilityOK, Remaining: &left}
	}

	return result, nil
}

func (s *AvailabilityServiceImpl) ComputeBreakdown(ctx context.Context, quotas []*model.Quota, opts ComputeOptions) (map[int]model.AvailabilityBreakdown, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	quotaIDs := make([]int, 0, len(quotas))
	for _, q := range quotas {
		quotaIDs = append(quotaIDs, q.ID)
	}

	memberships, err := s.quotaRepo.ListMemberships(ctx, quotaIDs)
	if err != nil {
		return nil, err
	}
	idx := buildMembershipIndex(quotas, memberships, nil)
	scope := buildScope(quotas, memberships, nil)

	breakdown := make(map[int]*model.AvailabilityBreakdown, len(quotas))
	for _, q := range quotas {
		breakdown[q.ID] = &model.AvailabilityBreakdown{}
	}

	orderRows, err := s.consumptionRepo.CountOrderPositions(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, row := range orderRows {
		for _, q := range matchingQuotas(idx.quotasFor(row.ProductID, row.VariantID), row.SubEventID) {
			if row.Status == model.OrderStatusPaid {
				breakdown[q.ID].OrderedPaid += row.Count
			} else {
				breakdown[q.ID].OrderedPending += row.Count
			}
		}
	}

	voucherRows, err := s.consumptionRepo.CountBlockingVouchers(ctx, scope, now)
	if err != nil {
		return nil, err
	}
	for _, row := range voucherRows {
		for _, q := range matchingQuotas(voucherQuotas(idx, row), row.SubEventID) {
			breakdown[q.ID].Vouchers += row.Free
		}
	}

	if opts.IncludeWaitingList {
		waitingRows, err := s.consumptionRepo.CountWaitingList(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, row := range waitingRows {
			for _, q := range matchingQuotas(idx.quotasFor(row.ProductID, row.VariantID), row.SubEventID) {
				breakdown[q.ID].WaitingList += row.Count
			}
		}
	}

	cartRows, err := s.consumptionRepo.CountCartPositions(ctx, scope, now)
	if err != nil {
		return nil, err
	}
	for _, row := range cartRows {
		for _, q := range matchingQuotas(idx.quotasFor(row.ProductID, row.VariantID), row.SubEventID) {
			breakdown[q.ID].CartHolds += row.Count
		}
	}

	out := make(map[int]model.AvailabilityBreakdown, len(breakdown))
	for id, b := range breakdown {
		out[id] = *b
	}
	return out, nil
}

// applyConsumption 從各配額的剩餘量扣掉一組佔用數；越線 (≤0) 即判定為
// crossStatus 並結案，之後的 pass 不會再動它
func applyConsumption(quotas []*model.Quota, subEventID *int, count int, crossStatus model.AvailabilityStatus, result map[int]model.Availability, remaining map[int]int) {
	for _, q := range quotas {
		if _, done := result[q.ID]; done {
			continue
		}
		if !q.MatchesSubEvent(subEventID) {
			continue
		}
		remaining[q.ID] -= count
		if remaining[q.ID] <= 0 {
			result[q.ID] = soldOut(crossStatus)
		}
	}
}

func matchingQuotas(quotas []*model.Quota, subEventID *int) []*model.Quota {
	matched := make([]*model.Quota, 0, len(quotas))
	for _, q := range quotas {
		if q.MatchesSubEvent(subEventID) {
			matched = append(matched, q)
		}
	}
	return matched
}

// voucherQuotas 票券代碼的範圍解析：規格 > 商品 > 指定配額
func voucherQuotas(idx membershipIndex, row repository.VoucherCount) []*model.Quota {
	switch {
	case row.VariantID != nil:
		quotas := idx.variantQuotas[*row.VariantID]
		if len(quotas) == 0 {
			// 規格存在佔用型代碼卻查不到任何配額成員，屬資料完整性問題，不能默默吞掉
			logger.WithComponent("engine").Warn("blocking voucher references variant with no quota membership",
				zap.Int("variant_id", *row.VariantID))
		}
		return quotas
	case row.ProductID != nil:
		return idx.productQuotas[*row.ProductID]
	case row.QuotaID != nil:
		if q, ok := idx.byID[*row.QuotaID]; ok {
			return []*model.Quota{q}
		}
	}
	return nil
}

func sortPaidFirst(rows []repository.OrderPositionCount) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Status == model.OrderStatusPaid && rows[j].Status != model.OrderStatusPaid
	})
}

func unresolvedIDs(quotas []*model.Quota, result map[int]model.Availability) []int {
	ids := make([]int, 0, len(quotas))
	for _, q := range quotas {
		if _, done := result[q.ID]; done {
			continue
		}
		ids = append(ids, q.ID)
	}
	return ids
}
