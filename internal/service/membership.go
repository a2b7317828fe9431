package service

import (
	"go-quota-availability/internal/model"
	"go-quota-availability/internal/repository"
)

// membershipIndex 一次計算內使用的成員關係扁平索引：
// 商品→配額、規格→配額，避免每個 pass 重跑關聯查詢
type membershipIndex struct {
	byID          map[int]*model.Quota
	productQuotas map[int][]*model.Quota
	variantQuotas map[int][]*model.Quota
}

// buildMembershipIndex 以尚未判定的配額建立索引。resolved 可為 nil（診斷模式納入全部配額）。
func buildMembershipIndex(quotas []*model.Quota, memberships []model.QuotaMembership, resolved map[int]model.Availability) membershipIndex {
	idx := membershipIndex{
		byID:          make(map[int]*model.Quota, len(quotas)),
		productQuotas: make(map[int][]*model.Quota),
		variantQuotas: make(map[int][]*model.Quota),
	}

	for _, q := range quotas {
		idx.byID[q.ID] = q
	}

	for _, m := range memberships {
		q, ok := idx.byID[m.QuotaID]
		if !ok {
			continue
		}
		if _, done := resolved[q.ID]; done {
			continue
		}
		if m.ProductID != nil {
			idx.productQuotas[*m.ProductID] = append(idx.productQuotas[*m.ProductID], q)
		}
		if m.VariantID != nil {
			idx.variantQuotas[*m.VariantID] = append(idx.variantQuotas[*m.VariantID], q)
		}
	}

	return idx
}

// quotasFor 依分組鍵找出受影響的配額：有規格走規格索引，否則走商品索引
func (idx membershipIndex) quotasFor(productID int, variantID *int) []*model.Quota {
	if variantID != nil {
		return idx.variantQuotas[*variantID]
	}
	return idx.productQuotas[productID]
}

// buildScope 彙整未判定配額的查詢範圍，供四個讀取 pass 共用
func buildScope(quotas []*model.Quota, memberships []model.QuotaMembership, resolved map[int]model.Availability) repository.ConsumptionScope {
	scope := repository.ConsumptionScope{}

	eventSeen := make(map[int]bool)
	subEventSeen := make(map[int]bool)
	unresolved := make(map[int]bool, len(quotas))

	for _, q := range quotas {
		if _, done := resolved[q.ID]; done {
			continue
		}
		unresolved[q.ID] = true
		scope.QuotaIDs = append(scope.QuotaIDs, q.ID)
		if !eventSeen[q.EventID] {
			eventSeen[q.EventID] = true
			scope.EventIDs = append(scope.EventIDs, q.EventID)
		}
		if q.SubEventID == nil {
			scope.AllSubEvents = true
		} else if !subEventSeen[*q.SubEventID] {
			subEventSeen[*q.SubEventID] = true
			scope.SubEventIDs = append(scope.SubEventIDs, *q.SubEventID)
		}
	}

	productSeen := make(map[int]bool)
	variantSeen := make(map[int]bool)
	for _, m := range memberships {
		if !unresolved[m.QuotaID] {
			continue
		}
		if m.ProductID != nil && !productSeen[*m.ProductID] {
			productSeen[*m.ProductID] = true
			scope.ProductIDs = append(scope.ProductIDs, *m.ProductID)
		}
		if m.VariantID != nil && !variantSeen[*m.VariantID] {
			variantSeen[*m.VariantID] = true
			scope.VariantIDs = append(scope.VariantIDs, *m.VariantID)
		}
	}

	return scope
}
