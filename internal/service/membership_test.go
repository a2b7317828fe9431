package service

import (
	"testing"

	"go-quota-availability/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int) *int { return &v }

func TestBuildMembershipIndex_SkipsResolvedQuotas(t *testing.T) {
	resolvedQuota := &model.Quota{ID: 1, Size: ptr(5)}
	openQuota := &model.Quota{ID: 2, Size: ptr(5)}
	memberships := []model.QuotaMembership{
		{QuotaID: 1, ProductID: ptr(100)},
		{QuotaID: 2, ProductID: ptr(100)},
		{QuotaID: 2, VariantID: ptr(200)},
	}
	resolved := map[int]model.Availability{1: {Status: model.AvailabilityGone}}

	idx := buildMembershipIndex([]*model.Quota{resolvedQuota, openQuota}, memberships, resolved)

	require.Len(t, idx.productQuotas[100], 1)
	assert.Same(t, openQuota, idx.productQuotas[100][0])
	require.Len(t, idx.variantQuotas[200], 1)
	assert.Same(t, openQuota, idx.variantQuotas[200][0])
}

func TestBuildMembershipIndex_NilResolvedIncludesAll(t *testing.T) {
	a := &model.Quota{ID: 1, Size: ptr(5)}
	b := &model.Quota{ID: 2, Size: ptr(5)}
	memberships := []model.QuotaMembership{
		{QuotaID: 1, ProductID: ptr(100)},
		{QuotaID: 2, ProductID: ptr(100)},
	}

	idx := buildMembershipIndex([]*model.Quota{a, b}, memberships, nil)

	assert.Len(t, idx.productQuotas[100], 2)
}

func TestBuildMembershipIndex_IgnoresUnknownQuota(t *testing.T) {
	a := &model.Quota{ID: 1, Size: ptr(5)}
	memberships := []model.QuotaMembership{
		{QuotaID: 1, ProductID: ptr(100)},
		{QuotaID: 99, ProductID: ptr(100)},
	}

	idx := buildMembershipIndex([]*model.Quota{a}, memberships, nil)

	assert.Len(t, idx.productQuotas[100], 1)
}

func TestQuotasFor_VariantTakesPrecedence(t *testing.T) {
	productQuota := &model.Quota{ID: 1, Size: ptr(5)}
	variantQuota := &model.Quota{ID: 2, Size: ptr(5)}
	idx := buildMembershipIndex(
		[]*model.Quota{productQuota, variantQuota},
		[]model.QuotaMembership{
			{QuotaID: 1, ProductID: ptr(100)},
			{QuotaID: 2, VariantID: ptr(200)},
		},
		nil,
	)

	withVariant := idx.quotasFor(100, ptr(200))
	require.Len(t, withVariant, 1)
	assert.Same(t, variantQuota, withVariant[0])

	withoutVariant := idx.quotasFor(100, nil)
	require.Len(t, withoutVariant, 1)
	assert.Same(t, productQuota, withoutVariant[0])
}

func TestBuildScope_DeduplicatesAndFlagsAllSubEvents(t *testing.T) {
	scoped := &model.Quota{ID: 1, EventID: 10, Size: ptr(5), SubEventID: ptr(7)}
	alsoScoped := &model.Quota{ID: 2, EventID: 10, Size: ptr(5), SubEventID: ptr(7)}
	unscoped := &model.Quota{ID: 3, EventID: 10, Size: ptr(5)}
	memberships := []model.QuotaMembership{
		{QuotaID: 1, ProductID: ptr(100)},
		{QuotaID: 2, ProductID: ptr(100)},
		{QuotaID: 3, VariantID: ptr(200)},
	}

	scope := buildScope([]*model.Quota{scoped, alsoScoped, unscoped}, memberships, nil)

	assert.Equal(t, []int{10}, scope.EventIDs)
	assert.Equal(t, []int{7}, scope.SubEventIDs)
	assert.True(t, scope.AllSubEvents)
	assert.Equal(t, []int{100}, scope.ProductIDs)
	assert.Equal(t, []int{200}, scope.VariantIDs)
	assert.Equal(t, []int{1, 2, 3}, scope.QuotaIDs)
}

func TestBuildScope_ExcludesResolvedQuotas(t *testing.T) {
	done := &model.Quota{ID: 1, EventID: 10, Size: ptr(5)}
	open := &model.Quota{ID: 2, EventID: 11, Size: ptr(5), SubEventID: ptr(3)}
	memberships := []model.QuotaMembership{
		{QuotaID: 1, ProductID: ptr(100)},
		{QuotaID: 2, ProductID: ptr(101)},
	}
	resolved := map[int]model.Availability{1: {Status: model.AvailabilityOrdered}}

	scope := buildScope([]*model.Quota{done, open}, memberships, resolved)

	assert.Equal(t, []int{2}, scope.QuotaIDs)
	assert.Equal(t, []int{11}, scope.EventIDs)
	assert.Equal(t, []int{101}, scope.ProductIDs)
	// 已判定的未綁場次配額不再拉寬查詢範圍
	assert.False(t, scope.AllSubEvents)
	assert.Equal(t, []int{3}, scope.SubEventIDs)
}
