package usecase

import (
	"testing"

	"eksporyuk-ledger/services/ledger/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestResolveCommission_Flat(t *testing.T) {
	rule := &entity.CommissionRule{
		ProductID:  "course-101",
		Type:       entity.RuleTypeFlat,
		FlatAmount: 50000,
		Active:     true,
	}

	c := ResolveCommission(rule, 500000)

	assert.Equal(t, int64(50000), c.Amount)
	assert.Equal(t, entity.BasisFlat, c.Basis)
}

func TestResolveCommission_FlatCappedAtSaleAmount(t *testing.T) {
	rule := &entity.CommissionRule{
		ProductID:  "cheap-ebook",
		Type:       entity.RuleTypeFlat,
		FlatAmount: 50000,
		Active:     true,
	}

	c := ResolveCommission(rule, 30000)

	assert.Equal(t, int64(30000), c.Amount)
	assert.Equal(t, entity.BasisFlat, c.Basis)
}

func TestResolveCommission_Percentage(t *testing.T) {
	rule := &entity.CommissionRule{
		ProductID: "course-101",
		Type:      entity.RuleTypePercentage,
		RateBps:   3000, // 30%
		Active:    true,
	}

	c := ResolveCommission(rule, 250000)

	assert.Equal(t, int64(75000), c.Amount)
	assert.Equal(t, int64(3000), c.RateBps)
	assert.Equal(t, entity.BasisPercentage, c.Basis)
}

func TestResolveCommission_PercentageRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		rateBps int64
		want    int64
	}{
		{"exact", 100000, 1000, 10000},
		{"rounds up at half", 99995, 1000, 10000},  // 9999.5 -> 10000
		{"rounds down below half", 99994, 1000, 9999}, // 9999.4 -> 9999
		{"tiny sale", 3, 1500, 0},                  // 0.45 -> 0
		{"tiny sale rounds up", 4, 1500, 1},        // 0.6 -> 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &entity.CommissionRule{
				Type:    entity.RuleTypePercentage,
				RateBps: tt.rateBps,
				Active:  true,
			}
			c := ResolveCommission(rule, tt.amount)
			assert.Equal(t, tt.want, c.Amount)
		})
	}
}

func TestResolveCommission_TieredSelectsGreatestFloor(t *testing.T) {
	rule := &entity.CommissionRule{
		ProductID: "membership",
		Type:      entity.RuleTypeTiered,
		Active:    true,
		Tiers: []entity.RuleTier{
			{Floor: 100000, FlatAmount: 10000},
			{Floor: 500000, FlatAmount: 75000},
			{Floor: 1000000, RateBps: 2000},
		},
	}

	c := ResolveCommission(rule, 600000)
	assert.Equal(t, int64(75000), c.Amount)
	assert.Equal(t, int64(500000), c.TierFloor)
	assert.Equal(t, entity.BasisTier, c.Basis)

	// Exactly on a floor selects that tier.
	c = ResolveCommission(rule, 1000000)
	assert.Equal(t, int64(200000), c.Amount)
	assert.Equal(t, int64(1000000), c.TierFloor)
	assert.Equal(t, int64(2000), c.RateBps)
}

func TestResolveCommission_TieredBelowMinimum(t *testing.T) {
	rule := &entity.CommissionRule{
		ProductID: "membership",
		Type:      entity.RuleTypeTiered,
		Active:    true,
		Tiers: []entity.RuleTier{
			{Floor: 100000, FlatAmount: 10000},
		},
	}

	c := ResolveCommission(rule, 99999)

	assert.Equal(t, int64(0), c.Amount)
	assert.Equal(t, entity.BasisBelowMinimum, c.Basis)
}

func TestResolveCommission_NoRule(t *testing.T) {
	c := ResolveCommission(nil, 500000)

	assert.Equal(t, int64(0), c.Amount)
	assert.Equal(t, entity.BasisNoRule, c.Basis)
}

func TestResolveCommission_InactiveRule(t *testing.T) {
	rule := &entity.CommissionRule{
		Type:       entity.RuleTypeFlat,
		FlatAmount: 50000,
		Active:     false,
	}

	c := ResolveCommission(rule, 500000)

	assert.Equal(t, int64(0), c.Amount)
	assert.Equal(t, entity.BasisNoRule, c.Basis)
}

func TestResolveCommission_Deterministic(t *testing.T) {
	rule := &entity.CommissionRule{
		Type:    entity.RuleTypePercentage,
		RateBps: 1250,
		Active:  true,
	}

	first := ResolveCommission(rule, 333333)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ResolveCommission(rule, 333333))
	}
}

func TestRuleResolver_LoadsRuleFromRepo(t *testing.T) {
	mockRules := new(MockRuleRepository)
	mockRules.On("GetActiveByProduct", "course-101").Return(&entity.CommissionRule{
		ProductID: "course-101",
		Type:      entity.RuleTypePercentage,
		RateBps:   3000,
		Active:    true,
	}, nil)

	resolver := NewRuleResolver(mockRules)
	c, err := resolver.Resolve("course-101", 250000)

	assert.NoError(t, err)
	assert.Equal(t, int64(75000), c.Amount)
	mockRules.AssertExpectations(t)
}

func TestRuleResolver_NoConfiguredRuleIsZeroCommission(t *testing.T) {
	mockRules := new(MockRuleRepository)
	mockRules.On("GetActiveByProduct", "free-webinar").Return(nil, nil)

	resolver := NewRuleResolver(mockRules)
	c, err := resolver.Resolve("free-webinar", 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), c.Amount)
	assert.Equal(t, entity.BasisNoRule, c.Basis)
}
