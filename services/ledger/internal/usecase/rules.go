package usecase

import (
	"fmt"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"
)

// RuleResolver determines the commission for a sale from the configured
// rule. Resolution has no side effects; the outcome is snapshotted into the
// ledger entry by the poster.
type RuleResolver interface {
	Resolve(productID string, saleAmount int64) (entity.Commission, error)
}

type ruleResolver struct {
	ruleRepo persistent.RuleRepository
}

func NewRuleResolver(ruleRepo persistent.RuleRepository) RuleResolver {
	return &ruleResolver{ruleRepo: ruleRepo}
}

func (r *ruleResolver) Resolve(productID string, saleAmount int64) (entity.Commission, error) {
	rule, err := r.ruleRepo.GetActiveByProduct(productID)
	if err != nil {
		return entity.Commission{}, fmt.Errorf("failed to load commission rule: %w", err)
	}
	return ResolveCommission(rule, saleAmount), nil
}

// ResolveCommission is a pure function of the rule and the sale amount.
// Identical inputs always produce identical output, which reconciliation
// replay depends on.
func ResolveCommission(rule *entity.CommissionRule, saleAmount int64) entity.Commission {
	if rule == nil || !rule.Active {
		return entity.Commission{Basis: entity.BasisNoRule}
	}

	switch rule.Type {
	case entity.RuleTypeFlat:
		return entity.Commission{
			Amount: capAtSale(rule.FlatAmount, saleAmount),
			Basis:  entity.BasisFlat,
		}

	case entity.RuleTypePercentage:
		return entity.Commission{
			Amount:  percentageOf(saleAmount, rule.RateBps),
			RateBps: rule.RateBps,
			Basis:   entity.BasisPercentage,
		}

	case entity.RuleTypeTiered:
		tier := selectTier(rule.Tiers, saleAmount)
		if tier == nil {
			// Below the lowest floor: zero commission by policy.
			return entity.Commission{Basis: entity.BasisBelowMinimum}
		}
		c := entity.Commission{Basis: entity.BasisTier, TierFloor: tier.Floor}
		if tier.RateBps > 0 {
			c.Amount = percentageOf(saleAmount, tier.RateBps)
			c.RateBps = tier.RateBps
		} else {
			c.Amount = capAtSale(tier.FlatAmount, saleAmount)
		}
		return c
	}

	return entity.Commission{Basis: entity.BasisNoRule}
}

// selectTier picks the tier with the greatest floor <= saleAmount.
func selectTier(tiers []entity.RuleTier, saleAmount int64) *entity.RuleTier {
	var best *entity.RuleTier
	for i := range tiers {
		if tiers[i].Floor > saleAmount {
			continue
		}
		if best == nil || tiers[i].Floor > best.Floor {
			best = &tiers[i]
		}
	}
	return best
}

// percentageOf applies basis points with round-half-up to the nearest
// currency unit. The domain has no fractional sub-units.
func percentageOf(amount, rateBps int64) int64 {
	if amount <= 0 || rateBps <= 0 {
		return 0
	}
	return (amount*rateBps + 5000) / 10000
}

// capAtSale keeps a flat commission from exceeding the sale amount.
func capAtSale(flat, saleAmount int64) int64 {
	if flat < 0 {
		return 0
	}
	if flat > saleAmount {
		return saleAmount
	}
	return flat
}
