package entity

import "time"

type RuleType string

const (
	RuleTypeFlat       RuleType = "flat"
	RuleTypePercentage RuleType = "percentage"
	RuleTypeTiered     RuleType = "tiered"
)

// CommissionRule is owned by product/membership configuration and read-only
// to the posting path. The resolved rate and basis are snapshotted into the
// ledger entry so later rule edits never alter historical commissions.
type CommissionRule struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	Type       RuleType   `json:"type"`
	FlatAmount int64      `json:"flat_amount,omitempty"`
	RateBps    int64      `json:"rate_bps,omitempty"` // basis points, 1000 = 10%
	Tiers      []RuleTier `json:"tiers,omitempty"`
	RuleSet    string     `json:"rule_set"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RuleTier applies to sale amounts >= Floor. A tier carries either a flat
// amount or a rate in basis points; RateBps wins when both are set.
type RuleTier struct {
	ID         string `json:"id"`
	RuleID     string `json:"rule_id"`
	Floor      int64  `json:"floor"`
	FlatAmount int64  `json:"flat_amount,omitempty"`
	RateBps    int64  `json:"rate_bps,omitempty"`
}

type CommissionBasis string

const (
	BasisFlat       CommissionBasis = "flat"
	BasisPercentage CommissionBasis = "percentage"
	BasisTier       CommissionBasis = "tier"
	BasisManual     CommissionBasis = "manual"
	// BasisNoRule marks a valid zero-commission outcome for products with
	// no configured rule (e.g. free products).
	BasisNoRule CommissionBasis = "no_rule"
	// BasisBelowMinimum marks sales under the lowest tier floor. Zero
	// commission by business policy, not an error.
	BasisBelowMinimum CommissionBasis = "below_minimum"
)

// Commission is the resolved outcome snapshotted into the ledger entry.
type Commission struct {
	Amount    int64           `json:"amount"`
	RateBps   int64           `json:"rate_bps"`
	Basis     CommissionBasis `json:"basis"`
	TierFloor int64           `json:"tier_floor,omitempty"`
}
