package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommissionRuleModel struct {
	ID         string          `gorm:"type:uuid;primary_key" json:"id"`
	ProductID  string          `gorm:"type:varchar(64);uniqueIndex:idx_rules_product_ruleset;not null" json:"product_id"`
	Type       string          `gorm:"type:varchar(20);not null" json:"type"`
	FlatAmount int64           `gorm:"default:0" json:"flat_amount"`
	RateBps    int64           `gorm:"default:0" json:"rate_bps"`
	RuleSet    string          `gorm:"type:varchar(64);uniqueIndex:idx_rules_product_ruleset;not null;default:'default'" json:"rule_set"`
	Active     bool            `gorm:"default:true" json:"active"`
	Tiers      []RuleTierModel `gorm:"foreignKey:RuleID" json:"tiers,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (CommissionRuleModel) TableName() string {
	return "commission_rules"
}

func (r *CommissionRuleModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

type RuleTierModel struct {
	ID         string `gorm:"type:uuid;primary_key" json:"id"`
	RuleID     string `gorm:"type:uuid;not null;index" json:"rule_id"`
	Floor      int64  `gorm:"not null" json:"floor"`
	FlatAmount int64  `gorm:"default:0" json:"flat_amount"`
	RateBps    int64  `gorm:"default:0" json:"rate_bps"`
}

func (RuleTierModel) TableName() string {
	return "commission_rule_tiers"
}

func (t *RuleTierModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
