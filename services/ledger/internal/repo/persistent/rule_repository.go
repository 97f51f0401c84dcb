package persistent

import (
	"errors"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
)

type RuleRepository interface {
	// GetActiveByProduct returns nil when no rule is configured: that is
	// a valid zero-commission outcome, not an error.
	GetActiveByProduct(productID string) (*entity.CommissionRule, error)
	Upsert(rule *entity.CommissionRule) (*entity.CommissionRule, error)
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) GetActiveByProduct(productID string) (*entity.CommissionRule, error) {
	var ruleModel model.CommissionRuleModel
	err := r.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("floor ASC")
	}).Where("product_id = ? AND active = true", productID).First(&ruleModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToRuleEntity(&ruleModel), nil
}

func (r *ruleRepository) Upsert(rule *entity.CommissionRule) (*entity.CommissionRule, error) {
	ruleModel := model.CommissionRuleModel{
		ID:         rule.ID,
		ProductID:  rule.ProductID,
		Type:       string(rule.Type),
		FlatAmount: rule.FlatAmount,
		RateBps:    rule.RateBps,
		RuleSet:    rule.RuleSet,
		Active:     rule.Active,
	}
	if ruleModel.RuleSet == "" {
		ruleModel.RuleSet = "default"
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.CommissionRuleModel
		err := tx.Where("product_id = ? AND rule_set = ?", ruleModel.ProductID, ruleModel.RuleSet).First(&existing).Error
		if err == nil {
			ruleModel.ID = existing.ID
			if err := tx.Where("rule_id = ?", existing.ID).Delete(&model.RuleTierModel{}).Error; err != nil {
				return err
			}
			if err := tx.Save(&ruleModel).Error; err != nil {
				return err
			}
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(&ruleModel).Error; err != nil {
				return err
			}
		} else {
			return err
		}

		for _, tier := range rule.Tiers {
			tierModel := model.RuleTierModel{
				RuleID:     ruleModel.ID,
				Floor:      tier.Floor,
				FlatAmount: tier.FlatAmount,
				RateBps:    tier.RateBps,
			}
			if err := tx.Create(&tierModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetActiveByProduct(rule.ProductID)
}
