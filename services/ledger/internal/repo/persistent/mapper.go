package persistent

import (
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"
)

func ToSaleEntity(m *model.SaleModel) *entity.Sale {
	if m == nil {
		return nil
	}

	return &entity.Sale{
		ID:                m.ID,
		Amount:            m.Amount,
		ProductID:         m.ProductID,
		BuyerID:           m.BuyerID,
		AffiliateRef:      m.AffiliateRef,
		SettledAt:         m.SettledAt,
		Source:            entity.SaleSource(m.Source),
		Voided:            m.Voided,
		Attribution:       entity.AttributionState(m.Attribution),
		AttributionReason: m.AttributionReason,
		CreatedAt:         m.CreatedAt,
	}
}

func ToSaleModel(e *entity.Sale) *model.SaleModel {
	if e == nil {
		return nil
	}

	return &model.SaleModel{
		ID:                e.ID,
		Amount:            e.Amount,
		ProductID:         e.ProductID,
		BuyerID:           e.BuyerID,
		AffiliateRef:      e.AffiliateRef,
		SettledAt:         e.SettledAt,
		Source:            string(e.Source),
		Voided:            e.Voided,
		Attribution:       string(e.Attribution),
		AttributionReason: e.AttributionReason,
		CreatedAt:         e.CreatedAt,
	}
}

func ToRuleEntity(m *model.CommissionRuleModel) *entity.CommissionRule {
	if m == nil {
		return nil
	}

	tiers := make([]entity.RuleTier, len(m.Tiers))
	for i := range m.Tiers {
		tiers[i] = entity.RuleTier{
			ID:         m.Tiers[i].ID,
			RuleID:     m.Tiers[i].RuleID,
			Floor:      m.Tiers[i].Floor,
			FlatAmount: m.Tiers[i].FlatAmount,
			RateBps:    m.Tiers[i].RateBps,
		}
	}

	return &entity.CommissionRule{
		ID:         m.ID,
		ProductID:  m.ProductID,
		Type:       entity.RuleType(m.Type),
		FlatAmount: m.FlatAmount,
		RateBps:    m.RateBps,
		Tiers:      tiers,
		RuleSet:    m.RuleSet,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ToAffiliateEntity(m *model.AffiliateAccountModel) *entity.AffiliateAccount {
	if m == nil {
		return nil
	}

	return &entity.AffiliateAccount{
		ID:               m.ID,
		UserID:           m.UserID,
		Code:             m.Code,
		Status:           entity.AffiliateStatus(m.Status),
		TotalEarnings:    m.TotalEarnings,
		TotalConversions: m.TotalConversions,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func ToLegacyIdentityEntity(m *model.LegacyIdentityModel) *entity.LegacyIdentity {
	if m == nil {
		return nil
	}

	return &entity.LegacyIdentity{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Email:      m.Email,
		Name:       m.Name,
		ImportedAt: m.ImportedAt,
	}
}

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

func ToLedgerEntryEntity(m *model.LedgerEntryModel) *entity.LedgerEntry {
	if m == nil {
		return nil
	}

	return &entity.LedgerEntry{
		ID:          m.ID,
		SaleID:      m.SaleID,
		AffiliateID: m.AffiliateID,
		Amount:      m.Amount,
		RateBps:     m.RateBps,
		Basis:       entity.CommissionBasis(m.Basis),
		Status:      entity.LedgerStatus(m.Status),
		PostedAt:    m.PostedAt,
		ReversedAt:  m.ReversedAt,
	}
}

func ToWalletEntity(m *model.WalletModel) *entity.Wallet {
	if m == nil {
		return nil
	}

	return &entity.Wallet{
		ID:             m.ID,
		UserID:         m.UserID,
		Balance:        m.Balance,
		PendingBalance: m.PendingBalance,
		TotalEarnings:  m.TotalEarnings,
		TotalWithdrawn: m.TotalWithdrawn,
		Held:           m.Held,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func ToWalletTransactionEntity(m *model.WalletTransactionModel) *entity.WalletTransaction {
	if m == nil {
		return nil
	}

	return &entity.WalletTransaction{
		ID:            m.ID,
		WalletID:      m.WalletID,
		Type:          entity.TransactionType(m.Type),
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceID:   m.ReferenceID,
		CreatedAt:     m.CreatedAt,
	}
}

func ToPayoutEntity(m *model.PayoutModel) *entity.Payout {
	if m == nil {
		return nil
	}

	return &entity.Payout{
		ID:          m.ID,
		WalletID:    m.WalletID,
		UserID:      m.UserID,
		Amount:      m.Amount,
		Status:      entity.PayoutStatus(m.Status),
		RequestedAt: m.RequestedAt,
		SettledAt:   m.SettledAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
