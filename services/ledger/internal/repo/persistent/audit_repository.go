package persistent

import (
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
)

// AuditRepository is strictly read-only: the reconciliation engine reads
// ledger and wallet state through it and drives every correction back
// through the ledger poster.
type AuditRepository interface {
	ListWallets(scope entity.AuditScope) ([]*entity.Wallet, error)
	// SumTransactions replays the wallet_transactions log as a SQL fold.
	SumTransactions(walletID string) (int64, error)
	// ListDuplicateSaleIDs returns sale ids with more than one active
	// ledger entry (the historical duplicate-import bug).
	ListDuplicateSaleIDs() ([]string, error)
	ListOrphanedEntries() ([]*entity.LedgerEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) ListWallets(scope entity.AuditScope) ([]*entity.Wallet, error) {
	var walletModels []model.WalletModel
	query := r.db.Order("created_at ASC")
	if scope.AffiliateID != "" {
		query = query.Where(
			"user_id = (SELECT user_id FROM affiliate_accounts WHERE id = ?)",
			scope.AffiliateID,
		)
	}
	if err := query.Find(&walletModels).Error; err != nil {
		return nil, err
	}

	wallets := make([]*entity.Wallet, len(walletModels))
	for i := range walletModels {
		wallets[i] = ToWalletEntity(&walletModels[i])
	}
	return wallets, nil
}

func (r *auditRepository) SumTransactions(walletID string) (int64, error) {
	var total int64
	err := r.db.Model(&model.WalletTransactionModel{}).
		Where("wallet_id = ?", walletID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *auditRepository) ListDuplicateSaleIDs() ([]string, error) {
	var saleIDs []string
	err := r.db.Model(&model.LedgerEntryModel{}).
		Where("status <> ?", string(entity.LedgerStatusReversed)).
		Select("sale_id").
		Group("sale_id").
		Having("COUNT(*) > 1").
		Scan(&saleIDs).Error
	if err != nil {
		return nil, err
	}
	return saleIDs, nil
}

func (r *auditRepository) ListOrphanedEntries() ([]*entity.LedgerEntry, error) {
	var entryModels []model.LedgerEntryModel
	err := r.db.
		Where("status <> ?", string(entity.LedgerStatusReversed)).
		Where("sale_id NOT IN (SELECT id FROM sales)").
		Find(&entryModels).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*entity.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = ToLedgerEntryEntity(&entryModels[i])
	}
	return entries, nil
}
