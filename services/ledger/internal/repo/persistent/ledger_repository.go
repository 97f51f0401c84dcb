package persistent

import (
	"errors"
	"time"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the single write path for commissions. Every balance
// mutation happens inside one transaction here; no other component touches
// wallet rows directly.
type LedgerRepository interface {
	// Post records the commission for a sale exactly once. The bool is
	// true when this call created the entry; replays get the existing
	// entry back unchanged.
	Post(sale *entity.Sale, affiliate *entity.AffiliateAccount, commission entity.Commission) (*entity.LedgerEntry, bool, error)
	// Reverse marks an entry reversed and compensates the wallet. The
	// bool is false when the entry was already reversed (no-op).
	Reverse(entryID string) (*entity.LedgerEntry, bool, error)
	GetActiveBySaleID(saleID string) (*entity.LedgerEntry, error)
	ListBySaleID(saleID string) ([]*entity.LedgerEntry, error)
	ListByAffiliate(affiliateID string, limit, offset int) ([]*entity.LedgerEntry, error)
}

type ledgerRepository struct {
	db         *gorm.DB
	maxRetries int
}

func NewLedgerRepository(db *gorm.DB, maxRetries int) LedgerRepository {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ledgerRepository{db: db, maxRetries: maxRetries}
}

func (r *ledgerRepository) Post(sale *entity.Sale, affiliate *entity.AffiliateAccount, commission entity.Commission) (*entity.LedgerEntry, bool, error) {
	var entry *model.LedgerEntryModel
	var posted bool

	attempt := func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			posted = false

			// An existing active entry for the sale wins: at-most-once.
			var existing model.LedgerEntryModel
			err := tx.Where("sale_id = ? AND status <> ?", sale.ID, string(entity.LedgerStatusReversed)).
				First(&existing).Error
			if err == nil {
				entry = &existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			wallet, err := lockOrProvisionWallet(tx, affiliate.UserID)
			if err != nil {
				return err
			}
			if wallet.Held {
				return ErrWalletHeld
			}

			newEntry := model.LedgerEntryModel{
				SaleID:      sale.ID,
				AffiliateID: affiliate.ID,
				Amount:      commission.Amount,
				RateBps:     commission.RateBps,
				Basis:       string(commission.Basis),
				Status:      string(entity.LedgerStatusPosted),
				PostedAt:    time.Now().UTC(),
			}
			// The partial unique index on (sale_id) WHERE status <>
			// 'reversed' backstops post races; a violation aborts the
			// transaction and the retry resolves to the winner's entry.
			if err := tx.Create(&newEntry).Error; err != nil {
				return err
			}

			// Zero commissions are ledgered for audit completeness but
			// never produce a wallet mutation.
			if commission.Amount != 0 {
				before := wallet.Balance
				wallet.Balance += commission.Amount
				wallet.TotalEarnings += commission.Amount
				if err := tx.Save(wallet).Error; err != nil {
					return err
				}

				walletTx := model.WalletTransactionModel{
					WalletID:      wallet.ID,
					Type:          string(entity.TransactionTypeCommission),
					Amount:        commission.Amount,
					BalanceBefore: before,
					BalanceAfter:  wallet.Balance,
					ReferenceID:   newEntry.ID,
				}
				if err := tx.Create(&walletTx).Error; err != nil {
					return err
				}
			}

			// Cached totals on the affiliate row: a mirror, updated in
			// the same transaction but never trusted by reconciliation.
			err = tx.Model(&model.AffiliateAccountModel{}).
				Where("id = ?", affiliate.ID).
				Updates(map[string]interface{}{
					"total_earnings":    gorm.Expr("total_earnings + ?", commission.Amount),
					"total_conversions": gorm.Expr("total_conversions + 1"),
				}).Error
			if err != nil {
				return err
			}

			entry = &newEntry
			posted = true
			return nil
		})
	}

	if err := r.withRetry(attempt); err != nil {
		return nil, false, err
	}
	return ToLedgerEntryEntity(entry), posted, nil
}

func (r *ledgerRepository) Reverse(entryID string) (*entity.LedgerEntry, bool, error) {
	var entry *model.LedgerEntryModel
	var reversed bool

	attempt := func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			reversed = false

			var entryModel model.LedgerEntryModel
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", entryID).First(&entryModel).Error
			if err != nil {
				return err
			}
			if entryModel.Status == string(entity.LedgerStatusReversed) {
				entry = &entryModel
				return nil
			}

			var accountModel model.AffiliateAccountModel
			if err := tx.Where("id = ?", entryModel.AffiliateID).First(&accountModel).Error; err != nil {
				return err
			}

			wallet, err := lockOrProvisionWallet(tx, accountModel.UserID)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			entryModel.Status = string(entity.LedgerStatusReversed)
			entryModel.ReversedAt = &now
			if err := tx.Save(&entryModel).Error; err != nil {
				return err
			}

			if entryModel.Amount != 0 {
				before := wallet.Balance
				wallet.Balance -= entryModel.Amount
				wallet.TotalEarnings -= entryModel.Amount
				// Reversing earnings already withdrawn drives the
				// balance negative: hard invariant violation, freeze
				// the wallet for manual audit.
				if wallet.Balance < 0 {
					wallet.Held = true
				}
				if err := tx.Save(wallet).Error; err != nil {
					return err
				}

				walletTx := model.WalletTransactionModel{
					WalletID:      wallet.ID,
					Type:          string(entity.TransactionTypeReversal),
					Amount:        -entryModel.Amount,
					BalanceBefore: before,
					BalanceAfter:  wallet.Balance,
					ReferenceID:   entryModel.ID,
				}
				if err := tx.Create(&walletTx).Error; err != nil {
					return err
				}
			}

			err = tx.Model(&model.AffiliateAccountModel{}).
				Where("id = ?", entryModel.AffiliateID).
				Updates(map[string]interface{}{
					"total_earnings":    gorm.Expr("total_earnings - ?", entryModel.Amount),
					"total_conversions": gorm.Expr("total_conversions - 1"),
				}).Error
			if err != nil {
				return err
			}

			entry = &entryModel
			reversed = true
			return nil
		})
	}

	if err := r.withRetry(attempt); err != nil {
		return nil, false, err
	}
	return ToLedgerEntryEntity(entry), reversed, nil
}

func (r *ledgerRepository) GetActiveBySaleID(saleID string) (*entity.LedgerEntry, error) {
	var entryModel model.LedgerEntryModel
	err := r.db.Where("sale_id = ? AND status <> ?", saleID, string(entity.LedgerStatusReversed)).
		First(&entryModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToLedgerEntryEntity(&entryModel), nil
}

func (r *ledgerRepository) ListBySaleID(saleID string) ([]*entity.LedgerEntry, error) {
	var entryModels []model.LedgerEntryModel
	if err := r.db.Where("sale_id = ?", saleID).Order("posted_at ASC").Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*entity.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = ToLedgerEntryEntity(&entryModels[i])
	}
	return entries, nil
}

func (r *ledgerRepository) ListByAffiliate(affiliateID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	var entryModels []model.LedgerEntryModel
	query := r.db.Where("affiliate_id = ?", affiliateID).Order("posted_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*entity.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = ToLedgerEntryEntity(&entryModels[i])
	}
	return entries, nil
}

// withRetry re-runs the whole atomic unit on transient conflicts. Steps are
// never retried individually.
func (r *ledgerRepository) withRetry(attempt func() error) error {
	var err error
	for i := 0; i < r.maxRetries; i++ {
		err = attempt()
		if err == nil || !retryable(err) {
			return err
		}
		time.Sleep(time.Duration(i+1) * 50 * time.Millisecond)
	}
	return err
}

// lockOrProvisionWallet locks the wallet row for the posting transaction,
// creating a zero wallet first when the affiliate has none yet.
func lockOrProvisionWallet(tx *gorm.DB, userID string) (*model.WalletModel, error) {
	var wallet model.WalletModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = model.WalletModel{UserID: userID}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, err
		}
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", wallet.ID).First(&wallet).Error
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}
