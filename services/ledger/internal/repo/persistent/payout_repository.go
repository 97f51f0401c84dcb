package persistent

import (
	"errors"
	"time"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepository settles withdrawals with the same ledger-append
// discipline as commissions: funds move via wallet transactions, never via
// bare field edits.
type PayoutRepository interface {
	Request(userID string, amount int64) (*entity.Payout, error)
	// Settle marks the payout paid. The bool is false when the payout
	// was already paid (idempotent replay).
	Settle(payoutID string) (*entity.Payout, bool, error)
	// Fail refunds the reserved amount. The bool is false when the
	// payout already failed.
	Fail(payoutID string) (*entity.Payout, bool, error)
	GetByID(id string) (*entity.Payout, error)
	ListByUser(userID string, limit, offset int) ([]*entity.Payout, error)
}

type payoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Request(userID string, amount int64) (*entity.Payout, error) {
	var payout model.PayoutModel

	err := r.db.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockOrProvisionWallet(tx, userID)
		if err != nil {
			return err
		}
		if wallet.Held {
			return ErrWalletHeld
		}
		if wallet.Balance < amount {
			return ErrInsufficientBalance
		}

		// Reserve: balance -> pending. totalWithdrawn is untouched
		// until settlement.
		before := wallet.Balance
		wallet.Balance -= amount
		wallet.PendingBalance += amount
		if err := tx.Save(wallet).Error; err != nil {
			return err
		}

		payout = model.PayoutModel{
			WalletID:    wallet.ID,
			UserID:      userID,
			Amount:      amount,
			Status:      string(entity.PayoutStatusPending),
			RequestedAt: time.Now().UTC(),
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		walletTx := model.WalletTransactionModel{
			WalletID:      wallet.ID,
			Type:          string(entity.TransactionTypePayoutRequest),
			Amount:        -amount,
			BalanceBefore: before,
			BalanceAfter:  wallet.Balance,
			ReferenceID:   payout.ID,
		}
		return tx.Create(&walletTx).Error
	})
	if err != nil {
		return nil, err
	}

	return ToPayoutEntity(&payout), nil
}

func (r *payoutRepository) Settle(payoutID string) (*entity.Payout, bool, error) {
	return r.finish(payoutID, true)
}

func (r *payoutRepository) Fail(payoutID string) (*entity.Payout, bool, error) {
	return r.finish(payoutID, false)
}

func (r *payoutRepository) finish(payoutID string, paid bool) (*entity.Payout, bool, error) {
	var payout model.PayoutModel
	var changed bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		changed = false

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payoutID).First(&payout).Error
		if err != nil {
			return err
		}

		terminal := string(entity.PayoutStatusPaid)
		conflict := string(entity.PayoutStatusFailed)
		if !paid {
			terminal, conflict = conflict, terminal
		}
		if payout.Status == terminal {
			return nil // idempotent replay
		}
		if payout.Status == conflict {
			return ErrPayoutConflict
		}

		var wallet model.WalletModel
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payout.WalletID).First(&wallet).Error
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		payout.Status = terminal
		payout.SettledAt = &now
		if err := tx.Save(&payout).Error; err != nil {
			return err
		}

		before := wallet.Balance
		walletTx := model.WalletTransactionModel{
			WalletID:    wallet.ID,
			ReferenceID: payout.ID,
		}
		if paid {
			wallet.PendingBalance -= payout.Amount
			wallet.TotalWithdrawn += payout.Amount
			// Settlement moves pending to withdrawn; the balance delta
			// is zero so log replay stays exact.
			walletTx.Type = string(entity.TransactionTypePayoutSettled)
			walletTx.Amount = 0
		} else {
			// The refund path is mandatory: a failed payout must never
			// silently vanish funds.
			wallet.PendingBalance -= payout.Amount
			wallet.Balance += payout.Amount
			walletTx.Type = string(entity.TransactionTypeRefund)
			walletTx.Amount = payout.Amount
		}
		walletTx.BalanceBefore = before
		walletTx.BalanceAfter = wallet.Balance

		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}
		if err := tx.Create(&walletTx).Error; err != nil {
			return err
		}

		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return ToPayoutEntity(&payout), changed, nil
}

func (r *payoutRepository) GetByID(id string) (*entity.Payout, error) {
	var payoutModel model.PayoutModel
	if err := r.db.Where("id = ?", id).First(&payoutModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToPayoutEntity(&payoutModel), nil
}

func (r *payoutRepository) ListByUser(userID string, limit, offset int) ([]*entity.Payout, error) {
	var payoutModels []model.PayoutModel
	query := r.db.Where("user_id = ?", userID).Order("requested_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&payoutModels).Error; err != nil {
		return nil, err
	}

	payouts := make([]*entity.Payout, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = ToPayoutEntity(&payoutModels[i])
	}
	return payouts, nil
}
