package persistent

import (
	"testing"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestLedgerRepository_PostCreditsWalletAndLogsTransaction(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	repo := NewLedgerRepository(db, 3)

	entry, posted, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{
		Amount: 75000, RateBps: 3000, Basis: entity.BasisPercentage,
	})

	assert.NoError(t, err)
	assert.True(t, posted)
	assert.Equal(t, entity.LedgerStatusPosted, entry.Status)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(75000), wallet.Balance)
	assert.Equal(t, int64(75000), wallet.TotalEarnings)

	txs := fetchTransactions(t, db, wallet.ID)
	assert.Len(t, txs, 1)
	assert.Equal(t, string(entity.TransactionTypeCommission), txs[0].Type)
	assert.Equal(t, int64(75000), txs[0].Amount)
	assert.Equal(t, int64(0), txs[0].BalanceBefore)
	assert.Equal(t, int64(75000), txs[0].BalanceAfter)
	assert.Equal(t, entry.ID, txs[0].ReferenceID)

	var account model.AffiliateAccountModel
	assert.NoError(t, db.Where("id = ?", affiliate.ID).First(&account).Error)
	assert.Equal(t, int64(75000), account.TotalEarnings)
	assert.Equal(t, int64(1), account.TotalConversions)

	assertReplayMatches(t, db, affiliate.UserID)
}

func TestLedgerRepository_PostReplayKeepsSingleEntry(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	repo := NewLedgerRepository(db, 3)
	commission := entity.Commission{Amount: 75000, RateBps: 3000, Basis: entity.BasisPercentage}

	first, posted, err := repo.Post(testSale("order-1"), affiliate, commission)
	assert.NoError(t, err)
	assert.True(t, posted)

	second, posted, err := repo.Post(testSale("order-1"), affiliate, commission)
	assert.NoError(t, err)
	assert.False(t, posted)
	assert.Equal(t, first.ID, second.ID)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(75000), wallet.Balance)
	assert.Len(t, fetchTransactions(t, db, wallet.ID), 1)
	assertReplayMatches(t, db, affiliate.UserID)
}

func TestLedgerRepository_ZeroCommissionSkipsWalletMutation(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	repo := NewLedgerRepository(db, 3)

	entry, posted, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 0, Basis: entity.BasisNoRule})

	assert.NoError(t, err)
	assert.True(t, posted)
	assert.Equal(t, int64(0), entry.Amount)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(0), wallet.Balance)
	assert.Empty(t, fetchTransactions(t, db, wallet.ID))
}

func TestLedgerRepository_HeldWalletRefusesPosting(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	held := model.WalletModel{UserID: affiliate.UserID, Held: true}
	assert.NoError(t, db.Create(&held).Error)

	repo := NewLedgerRepository(db, 3)
	_, _, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 75000})

	assert.ErrorIs(t, err, ErrWalletHeld)

	var count int64
	db.Model(&model.LedgerEntryModel{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLedgerRepository_ReverseCompensatesWallet(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	repo := NewLedgerRepository(db, 3)

	entry, _, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 75000, Basis: entity.BasisFlat})
	assert.NoError(t, err)

	reversedEntry, reversed, err := repo.Reverse(entry.ID)
	assert.NoError(t, err)
	assert.True(t, reversed)
	assert.Equal(t, entity.LedgerStatusReversed, reversedEntry.Status)
	assert.NotNil(t, reversedEntry.ReversedAt)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(0), wallet.Balance)
	assert.Equal(t, int64(0), wallet.TotalEarnings)
	assert.False(t, wallet.Held)

	txs := fetchTransactions(t, db, wallet.ID)
	assert.Len(t, txs, 2)
	assert.Equal(t, string(entity.TransactionTypeReversal), txs[1].Type)
	assert.Equal(t, int64(-75000), txs[1].Amount)
	assert.Equal(t, int64(75000), txs[1].BalanceBefore)
	assert.Equal(t, int64(0), txs[1].BalanceAfter)

	assertReplayMatches(t, db, affiliate.UserID)
}

func TestLedgerRepository_ReverseIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	repo := NewLedgerRepository(db, 3)

	entry, _, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 75000})
	assert.NoError(t, err)

	_, reversed, err := repo.Reverse(entry.ID)
	assert.NoError(t, err)
	assert.True(t, reversed)

	_, reversed, err = repo.Reverse(entry.ID)
	assert.NoError(t, err)
	assert.False(t, reversed)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(0), wallet.Balance)
	assert.Len(t, fetchTransactions(t, db, wallet.ID), 2)
	assertReplayMatches(t, db, affiliate.UserID)
}

func TestLedgerRepository_RepostAllowedAfterReversal(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	repo := NewLedgerRepository(db, 3)

	entry, _, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 75000})
	assert.NoError(t, err)
	_, _, err = repo.Reverse(entry.ID)
	assert.NoError(t, err)

	// The partial unique index only guards active entries, so a correction
	// can repost the same sale.
	reposted, posted, err := repo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 60000, Basis: entity.BasisManual})
	assert.NoError(t, err)
	assert.True(t, posted)
	assert.NotEqual(t, entry.ID, reposted.ID)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(60000), wallet.Balance)
	assertReplayMatches(t, db, affiliate.UserID)
}

func TestLedgerRepository_ReverseAfterWithdrawalHoldsWallet(t *testing.T) {
	db := newTestDB(t)
	affiliate := seedAffiliate(t, db)
	ledgerRepo := NewLedgerRepository(db, 3)
	payoutRepo := NewPayoutRepository(db)

	entry, _, err := ledgerRepo.Post(testSale("order-1"), affiliate, entity.Commission{Amount: 75000})
	assert.NoError(t, err)

	payout, err := payoutRepo.Request(affiliate.UserID, 75000)
	assert.NoError(t, err)
	_, _, err = payoutRepo.Settle(payout.ID)
	assert.NoError(t, err)

	// Earnings are already withdrawn; reversing drives the balance
	// negative and freezes the wallet.
	_, reversed, err := ledgerRepo.Reverse(entry.ID)
	assert.NoError(t, err)
	assert.True(t, reversed)

	wallet := fetchWallet(t, db, affiliate.UserID)
	assert.Equal(t, int64(-75000), wallet.Balance)
	assert.True(t, wallet.Held)
	assertReplayMatches(t, db, affiliate.UserID)
}
