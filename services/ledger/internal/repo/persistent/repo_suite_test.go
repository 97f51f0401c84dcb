package persistent

import (
	"fmt"
	"testing"

	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database carrying the live schema,
// including the partial unique index that backs at-most-once posting. The
// sqlite driver ignores row-locking clauses, so the repositories run
// unmodified.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.UserModel{},
		&model.LegacyIdentityModel{},
		&model.AffiliateAccountModel{},
		&model.SaleModel{},
		&model.LedgerEntryModel{},
		&model.WalletModel{},
		&model.WalletTransactionModel{},
		&model.PayoutModel{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_ledger_entries_active_sale
		ON ledger_entries (sale_id) WHERE status <> 'reversed'`).Error
	if err != nil {
		t.Fatalf("failed to create partial unique index: %v", err)
	}

	return db
}

func seedAffiliate(t *testing.T, db *gorm.DB) *entity.AffiliateAccount {
	t.Helper()

	account := model.AffiliateAccountModel{
		UserID: uuid.New().String(),
		Code:   "AFF" + uuid.New().String()[:8],
		Status: string(entity.AffiliateStatusApproved),
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("failed to seed affiliate: %v", err)
	}
	return ToAffiliateEntity(&account)
}

func testSale(id string) *entity.Sale {
	return &entity.Sale{
		ID:        id,
		Amount:    250000,
		ProductID: "course-101",
		Source:    entity.SaleSourceCheckout,
	}
}

func fetchWallet(t *testing.T, db *gorm.DB, userID string) *model.WalletModel {
	t.Helper()

	var wallet model.WalletModel
	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		t.Fatalf("failed to fetch wallet for user %s: %v", userID, err)
	}
	return &wallet
}

func fetchTransactions(t *testing.T, db *gorm.DB, walletID string) []model.WalletTransactionModel {
	t.Helper()

	var txs []model.WalletTransactionModel
	if err := db.Where("wallet_id = ?", walletID).Order("created_at ASC, id ASC").Find(&txs).Error; err != nil {
		t.Fatalf("failed to fetch wallet transactions: %v", err)
	}
	return txs
}

// assertReplayMatches checks the reconciliation invariant directly: the
// stored balance must equal the fold over the transaction log.
func assertReplayMatches(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()

	wallet := fetchWallet(t, db, userID)
	replayed, err := NewAuditRepository(db).SumTransactions(wallet.ID)
	if err != nil {
		t.Fatalf("failed to replay wallet %s: %v", wallet.ID, err)
	}
	if replayed != wallet.Balance {
		t.Fatalf("replay mismatch: stored balance %d, transaction log sums to %d", wallet.Balance, replayed)
	}
}
