package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// At-most-once posting per sale is enforced by a partial unique index
// created in migrations:
//
//	CREATE UNIQUE INDEX idx_ledger_entries_active_sale
//	    ON ledger_entries (sale_id) WHERE status <> 'reversed';
//
// gorm tags cannot express the WHERE clause, so the index lives in SQL.
type LedgerEntryModel struct {
	ID          string     `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      string     `gorm:"type:varchar(64);not null;index" json:"sale_id"`
	AffiliateID string     `gorm:"type:uuid;not null;index" json:"affiliate_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	RateBps     int64      `gorm:"default:0" json:"rate_bps"`
	Basis       string     `gorm:"type:varchar(20);not null" json:"basis"`
	Status      string     `gorm:"type:varchar(20);not null;index" json:"status"`
	PostedAt    time.Time  `gorm:"not null" json:"posted_at"`
	ReversedAt  *time.Time `json:"reversed_at,omitempty"`
}

func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

func (e *LedgerEntryModel) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

type WalletModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID         string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Balance        int64     `gorm:"default:0" json:"balance"`
	PendingBalance int64     `gorm:"default:0" json:"pending_balance"`
	TotalEarnings  int64     `gorm:"default:0" json:"total_earnings"`
	TotalWithdrawn int64     `gorm:"default:0" json:"total_withdrawn"`
	Held           bool      `gorm:"default:false" json:"held"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (WalletModel) TableName() string {
	return "wallets"
}

func (w *WalletModel) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

type WalletTransactionModel struct {
	ID            string    `gorm:"type:uuid;primary_key" json:"id"`
	WalletID      string    `gorm:"type:uuid;not null;index:idx_wallet_tx_wallet_created" json:"wallet_id"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"`
	Amount        int64     `gorm:"not null" json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	ReferenceID   string    `gorm:"type:uuid;not null;index" json:"reference_id"`
	CreatedAt     time.Time `gorm:"index:idx_wallet_tx_wallet_created" json:"created_at"`
}

func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}

func (t *WalletTransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
