package entity

import "time"

type LedgerStatus string

const (
	LedgerStatusPending  LedgerStatus = "pending"
	LedgerStatusPosted   LedgerStatus = "posted"
	LedgerStatusReversed LedgerStatus = "reversed"
)

// LedgerEntry is the append-only record of a posted (or reversed)
// commission. At most one non-reversed entry may exist per sale id; a
// correction is reverse + repost, never an in-place edit.
type LedgerEntry struct {
	ID          string       `json:"id"`
	SaleID      string       `json:"sale_id"`
	AffiliateID string       `json:"affiliate_id"`
	Amount      int64        `json:"amount"`
	// Rate and basis are snapshotted at posting time.
	RateBps    int64           `json:"rate_bps"`
	Basis      CommissionBasis `json:"basis"`
	Status     LedgerStatus    `json:"status"`
	PostedAt   time.Time       `json:"posted_at"`
	ReversedAt *time.Time      `json:"reversed_at,omitempty"`
}

// Wallet balances are a cache over the wallet_transactions log. Replaying
// the log must reproduce Balance exactly; the audit engine verifies this.
// Invariant: Balance + TotalWithdrawn + PendingBalance == sum of credits.
type Wallet struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Balance        int64     `json:"balance"`
	PendingBalance int64     `json:"pending_balance"`
	TotalEarnings  int64     `json:"total_earnings"`
	TotalWithdrawn int64     `json:"total_withdrawn"`
	// Held halts automated postings after a hard invariant violation
	// (negative balance) until an audit run clears it.
	Held      bool      `json:"held"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TransactionTypeCommission    TransactionType = "commission"
	TransactionTypeReversal      TransactionType = "reversal"
	TransactionTypePayoutRequest TransactionType = "payout_request"
	TransactionTypePayoutSettled TransactionType = "payout_settled"
	TransactionTypeRefund        TransactionType = "refund"
)

// WalletTransaction is the audit row for every balance mutation. Amount is
// the signed delta applied to Wallet.Balance (zero for settlements, which
// move pending to withdrawn without touching balance).
type WalletTransaction struct {
	ID            string          `json:"id"`
	WalletID      string          `json:"wallet_id"`
	Type          TransactionType `json:"type"`
	Amount        int64           `json:"amount"`
	BalanceBefore int64           `json:"balance_before"`
	BalanceAfter  int64           `json:"balance_after"`
	// ReferenceID points back at the ledger entry or payout that caused
	// the mutation.
	ReferenceID string    `json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}
