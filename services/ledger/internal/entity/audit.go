package entity

import "time"

type FindingType string

const (
	FindingBalanceMismatch     FindingType = "BALANCE_MISMATCH"
	FindingMissingLedgerEntry  FindingType = "MISSING_LEDGER_ENTRY"
	FindingDuplicateLedgerEntry FindingType = "DUPLICATE_LEDGER_ENTRY"
	FindingNegativeBalance     FindingType = "NEGATIVE_BALANCE"
	FindingOrphanedLedgerEntry FindingType = "ORPHANED_LEDGER_ENTRY"
)

// Finding carries enough detail to drive a corrective repost or a manual
// review: ids on one side, expected vs actual amounts on the other.
type Finding struct {
	Type          FindingType `json:"type"`
	SaleID        string      `json:"sale_id,omitempty"`
	AffiliateID   string      `json:"affiliate_id,omitempty"`
	WalletID      string      `json:"wallet_id,omitempty"`
	LedgerEntryID string      `json:"ledger_entry_id,omitempty"`
	Expected      int64       `json:"expected"`
	Actual        int64       `json:"actual"`
	Detail        string      `json:"detail,omitempty"`
	Corrected     bool        `json:"corrected"`
}

type AuditScope struct {
	AffiliateID string     `json:"affiliate_id,omitempty"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
}

type DiscrepancyReport struct {
	RunID          string     `json:"run_id"`
	GeneratedAt    time.Time  `json:"generated_at"`
	Scope          AuditScope `json:"scope"`
	WalletsChecked int        `json:"wallets_checked"`
	SalesChecked   int        `json:"sales_checked"`
	Findings       []Finding  `json:"findings"`
	// ReportKey is set when the JSON report was archived to S3.
	ReportKey string `json:"report_key,omitempty"`
}

func (r *DiscrepancyReport) Clean() bool {
	return len(r.Findings) == 0
}

func (r *DiscrepancyReport) CountByType() map[FindingType]int {
	counts := make(map[FindingType]int)
	for _, f := range r.Findings {
		counts[f.Type]++
	}
	return counts
}
