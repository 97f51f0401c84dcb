package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"

	"github.com/google/uuid"
)

// ReportArchive stores audit reports outside the database. Satisfied by the
// S3 client; nil disables archiving.
type ReportArchive interface {
	UploadAuditReport(runID string, body []byte) (string, error)
}

type AuditOptions struct {
	// Apply drives corrections for duplicate and missing entries through
	// the poster. Balance mismatches are never auto-patched.
	Apply bool
	// Export archives the JSON report to object storage.
	Export bool
}

// AuditUseCase recomputes expected wallet state from the ledger and flags
// drift. It is read-plus-corrective-repost: every correction goes through
// the ledger poster so the audit trail stays complete, and re-running an
// audit never produces duplicate corrections.
type AuditUseCase interface {
	Run(scope entity.AuditScope, opts AuditOptions) (*entity.DiscrepancyReport, error)
}

type auditUseCase struct {
	auditRepo   persistent.AuditRepository
	saleRepo    persistent.SaleRepository
	ledgerRepo  persistent.LedgerRepository
	walletRepo  persistent.WalletRepository
	rules       RuleResolver
	attribution AttributionResolver
	archive     ReportArchive
	logger      *logger.Logger
}

func NewAuditUseCase(
	auditRepo persistent.AuditRepository,
	saleRepo persistent.SaleRepository,
	ledgerRepo persistent.LedgerRepository,
	walletRepo persistent.WalletRepository,
	rules RuleResolver,
	attribution AttributionResolver,
	archive ReportArchive,
	log *logger.Logger,
) AuditUseCase {
	return &auditUseCase{
		auditRepo:   auditRepo,
		saleRepo:    saleRepo,
		ledgerRepo:  ledgerRepo,
		walletRepo:  walletRepo,
		rules:       rules,
		attribution: attribution,
		archive:     archive,
		logger:      log,
	}
}

func (uc *auditUseCase) Run(scope entity.AuditScope, opts AuditOptions) (*entity.DiscrepancyReport, error) {
	report := &entity.DiscrepancyReport{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Scope:       scope,
		Findings:    []entity.Finding{},
	}

	if err := uc.checkWallets(scope, opts, report); err != nil {
		return nil, err
	}
	if err := uc.checkDuplicates(opts, report); err != nil {
		return nil, err
	}
	if err := uc.checkSales(scope, opts, report); err != nil {
		return nil, err
	}
	if err := uc.checkOrphans(report); err != nil {
		return nil, err
	}

	uc.logger.Info("Audit run %s: %d wallets, %d sales, %d findings",
		report.RunID, report.WalletsChecked, report.SalesChecked, len(report.Findings))
	for findingType, count := range report.CountByType() {
		uc.logger.Info("Audit run %s: %d x %s", report.RunID, count, findingType)
	}

	if opts.Export && uc.archive != nil {
		body, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		key, err := uc.archive.UploadAuditReport(report.RunID, body)
		if err != nil {
			// Archiving is best effort; the report itself is the result.
			uc.logger.Error("Failed to archive audit report %s: %v", report.RunID, err)
		} else {
			report.ReportKey = key
		}
	}

	return report, nil
}

// checkWallets verifies the replay invariant: stored balance must equal the
// fold over the wallet's transaction log.
func (uc *auditUseCase) checkWallets(scope entity.AuditScope, opts AuditOptions, report *entity.DiscrepancyReport) error {
	wallets, err := uc.auditRepo.ListWallets(scope)
	if err != nil {
		return fmt.Errorf("failed to list wallets: %w", err)
	}

	for _, wallet := range wallets {
		report.WalletsChecked++

		expected, err := uc.auditRepo.SumTransactions(wallet.ID)
		if err != nil {
			return fmt.Errorf("failed to replay wallet %s: %w", wallet.ID, err)
		}

		if wallet.Balance < 0 {
			report.Findings = append(report.Findings, entity.Finding{
				Type:     entity.FindingNegativeBalance,
				WalletID: wallet.ID,
				Actual:   wallet.Balance,
				Detail:   "hard invariant violation; wallet held for manual audit",
			})
			if !wallet.Held {
				if err := uc.walletRepo.SetHold(wallet.ID, true); err != nil {
					return err
				}
			}
			continue
		}

		if expected != wallet.Balance {
			report.Findings = append(report.Findings, entity.Finding{
				Type:     entity.FindingBalanceMismatch,
				WalletID: wallet.ID,
				Expected: expected,
				Actual:   wallet.Balance,
				Detail:   "stored balance does not match wallet_transactions replay",
			})
			continue
		}

		// Replay matches and the balance is non-negative again: a held
		// wallet may resume postings.
		if wallet.Held {
			if err := uc.walletRepo.SetHold(wallet.ID, false); err != nil {
				return err
			}
			uc.logger.Info("Cleared hold on wallet %s after clean replay", wallet.ID)
		}
	}
	return nil
}

// checkDuplicates finds sales with more than one active ledger entry. With
// Apply set, every entry after the earliest is reversed; reversal is
// idempotent so a restarted run never over-corrects.
func (uc *auditUseCase) checkDuplicates(opts AuditOptions, report *entity.DiscrepancyReport) error {
	saleIDs, err := uc.auditRepo.ListDuplicateSaleIDs()
	if err != nil {
		return fmt.Errorf("failed to list duplicate postings: %w", err)
	}

	for _, saleID := range saleIDs {
		entries, err := uc.ledgerRepo.ListBySaleID(saleID)
		if err != nil {
			return err
		}

		var active []*entity.LedgerEntry
		for _, entry := range entries {
			if entry.Status != entity.LedgerStatusReversed {
				active = append(active, entry)
			}
		}
		if len(active) < 2 {
			continue // fixed since the duplicate query ran
		}

		for _, extra := range active[1:] {
			finding := entity.Finding{
				Type:          entity.FindingDuplicateLedgerEntry,
				SaleID:        saleID,
				AffiliateID:   extra.AffiliateID,
				LedgerEntryID: extra.ID,
				Expected:      active[0].Amount,
				Actual:        extra.Amount,
				Detail:        fmt.Sprintf("%d active entries for one sale", len(active)),
			}
			if opts.Apply {
				if _, _, err := uc.ledgerRepo.Reverse(extra.ID); err != nil {
					return fmt.Errorf("failed to reverse duplicate entry %s: %w", extra.ID, err)
				}
				finding.Corrected = true
			}
			report.Findings = append(report.Findings, finding)
		}
	}
	return nil
}

// checkSales confirms every attributable sale has exactly one active entry.
func (uc *auditUseCase) checkSales(scope entity.AuditScope, opts AuditOptions, report *entity.DiscrepancyReport) error {
	sales, err := uc.saleRepo.ListForAudit(scope)
	if err != nil {
		return fmt.Errorf("failed to list sales: %w", err)
	}

	for _, sale := range sales {
		// One identity-map snapshot per run: the report timestamp, so a
		// sale settled before its identity was imported still resolves.
		account, unattributable, err := uc.attribution.Resolve(sale.AffiliateRef, report.GeneratedAt)
		if err != nil {
			return err
		}
		if unattributable != nil {
			continue // queued for manual mapping, not a missing posting
		}
		if scope.AffiliateID != "" && account.ID != scope.AffiliateID {
			continue
		}
		report.SalesChecked++

		entry, err := uc.ledgerRepo.GetActiveBySaleID(sale.ID)
		if err != nil {
			return err
		}
		if entry != nil {
			continue
		}

		commission, err := uc.rules.Resolve(sale.ProductID, sale.Amount)
		if err != nil {
			return err
		}

		finding := entity.Finding{
			Type:        entity.FindingMissingLedgerEntry,
			SaleID:      sale.ID,
			AffiliateID: account.ID,
			Expected:    commission.Amount,
		}
		if opts.Apply {
			if _, _, err := uc.ledgerRepo.Post(sale, account, commission); err != nil {
				return fmt.Errorf("failed to repost missing entry for sale %s: %w", sale.ID, err)
			}
			if err := uc.saleRepo.SetAttribution(sale.ID, entity.AttributionStateAttributed, ""); err != nil {
				return err
			}
			finding.Corrected = true
		}
		report.Findings = append(report.Findings, finding)
	}
	return nil
}

func (uc *auditUseCase) checkOrphans(report *entity.DiscrepancyReport) error {
	orphans, err := uc.auditRepo.ListOrphanedEntries()
	if err != nil {
		return fmt.Errorf("failed to list orphaned entries: %w", err)
	}

	for _, entry := range orphans {
		// Orphans need a human: the sale fact is missing, so neither
		// reversal nor repost is mechanically safe.
		report.Findings = append(report.Findings, entity.Finding{
			Type:          entity.FindingOrphanedLedgerEntry,
			SaleID:        entry.SaleID,
			AffiliateID:   entry.AffiliateID,
			LedgerEntryID: entry.ID,
			Actual:        entry.Amount,
			Detail:        "ledger entry references a sale that does not exist",
		})
	}
	return nil
}
