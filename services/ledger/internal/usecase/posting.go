package usecase

import (
	"errors"
	"fmt"
	"time"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/pkg/queue"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"
)

var (
	ErrSaleNotFound      = errors.New("sale not found")
	ErrSaleVoided        = errors.New("sale is voided")
	ErrAffiliateNotFound = errors.New("affiliate account not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// EventPublisher decouples the poster from RabbitMQ. Events are emitted at
// most once per logical ledger change, matching the poster's idempotency.
type EventPublisher interface {
	PublishCommissionPosted(event queue.CommissionPostedEvent) error
	PublishPayoutSettled(event queue.PayoutSettledEvent) error
}

type RecordSaleInput struct {
	SaleID       string
	Amount       int64
	ProductID    string
	BuyerID      string
	AffiliateRef string
	SettledAt    time.Time
	Source       entity.SaleSource
}

type RecordSaleResult struct {
	Sale *entity.Sale `json:"sale"`
	// Entry is nil when no commission was posted (no affiliate, or the
	// sale queued for manual mapping).
	Entry *entity.LedgerEntry `json:"entry,omitempty"`
	// Posted is true only when this call created the ledger entry.
	// Replays of the same sale id return the existing entry unchanged.
	Posted         bool                   `json:"posted"`
	Unattributable *entity.Unattributable `json:"unattributable,omitempty"`
}

// PostingUseCase is the single entry point for commission writes: checkout,
// the historical importer and admin corrections all pass through it.
type PostingUseCase interface {
	RecordSale(input RecordSaleInput) (*RecordSaleResult, error)
	VoidSale(saleID string) (*entity.LedgerEntry, error)
	ManualCorrection(saleID, correctedAffiliateID string, correctedAmount *int64) (*entity.LedgerEntry, error)
	ListUnattributed(limit, offset int) ([]*entity.Sale, error)
}

type postingUseCase struct {
	saleRepo      persistent.SaleRepository
	affiliateRepo persistent.AffiliateRepository
	ledgerRepo    persistent.LedgerRepository
	rules         RuleResolver
	attribution   AttributionResolver
	events        EventPublisher
	summaries     SummaryInvalidator
	logger        *logger.Logger
}

func NewPostingUseCase(
	saleRepo persistent.SaleRepository,
	affiliateRepo persistent.AffiliateRepository,
	ledgerRepo persistent.LedgerRepository,
	rules RuleResolver,
	attribution AttributionResolver,
	events EventPublisher,
	summaries SummaryInvalidator,
	log *logger.Logger,
) PostingUseCase {
	return &postingUseCase{
		saleRepo:      saleRepo,
		affiliateRepo: affiliateRepo,
		ledgerRepo:    ledgerRepo,
		rules:         rules,
		attribution:   attribution,
		events:        events,
		summaries:     summaries,
		logger:        log,
	}
}

func (uc *postingUseCase) RecordSale(input RecordSaleInput) (*RecordSaleResult, error) {
	if input.Amount < 0 {
		return nil, ErrInvalidAmount
	}

	sale, _, err := uc.saleRepo.GetOrCreate(&entity.Sale{
		ID:           input.SaleID,
		Amount:       input.Amount,
		ProductID:    input.ProductID,
		BuyerID:      input.BuyerID,
		AffiliateRef: input.AffiliateRef,
		SettledAt:    input.SettledAt,
		Source:       input.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}
	if sale.Voided {
		return &RecordSaleResult{Sale: sale}, nil
	}

	// The stored sale is the fact; replayed inputs with drifted fields do
	// not change it. Attribution resolves against the identity map as of
	// now, not settlement time: historical sales land through the importer
	// after their identities, and the map is append-only.
	account, unattributable, err := uc.attribution.Resolve(sale.AffiliateRef, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if unattributable != nil {
		state := entity.AttributionStateUnattributable
		if unattributable.Reason == entity.ReasonNoRef {
			// No affiliate on the sale at all: nothing to review.
			state = entity.AttributionStateNoAffiliate
		}
		if err := uc.saleRepo.SetAttribution(sale.ID, state, string(unattributable.Reason)); err != nil {
			return nil, fmt.Errorf("failed to mark sale attribution: %w", err)
		}
		uc.logger.Info("Sale %s not attributed: %s (ref=%q)", sale.ID, unattributable.Reason, unattributable.RawRef)
		return &RecordSaleResult{Sale: sale, Unattributable: unattributable}, nil
	}

	commission, err := uc.rules.Resolve(sale.ProductID, sale.Amount)
	if err != nil {
		return nil, err
	}

	entry, posted, err := uc.ledgerRepo.Post(sale, account, commission)
	if err != nil {
		return nil, fmt.Errorf("failed to post commission for sale %s: %w", sale.ID, err)
	}

	if err := uc.saleRepo.SetAttribution(sale.ID, entity.AttributionStateAttributed, ""); err != nil {
		return nil, fmt.Errorf("failed to mark sale attributed: %w", err)
	}

	if posted {
		uc.logger.Info("Posted commission %d for sale %s to affiliate %s (basis=%s)",
			commission.Amount, sale.ID, account.ID, commission.Basis)
		uc.publishCommissionPosted(entry, account.UserID)
		if uc.summaries != nil {
			uc.summaries.InvalidateSummary(account.UserID)
		}
	}

	return &RecordSaleResult{Sale: sale, Entry: entry, Posted: posted}, nil
}

// VoidSale soft-voids a refunded sale and reverses its active ledger entry.
// The sale row is never deleted.
func (uc *postingUseCase) VoidSale(saleID string) (*entity.LedgerEntry, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	if err := uc.saleRepo.SetVoided(saleID); err != nil {
		return nil, fmt.Errorf("failed to void sale: %w", err)
	}

	entry, err := uc.ledgerRepo.GetActiveBySaleID(saleID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	reversedEntry, reversed, err := uc.ledgerRepo.Reverse(entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reverse entry for voided sale %s: %w", saleID, err)
	}
	if reversed {
		uc.logger.Info("Reversed entry %s for voided sale %s", reversedEntry.ID, saleID)
		uc.invalidateForAffiliate(entry.AffiliateID)
	}
	return reversedEntry, nil
}

// ManualCorrection re-attributes or re-prices a sale's commission as
// reverse + repost. History stays intact; nothing is edited in place.
func (uc *postingUseCase) ManualCorrection(saleID, correctedAffiliateID string, correctedAmount *int64) (*entity.LedgerEntry, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	if sale.Voided {
		return nil, ErrSaleVoided
	}

	var account *entity.AffiliateAccount
	if correctedAffiliateID != "" {
		account, err = uc.affiliateRepo.GetByID(correctedAffiliateID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAffiliateNotFound
		}
	} else {
		var unattributable *entity.Unattributable
		account, unattributable, err = uc.attribution.Resolve(sale.AffiliateRef, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if unattributable != nil {
			return nil, fmt.Errorf("sale %s is unattributable (%s): corrected affiliate id required",
				saleID, unattributable.Reason)
		}
	}

	commission := entity.Commission{Basis: entity.BasisManual}
	if correctedAmount != nil {
		if *correctedAmount < 0 {
			return nil, ErrInvalidAmount
		}
		commission.Amount = *correctedAmount
	} else {
		resolved, err := uc.rules.Resolve(sale.ProductID, sale.Amount)
		if err != nil {
			return nil, err
		}
		commission.Amount = resolved.Amount
		commission.RateBps = resolved.RateBps
	}

	if existing, err := uc.ledgerRepo.GetActiveBySaleID(saleID); err != nil {
		return nil, err
	} else if existing != nil {
		if _, _, err := uc.ledgerRepo.Reverse(existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reverse entry %s: %w", existing.ID, err)
		}
		// Correction may move the commission to another affiliate; the
		// previous holder's cached summary is stale either way.
		uc.invalidateForAffiliate(existing.AffiliateID)
	}

	entry, posted, err := uc.ledgerRepo.Post(sale, account, commission)
	if err != nil {
		return nil, fmt.Errorf("failed to repost corrected commission: %w", err)
	}

	if err := uc.saleRepo.SetAttribution(saleID, entity.AttributionStateAttributed, ""); err != nil {
		return nil, err
	}

	if posted {
		uc.logger.Info("Manual correction for sale %s: affiliate=%s amount=%d", saleID, account.ID, commission.Amount)
		uc.publishCommissionPosted(entry, account.UserID)
		if uc.summaries != nil {
			uc.summaries.InvalidateSummary(account.UserID)
		}
	}
	return entry, nil
}

func (uc *postingUseCase) ListUnattributed(limit, offset int) ([]*entity.Sale, error) {
	sales, err := uc.saleRepo.ListUnattributed(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list unattributed sales: %w", err)
	}
	return sales, nil
}

// invalidateForAffiliate maps an affiliate to its wallet owner and drops the
// cached summary. Reversals know only the entry's affiliate id.
func (uc *postingUseCase) invalidateForAffiliate(affiliateID string) {
	if uc.summaries == nil {
		return
	}
	account, err := uc.affiliateRepo.GetByID(affiliateID)
	if err != nil || account == nil {
		return
	}
	uc.summaries.InvalidateSummary(account.UserID)
}

func (uc *postingUseCase) publishCommissionPosted(entry *entity.LedgerEntry, userID string) {
	if uc.events == nil {
		return
	}
	err := uc.events.PublishCommissionPosted(queue.CommissionPostedEvent{
		LedgerEntryID: entry.ID,
		SaleID:        entry.SaleID,
		AffiliateID:   entry.AffiliateID,
		UserID:        userID,
		Amount:        entry.Amount,
		PostedAt:      entry.PostedAt,
	})
	if err != nil {
		// The ledger write already committed; a lost event is a
		// notification gap, not a ledger defect.
		uc.logger.Error("Failed to publish commission.posted for entry %s: %v", entry.ID, err)
	}
}
