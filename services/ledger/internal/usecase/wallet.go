package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const walletSummaryTTL = 30 * time.Second

// WalletSummary is the dashboard view. Totals always reconcile with the
// visible ledger history because both come from the same log.
type WalletSummary struct {
	UserID         string `json:"user_id"`
	Balance        int64  `json:"balance"`
	PendingBalance int64  `json:"pending_balance"`
	TotalEarnings  int64  `json:"total_earnings"`
	TotalWithdrawn int64  `json:"total_withdrawn"`
	Held           bool   `json:"held"`
}

type WalletUseCase interface {
	GetSummary(userID string) (*WalletSummary, error)
	GetLedgerHistory(affiliateID string, limit, offset int) ([]*entity.LedgerEntry, error)
	GetTransactions(userID string, limit, offset int) ([]*entity.WalletTransaction, error)
	InvalidateSummary(userID string)
}

// SummaryInvalidator drops the cached wallet summary after a balance change
// so a read right after a posting or payout never serves pre-write totals.
type SummaryInvalidator interface {
	InvalidateSummary(userID string)
}

type walletUseCase struct {
	walletRepo  persistent.WalletRepository
	ledgerRepo  persistent.LedgerRepository
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewWalletUseCase(walletRepo persistent.WalletRepository, ledgerRepo persistent.LedgerRepository, redisClient *redis.Client, log *logger.Logger) WalletUseCase {
	return &walletUseCase{
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		redisClient: redisClient,
		logger:      log,
	}
}

func walletSummaryKey(userID string) string {
	return fmt.Sprintf("wallet_summary:%s", userID)
}

func (uc *walletUseCase) GetSummary(userID string) (*WalletSummary, error) {
	ctx := context.Background()
	cacheKey := walletSummaryKey(userID)

	if uc.redisClient != nil {
		if cached, err := uc.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var summary WalletSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	wallet, err := uc.walletRepo.GetOrCreateByUserID(userID)
	if err != nil {
		uc.logger.Error("Failed to get wallet: %v", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	summary := &WalletSummary{
		UserID:         wallet.UserID,
		Balance:        wallet.Balance,
		PendingBalance: wallet.PendingBalance,
		TotalEarnings:  wallet.TotalEarnings,
		TotalWithdrawn: wallet.TotalWithdrawn,
		Held:           wallet.Held,
	}

	if uc.redisClient != nil {
		if body, err := json.Marshal(summary); err == nil {
			uc.redisClient.Set(ctx, cacheKey, body, walletSummaryTTL)
		}
	}

	return summary, nil
}

func (uc *walletUseCase) InvalidateSummary(userID string) {
	if uc.redisClient == nil {
		return
	}
	uc.redisClient.Del(context.Background(), walletSummaryKey(userID))
}

func (uc *walletUseCase) GetLedgerHistory(affiliateID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	entries, err := uc.ledgerRepo.ListByAffiliate(affiliateID, limit, offset)
	if err != nil {
		uc.logger.Error("Failed to get ledger history: %v", err)
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}
	return entries, nil
}

func (uc *walletUseCase) GetTransactions(userID string, limit, offset int) ([]*entity.WalletTransaction, error) {
	wallet, err := uc.walletRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return []*entity.WalletTransaction{}, nil
	}

	transactions, err := uc.walletRepo.ListTransactions(wallet.ID, limit, offset)
	if err != nil {
		uc.logger.Error("Failed to get transactions: %v", err)
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, nil
}
