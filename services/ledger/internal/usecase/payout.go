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

var ErrPayoutNotFound = errors.New("payout not found")

type PayoutUseCase interface {
	Request(userID string, amount int64) (*entity.Payout, error)
	// Settle finishes a payout with the gateway outcome: true for paid,
	// false for failed (funds refunded). Safe to call repeatedly.
	Settle(payoutID string, succeeded bool) (*entity.Payout, error)
	List(userID string, limit, offset int) ([]*entity.Payout, error)
}

type payoutUseCase struct {
	payoutRepo persistent.PayoutRepository
	events     EventPublisher
	summaries  SummaryInvalidator
	logger     *logger.Logger
}

func NewPayoutUseCase(payoutRepo persistent.PayoutRepository, events EventPublisher, summaries SummaryInvalidator, log *logger.Logger) PayoutUseCase {
	return &payoutUseCase{
		payoutRepo: payoutRepo,
		events:     events,
		summaries:  summaries,
		logger:     log,
	}
}

func (uc *payoutUseCase) Request(userID string, amount int64) (*entity.Payout, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	payout, err := uc.payoutRepo.Request(userID, amount)
	if err != nil {
		if errors.Is(err, persistent.ErrInsufficientBalance) || errors.Is(err, persistent.ErrWalletHeld) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to request payout: %w", err)
	}

	uc.logger.Info("Payout %s requested: user=%s amount=%d", payout.ID, userID, amount)
	if uc.summaries != nil {
		uc.summaries.InvalidateSummary(userID)
	}
	return payout, nil
}

func (uc *payoutUseCase) Settle(payoutID string, succeeded bool) (*entity.Payout, error) {
	existing, err := uc.payoutRepo.GetByID(payoutID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPayoutNotFound
	}

	var payout *entity.Payout
	var changed bool
	if succeeded {
		payout, changed, err = uc.payoutRepo.Settle(payoutID)
	} else {
		payout, changed, err = uc.payoutRepo.Fail(payoutID)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		uc.logger.Info("Payout %s settled: status=%s amount=%d", payout.ID, payout.Status, payout.Amount)
		uc.publishPayoutSettled(payout)
		if uc.summaries != nil {
			uc.summaries.InvalidateSummary(payout.UserID)
		}
	}
	return payout, nil
}

func (uc *payoutUseCase) List(userID string, limit, offset int) ([]*entity.Payout, error) {
	return uc.payoutRepo.ListByUser(userID, limit, offset)
}

func (uc *payoutUseCase) publishPayoutSettled(payout *entity.Payout) {
	if uc.events == nil {
		return
	}
	settledAt := time.Now().UTC()
	if payout.SettledAt != nil {
		settledAt = *payout.SettledAt
	}
	err := uc.events.PublishPayoutSettled(queue.PayoutSettledEvent{
		PayoutID:  payout.ID,
		UserID:    payout.UserID,
		Amount:    payout.Amount,
		Status:    string(payout.Status),
		SettledAt: settledAt,
	})
	if err != nil {
		uc.logger.Error("Failed to publish payout.settled for %s: %v", payout.ID, err)
	}
}
