package http

import (
	"errors"
	"net/http"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/repo/persistent"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PayoutHandler struct {
	payoutUseCase usecase.PayoutUseCase
	logger        *logger.Logger
}

func NewPayoutHandler(payoutUseCase usecase.PayoutUseCase, logger *logger.Logger) *PayoutHandler {
	return &PayoutHandler{
		payoutUseCase: payoutUseCase,
		logger:        logger,
	}
}

type PayoutRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// RequestPayout godoc
// @Summary      Request a payout
// @Description  Reserves the amount from the authenticated user's withdrawable balance
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PayoutRequest true "Payout amount"
// @Success      200  {object}  entity.Payout
// @Failure      400  {object}  map[string]string
// @Router       /payouts [post]
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	userID := c.GetString("user_id")

	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payoutUseCase.Request(userID, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

type SettlePayoutRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=paid failed"`
}

// SettlePayout godoc
// @Summary      Settle a payout
// @Description  Records the gateway outcome. A failed payout refunds the reserved amount; repeating the same outcome is a no-op.
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payout ID"
// @Param        request body SettlePayoutRequest true "Outcome"
// @Success      200  {object}  entity.Payout
// @Failure      409  {object}  map[string]string
// @Router       /payouts/{id}/settle [post]
func (h *PayoutHandler) SettlePayout(c *gin.Context) {
	var req SettlePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payoutUseCase.Settle(c.Param("id"), req.Outcome == "paid")
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// ListPayouts godoc
// @Summary      List payouts
// @Tags         payouts
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of payouts"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /payouts [get]
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, offset := pagination(c)

	payouts, err := h.payoutUseCase.List(userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list payouts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts, "count": len(payouts)})
}

func (h *PayoutHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPayoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, persistent.ErrInsufficientBalance),
		errors.Is(err, usecase.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, persistent.ErrWalletHeld),
		errors.Is(err, persistent.ErrPayoutConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Payout operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
