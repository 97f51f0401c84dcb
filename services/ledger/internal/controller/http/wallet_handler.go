package http

import (
	"net/http"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletUseCase usecase.WalletUseCase
	logger        *logger.Logger
}

func NewWalletHandler(walletUseCase usecase.WalletUseCase, logger *logger.Logger) *WalletHandler {
	return &WalletHandler{
		walletUseCase: walletUseCase,
		logger:        logger,
	}
}

// GetSummary godoc
// @Summary      Get wallet summary
// @Description  Balance, pending balance and lifetime totals for a user
// @Tags         wallets
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Success      200  {object}  usecase.WalletSummary
// @Router       /wallets/{user_id} [get]
func (h *WalletHandler) GetSummary(c *gin.Context) {
	summary, err := h.walletUseCase.GetSummary(c.Param("user_id"))
	if err != nil {
		h.logger.Error("Failed to get wallet summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTransactions godoc
// @Summary      Get wallet transactions
// @Description  Append-only audit rows for every balance mutation, newest first
// @Tags         wallets
// @Produce      json
// @Security     BearerAuth
// @Param        user_id path string true "User ID"
// @Param        limit query int false "Number of transactions"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /wallets/{user_id}/transactions [get]
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	limit, offset := pagination(c)

	transactions, err := h.walletUseCase.GetTransactions(c.Param("user_id"), limit, offset)
	if err != nil {
		h.logger.Error("Failed to get transactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "count": len(transactions)})
}

// GetLedgerHistory godoc
// @Summary      Get affiliate ledger history
// @Description  Posted and reversed commission entries for an affiliate, newest first
// @Tags         affiliates
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Affiliate ID"
// @Param        limit query int false "Number of entries"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /affiliates/{id}/ledger [get]
func (h *WalletHandler) GetLedgerHistory(c *gin.Context) {
	limit, offset := pagination(c)

	entries, err := h.walletUseCase.GetLedgerHistory(c.Param("id"), limit, offset)
	if err != nil {
		h.logger.Error("Failed to get ledger history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}
