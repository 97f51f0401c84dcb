package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	postingUseCase usecase.PostingUseCase
	logger         *logger.Logger
}

func NewSaleHandler(postingUseCase usecase.PostingUseCase, logger *logger.Logger) *SaleHandler {
	return &SaleHandler{
		postingUseCase: postingUseCase,
		logger:         logger,
	}
}

type RecordSaleRequest struct {
	SaleID       string    `json:"sale_id" binding:"required"`
	// Amount may be zero: free products still record the sale fact.
	Amount       int64     `json:"amount" binding:"min=0"`
	ProductID    string    `json:"product_id" binding:"required"`
	BuyerID      string    `json:"buyer_id"`
	AffiliateRef string    `json:"affiliate_ref"`
	SettledAt    time.Time `json:"settled_at"`
	Source       string    `json:"source"`
}

// RecordSale godoc
// @Summary      Record a settled sale
// @Description  Records a sale and posts its affiliate commission exactly once. Replaying the same sale id is a no-op.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RecordSaleRequest true "Sale"
// @Success      200  {object}  usecase.RecordSaleResult
// @Failure      400  {object}  map[string]string
// @Router       /sales [post]
func (h *SaleHandler) RecordSale(c *gin.Context) {
	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	source := entity.SaleSource(req.Source)
	if source == "" {
		source = entity.SaleSourceCheckout
	}
	settledAt := req.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now().UTC()
	}

	result, err := h.postingUseCase.RecordSale(usecase.RecordSaleInput{
		SaleID:       req.SaleID,
		Amount:       req.Amount,
		ProductID:    req.ProductID,
		BuyerID:      req.BuyerID,
		AffiliateRef: req.AffiliateRef,
		SettledAt:    settledAt,
		Source:       source,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// VoidSale godoc
// @Summary      Void a refunded sale
// @Description  Soft-voids the sale and reverses its commission with a compensating ledger entry
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /sales/{id}/void [post]
func (h *SaleHandler) VoidSale(c *gin.Context) {
	entry, err := h.postingUseCase.VoidSale(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sale voided", "reversed_entry": entry})
}

type CorrectionRequest struct {
	AffiliateID string `json:"affiliate_id"`
	Amount      *int64 `json:"amount"`
}

// ManualCorrection godoc
// @Summary      Correct a sale's commission
// @Description  Reverses the current ledger entry and reposts with the corrected affiliate and/or amount
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Sale ID"
// @Param        request body CorrectionRequest true "Correction"
// @Success      200  {object}  entity.LedgerEntry
// @Failure      400  {object}  map[string]string
// @Router       /sales/{id}/correction [post]
func (h *SaleHandler) ManualCorrection(c *gin.Context) {
	var req CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.postingUseCase.ManualCorrection(c.Param("id"), req.AffiliateID, req.Amount)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListUnattributed godoc
// @Summary      List sales queued for manual mapping
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Number of sales"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Router       /sales/unattributed [get]
func (h *SaleHandler) ListUnattributed(c *gin.Context) {
	limit, offset := pagination(c)

	sales, err := h.postingUseCase.ListUnattributed(limit, offset)
	if err != nil {
		h.logger.Error("Failed to list unattributed sales: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sales": sales, "count": len(sales)})
}

func (h *SaleHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrSaleNotFound), errors.Is(err, usecase.ErrAffiliateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidAmount), errors.Is(err, usecase.ErrSaleVoided):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Sale operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pagination(c *gin.Context) (int, int) {
	limit := 50
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}
