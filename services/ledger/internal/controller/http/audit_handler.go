package http

import (
	"net/http"
	"time"

	"eksporyuk-ledger/pkg/logger"
	"eksporyuk-ledger/services/ledger/internal/entity"
	"eksporyuk-ledger/services/ledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditUseCase usecase.AuditUseCase
	logger       *logger.Logger
}

func NewAuditHandler(auditUseCase usecase.AuditUseCase, logger *logger.Logger) *AuditHandler {
	return &AuditHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

type AuditRunRequest struct {
	AffiliateID string     `json:"affiliate_id"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	Apply       bool       `json:"apply"`
	Export      bool       `json:"export"`
}

// RunAudit godoc
// @Summary      Run a reconciliation audit
// @Description  Replays the ledger against stored wallet state and reports every discrepancy. With apply=true, duplicate entries are reversed and missing entries reposted through the poster.
// @Tags         audit
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AuditRunRequest true "Scope and options"
// @Success      200  {object}  entity.DiscrepancyReport
// @Failure      400  {object}  map[string]string
// @Router       /audit/runs [post]
func (h *AuditHandler) RunAudit(c *gin.Context) {
	var req AuditRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.auditUseCase.Run(
		entity.AuditScope{AffiliateID: req.AffiliateID, From: req.From, To: req.To},
		usecase.AuditOptions{Apply: req.Apply, Export: req.Export},
	)
	if err != nil {
		h.logger.Error("Audit run failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
