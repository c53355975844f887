package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/services"
)

// SettlementHandler handles settlement-related requests.
type SettlementHandler struct {
	settlementService services.SettlementServicer
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService services.SettlementServicer) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// GetSettlements lists the settlement rows keyed by a repayment transaction
func (h *SettlementHandler) GetSettlements(c *gin.Context) {
	settlements, err := h.settlementService.SettlementsForRepayment(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

// SetSettlementsRequest carries the replacement allocation list.
type SetSettlementsRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
}

// SetSettlements replaces a repayment's settlement allocations
// @Summary     Set a repayment's settlements
// @Description Full replace: existing allocations for the repayment are dropped and the given list is validated and inserted as a whole. An empty list clears them.
// @Tags        settlements
// @Accept      json
// @Security    BearerAuth
// @Param       id path string true "Repayment transaction ID"
// @Param       request body SetSettlementsRequest true "Replacement allocations"
// @Success     204 "Settlements replaced"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Allocation conflict"
// @Router      /transactions/{id}/settlements [put]
func (h *SettlementHandler) SetSettlements(c *gin.Context) {
	var req SetSettlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	allocations := make([]services.Allocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = services.Allocation{TargetTxnID: a.TargetTxnID, Amount: a.Amount}
	}

	if err := h.settlementService.SetSettlementsForRepayment(c.Param("id"), allocations); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetEligibleTargets lists settlement targets for a new repayment of the
// given type, most recent first
// @Summary     List eligible settlement targets
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Param       type query string true "Repayment transaction type (GAVE or GOT)"
// @Success     200 {array} services.TargetOption
// @Router      /persons/{id}/settlement-targets [get]
func (h *SettlementHandler) GetEligibleTargets(c *gin.Context) {
	txType := models.TransactionType(c.Query("type"))
	if txType != models.TransactionTypeGave && txType != models.TransactionTypeGot {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "type must be GAVE or GOT"))
		return
	}

	targets, err := h.settlementService.EligibleTargets(c.Param("id"), txType)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": targets})
}
