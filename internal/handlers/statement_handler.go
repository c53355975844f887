package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"khata/internal/services"
)

// StatementHandler serves projected views: histories with running
// balances, month-grouped statements, and smart statements.
type StatementHandler struct {
	statementService services.StatementServicer
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementService services.StatementServicer) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// GetStatement returns the month-grouped statement for a person
// @Summary     Get a person's statement
// @Description Month-grouped history with running balances, settlement status per entry, and per-month nets.
// @Tags        statements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Success     200 {object} map[string]interface{}
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /persons/{id}/statement [get]
func (h *StatementHandler) GetStatement(c *gin.Context) {
	groups, total, err := h.statementService.MonthlyStatement(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"months":        groups,
		"total_balance": total,
	})
}

// GetSmartStatement returns the smart statement for a person
// @Summary     Get a person's smart statement
// @Description Outstanding debts in both directions when any exist, otherwise the latest transactions as a reference snapshot.
// @Tags        statements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Success     200 {object} services.SmartStatement
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /persons/{id}/statement/smart [get]
func (h *StatementHandler) GetSmartStatement(c *gin.Context) {
	statement, err := h.statementService.SmartStatement(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}
