package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "khata/internal/errors"
	"khata/internal/models"
	"khata/internal/pagination"
	"khata/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// AllocationRequest is one settlement allocation in a transaction payload.
type AllocationRequest struct {
	TargetTxnID string `json:"target_txn_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
}

// CreateTransactionRequest represents the request payload for creating a
// transaction, optionally with tags and settlement allocations applied in
// the same atomic batch.
type CreateTransactionRequest struct {
	Amount      int64                  `json:"amount" binding:"required,gt=0"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type"`
	Note        string                 `json:"note" binding:"max=500"`
	Date        *string                `json:"date"`
	DueDate     *string                `json:"due_date"`
	TagIDs      []string               `json:"tag_ids"`
	Allocations []AllocationRequest    `json:"allocations"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a GAVE or GOT entry for a person. Tags and settlement allocations, when present, are applied atomically with the insert.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     409 {object} ErrorResponse "Allocation conflict"
// @Router      /persons/{id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	date := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
			return
		}
		date = parsed
	}

	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	allocations := make([]services.Allocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = services.Allocation{TargetTxnID: a.TargetTxnID, Amount: a.Amount}
	}

	transaction, err := h.transactionService.CreateTransactionWithSettlements(
		c.Param("id"),
		req.Amount,
		req.Type,
		req.Note,
		date,
		dueDate,
		req.TagIDs,
		allocations,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetPersonTransactions lists a person's transactions newest-first
// @Summary     List a person's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Router      /persons/{id}/transactions [get]
func (h *TransactionHandler) GetPersonTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	result, err := h.transactionService.GetPersonTransactions(c.Param("id"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns one transaction
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.transactionService.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransactionRequest represents the request payload for editing a transaction
type UpdateTransactionRequest struct {
	Amount  int64                  `json:"amount" binding:"required,gt=0"`
	Type    models.TransactionType `json:"type" binding:"required,transaction_type"`
	Note    string                 `json:"note" binding:"max=500"`
	Date    string                 `json:"date" binding:"required"`
	DueDate *string                `json:"due_date"`
}

// UpdateTransaction edits a transaction
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}
	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(
		c.Param("id"), req.Amount, req.Type, req.Note, date, dueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction and its dependents
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
