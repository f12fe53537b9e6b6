package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/interfaces/http/response"
)

// TransactionService reads and ensures settlement records
type TransactionService interface {
	EnsureTransaction(ctx context.Context, paymentID string) (*entities.Transaction, error)
	GetTransaction(ctx context.Context, paymentID string) (*entities.Transaction, error)
}

// PaymentConfirmer reconciles a submitted chain transaction synchronously
type PaymentConfirmer interface {
	ProcessPayment(ctx context.Context, txHash, paymentID string) (*entities.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionService
	confirmer    PaymentConfirmer
}

func NewTransactionHandler(transactions TransactionService, confirmer PaymentConfirmer) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, confirmer: confirmer}
}

// CreateTransaction ensures the PENDING transaction of a payment exists
// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var input entities.CreateTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if !isPaymentID(input.PaymentID) {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	tx, err := h.transactions.EnsureTransaction(c.Request.Context(), input.PaymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// ConfirmTransaction waits for the payer's transaction and applies its payment event
// POST /api/v1/transactions/confirm
func (h *TransactionHandler) ConfirmTransaction(c *gin.Context) {
	var input entities.ConfirmTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if !isPaymentID(input.PaymentID) || !isPaymentID(input.TransactionHash) {
		response.Error(c, domainerrors.BadRequest("paymentId and transactionHash must be 32-byte hex words"))
		return
	}

	tx, err := h.confirmer.ProcessPayment(c.Request.Context(), input.TransactionHash, input.PaymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if tx == nil {
		response.Error(c, domainerrors.NotFound("payment not found"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// GetTransaction returns the settlement status of a payment
// GET /api/v1/transactions/:paymentId
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	paymentID := c.Param("paymentId")
	if !isPaymentID(paymentID) {
		response.Error(c, domainerrors.BadRequest("invalid payment ID"))
		return
	}

	tx, err := h.transactions.GetTransaction(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// isPaymentID accepts 0x-prefixed 32-byte hex words (payment ids and tx hashes)
func isPaymentID(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == 32
}
