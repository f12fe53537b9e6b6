package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionStatus represents the settlement status of a payment
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsFinal reports whether no further transition is allowed.
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusConfirmed || s == TransactionStatusFailed
}

// Transaction tracks settlement of a PaymentRequest. ID equals the payment id.
type Transaction struct {
	ID                string            `json:"id"`
	MerchantID        uuid.UUID         `json:"merchantId"`
	Status            TransactionStatus `json:"status"`
	BlockchainTxHash  null.String       `json:"blockchainTxHash,omitempty"`
	ConfirmationCount int               `json:"confirmationCount"`
	ConfirmedAt       null.Time         `json:"confirmedAt,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// NewPendingTransaction creates the PENDING row that accompanies a request
func NewPendingTransaction(req *PaymentRequest, now time.Time) *Transaction {
	return &Transaction{
		ID:         req.PaymentID,
		MerchantID: req.MerchantID,
		Status:     TransactionStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTransactionInput asks to ensure a pending transaction exists for a payment
type CreateTransactionInput struct {
	PaymentID string `json:"paymentId" binding:"required"`
}

// ConfirmTransactionInput is sent by a payer client after submitting the payment on chain
type ConfirmTransactionInput struct {
	PaymentID       string `json:"paymentId" binding:"required"`
	TransactionHash string `json:"transactionHash" binding:"required"`
}
