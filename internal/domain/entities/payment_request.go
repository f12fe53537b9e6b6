package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// QRPayloadType identifies MidatoPay payment payloads to payer wallets.
const QRPayloadType = "midatopay_payment"

// PaymentRequest represents a merchant's request to be paid.
// It is immutable once created.
type PaymentRequest struct {
	PaymentID       string          `json:"paymentId"`
	MerchantID      uuid.UUID       `json:"merchantId"`
	MerchantAddress string          `json:"merchantAddress"`
	TokenSymbol     string          `json:"tokenSymbol"`
	TokenAddress    string          `json:"tokenAddress"`
	TokenAmount     string          `json:"tokenAmount"` // In smallest unit
	FiatAmount      decimal.Decimal `json:"fiatAmount"`
	FiatCurrency    string          `json:"fiatCurrency"`
	Concept         string          `json:"concept"`
	OrderID         null.String     `json:"orderId,omitempty"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// IsExpired reports whether the request can no longer be paid at now.
func (r *PaymentRequest) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// CreatePaymentInput represents input for creating a payment request
type CreatePaymentInput struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"required"`
	Concept  string          `json:"concept" binding:"required,max=140"`
	OrderID  string          `json:"orderId,omitempty" binding:"max=64"`
}

// QRPayload is the JSON document encoded in the payment QR code.
// Field names and order are consumed by payer wallets and must stay stable.
type QRPayload struct {
	Type            string `json:"type"`
	PaymentID       string `json:"payment_id"`
	MerchantAddress string `json:"merchant_address"`
	TokenAddress    string `json:"token_address"`
	Amount          string `json:"amount"`
	AmountARS       string `json:"amount_ars"`
	Currency        string `json:"currency"`
	Concept         string `json:"concept"`
	OrderID         string `json:"order_id,omitempty"`
	Network         string `json:"network"`
	ContractAddress string `json:"contract_address"`
}

// CreatePaymentResponse is returned after a payment request is issued
type CreatePaymentResponse struct {
	Payment     *PaymentRequest `json:"payment"`
	Transaction *Transaction    `json:"transaction"`
	QR          QRPayload       `json:"qr"`
	QRData      string          `json:"qrData"`
}

// PaymentWithStatus joins a request with the state of its transaction
type PaymentWithStatus struct {
	PaymentRequest
	Status           TransactionStatus `json:"status"`
	BlockchainTxHash null.String       `json:"blockchainTxHash,omitempty"`
	ConfirmedAt      null.Time         `json:"confirmedAt,omitempty"`
}
