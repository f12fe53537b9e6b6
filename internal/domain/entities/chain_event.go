package entities

import (
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ChainEvent is a contract log read from the node. It is never persisted verbatim.
// Keys holds the indexed topics (Keys[0] is the event selector); Data the ABI-encoded body.
type ChainEvent struct {
	TransactionHash string
	EventIndex      uint
	BlockNumber     uint64
	FromAddress     string
	Keys            []string
	Data            []byte
}

// ID identifies an event for deduplication.
func (e ChainEvent) ID() string {
	return EventID(e.TransactionHash, e.EventIndex)
}

// EventID formats the txHash:index identifier of an event
func EventID(txHash string, index uint) string {
	return fmt.Sprintf("%s:%d", strings.ToLower(txHash), index)
}

// ChainReceipt is the execution outcome of a mined transaction
type ChainReceipt struct {
	TransactionHash string
	BlockNumber     uint64
	Status          uint64
	Events          []ChainEvent
}

const ReceiptStatusSuccess uint64 = 1

// Succeeded reports whether the transaction executed successfully.
func (r *ChainReceipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccess
}

// PaymentCompleted is the decoded body of a gateway PaymentCompleted event.
type PaymentCompleted struct {
	PaymentID       string
	MerchantAddress string
	PayerAddress    string
	Amount          *big.Int
	TokenAddress    string
	Timestamp       uint64
}

// ProcessedEventOutcome records what the reconciler did with an event
type ProcessedEventOutcome string

const (
	OutcomeConfirmed      ProcessedEventOutcome = "CONFIRMED"
	OutcomeAlreadyFinal   ProcessedEventOutcome = "ALREADY_FINAL"
	OutcomeUnknownPayment ProcessedEventOutcome = "UNKNOWN_PAYMENT"
	OutcomeDecodeError    ProcessedEventOutcome = "DECODE_ERROR"
)

// ProcessedEvent is the durable dedup ledger entry for one chain event.
type ProcessedEvent struct {
	TransactionHash string
	EventIndex      uint
	PaymentID       string
	BlockNumber     uint64
	Outcome         ProcessedEventOutcome
	ProcessedAt     time.Time
}

// ChainCheckpoint is the last block fully processed for a contract.
type ChainCheckpoint struct {
	ContractAddress    string
	LastProcessedBlock uint64
	UpdatedAt          time.Time
}

const PaymentConfirmedMessageType = "payment_confirmed"

// PaymentConfirmedPayload is pushed to realtime clients once a payment is confirmed.
type PaymentConfirmedPayload struct {
	PaymentID       string `json:"paymentId"`
	TransactionHash string `json:"transactionHash"`
	Amount          string `json:"amount"`
	MerchantAddress string `json:"merchantAddress"`
	Timestamp       int64  `json:"timestamp"`
}

// RealtimeMessage is the envelope of every realtime push.
type RealtimeMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
