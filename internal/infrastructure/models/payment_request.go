package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentRequest struct {
	PaymentID       string    `gorm:"column:payment_id;type:varchar(66);primaryKey"`
	MerchantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	MerchantAddress string    `gorm:"type:varchar(42);not null"`
	TokenSymbol     string    `gorm:"type:varchar(16);not null"`
	TokenAddress    string    `gorm:"type:varchar(42);not null"`
	TokenAmount     string    `gorm:"type:varchar(100);not null"` // BigInt
	FiatAmount      string    `gorm:"type:decimal(36,18);not null"`
	FiatCurrency    string    `gorm:"type:varchar(8);not null"`
	Concept         string    `gorm:"type:varchar(140)"`
	OrderID         *string   `gorm:"type:varchar(64)"`
	ExpiresAt       time.Time `gorm:"not null;index"`
	CreatedAt       time.Time
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}

type Transaction struct {
	ID                string    `gorm:"type:varchar(66);primaryKey"`
	MerchantID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Status            string    `gorm:"type:varchar(20);not null;index"`
	BlockchainTxHash  *string   `gorm:"type:varchar(66);index"`
	ConfirmationCount int       `gorm:"not null;default:0"`
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Transaction) TableName() string {
	return "transactions"
}
