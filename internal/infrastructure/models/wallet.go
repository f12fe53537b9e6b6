package models

import (
	"time"

	"github.com/google/uuid"
)

type MerchantWallet struct {
	UserID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email               string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordCheck       string    `gorm:"type:varchar(255);not null"`
	EncryptedPrivateKey string    `gorm:"type:text;not null"`
	PublicKey           string    `gorm:"type:varchar(132);not null"`
	Address             string    `gorm:"type:varchar(42);not null;index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (MerchantWallet) TableName() string {
	return "merchant_wallets"
}

// All lists every model for schema migration.
func All() []interface{} {
	return []interface{}{
		&PaymentRequest{},
		&Transaction{},
		&ProcessedChainEvent{},
		&ChainCheckpoint{},
		&MerchantWallet{},
	}
}
