package models

import "time"

// ProcessedChainEvent is keyed by (tx_hash, log_index) so a second insert of the same event fails.
type ProcessedChainEvent struct {
	TxHash      string `gorm:"type:varchar(66);primaryKey"`
	LogIndex    uint   `gorm:"primaryKey;autoIncrement:false"`
	PaymentID   string `gorm:"type:varchar(66);index"`
	BlockNumber int64  `gorm:"not null"`
	Outcome     string `gorm:"type:varchar(32);not null"`
	ProcessedAt time.Time
}

func (ProcessedChainEvent) TableName() string {
	return "processed_chain_events"
}

type ChainCheckpoint struct {
	ContractAddress    string `gorm:"type:varchar(42);primaryKey"`
	LastProcessedBlock int64  `gorm:"not null"`
	UpdatedAt          time.Time
}

func (ChainCheckpoint) TableName() string {
	return "chain_checkpoints"
}
