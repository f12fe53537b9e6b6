package repositories

import (
	"context"

	"midatopay.backend/internal/domain/entities"
)

// ProcessedEventRepository is the durable dedup ledger of chain events
type ProcessedEventRepository interface {
	// Record inserts the ledger row; it returns false when the event was already recorded.
	Record(ctx context.Context, event *entities.ProcessedEvent) (bool, error)
	Exists(ctx context.Context, txHash string, eventIndex uint) (bool, error)
	ListByPaymentID(ctx context.Context, paymentID string) ([]*entities.ProcessedEvent, error)
}

// CheckpointRepository persists how far the watcher has scanned per contract
type CheckpointRepository interface {
	Get(ctx context.Context, contractAddress string) (*entities.ChainCheckpoint, error)
	Save(ctx context.Context, contractAddress string, block uint64) error
}
