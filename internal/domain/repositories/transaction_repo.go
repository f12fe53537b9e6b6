package repositories

import (
	"context"
	"time"

	"midatopay.backend/internal/domain/entities"
)

// TransactionRepository stores settlement state. Status changes are compare-and-set
// on PENDING and report whether this call performed the transition.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id string) (*entities.Transaction, error)
	MarkConfirmed(ctx context.Context, id, txHash string, confirmedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id string) (bool, error)
	// GetExpiredPendingIDs lists PENDING transactions whose request expired before cutoff.
	GetExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
}
