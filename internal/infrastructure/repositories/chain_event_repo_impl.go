package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/infrastructure/models"
)

// ProcessedEventRepositoryImpl implements the chain event dedup ledger
type ProcessedEventRepositoryImpl struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) *ProcessedEventRepositoryImpl {
	return &ProcessedEventRepositoryImpl{db: db}
}

// Record inserts the event unless (tx_hash, log_index) is already present.
// ON CONFLICT DO NOTHING keeps an enclosing postgres transaction usable on duplicates.
func (r *ProcessedEventRepositoryImpl) Record(ctx context.Context, event *entities.ProcessedEvent) (bool, error) {
	processedAt := event.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}
	m := &models.ProcessedChainEvent{
		TxHash:      strings.ToLower(event.TransactionHash),
		LogIndex:    event.EventIndex,
		PaymentID:   event.PaymentID,
		BlockNumber: int64(event.BlockNumber),
		Outcome:     string(event.Outcome),
		ProcessedAt: processedAt,
	}
	res := GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ProcessedEventRepositoryImpl) Exists(ctx context.Context, txHash string, eventIndex uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.ProcessedChainEvent{}).
		Where("tx_hash = ? AND log_index = ?", strings.ToLower(txHash), eventIndex).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProcessedEventRepositoryImpl) ListByPaymentID(ctx context.Context, paymentID string) ([]*entities.ProcessedEvent, error) {
	var ms []models.ProcessedChainEvent
	if err := GetDB(ctx, r.db).
		Where("payment_id = ?", paymentID).
		Order("processed_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	events := make([]*entities.ProcessedEvent, 0, len(ms))
	for _, m := range ms {
		events = append(events, &entities.ProcessedEvent{
			TransactionHash: m.TxHash,
			EventIndex:      m.LogIndex,
			PaymentID:       m.PaymentID,
			BlockNumber:     uint64(m.BlockNumber),
			Outcome:         entities.ProcessedEventOutcome(m.Outcome),
			ProcessedAt:     m.ProcessedAt,
		})
	}
	return events, nil
}

// CheckpointRepositoryImpl implements CheckpointRepository
type CheckpointRepositoryImpl struct {
	db *gorm.DB
}

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepositoryImpl {
	return &CheckpointRepositoryImpl{db: db}
}

func (r *CheckpointRepositoryImpl) Get(ctx context.Context, contractAddress string) (*entities.ChainCheckpoint, error) {
	var m models.ChainCheckpoint
	if err := GetDB(ctx, r.db).Where("contract_address = ?", strings.ToLower(contractAddress)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.ChainCheckpoint{
		ContractAddress:    m.ContractAddress,
		LastProcessedBlock: uint64(m.LastProcessedBlock),
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

func (r *CheckpointRepositoryImpl) Save(ctx context.Context, contractAddress string, block uint64) error {
	m := &models.ChainCheckpoint{
		ContractAddress:    strings.ToLower(contractAddress),
		LastProcessedBlock: int64(block),
		UpdatedAt:          time.Now(),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_processed_block", "updated_at"}),
	}).Create(m).Error
}
