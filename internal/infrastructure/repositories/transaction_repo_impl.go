package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/infrastructure/models"
)

// TransactionRepositoryImpl implements TransactionRepository
type TransactionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepositoryImpl {
	return &TransactionRepositoryImpl{db: db}
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx *entities.Transaction) error {
	m := &models.Transaction{
		ID:                tx.ID,
		MerchantID:        tx.MerchantID,
		Status:            string(tx.Status),
		BlockchainTxHash:  tx.BlockchainTxHash.Ptr(),
		ConfirmationCount: tx.ConfirmationCount,
		ConfirmedAt:       tx.ConfirmedAt.Ptr(),
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Transaction, error) {
	var m models.Transaction
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toTransactionEntity(&m), nil
}

// MarkConfirmed moves a PENDING transaction to CONFIRMED. It returns false when the
// row was missing or no longer PENDING.
func (r *TransactionRepositoryImpl) MarkConfirmed(ctx context.Context, id, txHash string, confirmedAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, entities.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":             entities.TransactionStatusConfirmed,
			"blockchain_tx_hash": txHash,
			"confirmation_count": 1,
			"confirmed_at":       confirmedAt,
			"updated_at":         confirmedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *TransactionRepositoryImpl) MarkFailed(ctx context.Context, id string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, entities.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.TransactionStatusFailed,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *TransactionRepositoryImpl) GetExpiredPendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	var ids []string
	err := GetDB(ctx, r.db).
		Table("transactions AS t").
		Joins("JOIN payment_requests pr ON pr.payment_id = t.id").
		Where("t.status = ? AND pr.expires_at < ?", entities.TransactionStatusPending, cutoff).
		Order("pr.expires_at ASC").
		Limit(limit).
		Pluck("t.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func toTransactionEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		ID:                m.ID,
		MerchantID:        m.MerchantID,
		Status:            entities.TransactionStatus(m.Status),
		BlockchainTxHash:  null.StringFromPtr(m.BlockchainTxHash),
		ConfirmationCount: m.ConfirmationCount,
		ConfirmedAt:       null.TimeFromPtr(m.ConfirmedAt),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
