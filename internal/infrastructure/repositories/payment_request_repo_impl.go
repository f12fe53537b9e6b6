package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/infrastructure/models"
)

// PaymentRequestRepositoryImpl implements PaymentRequestRepository
type PaymentRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRequestRepository(db *gorm.DB) *PaymentRequestRepositoryImpl {
	return &PaymentRequestRepositoryImpl{db: db}
}

func (r *PaymentRequestRepositoryImpl) Create(ctx context.Context, req *entities.PaymentRequest) error {
	m := &models.PaymentRequest{
		PaymentID:       req.PaymentID,
		MerchantID:      req.MerchantID,
		MerchantAddress: req.MerchantAddress,
		TokenSymbol:     req.TokenSymbol,
		TokenAddress:    req.TokenAddress,
		TokenAmount:     req.TokenAmount,
		FiatAmount:      req.FiatAmount.String(),
		FiatCurrency:    req.FiatCurrency,
		Concept:         req.Concept,
		OrderID:         req.OrderID.Ptr(),
		ExpiresAt:       req.ExpiresAt,
		CreatedAt:       req.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *PaymentRequestRepositoryImpl) GetByPaymentID(ctx context.Context, paymentID string) (*entities.PaymentRequest, error) {
	var m models.PaymentRequest
	if err := GetDB(ctx, r.db).Where("payment_id = ?", paymentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPaymentRequestEntity(&m), nil
}

type paymentWithStatusRow struct {
	models.PaymentRequest
	Status           *string
	BlockchainTxHash *string
	ConfirmedAt      *time.Time
}

func (r *PaymentRequestRepositoryImpl) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*entities.PaymentWithStatus, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.PaymentRequest{}).
		Where("merchant_id = ?", merchantID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []paymentWithStatusRow
	if err := GetDB(ctx, r.db).
		Table("payment_requests AS pr").
		Select("pr.*, t.status AS status, t.blockchain_tx_hash AS blockchain_tx_hash, t.confirmed_at AS confirmed_at").
		Joins("LEFT JOIN transactions t ON t.id = pr.payment_id").
		Where("pr.merchant_id = ?", merchantID).
		Order("pr.created_at DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.PaymentWithStatus, 0, len(rows))
	for i := range rows {
		row := rows[i]
		item := &entities.PaymentWithStatus{
			PaymentRequest:   *toPaymentRequestEntity(&row.PaymentRequest),
			Status:           entities.TransactionStatusPending,
			BlockchainTxHash: null.StringFromPtr(row.BlockchainTxHash),
			ConfirmedAt:      null.TimeFromPtr(row.ConfirmedAt),
		}
		if row.Status != nil {
			item.Status = entities.TransactionStatus(*row.Status)
		}
		items = append(items, item)
	}
	return items, total, nil
}

func toPaymentRequestEntity(m *models.PaymentRequest) *entities.PaymentRequest {
	fiat, err := decimal.NewFromString(m.FiatAmount)
	if err != nil {
		fiat = decimal.Zero
	}
	return &entities.PaymentRequest{
		PaymentID:       m.PaymentID,
		MerchantID:      m.MerchantID,
		MerchantAddress: m.MerchantAddress,
		TokenSymbol:     m.TokenSymbol,
		TokenAddress:    m.TokenAddress,
		TokenAmount:     m.TokenAmount,
		FiatAmount:      fiat,
		FiatCurrency:    m.FiatCurrency,
		Concept:         m.Concept,
		OrderID:         null.StringFromPtr(m.OrderID),
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
	}
}
