package repositories

import (
	"context"

	"github.com/google/uuid"
	"midatopay.backend/internal/domain/entities"
)

// PaymentRequestRepository stores issued payment requests
type PaymentRequestRepository interface {
	Create(ctx context.Context, request *entities.PaymentRequest) error
	GetByPaymentID(ctx context.Context, paymentID string) (*entities.PaymentRequest, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*entities.PaymentWithStatus, int64, error)
}
