package repositories

import (
	"context"

	"github.com/google/uuid"
	"midatopay.backend/internal/domain/entities"
)

// WalletRepository is the relational mirror of merchant wallets, keyed by user id
type WalletRepository interface {
	Upsert(ctx context.Context, wallet *entities.MerchantWallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.MerchantWallet, error)
	GetByEmail(ctx context.Context, email string) (*entities.MerchantWallet, error)
	DeleteByEmail(ctx context.Context, email string) error
}
