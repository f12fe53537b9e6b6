package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/infrastructure/models"
)

// WalletRepository mirrors merchant wallets into the relational store
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Upsert stores the wallet, replacing any previous record for the same user
func (r *WalletRepository) Upsert(ctx context.Context, wallet *entities.MerchantWallet) error {
	m := &models.MerchantWallet{
		UserID:              wallet.UserID,
		Email:               wallet.Email,
		PasswordCheck:       wallet.PasswordCheck,
		EncryptedPrivateKey: wallet.EncryptedPrivateKey,
		PublicKey:           wallet.PublicKey,
		Address:             wallet.Address,
		CreatedAt:           wallet.CreatedAt,
		UpdatedAt:           time.Now(),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email", "password_check", "encrypted_private_key", "public_key", "address", "updated_at",
		}),
	}).Create(m).Error
}

// GetByUserID gets the wallet of a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.MerchantWallet, error) {
	return r.first(ctx, "user_id = ?", userID)
}

// GetByEmail gets a wallet by owner email
func (r *WalletRepository) GetByEmail(ctx context.Context, email string) (*entities.MerchantWallet, error) {
	return r.first(ctx, "email = ?", email)
}

// DeleteByEmail removes the mirrored wallet; a missing row is not an error
func (r *WalletRepository) DeleteByEmail(ctx context.Context, email string) error {
	return GetDB(ctx, r.db).Where("email = ?", email).Delete(&models.MerchantWallet{}).Error
}

func (r *WalletRepository) first(ctx context.Context, query string, arg interface{}) (*entities.MerchantWallet, error) {
	var m models.MerchantWallet
	if err := GetDB(ctx, r.db).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.MerchantWallet{
		UserID:              m.UserID,
		Email:               m.Email,
		PasswordCheck:       m.PasswordCheck,
		EncryptedPrivateKey: m.EncryptedPrivateKey,
		PublicKey:           m.PublicKey,
		Address:             m.Address,
		CreatedAt:           m.CreatedAt,
	}, nil
}
