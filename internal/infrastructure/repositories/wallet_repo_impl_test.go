package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
)

func TestWalletRepository_UpsertGetDelete(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	w := &entities.MerchantWallet{
		UserID:              userID,
		Email:               "shop@example.com",
		PasswordCheck:       "$2a$04$hash",
		EncryptedPrivateKey: "eyJ.jwe",
		PublicKey:           "0x04abcd",
		Address:             "0x9fB29AAc15b9A4B7F17c3385939b007540f4d791",
		CreatedAt:           time.Now(),
	}
	require.NoError(t, repo.Upsert(ctx, w))

	w.EncryptedPrivateKey = "eyJ.rotated"
	require.NoError(t, repo.Upsert(ctx, w))

	got, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "eyJ.rotated", got.EncryptedPrivateKey)

	got, err = repo.GetByEmail(ctx, "shop@example.com")
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)

	require.NoError(t, repo.DeleteByEmail(ctx, "shop@example.com"))
	_, err = repo.GetByEmail(ctx, "shop@example.com")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	require.NoError(t, repo.DeleteByEmail(ctx, "nobody@example.com"))
}

func TestWalletRepository_DBErrors(t *testing.T) {
	db := newTestDB(t)
	repo := NewWalletRepository(db)
	ctx := context.Background()

	require.Error(t, repo.Upsert(ctx, &entities.MerchantWallet{UserID: uuid.New()}))
	_, err := repo.GetByUserID(ctx, uuid.New())
	require.Error(t, err)
	require.Error(t, repo.DeleteByEmail(ctx, "x@y.z"))
}
