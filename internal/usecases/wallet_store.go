package usecases

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/domain/repositories"
	"midatopay.backend/pkg/crypto"
	"midatopay.backend/pkg/logger"
	redispkg "midatopay.backend/pkg/redis"
	"midatopay.backend/pkg/utils"
)

var (
	redisGet = redispkg.Get
	redisSet = redispkg.Set
	redisDel = redispkg.Del

	generateKey = gethcrypto.GenerateKey
)

const minPasswordLength = 8

// WalletStore keeps merchant wallets in the keyed store (Redis) and mirrors
// them to the relational store. Private keys are only held sealed.
type WalletStore struct {
	walletRepo repositories.WalletRepository
	validate   *validator.Validate
	now        func() time.Time
}

// NewWalletStore creates a new wallet store
func NewWalletStore(walletRepo repositories.WalletRepository) *WalletStore {
	return &WalletStore{
		walletRepo: walletRepo,
		validate:   validator.New(),
		now:        time.Now,
	}
}

func walletKey(email string) string {
	return walletKeyPrefix + utils.NormalizeEmail(email)
}

// GenerateWallet draws a fresh secp256k1 key and seals it under password.
func (s *WalletStore) GenerateWallet(ctx context.Context, email, password string) (*entities.MerchantWallet, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: email and a password of at least %d characters are required", domainerrors.ErrInvalidInput, minPasswordLength)
	}

	key, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	sealed, err := crypto.SealSecret(gethcrypto.FromECDSA(key), password)
	if err != nil {
		return nil, err
	}
	check, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &entities.MerchantWallet{
		UserID:              utils.GenerateUUIDv7(),
		Email:               email,
		PasswordCheck:       check,
		EncryptedPrivateKey: sealed,
		PublicKey:           hexutil.Encode(gethcrypto.FromECDSAPub(&key.PublicKey)),
		Address:             gethcrypto.PubkeyToAddress(key.PublicKey).Hex(),
		CreatedAt:           s.now().UTC(),
	}, nil
}

// SaveWallet writes the wallet to the keyed store and its relational mirror.
func (s *WalletStore) SaveWallet(ctx context.Context, wallet *entities.MerchantWallet) error {
	if err := checkWalletRecord(wallet); err != nil {
		return err
	}
	raw, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	if err := redisSet(ctx, walletKey(wallet.Email), raw, 0); err != nil {
		return fmt.Errorf("failed to store wallet: %w", err)
	}
	if err := s.walletRepo.Upsert(ctx, wallet); err != nil {
		return fmt.Errorf("failed to mirror wallet: %w", err)
	}
	return nil
}

// LoadWallet returns the wallet of email, or nil when there is none.
// A corrupted record is discarded and reported as missing.
func (s *WalletStore) LoadWallet(ctx context.Context, email string) (*entities.MerchantWallet, error) {
	key := walletKey(email)
	raw, err := redisGet(ctx, key)
	if errors.Is(err, redispkg.Nil) {
		return s.loadMirror(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet: %w", err)
	}

	var wallet entities.MerchantWallet
	if err := json.Unmarshal([]byte(raw), &wallet); err != nil {
		return nil, s.discard(ctx, email, fmt.Errorf("%w: %v", domainerrors.ErrCorruptedWalletRecord, err))
	}
	if err := checkWalletRecord(&wallet); err != nil {
		return nil, s.discard(ctx, email, err)
	}
	if wallet.Email != utils.NormalizeEmail(email) {
		return nil, s.discard(ctx, email, fmt.Errorf("%w: stored under another email", domainerrors.ErrCorruptedWalletRecord))
	}
	return &wallet, nil
}

func (s *WalletStore) loadMirror(ctx context.Context, email string) (*entities.MerchantWallet, error) {
	wallet, err := s.walletRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := checkWalletRecord(wallet); err != nil {
		return nil, s.discard(ctx, email, err)
	}

	if raw, err := json.Marshal(wallet); err == nil {
		if err := redisSet(ctx, walletKey(email), raw, 0); err != nil {
			logger.Warn(ctx, "Failed to cache mirrored wallet", zap.Error(err))
		}
	}
	return wallet, nil
}

// discard removes a corrupted record everywhere; only storage failures are returned.
func (s *WalletStore) discard(ctx context.Context, email string, cause error) error {
	logger.Warn(ctx, "Discarding corrupted wallet record", zap.String("email", utils.NormalizeEmail(email)), zap.Error(cause))
	return s.ClearWallet(ctx, email)
}

// VerifyCredentials reports whether email has a wallet sealed under password.
func (s *WalletStore) VerifyCredentials(ctx context.Context, email, password string) bool {
	wallet, err := s.LoadWallet(ctx, email)
	if err != nil {
		logger.Warn(ctx, "Failed to load wallet for credential check", zap.Error(err))
		return false
	}
	if wallet == nil || wallet.Email != utils.NormalizeEmail(email) {
		return false
	}
	return crypto.CheckPassword(password, wallet.PasswordCheck)
}

// ClearWallet removes the wallet of email from both stores
func (s *WalletStore) ClearWallet(ctx context.Context, email string) error {
	if err := redisDel(ctx, walletKey(email)); err != nil {
		return fmt.Errorf("failed to clear wallet: %w", err)
	}
	return s.walletRepo.DeleteByEmail(ctx, utils.NormalizeEmail(email))
}

// ExportWallet serializes the wallet of email in the portable backup format.
func (s *WalletStore) ExportWallet(ctx context.Context, email string) ([]byte, error) {
	wallet, err := s.LoadWallet(ctx, email)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, domainerrors.ErrNotFound
	}
	return json.Marshal(entities.WalletExport{
		Version:             entities.WalletExportVersion,
		UserID:              wallet.UserID,
		Email:               wallet.Email,
		PasswordCheck:       wallet.PasswordCheck,
		EncryptedPrivateKey: wallet.EncryptedPrivateKey,
		PublicKey:           wallet.PublicKey,
		Address:             wallet.Address,
		CreatedAt:           wallet.CreatedAt,
	})
}

// ImportWallet validates a backup produced by ExportWallet and stores it.
func (s *WalletStore) ImportWallet(ctx context.Context, data []byte) (*entities.MerchantWallet, error) {
	var backup entities.WalletExport
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}
	if err := s.validate.Struct(backup); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}

	wallet := &entities.MerchantWallet{
		UserID:              backup.UserID,
		Email:               utils.NormalizeEmail(backup.Email),
		PasswordCheck:       backup.PasswordCheck,
		EncryptedPrivateKey: backup.EncryptedPrivateKey,
		PublicKey:           backup.PublicKey,
		Address:             backup.Address,
		CreatedAt:           backup.CreatedAt,
	}
	if err := s.SaveWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// UnlockPrivateKey opens the sealed key of wallet with password.
func (s *WalletStore) UnlockPrivateKey(wallet *entities.MerchantWallet, password string) (*ecdsa.PrivateKey, error) {
	raw, err := crypto.OpenSecret(wallet.EncryptedPrivateKey, password)
	if errors.Is(err, crypto.ErrSealedKeyMismatch) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrCorruptedWalletRecord, err)
	}
	key, err := gethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrCorruptedWalletRecord, err)
	}
	if gethcrypto.PubkeyToAddress(key.PublicKey) != common.HexToAddress(wallet.Address) {
		return nil, fmt.Errorf("%w: key does not match address", domainerrors.ErrCorruptedWalletRecord)
	}
	return key, nil
}

// checkWalletRecord rejects records whose fields cannot belong to one key pair.
func checkWalletRecord(w *entities.MerchantWallet) error {
	if w.Email == "" || w.PasswordCheck == "" || w.EncryptedPrivateKey == "" {
		return fmt.Errorf("%w: missing fields", domainerrors.ErrCorruptedWalletRecord)
	}
	if !strings.HasPrefix(w.Address, "0x") || !common.IsHexAddress(w.Address) {
		return fmt.Errorf("%w: invalid address %q", domainerrors.ErrCorruptedWalletRecord, w.Address)
	}
	raw, err := hexutil.Decode(w.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: invalid public key", domainerrors.ErrCorruptedWalletRecord)
	}
	pub, err := gethcrypto.UnmarshalPubkey(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid public key", domainerrors.ErrCorruptedWalletRecord)
	}
	if gethcrypto.PubkeyToAddress(*pub) != common.HexToAddress(w.Address) {
		return fmt.Errorf("%w: address does not match public key", domainerrors.ErrCorruptedWalletRecord)
	}
	return nil
}
