package usecases

import (
	"context"
	"fmt"

	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/pkg/jwt"
)

// MerchantWallets is the part of the wallet store authentication needs
type MerchantWallets interface {
	GenerateWallet(ctx context.Context, email, password string) (*entities.MerchantWallet, error)
	SaveWallet(ctx context.Context, wallet *entities.MerchantWallet) error
	LoadWallet(ctx context.Context, email string) (*entities.MerchantWallet, error)
	VerifyCredentials(ctx context.Context, email, password string) bool
}

// AuthUsecase handles merchant authentication business logic
type AuthUsecase struct {
	wallets    MerchantWallets
	jwtService *jwt.JWTService
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(wallets MerchantWallets, jwtService *jwt.JWTService) *AuthUsecase {
	return &AuthUsecase{wallets: wallets, jwtService: jwtService}
}

// Register creates the merchant's wallet and signs them in
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	existing, err := u.wallets.LoadWallet(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainerrors.ErrAlreadyExists
	}

	wallet, err := u.wallets.GenerateWallet(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if err := u.wallets.SaveWallet(ctx, wallet); err != nil {
		return nil, err
	}
	return u.issue(wallet)
}

// Login authenticates a merchant and returns tokens
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	if !u.wallets.VerifyCredentials(ctx, input.Email, input.Password) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	wallet, err := u.wallets.LoadWallet(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, domainerrors.ErrInvalidCredentials
	}
	return u.issue(wallet)
}

// Refresh generates new tokens from a refresh token
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrUnauthorized, err)
	}

	// the wallet may have been cleared since the token was issued
	wallet, err := u.wallets.LoadWallet(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if wallet == nil || wallet.UserID != claims.UserID {
		return nil, domainerrors.ErrUnauthorized
	}
	return u.issue(wallet)
}

func (u *AuthUsecase) issue(wallet *entities.MerchantWallet) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(wallet.UserID, wallet.Email, wallet.Address)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Wallet:       wallet.Info(),
	}, nil
}
