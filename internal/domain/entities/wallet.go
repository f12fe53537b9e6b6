package entities

import (
	"time"

	"github.com/google/uuid"
)

// MerchantWallet is a merchant's receiving key pair. The private key is only
// held sealed under the merchant's password.
type MerchantWallet struct {
	UserID              uuid.UUID `json:"userId"`
	Email               string    `json:"email"`
	PasswordCheck       string    `json:"passwordCheck"`
	EncryptedPrivateKey string    `json:"encryptedPrivateKey"`
	PublicKey           string    `json:"publicKey"`
	Address             string    `json:"address"`
	CreatedAt           time.Time `json:"createdAt"`
}

// WalletInfo is the public view of a wallet
type WalletInfo struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	PublicKey string    `json:"publicKey"`
	CreatedAt time.Time `json:"createdAt"`
}

// Info strips secret material from the wallet.
func (w *MerchantWallet) Info() *WalletInfo {
	return &WalletInfo{
		UserID:    w.UserID,
		Email:     w.Email,
		Address:   w.Address,
		PublicKey: w.PublicKey,
		CreatedAt: w.CreatedAt,
	}
}

const WalletExportVersion = 1

// WalletExport is the portable backup format of a wallet
type WalletExport struct {
	Version             int       `json:"version" validate:"required,eq=1"`
	UserID              uuid.UUID `json:"userId" validate:"required"`
	Email               string    `json:"email" validate:"required,email"`
	PasswordCheck       string    `json:"passwordCheck" validate:"required"`
	EncryptedPrivateKey string    `json:"encryptedPrivateKey" validate:"required"`
	PublicKey           string    `json:"publicKey" validate:"required,hexadecimal"`
	Address             string    `json:"address" validate:"required,eth_addr"`
	CreatedAt           time.Time `json:"createdAt" validate:"required"`
}

// RegisterInput represents input for merchant registration
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for merchant login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshInput carries a refresh token
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Wallet       *WalletInfo `json:"wallet"`
}

// OraclePrice is the fiat price of one whole token
type OraclePrice struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Currency  string `json:"currency"`
	Source    string `json:"source"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// Conversion is the result of sizing a fiat amount in a token
type Conversion struct {
	FiatAmount  string      `json:"fiatAmount"`
	Symbol      string      `json:"symbol"`
	TokenAmount string      `json:"tokenAmount"`
	Decimals    int32       `json:"decimals"`
	Rate        OraclePrice `json:"rate"`
}
