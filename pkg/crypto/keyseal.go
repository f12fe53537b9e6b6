package crypto

import (
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v3"
)

var ErrSealedKeyMismatch = errors.New("sealed key cannot be opened with this password")

// SealSecret encrypts plaintext into a compact JWE using a key derived from
// password (PBES2-HS256+A128KW, A256GCM content encryption).
func SealSecret(plaintext []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required to seal a secret")
	}
	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.PBES2_HS256_A128KW, Key: []byte(password)},
		(&jose.EncrypterOptions{}).WithContentType("midatopay/key"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create encrypter: %w", err)
	}
	obj, err := enc.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to seal secret: %w", err)
	}
	return obj.CompactSerialize()
}

// OpenSecret reverses SealSecret.
func OpenSecret(sealed, password string) ([]byte, error) {
	obj, err := jose.ParseEncrypted(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sealed secret: %w", err)
	}
	plaintext, err := obj.Decrypt([]byte(password))
	if err != nil {
		return nil, ErrSealedKeyMismatch
	}
	return plaintext, nil
}
