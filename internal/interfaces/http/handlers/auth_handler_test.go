package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
)

type authServiceStub struct {
	registerFn func(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	loginFn    func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	refreshFn  func(ctx context.Context, token string) (*entities.AuthResponse, error)
}

func (s authServiceStub) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	return s.registerFn(ctx, input)
}
func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}
func (s authServiceStub) Refresh(ctx context.Context, token string) (*entities.AuthResponse, error) {
	return s.refreshFn(ctx, token)
}

func authResponse() *entities.AuthResponse {
	return &entities.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Wallet:       &entities.WalletInfo{UserID: testUserID, Email: testEmail, Address: testMerchant},
	}
}

func TestAuthHandler_Register(t *testing.T) {
	h := NewAuthHandler(authServiceStub{
		registerFn: func(_ context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
			if input.Email == "taken@mail.com" {
				return nil, fmt.Errorf("wallet for %s: %w", input.Email, domainerrors.ErrAlreadyExists)
			}
			return authResponse(), nil
		},
	})
	r := newRouter()
	r.POST("/auth/register", h.Register)

	w := doJSON(r, http.MethodPost, "/auth/register", `{"email":"shop@mail.com","password":"Password123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"accessToken":"access"`)
	assert.Contains(t, w.Body.String(), testMerchant)

	w = doJSON(r, http.MethodPost, "/auth/register", `{"email":"taken@mail.com","password":"Password123"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/register", `{"email":"not-an-email","password":"Password123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/register", `{"email":"shop@mail.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(authServiceStub{
		loginFn: func(_ context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
			if input.Password != "Password123" {
				return nil, domainerrors.ErrInvalidCredentials
			}
			return authResponse(), nil
		},
	})
	r := newRouter()
	r.POST("/auth/login", h.Login)

	w := doJSON(r, http.MethodPost, "/auth/login", `{"email":"shop@mail.com","password":"Password123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", `{"email":"shop@mail.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeInvalidCredentials)

	w = doJSON(r, http.MethodPost, "/auth/login", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	h := NewAuthHandler(authServiceStub{
		refreshFn: func(_ context.Context, token string) (*entities.AuthResponse, error) {
			if token != "good" {
				return nil, fmt.Errorf("%w: invalid refresh token", domainerrors.ErrUnauthorized)
			}
			return authResponse(), nil
		},
	})
	r := newRouter()
	r.POST("/auth/refresh", h.RefreshToken)

	w := doJSON(r, http.MethodPost, "/auth/refresh", `{"refreshToken":"good"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/refresh", `{"refreshToken":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/refresh", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
