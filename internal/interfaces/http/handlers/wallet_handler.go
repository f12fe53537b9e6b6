package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/interfaces/http/middleware"
	"midatopay.backend/internal/interfaces/http/response"
	"midatopay.backend/pkg/utils"
)

const maxWalletImportBytes = 16 << 10

// WalletService manages the authenticated merchant's wallet
type WalletService interface {
	LoadWallet(ctx context.Context, email string) (*entities.MerchantWallet, error)
	ExportWallet(ctx context.Context, email string) ([]byte, error)
	ImportWallet(ctx context.Context, data []byte) (*entities.MerchantWallet, error)
	ClearWallet(ctx context.Context, email string) error
}

type WalletHandler struct {
	walletService WalletService
}

func NewWalletHandler(walletService WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetWallet returns the public view of the merchant's wallet
// GET /api/v1/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	wallet, err := h.walletService.LoadWallet(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wallet == nil {
		response.Error(c, domainerrors.NotFound("wallet not found"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": wallet.Info()})
}

// ExportWallet downloads the encrypted wallet backup
// GET /api/v1/wallet/export
func (h *WalletHandler) ExportWallet(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	data, err := h.walletService.ExportWallet(c.Request.Context(), email)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="midatopay-wallet.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportWallet restores a backup of the merchant's own wallet
// POST /api/v1/wallet/import
func (h *WalletHandler) ImportWallet(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWalletImportBytes))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("failed to read backup"))
		return
	}

	var owner struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &owner); err != nil {
		response.Error(c, domainerrors.BadRequest("backup is not valid JSON"))
		return
	}
	if utils.NormalizeEmail(owner.Email) != utils.NormalizeEmail(email) {
		response.Error(c, domainerrors.NewAppError(http.StatusForbidden, "ERR_FORBIDDEN", "backup belongs to another account", domainerrors.ErrUnauthorized))
		return
	}

	wallet, err := h.walletService.ImportWallet(c.Request.Context(), data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": wallet.Info()})
}

// DeleteWallet removes the merchant's wallet from every store
// DELETE /api/v1/wallet
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	email, ok := middleware.GetUserEmail(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	if err := h.walletService.ClearWallet(c.Request.Context(), email); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
