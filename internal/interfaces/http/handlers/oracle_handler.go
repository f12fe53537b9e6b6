package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/interfaces/http/response"
)

// OracleService quotes token prices in fiat
type OracleService interface {
	Price(ctx context.Context, symbol string) (*entities.OraclePrice, error)
	Convert(ctx context.Context, fiatAmount decimal.Decimal, symbol string) (*entities.Conversion, error)
}

type OracleHandler struct {
	oracle OracleService
}

func NewOracleHandler(oracle OracleService) *OracleHandler {
	return &OracleHandler{oracle: oracle}
}

// GetPrice returns the fiat price of one token
// GET /api/v1/oracle/price/:symbol
func (h *OracleHandler) GetPrice(c *gin.Context) {
	price, err := h.oracle.Price(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, price)
}

// Convert sizes a fiat amount in a token
// GET /api/v1/oracle/convert?amount=&currency=
func (h *OracleHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("amount must be a decimal number"))
		return
	}
	currency := c.Query("currency")
	if currency == "" {
		response.Error(c, domainerrors.BadRequest("currency is required"))
		return
	}

	conversion, err := h.oracle.Convert(c.Request.Context(), amount, currency)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, conversion)
}
