package usecases

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
)

// PriceReader reads a token's fixed-point fiat price from the chain
type PriceReader interface {
	GetPrice(ctx context.Context, token string) (*big.Int, error)
}

// OracleUsecase answers price and conversion queries. Without an on-chain
// oracle the static rate table answers.
type OracleUsecase struct {
	rates         *RateTable
	oracle        PriceReader
	priceDecimals int32
	fiatCurrency  string
	now           func() time.Time
}

// NewOracleUsecase creates an oracle usecase; oracle may be nil.
func NewOracleUsecase(rates *RateTable, oracle PriceReader, priceDecimals int32, fiatCurrency string) *OracleUsecase {
	if fiatCurrency == "" {
		fiatCurrency = DefaultFiatCurrency
	}
	return &OracleUsecase{
		rates:         rates,
		oracle:        oracle,
		priceDecimals: priceDecimals,
		fiatCurrency:  fiatCurrency,
		now:           time.Now,
	}
}

// Price returns the fiat price of one whole symbol token
func (u *OracleUsecase) Price(ctx context.Context, symbol string) (*entities.OraclePrice, error) {
	token, err := u.rates.Lookup(symbol)
	if err != nil {
		return nil, err
	}

	price := token.Rate
	source := PriceSourceStatic
	if u.oracle != nil {
		raw, err := u.oracle.GetPrice(ctx, token.Address)
		if err != nil {
			return nil, fmt.Errorf("oracle price for %s: %w", token.Symbol, err)
		}
		if raw.Sign() <= 0 {
			return nil, fmt.Errorf("%w: oracle returned no price for %s", domainerrors.ErrRpcUnavailable, token.Symbol)
		}
		price = decimal.NewFromBigInt(raw, -u.priceDecimals)
		source = PriceSourceOracle
	}

	return &entities.OraclePrice{
		Symbol:    token.Symbol,
		Price:     price.String(),
		Currency:  u.fiatCurrency,
		Source:    source,
		UpdatedAt: u.now().Unix(),
	}, nil
}

// Convert sizes fiatAmount in symbol at the current price
func (u *OracleUsecase) Convert(ctx context.Context, fiatAmount decimal.Decimal, symbol string) (*entities.Conversion, error) {
	price, err := u.Price(ctx, symbol)
	if err != nil {
		return nil, err
	}
	token, err := u.rates.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(price.Price)
	if err != nil {
		return nil, err
	}
	amount, err := sizeTokenAmount(fiatAmount, rate, token.Decimals)
	if err != nil {
		return nil, err
	}
	return &entities.Conversion{
		FiatAmount:  fiatAmount.String(),
		Symbol:      token.Symbol,
		TokenAmount: amount,
		Decimals:    token.Decimals,
		Rate:        *price,
	}, nil
}
