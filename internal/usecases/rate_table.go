package usecases

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"midatopay.backend/internal/config"
	domainerrors "midatopay.backend/internal/domain/errors"
)

// TokenRate is one row of the static exchange-rate table.
type TokenRate struct {
	Symbol   string
	Address  string
	Decimals int32
	// Rate is fiat units per whole token.
	Rate decimal.Decimal
}

// RateTable sizes fiat amounts in the tokens merchants accept.
// Rates are static placeholders loaded from configuration.
type RateTable struct {
	tokens map[string]TokenRate
}

// NewRateTable validates the configured tokens
func NewRateTable(tokens []config.TokenConfig) (*RateTable, error) {
	table := &RateTable{tokens: make(map[string]TokenRate, len(tokens))}
	for _, t := range tokens {
		rate, err := decimal.NewFromString(t.Rate)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", t.Symbol, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", t.Symbol)
		}
		if t.Decimals < 0 {
			return nil, fmt.Errorf("decimals for %s must not be negative", t.Symbol)
		}
		symbol := strings.ToUpper(strings.TrimSpace(t.Symbol))
		table.tokens[symbol] = TokenRate{
			Symbol:   symbol,
			Address:  t.Address,
			Decimals: t.Decimals,
			Rate:     rate,
		}
	}
	return table, nil
}

// Lookup returns the row for symbol, case-insensitively.
func (t *RateTable) Lookup(symbol string) (TokenRate, error) {
	rate, ok := t.tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return TokenRate{}, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedCurrency, symbol)
	}
	return rate, nil
}

// Symbols lists the supported tokens in alphabetical order
func (t *RateTable) Symbols() []string {
	out := make([]string, 0, len(t.tokens))
	for symbol := range t.tokens {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// TokenAmount sizes fiat at this row's rate, in the token's smallest unit.
func (r TokenRate) TokenAmount(fiat decimal.Decimal) (string, error) {
	return sizeTokenAmount(fiat, r.Rate, r.Decimals)
}

// sizeTokenAmount returns floor(fiat / rate * 10^decimals) as an integer string.
// The quotient is taken on fiat*10^decimals so no precision is lost to division.
func sizeTokenAmount(fiat, rate decimal.Decimal, decimals int32) (string, error) {
	if !fiat.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", domainerrors.ErrInvalidInput)
	}
	if !rate.IsPositive() {
		return "", fmt.Errorf("%w: rate must be positive", domainerrors.ErrInvalidInput)
	}
	quotient, _ := fiat.Shift(decimals).QuoRem(rate, 0)
	return quotient.BigInt().String(), nil
}
