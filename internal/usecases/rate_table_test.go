package usecases_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"midatopay.backend/internal/config"
	domainerrors "midatopay.backend/internal/domain/errors"
	"midatopay.backend/internal/usecases"
)

const (
	usdtAddress = "0x323e78f944A9a1FcF3a10efcC5319DBb0bB6e673"
	ethAddress  = "0x4200000000000000000000000000000000000006"
)

func testTokens() []config.TokenConfig {
	return []config.TokenConfig{
		{Symbol: "USDT", Address: usdtAddress, Decimals: 6, Rate: "1380"},
		{Symbol: "USDC", Address: "0x036CbD53842c5426634e7929541eC2318f3dCF7e", Decimals: 6, Rate: "1380"},
		{Symbol: "ETH", Address: ethAddress, Decimals: 18, Rate: "4500000"},
	}
}

func newTestRates(t *testing.T) *usecases.RateTable {
	t.Helper()
	rates, err := usecases.NewRateTable(testTokens())
	require.NoError(t, err)
	return rates
}

func TestRateTable_TokenAmountIsFloorOfExactQuotient(t *testing.T) {
	rates := newTestRates(t)

	cases := []struct {
		symbol string
		fiat   string
		want   string
	}{
		{"USDT", "5000", "3623188"},
		{"usdc", "1380", "1000000"},
		{"USDT", "0.01", "7"},
		{"USDT", "1379.99", "999992"},
		{"ETH", "4500000", "1000000000000000000"},
		{"ETH", "1", "222222222222"},
	}
	for _, tc := range cases {
		row, err := rates.Lookup(tc.symbol)
		require.NoError(t, err)
		got, err := row.TokenAmount(decimal.RequireFromString(tc.fiat))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %s", tc.fiat, tc.symbol)
	}
}

func TestRateTable_Rejections(t *testing.T) {
	rates := newTestRates(t)

	_, err := rates.Lookup("DOGE")
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedCurrency)

	row, err := rates.Lookup("USDT")
	require.NoError(t, err)
	_, err = row.TokenAmount(decimal.Zero)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	_, err = row.TokenAmount(decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	assert.Equal(t, []string{"ETH", "USDC", "USDT"}, rates.Symbols())
}

func TestNewRateTable_InvalidConfig(t *testing.T) {
	_, err := usecases.NewRateTable([]config.TokenConfig{{Symbol: "USDT", Rate: "abc"}})
	assert.Error(t, err)

	_, err = usecases.NewRateTable([]config.TokenConfig{{Symbol: "USDT", Rate: "0"}})
	assert.Error(t, err)

	_, err = usecases.NewRateTable([]config.TokenConfig{{Symbol: "USDT", Rate: "1", Decimals: -1}})
	assert.Error(t, err)
}
