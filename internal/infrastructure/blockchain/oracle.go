package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const priceOracleABI = `[
	{
		"type": "function",
		"name": "getPrice",
		"stateMutability": "view",
		"inputs": [{"name": "token", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

// OraclePriceDecimals is the fixed-point precision of getPrice answers
const OraclePriceDecimals = 8

// ViewCaller executes read-only contract calls
type ViewCaller interface {
	CallView(ctx context.Context, to string, data []byte) ([]byte, error)
}

// PriceOracle reads token prices from the on-chain oracle contract
type PriceOracle struct {
	caller  ViewCaller
	address string
	abi     abi.ABI
}

// NewPriceOracle binds the oracle deployed at address
func NewPriceOracle(caller ViewCaller, address string) (*PriceOracle, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid oracle address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(priceOracleABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse oracle abi: %w", err)
	}
	return &PriceOracle{caller: caller, address: address, abi: parsed}, nil
}

// GetPrice returns the raw fixed-point price (OraclePriceDecimals) of token
func (o *PriceOracle) GetPrice(ctx context.Context, token string) (*big.Int, error) {
	data, err := o.abi.Pack("getPrice", common.HexToAddress(token))
	if err != nil {
		return nil, err
	}
	out, err := o.caller.CallView(ctx, o.address, data)
	if err != nil {
		return nil, err
	}
	values, err := o.abi.Unpack("getPrice", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode getPrice result: %w", err)
	}
	price, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getPrice result type %T", values[0])
	}
	return price, nil
}
