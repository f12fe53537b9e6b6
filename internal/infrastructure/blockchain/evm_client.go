package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// ErrReceiptNotFound means the transaction is not mined yet (or unknown to the node).
var ErrReceiptNotFound = errors.New("transaction receipt not found")

const defaultReceiptPollInterval = 2 * time.Second

// EVMClient talks to the rollup node over JSON-RPC. Every call is bounded by
// the configured per-call timeout on top of the caller's context.
type EVMClient struct {
	client      *ethclient.Client
	chainID     *big.Int
	rpcURL      string
	callTimeout time.Duration
	pollEvery   time.Duration
}

// NewEVMClient dials rpcURL and resolves its chain id
func NewEVMClient(rpcURL string, callTimeout time.Duration) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	c := &EVMClient{
		client:      client,
		rpcURL:      rpcURL,
		callTimeout: callTimeout,
		pollEvery:   defaultReceiptPollInterval,
	}

	ctx, cancel := c.callCtx(context.Background())
	defer cancel()
	chainID, err := getClientChainID(client, ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	c.chainID = chainID
	return c, nil
}

// ChainID returns the chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

func (c *EVMClient) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

func rpcError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domainerrors.ErrRpcUnavailable, err)
}

// BlockNumber gets the latest block number
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()
	n, err := c.client.BlockNumber(callCtx)
	if err != nil {
		return 0, rpcError("eth_blockNumber", err)
	}
	return n, nil
}

// FilterLogs returns the logs emitted by contract with topic0 in [from, to].
// Logs flagged as removed by a reorg are skipped.
func (c *EVMClient) FilterLogs(ctx context.Context, contract string, topic0 common.Hash, from, to uint64) ([]entities.ChainEvent, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()

	logs, err := c.client.FilterLogs(callCtx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{common.HexToAddress(contract)},
		Topics:    [][]common.Hash{{topic0}},
	})
	if err != nil {
		return nil, rpcError("eth_getLogs", err)
	}

	events := make([]entities.ChainEvent, 0, len(logs))
	for i := range logs {
		if logs[i].Removed {
			continue
		}
		events = append(events, toChainEvent(&logs[i]))
	}
	return events, nil
}

// TransactionReceipt gets the receipt of a mined transaction
func (c *EVMClient) TransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()

	receipt, err := c.client.TransactionReceipt(callCtx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, rpcError("eth_getTransactionReceipt", err)
	}
	return toChainReceipt(receipt), nil
}

// WaitForReceipt polls until the transaction is mined or ctx is done.
func (c *EVMClient) WaitForReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ErrReceiptNotFound) && !errors.Is(err, domainerrors.ErrRpcUnavailable) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w (last error: %v)", txHash, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// CallView executes a read-only contract call
func (c *EVMClient) CallView(ctx context.Context, to string, data []byte) ([]byte, error) {
	callCtx, cancel := c.callCtx(ctx)
	defer cancel()

	addr := common.HexToAddress(to)
	out, err := c.client.CallContract(callCtx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return nil, rpcError("eth_call", err)
	}
	return out, nil
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func toChainEvent(l *types.Log) entities.ChainEvent {
	keys := make([]string, len(l.Topics))
	for i, topic := range l.Topics {
		keys[i] = topic.Hex()
	}
	return entities.ChainEvent{
		TransactionHash: l.TxHash.Hex(),
		EventIndex:      l.Index,
		BlockNumber:     l.BlockNumber,
		FromAddress:     l.Address.Hex(),
		Keys:            keys,
		Data:            common.CopyBytes(l.Data),
	}
}

func toChainReceipt(r *types.Receipt) *entities.ChainReceipt {
	out := &entities.ChainReceipt{
		TransactionHash: r.TxHash.Hex(),
		Status:          r.Status,
		Events:          make([]entities.ChainEvent, 0, len(r.Logs)),
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	for _, l := range r.Logs {
		out.Events = append(out.Events, toChainEvent(l))
	}
	return out
}
