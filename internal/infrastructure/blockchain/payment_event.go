package blockchain

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"midatopay.backend/internal/domain/entities"
	domainerrors "midatopay.backend/internal/domain/errors"
)

// PaymentGatewayABI is the subset of the gateway contract the backend reads.
// Changing the event here requires a new schema version.
const PaymentGatewayABI = `[
	{
		"type": "event",
		"name": "PaymentCompleted",
		"anonymous": false,
		"inputs": [
			{"name": "paymentId", "type": "bytes32", "indexed": true},
			{"name": "merchant", "type": "address", "indexed": true},
			{"name": "payer", "type": "address", "indexed": false},
			{"name": "amount", "type": "uint256", "indexed": false},
			{"name": "token", "type": "address", "indexed": false},
			{"name": "timestamp", "type": "uint64", "indexed": false}
		]
	}
]`

const paymentCompletedEvent = "PaymentCompleted"

// PaymentEventV1 decodes version 1 of the gateway's PaymentCompleted event:
// topics [selector, paymentId, merchant], data [payer, amount, token, timestamp].
type PaymentEventV1 struct {
	abi   abi.ABI
	event abi.Event
}

type paymentCompletedBody struct {
	Payer     common.Address
	Amount    *big.Int
	Token     common.Address
	Timestamp uint64
}

// NewPaymentEventV1 parses the gateway ABI
func NewPaymentEventV1() (*PaymentEventV1, error) {
	parsed, err := abi.JSON(strings.NewReader(PaymentGatewayABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse gateway abi: %w", err)
	}
	ev, ok := parsed.Events[paymentCompletedEvent]
	if !ok {
		return nil, fmt.Errorf("gateway abi has no %s event", paymentCompletedEvent)
	}
	return &PaymentEventV1{abi: parsed, event: ev}, nil
}

// MustPaymentEventV1 is NewPaymentEventV1 for the embedded, known-good ABI
func MustPaymentEventV1() *PaymentEventV1 {
	s, err := NewPaymentEventV1()
	if err != nil {
		panic(err)
	}
	return s
}

// Topic is the event selector (topic 0)
func (s *PaymentEventV1) Topic() common.Hash {
	return s.event.ID
}

// Signature is the canonical event signature
func (s *PaymentEventV1) Signature() string {
	return s.event.Sig
}

// Matches reports whether ev carries this event's selector
func (s *PaymentEventV1) Matches(ev entities.ChainEvent) bool {
	return len(ev.Keys) > 0 && strings.EqualFold(ev.Keys[0], s.event.ID.Hex())
}

// HasPaymentID reports whether paymentID is among ev's indexed keys
func (s *PaymentEventV1) HasPaymentID(ev entities.ChainEvent, paymentID string) bool {
	for _, key := range ev.Keys[min(1, len(ev.Keys)):] {
		if strings.EqualFold(key, paymentID) {
			return true
		}
	}
	return false
}

// Decode maps a raw log to PaymentCompleted. Any deviation from the v1 shape
// returns an error wrapping ErrEventDecode.
func (s *PaymentEventV1) Decode(ev entities.ChainEvent) (*entities.PaymentCompleted, error) {
	if len(ev.Keys) != 3 {
		return nil, decodeErr("expected 3 topics, got %d", len(ev.Keys))
	}
	if !s.Matches(ev) {
		return nil, decodeErr("unexpected selector %s", ev.Keys[0])
	}

	paymentID, err := topicWord(ev.Keys[1])
	if err != nil {
		return nil, decodeErr("payment id topic: %v", err)
	}
	merchantWord, err := topicWord(ev.Keys[2])
	if err != nil {
		return nil, decodeErr("merchant topic: %v", err)
	}
	if !bytes.Equal(merchantWord[:12], make([]byte, 12)) {
		return nil, decodeErr("merchant topic is not an address")
	}

	nonIndexed := s.event.Inputs.NonIndexed()
	if len(ev.Data) != 32*len(nonIndexed) {
		return nil, decodeErr("expected %d data bytes, got %d", 32*len(nonIndexed), len(ev.Data))
	}
	var body paymentCompletedBody
	if err := s.abi.UnpackIntoInterface(&body, paymentCompletedEvent, ev.Data); err != nil {
		return nil, decodeErr("data: %v", err)
	}

	return &entities.PaymentCompleted{
		PaymentID:       hexutil.Encode(paymentID),
		MerchantAddress: common.BytesToAddress(merchantWord).Hex(),
		PayerAddress:    body.Payer.Hex(),
		Amount:          body.Amount,
		TokenAddress:    body.Token.Hex(),
		Timestamp:       body.Timestamp,
	}, nil
}

// Encode builds the topics and data of a PaymentCompleted log. It is the inverse of Decode.
func (s *PaymentEventV1) Encode(pc *entities.PaymentCompleted) ([]string, []byte, error) {
	paymentID, err := topicWord(pc.PaymentID)
	if err != nil {
		return nil, nil, fmt.Errorf("payment id: %w", err)
	}
	if !common.IsHexAddress(pc.MerchantAddress) || !common.IsHexAddress(pc.PayerAddress) || !common.IsHexAddress(pc.TokenAddress) {
		return nil, nil, fmt.Errorf("invalid address in event")
	}
	amount := pc.Amount
	if amount == nil {
		amount = new(big.Int)
	}

	data, err := s.event.Inputs.NonIndexed().Pack(
		common.HexToAddress(pc.PayerAddress),
		amount,
		common.HexToAddress(pc.TokenAddress),
		pc.Timestamp,
	)
	if err != nil {
		return nil, nil, err
	}

	keys := []string{
		s.event.ID.Hex(),
		common.BytesToHash(paymentID).Hex(),
		common.BytesToHash(common.HexToAddress(pc.MerchantAddress).Bytes()).Hex(),
	}
	return keys, data, nil
}

func topicWord(hexWord string) ([]byte, error) {
	b, err := hexutil.Decode(hexWord)
	if err != nil {
		return nil, err
	}
	if len(b) != common.HashLength {
		return nil, fmt.Errorf("expected %d bytes, got %d", common.HashLength, len(b))
	}
	return b, nil
}

func decodeErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domainerrors.ErrEventDecode, fmt.Sprintf(format, args...))
}
