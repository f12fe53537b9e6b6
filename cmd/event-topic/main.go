package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"midatopay.backend/internal/infrastructure/blockchain"
)

var printfFn = fmt.Printf

type signature struct {
	Text     string
	Topic    string
	Selector string
}

func describe(sig string) signature {
	hash := crypto.Keccak256([]byte(sig))
	return signature{
		Text:     sig,
		Topic:    hexutil.Encode(hash),
		Selector: hexutil.Encode(hash[:4]),
	}
}

func main() {
	printfFn("PaymentCompleted topic: %s\n", blockchain.MustPaymentEventV1().Topic().Hex())
	for _, arg := range os.Args[1:] {
		s := describe(arg)
		printfFn("%s: topic %s selector %s\n", s.Text, s.Topic, s.Selector)
	}
}
