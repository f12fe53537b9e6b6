package usecases

import "time"

// PaymentRequestExpiry is how long a payer can settle a request
const PaymentRequestExpiry = 30 * time.Minute

const DefaultFiatCurrency = "ARS"

// Oracle answer sources
const (
	PriceSourceStatic = "static"
	PriceSourceOracle = "oracle"
)

const walletKeyPrefix = "wallet:"
