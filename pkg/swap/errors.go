package swap

import "errors"

var (
	// ErrConfiguration marks a missing or inconsistent wallet, key or RPC setting
	ErrConfiguration = errors.New("configuration error")
	// ErrUnsupportedChain is returned by the factory for chains outside the allow-list
	ErrUnsupportedChain = errors.New("not supported for swap execution")
	// ErrInvalidPayload marks aggregator responses that cannot be executed
	ErrInvalidPayload = errors.New("invalid swap data")
	// ErrOnChainRejected is returned when the chain reports a failed transaction
	ErrOnChainRejected = errors.New("transaction failed on chain")
	// ErrInsufficientGasObjects means the Sui account has no coins that can cover the gas budget
	ErrInsufficientGasObjects = errors.New("not enough Sui objects to pay for gas")
)
