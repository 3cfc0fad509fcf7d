package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

// Executor turns an aggregator swap payload into a confirmed on-chain transaction
type Executor interface {
	ExecuteSwap(ctx context.Context, data []types.SwapData, params types.SwapParams) (*types.SwapResult, error)
}

// SpenderResolver looks up the DEX token-approval address for a chain
type SpenderResolver interface {
	DexTokenApproveAddress(ctx context.Context, chainID string) (string, error)
}

// ApprovalOutcome is either an existing sufficient allowance or a submitted approval
type ApprovalOutcome struct {
	AlreadyApproved bool
	TxHash          string
	Spender         string
	Allowance       *big.Int
}

// Options carries the wallets executors sign with. Only the wallets of the
// chain families in use need to be set.
type Options struct {
	EVM    *wallet.EVMWallet
	Solana *wallet.SolanaWallet
	Sui    *wallet.SuiWallet

	// ComputeUnits overrides the network compute-unit limit for legacy Solana transactions
	ComputeUnits uint32

	Logger zerolog.Logger
}

// firstSwap validates the envelope data and returns its first entry
func firstSwap(data []types.SwapData) (*types.SwapData, error) {
	if len(data) == 0 || data[0].RouterResult == nil {
		return nil, fmt.Errorf("%w: missing router result", ErrInvalidPayload)
	}
	if data[0].Tx == nil {
		return nil, fmt.Errorf("%w: missing transaction data", ErrInvalidPayload)
	}
	if err := validateRouterResult(data[0].RouterResult); err != nil {
		return nil, err
	}
	return &data[0], nil
}
