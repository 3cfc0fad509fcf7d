package dex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"okx-dex/pkg/client"
	"okx-dex/pkg/logging"
	"okx-dex/pkg/metrics"
	"okx-dex/pkg/network"
	"okx-dex/pkg/swap"
	"okx-dex/pkg/tracing"
	"okx-dex/pkg/types"
)

// ErrValidation marks requests rejected before reaching the API
var ErrValidation = errors.New("validation error")

const (
	pathQuote           = "/api/v5/dex/aggregator/quote"
	pathLiquidity       = "/api/v5/dex/aggregator/get-liquidity"
	pathSupportedChain  = "/api/v5/dex/aggregator/supported/chain"
	pathSwap            = "/api/v5/dex/aggregator/swap"
	pathSwapInstruction = "/api/v5/dex/aggregator/swap-instruction"
	pathAllTokens       = "/api/v5/dex/aggregator/all-tokens"
)

const alreadyApprovedMessage = "Token already approved for the requested amount"

// Config carries the per-chain overrides and the wallets used for execution
type Config struct {
	Networks  map[string]network.ChainConfig
	Executors swap.Options
}

// API orchestrates aggregator requests and hands their payloads to executors
type API struct {
	client   *client.Client
	networks network.Table
	opts     swap.Options
	log      zerolog.Logger
}

// New builds the facade. The network table is fixed for the facade's lifetime.
func New(c *client.Client, cfg Config, log zerolog.Logger) *API {
	opts := cfg.Executors
	opts.Logger = log
	return &API{
		client:   c,
		networks: network.NewTable(cfg.Networks),
		opts:     opts,
		log:      logging.Component(log, "dex"),
	}
}

// Networks exposes the merged chain configuration
func (d *API) Networks() network.Table { return d.networks }

// GetQuote prices a swap without building a transaction
func (d *API) GetQuote(ctx context.Context, params types.QuoteParams) ([]types.QuoteData, error) {
	return client.Get[types.QuoteData](ctx, d.client, pathQuote, params.Values())
}

// GetLiquidity lists the liquidity sources the aggregator routes through on a chain
func (d *API) GetLiquidity(ctx context.Context, chainID string) ([]types.LiquidityData, error) {
	return client.Get[types.LiquidityData](ctx, d.client, pathLiquidity, map[string]string{"chainId": chainID})
}

// GetChainData returns the aggregator's metadata for a chain
func (d *API) GetChainData(ctx context.Context, chainID string) ([]types.ChainData, error) {
	return client.Get[types.ChainData](ctx, d.client, pathSupportedChain, map[string]string{"chainId": chainID})
}

// GetTokens lists the tokens the aggregator supports on a chain
func (d *API) GetTokens(ctx context.Context, chainID string) ([]types.TokenData, error) {
	return client.Get[types.TokenData](ctx, d.client, pathAllTokens, map[string]string{"chainId": chainID})
}

// GetSwapData fetches an executable swap payload once the slippage policy checks out
func (d *API) GetSwapData(ctx context.Context, params types.SwapParams) ([]types.SwapData, error) {
	if err := ValidateSlippage(params); err != nil {
		return nil, err
	}
	return client.Get[types.SwapData](ctx, d.client, pathSwap, params.Values())
}

// GetSwapInstructions fetches a Solana swap as discrete instructions
func (d *API) GetSwapInstructions(ctx context.Context, params types.SwapParams) ([]types.SolanaSwapInstructionData, error) {
	if err := ValidateSlippage(params); err != nil {
		return nil, err
	}
	return client.Get[types.SolanaSwapInstructionData](ctx, d.client, pathSwapInstruction, params.Values())
}

// ValidateSlippage requires auto slippage with a ceiling or a fixed slippage
// in [0, 1]. With auto slippage the fixed value is not checked.
func ValidateSlippage(params types.SwapParams) error {
	if params.AutoSlippage {
		if params.MaxAutoSlippage == "" {
			return fmt.Errorf("%w: maxAutoSlippage must be provided when autoSlippage is enabled", ErrValidation)
		}
		return nil
	}
	if params.Slippage == "" {
		return fmt.Errorf("%w: Either slippage or autoSlippage must be provided", ErrValidation)
	}
	v, err := strconv.ParseFloat(params.Slippage, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%w: Slippage must be between 0 and 1", ErrValidation)
	}
	return nil
}

// ExecuteSwap fetches swap data for params and executes it on params.ChainID.
// Chain and wallet configuration are checked before any request is made.
func (d *API) ExecuteSwap(ctx context.Context, params types.SwapParams) (result *types.SwapResult, err error) {
	ctx, span := tracing.Start(ctx, "dex.ExecuteSwap", params.ChainID)
	start := time.Now()
	defer func() {
		tracing.End(span, err)
		d.observeSwap(params.ChainID, start, err)
	}()

	net, err := d.networks.Get(params.ChainID)
	if err != nil {
		return nil, err
	}
	exec, err := swap.NewExecutor(params.ChainID, net, d.opts)
	if err != nil {
		return nil, err
	}

	data, err := d.GetSwapData(ctx, params)
	if err != nil {
		return nil, err
	}

	d.log.Info().
		Str("chain", params.ChainID).
		Str("from", params.FromTokenAddress).
		Str("to", params.ToTokenAddress).
		Str("amount", params.Amount).
		Msg("executing swap")

	return exec.ExecuteSwap(ctx, data, params)
}

// ExecuteSolanaSwapInstructions executes a Solana swap from its instruction list
func (d *API) ExecuteSolanaSwapInstructions(ctx context.Context, params types.SwapParams) (result *types.SwapResult, err error) {
	ctx, span := tracing.Start(ctx, "dex.ExecuteSolanaSwapInstructions", params.ChainID)
	start := time.Now()
	defer func() {
		tracing.End(span, err)
		d.observeSwap(params.ChainID, start, err)
	}()

	net, err := d.networks.Get(params.ChainID)
	if err != nil {
		return nil, err
	}
	exec, err := swap.NewInstructionExecutor(params.ChainID, net, d.opts)
	if err != nil {
		return nil, err
	}

	data, err := d.GetSwapInstructions(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty swap-instruction response", swap.ErrInvalidPayload)
	}
	return exec.ExecuteInstructions(ctx, &data[0])
}

// ExecuteApproval approves the DEX spender for params.ApproveAmount. An
// allowance that already covers the amount yields AlreadyApproved and no hash.
func (d *API) ExecuteApproval(ctx context.Context, params types.ApproveTokenParams) (result *types.ApproveResult, err error) {
	ctx, span := tracing.Start(ctx, "dex.ExecuteApproval", params.ChainID)
	defer func() {
		tracing.End(span, err)
		metrics.ApprovalsTotal.WithLabelValues(params.ChainID, metrics.Outcome(err)).Inc()
	}()

	net, err := d.networks.Get(params.ChainID)
	if err != nil {
		return nil, err
	}
	exec, err := swap.NewApproveExecutor(params.ChainID, net, d.opts, d)
	if err != nil {
		return nil, err
	}

	outcome, err := exec.HandleTokenApproval(ctx, params.TokenContractAddress, params.ApproveAmount)
	if err != nil {
		return nil, err
	}
	if outcome.AlreadyApproved {
		return &types.ApproveResult{AlreadyApproved: true, Message: alreadyApprovedMessage}, nil
	}
	return &types.ApproveResult{
		TransactionHash: outcome.TxHash,
		ExplorerURL:     net.ExplorerURL(outcome.TxHash),
	}, nil
}

// DexTokenApproveAddress returns the chain's token-approval spender. It is
// fetched on every call.
func (d *API) DexTokenApproveAddress(ctx context.Context, chainID string) (string, error) {
	chains, err := d.GetChainData(ctx, chainID)
	if err != nil {
		return "", err
	}
	if len(chains) == 0 || chains[0].DexTokenApproveAddress == "" {
		return "", fmt.Errorf("No dex contract address found for chain %s", chainID)
	}
	return chains[0].DexTokenApproveAddress, nil
}

func (d *API) observeSwap(chainID string, start time.Time, err error) {
	metrics.SwapsTotal.WithLabelValues(chainID, metrics.Outcome(err)).Inc()
	if err == nil {
		metrics.SwapDuration.WithLabelValues(chainID).Observe(time.Since(start).Seconds())
	}
}
