package swap

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"okx-dex/pkg/logging"
	"okx-dex/pkg/network"
	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

// DefaultSuiGasBudget is the gas budget, in MIST, attached to every swap
const DefaultSuiGasBudget uint64 = 50_000_000

const defaultSuiPollInterval = time.Second

// SuiExecutor wraps the aggregator's transaction kind with sender and gas
// data, then signs and executes it
type SuiExecutor struct {
	wallet    *wallet.SuiWallet
	net       network.ChainConfig
	gasBudget uint64
	log       zerolog.Logger
	retry     retrier

	pollInterval time.Duration
}

// NewSuiExecutor requires a Sui wallet
func NewSuiExecutor(net network.ChainConfig, opts Options) (*SuiExecutor, error) {
	if opts.Sui == nil || opts.Sui.Client == nil {
		return nil, fmt.Errorf("%w: Sui configuration required", ErrConfiguration)
	}
	log := logging.Component(opts.Logger, "sui-executor")
	return &SuiExecutor{
		wallet:       opts.Sui,
		net:          net,
		gasBudget:    DefaultSuiGasBudget,
		log:          log,
		retry:        newRetrier(net, log),
		pollInterval: defaultSuiPollInterval,
	}, nil
}

// ExecuteSwap re-issues the aggregator's base64 TransactionData with the
// wallet as sender and gas owner, the current reference gas price, the fixed
// gas budget and the wallet's own gas coins. The programmable transaction
// itself is kept byte for byte.
func (s *SuiExecutor) ExecuteSwap(ctx context.Context, data []types.SwapData, _ types.SwapParams) (*types.SwapResult, error) {
	swap, err := firstSwap(data)
	if err != nil {
		return nil, err
	}
	if swap.Tx.Data == "" {
		return nil, fmt.Errorf("%w: missing transaction data", ErrInvalidPayload)
	}
	raw, err := base64.StdEncoding.DecodeString(swap.Tx.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction is not base64", ErrInvalidPayload)
	}
	quoted, err := decodeTransactionData(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode Sui transaction: %v", ErrInvalidPayload, err)
	}
	owner := s.wallet.Address()
	sender, err := parseSuiAddress(owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	s.log.Debug().
		Int("kind_bytes", len(quoted.kind)).
		Int("object_inputs", len(quoted.inputObjects)).
		Uint64("quoted_gas_price", quoted.gasPrice).
		Uint64("quoted_gas_budget", quoted.gasBudget).
		Msg("decoded sui transaction")

	client := s.wallet.Client
	var digest string
	err = s.retry.run(ctx, "sui swap", func(ctx context.Context, attempt int) error {
		price, err := client.ReferenceGasPrice(ctx)
		if err != nil {
			return fmt.Errorf("failed to get reference gas price: %w", err)
		}
		coins, err := client.GasCoins(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to list gas coins: %w", err)
		}
		payment, err := selectGasCoins(coins, s.gasBudget, quoted.inputObjects)
		if err != nil {
			return permanent(err)
		}

		txBytes := encodeTransactionData(quoted.kind, sender, payment, price, s.gasBudget, quoted.expiration)
		signature, err := s.wallet.Sign(txBytes)
		if err != nil {
			return permanent(err)
		}

		digest, err = client.ExecuteTransaction(ctx, base64.StdEncoding.EncodeToString(txBytes), signature)
		if err != nil {
			return err
		}
		if digest == "" {
			return fmt.Errorf("transaction failed: no digest received")
		}

		s.log.Info().
			Str("digest", digest).
			Int("gas_coins", len(payment)).
			Uint64("gas_price", price).
			Int("attempt", attempt).
			Msg("sui swap executed")

		return s.waitForEffects(ctx, digest)
	})
	if err != nil {
		return nil, err
	}

	return formatResult(s.net, digest, swap.RouterResult)
}

// waitForEffects polls until the transaction's effects are indexed
func (s *SuiExecutor) waitForEffects(ctx context.Context, digest string) error {
	timeout := s.net.ConfirmationTimeout
	if timeout <= 0 {
		timeout = network.DefaultConfirmationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		status, errMsg, err := s.wallet.Client.TransactionStatus(ctx, digest)
		switch {
		case err != nil:
			s.log.Debug().Err(err).Str("digest", digest).Msg("transaction not indexed yet")
		case status == "success":
			return nil
		case status != "":
			return fmt.Errorf("%w: %s: %s", ErrOnChainRejected, digest, errMsg)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s: %w", digest, ctx.Err())
		case <-ticker.C:
		}
	}
}
