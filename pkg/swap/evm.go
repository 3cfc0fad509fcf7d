package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"okx-dex/pkg/logging"
	"okx-dex/pkg/network"
	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

const defaultReceiptPollInterval = 2 * time.Second

// EVMExecutor submits router calldata as a legacy transaction
type EVMExecutor struct {
	wallet *wallet.EVMWallet
	net    network.ChainConfig
	log    zerolog.Logger
	retry  retrier

	pollInterval time.Duration
}

// NewEVMExecutor requires a wallet connected to chainID
func NewEVMExecutor(chainID string, net network.ChainConfig, opts Options) (*EVMExecutor, error) {
	if opts.EVM == nil {
		return nil, fmt.Errorf("%w: EVM configuration required", ErrConfiguration)
	}
	if got := opts.EVM.ChainID().String(); got != chainID {
		return nil, fmt.Errorf("%w: EVM RPC is connected to chain %s, swap targets chain %s", ErrConfiguration, got, chainID)
	}

	log := logging.Component(opts.Logger, "evm-executor")
	return &EVMExecutor{
		wallet:       opts.EVM,
		net:          net,
		log:          log,
		retry:        newRetrier(net, log),
		pollInterval: defaultReceiptPollInterval,
	}, nil
}

// ExecuteSwap signs and broadcasts the first swap entry, waiting for its receipt
func (e *EVMExecutor) ExecuteSwap(ctx context.Context, data []types.SwapData, _ types.SwapParams) (*types.SwapResult, error) {
	swap, err := firstSwap(data)
	if err != nil {
		return nil, err
	}
	call, err := parseEVMCall(swap.Tx)
	if err != nil {
		return nil, err
	}

	var sent *ethtypes.Transaction
	err = e.retry.run(ctx, "swap transaction", func(ctx context.Context, attempt int) error {
		tx, err := e.buildTx(ctx, call)
		if err != nil {
			return err
		}
		signed, err := e.wallet.SignTx(tx)
		if err != nil {
			return permanent(err)
		}
		if err := e.wallet.Send(ctx, signed); err != nil {
			return err
		}
		sent = signed

		e.log.Info().
			Str("tx", signed.Hash().Hex()).
			Uint64("nonce", signed.Nonce()).
			Str("gas_price", signed.GasPrice().String()).
			Int("attempt", attempt).
			Msg("swap transaction broadcast")

		return waitForReceipt(ctx, e.wallet.Client(), signed.Hash(), e.net.ConfirmationTimeout, e.pollInterval)
	})
	if err != nil {
		return nil, err
	}

	return formatResult(e.net, sent.Hash().Hex(), swap.RouterResult)
}

// buildTx prices a fresh legacy transaction: gas price is 1.5x the larger of
// the quoted and suggested price, gas limit is 1.5x the quoted limit
func (e *EVMExecutor) buildTx(ctx context.Context, call *evmCall) (*ethtypes.Transaction, error) {
	client := e.wallet.Client()
	from := e.wallet.Address()

	nonce, err := client.NonceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	suggested, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	gasPrice := call.gasPrice
	if suggested.Cmp(gasPrice) > 0 {
		gasPrice = suggested
	}

	gas := call.gas
	if gas == 0 {
		gas, err = client.EstimateGas(ctx, ethereum.CallMsg{
			From:  from,
			To:    &call.to,
			Value: call.value,
			Data:  call.data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
	}

	return ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: scale(gasPrice, 3, 2),
		Gas:      gas * 3 / 2,
		To:       &call.to,
		Value:    call.value,
		Data:     call.data,
	}), nil
}

// evmCall is the parsed form of an EVM TransactionData
type evmCall struct {
	to       common.Address
	data     []byte
	value    *big.Int
	gas      uint64
	gasPrice *big.Int
}

func parseEVMCall(tx *types.TransactionData) (*evmCall, error) {
	if !common.IsHexAddress(tx.To) {
		return nil, fmt.Errorf("%w: invalid transaction target %q", ErrInvalidPayload, tx.To)
	}
	var data []byte
	if tx.Data != "" {
		var err error
		if data, err = hexutil.Decode(tx.Data); err != nil {
			return nil, fmt.Errorf("%w: invalid calldata: %v", ErrInvalidPayload, err)
		}
	}
	value, err := parseBigInt(tx.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid value: %v", ErrInvalidPayload, err)
	}
	gas, err := parseBigInt(tx.Gas)
	if err != nil || !gas.IsUint64() {
		return nil, fmt.Errorf("%w: invalid gas limit %q", ErrInvalidPayload, tx.Gas)
	}
	gasPrice, err := parseBigInt(tx.GasPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid gas price: %v", ErrInvalidPayload, err)
	}

	return &evmCall{
		to:       common.HexToAddress(tx.To),
		data:     data,
		value:    value,
		gas:      gas.Uint64(),
		gasPrice: gasPrice,
	}, nil
}

// parseBigInt accepts decimal or 0x-prefixed hex; empty is zero
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func scale(n *big.Int, num, den int64) *big.Int {
	out := new(big.Int).Mul(n, big.NewInt(num))
	return out.Quo(out, big.NewInt(den))
}

// waitForReceipt polls until the transaction is mined or timeout elapses
func waitForReceipt(ctx context.Context, client wallet.EVMClient, hash common.Hash, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = network.DefaultConfirmationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return fmt.Errorf("%w: %s reverted in block %s", ErrOnChainRejected, hash.Hex(), receipt.BlockNumber)
			}
			return nil
		case !errors.Is(err, ethereum.NotFound):
			return fmt.Errorf("failed to get receipt for %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
