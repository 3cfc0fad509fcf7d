package swap

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"okx-dex/pkg/logging"
	"okx-dex/pkg/network"
	"okx-dex/pkg/wallet"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var erc20 = mustParseABI(erc20ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// ApproveExecutor grants the DEX approval contract an ERC-20 allowance
type ApproveExecutor struct {
	chainID string
	wallet  *wallet.EVMWallet
	spender SpenderResolver
	net     network.ChainConfig
	log     zerolog.Logger
	retry   retrier

	pollInterval time.Duration
}

// NewApproveExecutor requires an EVM wallet connected to chainID
func NewApproveExecutor(chainID string, net network.ChainConfig, opts Options, spender SpenderResolver) (*ApproveExecutor, error) {
	if network.FamilyOf(chainID) != network.FamilyEVM {
		return nil, fmt.Errorf("chain %s %w", chainID, ErrUnsupportedChain)
	}
	if opts.EVM == nil {
		return nil, fmt.Errorf("%w: EVM configuration required", ErrConfiguration)
	}
	if got := opts.EVM.ChainID().String(); got != chainID {
		return nil, fmt.Errorf("%w: EVM RPC is connected to chain %s, approval targets chain %s", ErrConfiguration, got, chainID)
	}
	if spender == nil {
		return nil, fmt.Errorf("%w: spender resolver required", ErrConfiguration)
	}

	log := logging.Component(opts.Logger, "approve-executor")
	return &ApproveExecutor{
		chainID:      chainID,
		wallet:       opts.EVM,
		spender:      spender,
		net:          net,
		log:          log,
		retry:        newRetrier(net, log),
		pollInterval: defaultReceiptPollInterval,
	}, nil
}

// HandleTokenApproval approves amount of token for the chain's DEX spender.
// When the current allowance already covers amount no transaction is sent.
func (a *ApproveExecutor) HandleTokenApproval(ctx context.Context, token, amount string) (*ApprovalOutcome, error) {
	if !common.IsHexAddress(token) {
		return nil, fmt.Errorf("invalid token contract address %q", token)
	}
	if strings.TrimSpace(amount) == "" {
		return nil, fmt.Errorf("invalid approve amount %q", amount)
	}
	// a zero amount is satisfied by any allowance and never sends a transaction
	want, err := parseBigInt(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid approve amount %q", amount)
	}

	spenderHex, err := a.spender.DexTokenApproveAddress(ctx, a.chainID)
	if err != nil {
		return nil, err
	}
	if !common.IsHexAddress(spenderHex) {
		return nil, fmt.Errorf("invalid spender address %q for chain %s", spenderHex, a.chainID)
	}
	tokenAddr := common.HexToAddress(token)
	spender := common.HexToAddress(spenderHex)

	current, err := a.allowance(ctx, tokenAddr, spender)
	if err != nil {
		return nil, err
	}
	if current.Cmp(want) >= 0 {
		a.log.Info().
			Str("token", tokenAddr.Hex()).
			Str("allowance", current.String()).
			Msg("token already approved")
		return &ApprovalOutcome{AlreadyApproved: true, Spender: spender.Hex(), Allowance: current}, nil
	}

	calldata, err := erc20.Pack("approve", spender, want)
	if err != nil {
		return nil, fmt.Errorf("failed to encode approve call: %w", err)
	}

	var sent *ethtypes.Transaction
	err = a.retry.run(ctx, "approval", func(ctx context.Context, attempt int) error {
		tx, err := a.buildTx(ctx, tokenAddr, calldata)
		if err != nil {
			return err
		}
		signed, err := a.wallet.SignTx(tx)
		if err != nil {
			return permanent(err)
		}
		if err := a.wallet.Send(ctx, signed); err != nil {
			return err
		}
		sent = signed

		a.log.Info().
			Str("tx", signed.Hash().Hex()).
			Str("token", tokenAddr.Hex()).
			Int("attempt", attempt).
			Msg("approval broadcast")

		return waitForReceipt(ctx, a.wallet.Client(), signed.Hash(), a.net.ConfirmationTimeout, a.pollInterval)
	})
	if err != nil {
		return nil, err
	}

	return &ApprovalOutcome{TxHash: sent.Hash().Hex(), Spender: spender.Hex(), Allowance: want}, nil
}

func (a *ApproveExecutor) allowance(ctx context.Context, token, spender common.Address) (*big.Int, error) {
	input, err := erc20.Pack("allowance", a.wallet.Address(), spender)
	if err != nil {
		return nil, fmt.Errorf("failed to encode allowance call: %w", err)
	}
	out, err := a.wallet.Client().CallContract(ctx, ethereum.CallMsg{
		From: a.wallet.Address(),
		To:   &token,
		Data: input,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}

	values, err := erc20.Unpack("allowance", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode allowance: %w", err)
	}
	allowance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance type %T", values[0])
	}
	return allowance, nil
}

// buildTx prices an approve call at 1.5x the suggested gas price and twice
// the estimated gas
func (a *ApproveExecutor) buildTx(ctx context.Context, token common.Address, calldata []byte) (*ethtypes.Transaction, error) {
	client := a.wallet.Client()
	from := a.wallet.Address()

	nonce, err := client.NonceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &token, Data: calldata})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}

	return ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: scale(gasPrice, 3, 2),
		Gas:      gas * 2,
		To:       &token,
		Value:    new(big.Int),
		Data:     calldata,
	}), nil
}
