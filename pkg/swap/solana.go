package swap

import (
	"context"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"okx-dex/pkg/logging"
	"okx-dex/pkg/network"
	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

// SolanaExecutor re-signs the serialized transaction returned by the swap endpoint
type SolanaExecutor struct {
	wallet       *wallet.SolanaWallet
	net          network.ChainConfig
	computeUnits uint32
	log          zerolog.Logger
	retry        retrier

	pollInterval time.Duration
}

// NewSolanaExecutor requires a Solana wallet. The compute-unit limit comes
// from opts, then the network, then the default.
func NewSolanaExecutor(net network.ChainConfig, opts Options) (*SolanaExecutor, error) {
	if opts.Solana == nil || opts.Solana.Signer == nil || opts.Solana.Client == nil {
		return nil, fmt.Errorf("%w: Solana configuration required", ErrConfiguration)
	}

	units := opts.ComputeUnits
	if units == 0 {
		units = net.ComputeUnits
	}
	if units == 0 {
		units = network.DefaultComputeUnits
	}

	log := logging.Component(opts.Logger, "solana-executor")
	return &SolanaExecutor{
		wallet:       opts.Solana,
		net:          net,
		computeUnits: units,
		log:          log,
		retry:        newRetrier(net, log),
		pollInterval: defaultSignaturePollInterval,
	}, nil
}

// ExecuteSwap decodes the base58 transaction, refreshes its blockhash, signs,
// submits and confirms it
func (s *SolanaExecutor) ExecuteSwap(ctx context.Context, data []types.SwapData, _ types.SwapParams) (*types.SwapResult, error) {
	swap, err := firstSwap(data)
	if err != nil {
		return nil, err
	}
	if swap.Tx.Data == "" {
		return nil, fmt.Errorf("%w: missing transaction data", ErrInvalidPayload)
	}
	raw, err := base58.Decode(swap.Tx.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction is not base58: %v", ErrInvalidPayload, err)
	}
	if _, _, err := s.prepareTransaction(raw, solana.Hash{}); err != nil {
		return nil, err
	}

	var sig solana.Signature
	err = s.retry.run(ctx, "solana swap", func(ctx context.Context, attempt int) error {
		latest, err := s.wallet.Client.GetLatestBlockhash(ctx, s.wallet.Commitment)
		if err != nil {
			return fmt.Errorf("failed to get latest blockhash: %w", err)
		}

		tx, legacy, err := s.prepareTransaction(raw, latest.Value.Blockhash)
		if err != nil {
			return permanent(err)
		}
		if err := s.wallet.Signer.SignTransaction(ctx, tx); err != nil {
			return permanent(err)
		}
		sig, err = s.wallet.Send(ctx, tx, uint(s.net.MaxRetries))
		if err != nil {
			return err
		}

		s.log.Info().
			Str("signature", sig.String()).
			Bool("legacy", legacy).
			Int("attempt", attempt).
			Msg("solana swap submitted")

		return confirmSignature(ctx, s.wallet, sig, latest.Value.LastValidBlockHeight, s.pollInterval, s.log)
	})
	if err != nil {
		return nil, err
	}

	return formatResult(s.net, sig.String(), swap.RouterResult)
}

// prepareTransaction returns a transaction ready for signing. Versioned
// messages keep their instructions; legacy ones are rebuilt with the wallet
// as fee payer and a compute-unit limit appended.
func (s *SolanaExecutor) prepareTransaction(raw []byte, blockhash solana.Hash) (*solana.Transaction, bool, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, false, fmt.Errorf("%w: cannot decode transaction: %v", ErrInvalidPayload, err)
	}

	if tx.Message.IsVersioned() {
		tx.Message.RecentBlockhash = blockhash
		return tx, false, nil
	}

	rebuilt, err := s.withComputeBudget(tx, blockhash)
	if err != nil {
		return nil, true, fmt.Errorf("%w: cannot rebuild legacy transaction: %v", ErrInvalidPayload, err)
	}
	return rebuilt, true, nil
}

func (s *SolanaExecutor) withComputeBudget(tx *solana.Transaction, blockhash solana.Hash) (*solana.Transaction, error) {
	instructions := make([]solana.Instruction, 0, len(tx.Message.Instructions)+1)
	for _, compiled := range tx.Message.Instructions {
		programID, err := tx.ResolveProgramIDIndex(compiled.ProgramIDIndex)
		if err != nil {
			return nil, err
		}
		accounts, err := compiled.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, solana.NewInstruction(programID, accounts, compiled.Data))
	}
	instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(s.computeUnits).Build())

	return solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(s.wallet.PublicKey()))
}
