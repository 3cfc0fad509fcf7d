package swap

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"okx-dex/pkg/logging"
	"okx-dex/pkg/network"
	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

// SolanaInstructionExecutor compiles swap-instruction output into a v0
// transaction using the referenced address lookup tables
type SolanaInstructionExecutor struct {
	wallet *wallet.SolanaWallet
	net    network.ChainConfig
	log    zerolog.Logger
	retry  retrier

	pollInterval time.Duration
}

// NewSolanaInstructionExecutor requires a Solana wallet
func NewSolanaInstructionExecutor(net network.ChainConfig, opts Options) (*SolanaInstructionExecutor, error) {
	if opts.Solana == nil || opts.Solana.Signer == nil || opts.Solana.Client == nil {
		return nil, fmt.Errorf("%w: Solana configuration required", ErrConfiguration)
	}
	log := logging.Component(opts.Logger, "solana-instruction-executor")
	return &SolanaInstructionExecutor{
		wallet:       opts.Solana,
		net:          net,
		log:          log,
		retry:        newRetrier(net, log),
		pollInterval: defaultSignaturePollInterval,
	}, nil
}

// ExecuteInstructions builds, signs, submits and confirms the instruction set
func (s *SolanaInstructionExecutor) ExecuteInstructions(ctx context.Context, data *types.SolanaSwapInstructionData) (*types.SwapResult, error) {
	if data == nil || data.RouterResult == nil {
		return nil, fmt.Errorf("%w: missing router result", ErrInvalidPayload)
	}
	if len(data.InstructionLists) == 0 {
		return nil, fmt.Errorf("%w: no instructions returned", ErrInvalidPayload)
	}
	if err := validateRouterResult(data.RouterResult); err != nil {
		return nil, err
	}

	instructions, err := buildInstructions(data.InstructionLists)
	if err != nil {
		return nil, err
	}
	tableKeys := make([]solana.PublicKey, 0, len(data.AddressLookupTableAccount))
	for _, addr := range data.AddressLookupTableAccount {
		key, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid lookup table %q: %v", ErrInvalidPayload, addr, err)
		}
		tableKeys = append(tableKeys, key)
	}

	var sig solana.Signature
	err = s.retry.run(ctx, "solana instruction swap", func(ctx context.Context, attempt int) error {
		tables, err := resolveLookupTables(ctx, s.wallet.Client, tableKeys)
		if err != nil {
			return err
		}
		latest, err := s.wallet.Client.GetLatestBlockhash(ctx, s.wallet.Commitment)
		if err != nil {
			return fmt.Errorf("failed to get latest blockhash: %w", err)
		}

		tx, err := solana.NewTransaction(instructions, latest.Value.Blockhash,
			solana.TransactionPayer(s.wallet.PublicKey()),
			solana.TransactionAddressTables(tables),
		)
		if err != nil {
			return permanent(fmt.Errorf("%w: cannot compile transaction: %v", ErrInvalidPayload, err))
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
			Int("instructions", len(instructions)).
			Int("lookup_tables", len(tables)).
			Int("attempt", attempt).
			Msg("solana instruction swap submitted")

		return confirmSignature(ctx, s.wallet, sig, latest.Value.LastValidBlockHeight, s.pollInterval, s.log)
	})
	if err != nil {
		return nil, err
	}

	return formatResult(s.net, sig.String(), data.RouterResult)
}

func buildInstructions(list []types.SolanaInstruction) ([]solana.Instruction, error) {
	out := make([]solana.Instruction, 0, len(list))
	for i, ix := range list {
		programID, err := solana.PublicKeyFromBase58(ix.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction %d: invalid program id: %v", ErrInvalidPayload, i, err)
		}
		accounts := make(solana.AccountMetaSlice, 0, len(ix.Accounts))
		for _, acc := range ix.Accounts {
			key, err := solana.PublicKeyFromBase58(acc.Pubkey)
			if err != nil {
				return nil, fmt.Errorf("%w: instruction %d: invalid account %q: %v", ErrInvalidPayload, i, acc.Pubkey, err)
			}
			accounts = append(accounts, solana.NewAccountMeta(key, acc.IsWritable, acc.IsSigner))
		}
		data, err := base64.StdEncoding.DecodeString(ix.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction %d: data is not base64: %v", ErrInvalidPayload, i, err)
		}
		out = append(out, solana.NewInstruction(programID, accounts, data))
	}
	return out, nil
}

// resolveLookupTables fetches each table's addresses. Tables that no longer
// exist are skipped.
func resolveLookupTables(ctx context.Context, client wallet.SolanaRPC, keys []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(keys))
	for _, key := range keys {
		info, err := client.GetAccountInfo(ctx, key)
		if errors.Is(err, rpc.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to fetch lookup table %s: %w", key, err)
		}
		if info == nil || info.Value == nil {
			continue
		}
		state, err := addresslookuptable.DecodeAddressLookupTableState(info.Value.Data.GetBinary())
		if err != nil {
			return nil, permanent(fmt.Errorf("%w: lookup table %s: %v", ErrInvalidPayload, key, err))
		}
		tables[key] = state.Addresses
	}
	return tables, nil
}
