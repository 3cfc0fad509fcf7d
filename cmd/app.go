package cmd

import (
	"context"
	"fmt"

	"okx-dex/config"
	"okx-dex/pkg/client"
	"okx-dex/pkg/dex"
	"okx-dex/pkg/logging"
	"okx-dex/pkg/network"
	"okx-dex/pkg/swap"
	"okx-dex/pkg/wallet"
)

// app is the facade plus whatever wallet the command's chain needs
type app struct {
	cfg  *config.Config
	api  *dex.API
	opts swap.Options
}

// newApp loads configuration and builds the facade. Wallets are dialled only
// for the family of chainID; an empty chainID dials none.
func newApp(ctx context.Context, chainID string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !logConfigured {
		log = logging.New(cfg.LogLevel, true)
		logConfigured = true
	}

	opts := swap.Options{ComputeUnits: cfg.Solana.ComputeUnits}
	switch network.FamilyOf(chainID) {
	case network.FamilyEVM:
		if cfg.EVM.RPCURL != "" {
			if opts.EVM, err = wallet.DialEVM(ctx, cfg.EVM.RPCURL, cfg.EVM.PrivateKey); err != nil {
				return nil, fmt.Errorf("failed to connect EVM wallet: %w", err)
			}
		}
	case network.FamilySolana:
		if cfg.Solana.RPCURL != "" {
			if opts.Solana, err = wallet.DialSolana(cfg.Solana.RPCURL, cfg.Solana.PrivateKey, cfg.Solana.Commitment, cfg.Solana.SkipPreflight); err != nil {
				return nil, fmt.Errorf("failed to load Solana wallet: %w", err)
			}
		}
	case network.FamilySui:
		if cfg.Sui.PrivateKey != "" {
			if opts.Sui, err = wallet.DialSui(cfg.Sui.RPCURL, cfg.Sui.PrivateKey); err != nil {
				return nil, fmt.Errorf("failed to load Sui wallet: %w", err)
			}
		}
	}

	api := dex.New(client.New(cfg.ClientConfig(), log), dex.Config{
		Networks:  cfg.Networks,
		Executors: opts,
	}, log)

	return &app{cfg: cfg, api: api, opts: opts}, nil
}

// walletAddress returns the configured signer's address for chainID's family
func (a *app) walletAddress(chainID string) (string, error) {
	switch network.FamilyOf(chainID) {
	case network.FamilyEVM:
		if a.opts.EVM != nil {
			return a.opts.EVM.Address().Hex(), nil
		}
	case network.FamilySolana:
		if a.opts.Solana != nil {
			return a.opts.Solana.PublicKey().String(), nil
		}
	case network.FamilySui:
		if a.opts.Sui != nil {
			return a.opts.Sui.Address(), nil
		}
	default:
		return "", fmt.Errorf("chain %s %w", chainID, swap.ErrUnsupportedChain)
	}
	return "", fmt.Errorf("%w: no wallet configured for chain %s", swap.ErrConfiguration, chainID)
}

func (a *app) close() {
	if a.opts.EVM != nil {
		a.opts.EVM.Close()
	}
}
