package network

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownNetwork is returned when a chain has no ChainConfig
var ErrUnknownNetwork = errors.New("network configuration not found")

const (
	SolanaChainID = "501"
	SuiChainID    = "784"
	TONChainID    = "607"
	TronChainID   = "195"

	DefaultMaxRetries          = 3
	DefaultConfirmationTimeout = 60 * time.Second
	DefaultComputeUnits        = 300000
)

// ChainConfig holds static per-network execution policy
type ChainConfig struct {
	ID                  string        `mapstructure:"id" json:"id"`
	Explorer            string        `mapstructure:"explorer" json:"explorer"`
	DefaultSlippage     string        `mapstructure:"default_slippage" json:"defaultSlippage"`
	MaxSlippage         string        `mapstructure:"max_slippage" json:"maxSlippage"`
	ComputeUnits        uint32        `mapstructure:"compute_units" json:"computeUnits,omitempty"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout" json:"confirmationTimeout"`
	MaxRetries          int           `mapstructure:"max_retries" json:"maxRetries"`
	DexContractAddress  string        `mapstructure:"dex_contract_address" json:"dexContractAddress,omitempty"`
}

// ExplorerURL returns the explorer link for a transaction id
func (c ChainConfig) ExplorerURL(txID string) string {
	return c.Explorer + "/" + txID
}

func okxExplorer(name string) string {
	return "https://www.okx.com/web3/explorer/" + name + "/tx"
}

// evmExplorers maps every EVM chain the aggregator executes on to its explorer
var evmExplorers = map[string]string{
	"1":      okxExplorer("eth"),
	"10":     okxExplorer("optimism"),
	"25":     "https://cronoscan.com/tx",
	"56":     okxExplorer("bsc"),
	"66":     okxExplorer("oktc"),
	"100":    okxExplorer("gnosis"),
	"137":    okxExplorer("polygon"),
	"169":    okxExplorer("manta"),
	"196":    okxExplorer("xlayer"),
	"250":    okxExplorer("ftm"),
	"324":    okxExplorer("zksync"),
	"1030":   "https://www.confluxscan.io/tx",
	"1088":   okxExplorer("metis"),
	"1101":   okxExplorer("polygon-zkevm"),
	"5000":   okxExplorer("mantle"),
	"7000":   "https://explorer.zetachain.com/tx",
	"8453":   okxExplorer("base"),
	"42161":  okxExplorer("arbitrum"),
	"43114":  okxExplorer("avax"),
	"59144":  okxExplorer("linea"),
	"81457":  okxExplorer("blast"),
	"534352": okxExplorer("scroll"),
}

func baseConfig(id, explorer string) ChainConfig {
	return ChainConfig{
		ID:                  id,
		Explorer:            explorer,
		DefaultSlippage:     "0.5",
		MaxSlippage:         "1",
		ConfirmationTimeout: DefaultConfirmationTimeout,
		MaxRetries:          DefaultMaxRetries,
	}
}

// Defaults returns a fresh copy of the built-in network table
func Defaults() map[string]ChainConfig {
	out := make(map[string]ChainConfig, len(evmExplorers)+2)

	sol := baseConfig(SolanaChainID, okxExplorer("sol"))
	sol.ComputeUnits = DefaultComputeUnits
	out[SolanaChainID] = sol
	out[SuiChainID] = baseConfig(SuiChainID, okxExplorer("sui"))

	for id, explorer := range evmExplorers {
		out[id] = baseConfig(id, explorer)
	}
	return out
}

// Table is an immutable view of the merged network configuration
type Table struct {
	configs map[string]ChainConfig
}

// NewTable merges caller overrides over the defaults. An override replaces
// the whole default entry for its chain.
func NewTable(overrides map[string]ChainConfig) Table {
	configs := Defaults()
	for id, cfg := range overrides {
		cfg.ID = id
		if cfg.MaxRetries <= 0 {
			cfg.MaxRetries = DefaultMaxRetries
		}
		if cfg.ConfirmationTimeout <= 0 {
			cfg.ConfirmationTimeout = DefaultConfirmationTimeout
		}
		if id == SolanaChainID && cfg.ComputeUnits == 0 {
			cfg.ComputeUnits = DefaultComputeUnits
		}
		configs[id] = cfg
	}
	return Table{configs: configs}
}

// Get returns the configuration for a chain
func (t Table) Get(chainID string) (ChainConfig, error) {
	cfg, ok := t.configs[chainID]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w for chain %s", ErrUnknownNetwork, chainID)
	}
	return cfg, nil
}

// IDs returns the configured chain ids in ascending numeric order
func (t Table) IDs() []string {
	ids := make([]string, 0, len(t.configs))
	for id := range t.configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Family groups chains that share transaction and signing semantics
type Family int

const (
	FamilyUnknown Family = iota
	FamilyEVM
	FamilySolana
	FamilySui
	FamilyTON
	FamilyTron
)

func (f Family) String() string {
	switch f {
	case FamilyEVM:
		return "evm"
	case FamilySolana:
		return "solana"
	case FamilySui:
		return "sui"
	case FamilyTON:
		return "ton"
	case FamilyTron:
		return "tron"
	default:
		return "unknown"
	}
}

// FamilyOf classifies a chain id
func FamilyOf(chainID string) Family {
	switch chainID {
	case SolanaChainID:
		return FamilySolana
	case SuiChainID:
		return FamilySui
	case TONChainID:
		return FamilyTON
	case TronChainID:
		return FamilyTron
	}
	if _, ok := evmExplorers[chainID]; ok {
		return FamilyEVM
	}
	return FamilyUnknown
}
