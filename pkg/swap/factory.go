package swap

import (
	"fmt"

	"okx-dex/pkg/network"
)

// NewExecutor returns the swap executor for chainID's family
func NewExecutor(chainID string, net network.ChainConfig, opts Options) (Executor, error) {
	var (
		exec Executor
		err  error
	)
	switch network.FamilyOf(chainID) {
	case network.FamilySolana:
		exec, err = NewSolanaExecutor(net, opts)
	case network.FamilySui:
		exec, err = NewSuiExecutor(net, opts)
	case network.FamilyEVM:
		exec, err = NewEVMExecutor(chainID, net, opts)
	default:
		// TON and Tron are known families without an executor
		return nil, fmt.Errorf("chain %s %w", chainID, ErrUnsupportedChain)
	}
	if err != nil {
		return nil, err
	}
	return exec, nil
}

// NewInstructionExecutor returns the instruction-based executor. Only Solana
// exposes swap instructions.
func NewInstructionExecutor(chainID string, net network.ChainConfig, opts Options) (*SolanaInstructionExecutor, error) {
	if network.FamilyOf(chainID) != network.FamilySolana {
		return nil, fmt.Errorf("chain %s %w", chainID, ErrUnsupportedChain)
	}
	return NewSolanaInstructionExecutor(net, opts)
}
