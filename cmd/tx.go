package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/types"
)

var (
	simChain    string
	simFrom     string
	simTo       string
	simValue    string
	simData     string
	simGasPrice string
	simDebug    bool

	bcChain   string
	bcAddress string
	bcMEV     bool
	bcJito    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a transaction and show its asset changes",
	Run:   runSimulate,
}

var broadcastCmd = &cobra.Command{
	Use:   "broadcast <signed-tx>",
	Short: "Broadcast a signed transaction through the OKX gateway",
	Args:  cobra.ExactArgs(1),
	Run:   runBroadcast,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(broadcastCmd)

	simulateCmd.Flags().StringVarP(&simChain, "chain", "c", "", "Chain ID (required)")
	simulateCmd.Flags().StringVar(&simFrom, "from", "", "Sender address (required)")
	simulateCmd.Flags().StringVar(&simTo, "to", "", "Recipient or contract address (required)")
	simulateCmd.Flags().StringVar(&simValue, "value", "", "Native amount in base units")
	simulateCmd.Flags().StringVar(&simData, "data", "", "Hex call data or serialized transaction (required)")
	simulateCmd.Flags().StringVar(&simGasPrice, "gas-price", "", "Gas price to simulate with")
	simulateCmd.Flags().BoolVar(&simDebug, "debug", false, "Include the execution trace")
	_ = simulateCmd.MarkFlagRequired("chain")

	broadcastCmd.Flags().StringVarP(&bcChain, "chain", "c", "", "Chain ID (required)")
	broadcastCmd.Flags().StringVar(&bcAddress, "address", "", "Signer address (required)")
	broadcastCmd.Flags().BoolVar(&bcMEV, "mev-protection", false, "Route through MEV protection where available")
	broadcastCmd.Flags().StringVar(&bcJito, "jito-tx", "", "Signed Jito bundle transaction (Solana)")
	_ = broadcastCmd.MarkFlagRequired("chain")
}

func runSimulate(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	params := types.SimulateParams{
		ChainIndex:   simChain,
		FromAddress:  simFrom,
		ToAddress:    simTo,
		TxAmount:     simValue,
		GasPrice:     simGasPrice,
		IncludeDebug: simDebug,
	}
	if simData != "" {
		params.ExtJSON = &types.GasLimitExt{InputData: simData}
	}

	stop := spin(jsonOutput, "Simulating...")
	sims, err := a.api.SimulateTransaction(ctx, params)
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(sims)
		return
	}
	for _, s := range sims {
		if s.FailReason != "" {
			color.Red("\n  Simulation failed: %s", s.FailReason)
		} else {
			color.Green("\n  Simulation succeeded")
		}
		if s.Intention != "" {
			fmt.Printf("  Intention: %s\n", s.Intention)
		}
		fmt.Printf("  Gas used:  %s\n", s.GasUsed)
		for _, c := range s.AssetChange {
			fmt.Printf("  %-4s %s %s\n", c.Direction, c.Amount, color.YellowString(c.Symbol))
		}
		if len(s.Risks) > 0 {
			color.Yellow("  %d risk(s) flagged", len(s.Risks))
		}
	}
	fmt.Println()
}

func runBroadcast(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	stop := spin(jsonOutput, "Broadcasting...")
	out, err := a.api.BroadcastTransaction(ctx, types.BroadcastParams{
		SignedTx:            args[0],
		ChainIndex:          bcChain,
		Address:             bcAddress,
		EnableMevProtection: bcMEV,
		JitoSignedTx:        bcJito,
	})
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(out)
		return
	}
	for _, o := range out {
		fmt.Printf("\n  Order:  %s\n  TxHash: %s\n", color.CyanString(o.OrderID), o.TxHash)
	}
	fmt.Println("\nTrack it with:")
	color.Cyan("  okx-dex status --chain %s --address %s\n", bcChain, bcAddress)
}
