package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/types"
)

var (
	gasChain     string
	gasFrom      string
	gasTo        string
	gasValue     string
	gasInputData string
)

var gasPriceCmd = &cobra.Command{
	Use:   "gas-price",
	Short: "Show the current gas price for a chain",
	Run:   runGasPrice,
}

var gasLimitCmd = &cobra.Command{
	Use:   "gas-limit",
	Short: "Estimate the gas limit of a transaction",
	Long: `Estimate gas for a transaction without sending it.

Examples:
  okx-dex gas-limit --chain 1 --from 0xabc... --to 0xdef... --value 1000000000000000`,
	Run: runGasLimit,
}

func init() {
	rootCmd.AddCommand(gasPriceCmd)
	rootCmd.AddCommand(gasLimitCmd)

	gasPriceCmd.Flags().StringVarP(&gasChain, "chain", "c", "", "Chain ID (required)")
	_ = gasPriceCmd.MarkFlagRequired("chain")

	gasLimitCmd.Flags().StringVarP(&gasChain, "chain", "c", "", "Chain ID (required)")
	gasLimitCmd.Flags().StringVar(&gasFrom, "from", "", "Sender address (required)")
	gasLimitCmd.Flags().StringVar(&gasTo, "to", "", "Recipient or contract address (required)")
	gasLimitCmd.Flags().StringVar(&gasValue, "value", "", "Native amount in base units")
	gasLimitCmd.Flags().StringVar(&gasInputData, "data", "", "Hex call data")
	_ = gasLimitCmd.MarkFlagRequired("chain")
}

func runGasPrice(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	stop := spin(jsonOutput, "Fetching gas price...")
	prices, err := a.api.GetGasPrice(ctx, gasChain)
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(prices)
		return
	}
	for _, p := range prices {
		fmt.Printf("\n  Normal: %s\n  Min:    %s\n  Max:    %s\n", color.GreenString(p.Normal), p.Min, p.Max)
		if e := p.EIP1559Protocol; e != nil {
			fmt.Printf("  Base fee: %s  priority (safe/propose/fast): %s / %s / %s\n",
				e.BaseFee, e.SafePriority, e.ProposePriority, e.FastPriority)
		}
		if f := p.PriorityFee; f != nil {
			fmt.Printf("  Priority fee (safe/propose/fast/extreme): %s / %s / %s / %s\n",
				f.SafePriorityFee, f.ProposePriorityFee, f.FastPriorityFee, f.ExtremePriorityFee)
		}
	}
	fmt.Println()
}

func runGasLimit(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	params := types.GasLimitParams{
		ChainIndex:  gasChain,
		FromAddress: gasFrom,
		ToAddress:   gasTo,
		TxAmount:    gasValue,
	}
	if gasInputData != "" {
		params.ExtJSON = &types.GasLimitExt{InputData: gasInputData}
	}

	stop := spin(jsonOutput, "Estimating gas...")
	limits, err := a.api.GetGasLimit(ctx, params)
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(limits)
		return
	}
	for _, l := range limits {
		printSuccess("Gas limit: " + color.GreenString(l.GasLimit))
	}
}
