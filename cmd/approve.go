package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/types"
)

var approveChain string

var approveCmd = &cobra.Command{
	Use:   "approve <token-address> <amount>",
	Short: "Approve the DEX router to spend an ERC20 token",
	Long: `Set an ERC20 allowance for the chain's OKX DEX approval contract.
The amount is in the token's base units. Nothing is sent when the current
allowance already covers it.

Examples:
  okx-dex approve 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 1000000 --chain 1`,
	Args: cobra.ExactArgs(2),
	Run:  runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)

	approveCmd.Flags().StringVarP(&approveChain, "chain", "c", "", "EVM chain ID (required)")
	_ = approveCmd.MarkFlagRequired("chain")
}

func runApprove(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, approveChain)
	if err != nil {
		fail(err)
	}
	defer a.close()

	stop := spin(jsonOutput, "Checking allowance...")
	result, err := a.api.ExecuteApproval(ctx, types.ApproveTokenParams{
		ChainID:              approveChain,
		TokenContractAddress: args[0],
		ApproveAmount:        args[1],
	})
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(result)
		return
	}
	if result.AlreadyApproved {
		printSuccess(result.Message)
		return
	}
	color.Green("\nApproval confirmed")
	fmt.Printf("  Transaction: %s\n", color.CyanString(result.TransactionHash))
	fmt.Printf("  Explorer:    %s\n\n", result.ExplorerURL)
}
