package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var liquidityChain string

var liquidityCmd = &cobra.Command{
	Use:   "liquidity",
	Short: "List the liquidity sources the aggregator routes through",
	Run:   runLiquidity,
}

func init() {
	rootCmd.AddCommand(liquidityCmd)

	liquidityCmd.Flags().StringVarP(&liquidityChain, "chain", "c", "", "Chain ID (required)")
	_ = liquidityCmd.MarkFlagRequired("chain")
}

func runLiquidity(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	stop := spin(jsonOutput, "Fetching liquidity sources...")
	sources, err := a.api.GetLiquidity(ctx, liquidityChain)
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(sources)
		return
	}
	fmt.Println()
	for _, s := range sources {
		fmt.Printf("  %-6s %s\n", color.HiBlackString(s.ID), s.Name)
	}
	fmt.Printf("\nTotal: %d sources\n\n", len(sources))
}
