package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/network"
)

var chainsRemote string

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "Show the chains okx-dex can execute on",
	Long: `Print the merged network table (built-in defaults plus config overrides).
With --remote, ask the aggregator for a chain's details including its
token-approval contract.

Examples:
  okx-dex chains
  okx-dex chains --remote 8453`,
	Run: runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)

	chainsCmd.Flags().StringVar(&chainsRemote, "remote", "", "Fetch aggregator data for this chain ID")
}

func runChains(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	if chainsRemote != "" {
		stop := spin(jsonOutput, "Fetching chain data...")
		data, err := a.api.GetChainData(ctx, chainsRemote)
		stop()
		if err != nil {
			fail(err)
		}
		if jsonOutput {
			printJSON(data)
			return
		}
		for _, c := range data {
			fmt.Printf("\n  %s (%s)\n", color.YellowString(c.ChainName), c.ChainID)
			fmt.Printf("  Approve contract: %s\n", color.CyanString(c.DexTokenApproveAddress))
		}
		fmt.Println()
		return
	}

	table := a.api.Networks()
	ids := table.IDs()
	if jsonOutput {
		out := make([]network.ChainConfig, 0, len(ids))
		for _, id := range ids {
			cfg, _ := table.Get(id)
			out = append(out, cfg)
		}
		printJSON(out)
		return
	}

	fmt.Println("\n" + banner(90))
	color.Green("                              NETWORKS")
	fmt.Println(banner(90))
	for _, id := range ids {
		cfg, _ := table.Get(id)
		fmt.Printf("  %-8s %-7s slippage %-6s retries %d  %s\n",
			color.YellowString(id),
			network.FamilyOf(id),
			cfg.DefaultSlippage,
			cfg.MaxRetries,
			color.HiBlackString(cfg.Explorer))
	}
	fmt.Println(banner(90) + "\n")
}
