package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/config"
	"okx-dex/pkg/history"
)

var historyChain string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List swaps executed from this machine",
	Run:   runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyChain, "chain", "c", "", "Only show swaps on this chain")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput := jsonMode(cmd)

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	store, err := history.Open(cfg.HistoryFile)
	if err != nil {
		fail(err)
	}

	records := store.List(historyChain)
	if jsonOutput {
		printJSON(records)
		return
	}
	if len(records) == 0 {
		fmt.Println("\nNo swaps recorded yet.")
		return
	}

	fmt.Println("\n" + banner(90))
	for _, r := range records {
		fmt.Printf("  %s  chain %-6s %s %s -> %s %s\n",
			r.Time.Local().Format("2006-01-02 15:04:05"),
			r.ChainID,
			r.FromAmount, color.YellowString(r.FromSymbol),
			r.ToAmount, color.YellowString(r.ToSymbol))
		fmt.Printf("  %s\n", color.HiBlackString(r.ExplorerURL))
	}
	fmt.Println(banner(90))
	fmt.Printf("\n%d swaps recorded in %s\n\n", len(records), store.Path())
}
