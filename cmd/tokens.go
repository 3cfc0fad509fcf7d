package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/types"
)

var (
	filterChain  string
	filterSymbol string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the tokens the aggregator trades on a chain",
	Long: `List all tokens the OKX DEX aggregator supports on a chain.

Examples:
  okx-dex list-tokens --chain 1
  okx-dex list-tokens --chain 501 --symbol USD`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVarP(&filterChain, "chain", "c", "", "Chain ID (required)")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
	_ = tokensCmd.MarkFlagRequired("chain")
}

func runListTokens(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	stop := spin(jsonOutput, "Fetching supported tokens...")
	tokens, err := a.api.GetTokens(ctx, filterChain)
	stop()
	if err != nil {
		fail(err)
	}

	filtered := filterTokens(tokens, filterSymbol)

	if jsonOutput {
		printJSON(filtered)
	} else {
		displayTokens(filtered, filterChain)
	}
}

func filterTokens(tokens []types.TokenData, symbol string) []types.TokenData {
	if symbol == "" {
		return tokens
	}
	var out []types.TokenData
	for _, token := range tokens {
		if strings.Contains(strings.ToUpper(token.TokenSymbol), strings.ToUpper(symbol)) {
			out = append(out, token)
		}
	}
	return out
}

func displayTokens(tokens []types.TokenData, chainID string) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	sort.Slice(tokens, func(i, j int) bool {
		return strings.ToUpper(tokens[i].TokenSymbol) < strings.ToUpper(tokens[j].TokenSymbol)
	})

	fmt.Println("\n" + banner(90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(banner(90))
	color.Cyan("\nCHAIN %s", chainID)
	fmt.Println(strings.Repeat("-", 90))

	for _, token := range tokens {
		address := token.TokenContractAddress
		if len(address) > 44 {
			address = address[:41] + "..."
		}
		fmt.Printf("  %-10s  %2s decimals  %s\n",
			color.YellowString(token.TokenSymbol),
			token.Decimals,
			color.HiBlackString(address))
	}

	fmt.Println("\n" + banner(90))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens))
}
