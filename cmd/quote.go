package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"okx-dex/pkg/parser"
	"okx-dex/pkg/types"
)

var (
	quoteChain    string
	quoteSlippage string
	quoteDexIDs   string
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <from-token> to <to-token>",
	Short: "Get the best route and output amount for a swap",
	Long: `Ask the aggregator for a quote without signing anything. No wallet is needed.

Examples:
  okx-dex quote 1 ETH to USDC --chain 1
  okx-dex quote 100 USDC to SOL --chain 501 --dex-ids 277`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVarP(&quoteChain, "chain", "c", "", "Chain ID (required)")
	quoteCmd.Flags().StringVar(&quoteSlippage, "slippage", "", "Slippage between 0 and 1")
	quoteCmd.Flags().StringVar(&quoteDexIDs, "dex-ids", "", "Comma separated liquidity source IDs")
	_ = quoteCmd.MarkFlagRequired("chain")
}

func runQuote(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		fail(err)
	}
	req.ChainID = quoteChain
	if err := parser.ValidateSwapRequest(req); err != nil {
		fail(err)
	}

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	stop := spin(jsonOutput, "Fetching quote...")
	tokens, err := a.api.GetTokens(ctx, req.ChainID)
	if err != nil {
		stop()
		fail(err)
	}
	from, err := parser.ResolveToken(tokens, req.FromSymbol)
	if err != nil {
		stop()
		fail(err)
	}
	to, err := parser.ResolveToken(tokens, req.ToSymbol)
	if err != nil {
		stop()
		fail(err)
	}
	amount, err := parser.ToBaseUnits(req.Amount, from.Decimals.String())
	if err != nil {
		stop()
		fail(err)
	}

	quotes, err := a.api.GetQuote(ctx, types.QuoteParams{
		ChainID:          req.ChainID,
		FromTokenAddress: from.TokenContractAddress,
		ToTokenAddress:   to.TokenContractAddress,
		Amount:           amount,
		DexIDs:           quoteDexIDs,
		Slippage:         quoteSlippage,
	})
	stop()
	if err != nil {
		fail(err)
	}
	if len(quotes) == 0 {
		fail(fmt.Errorf("no route found for %s to %s", from.TokenSymbol, to.TokenSymbol))
	}

	if jsonOutput {
		printJSON(quotes[0])
		return
	}
	displayQuote(&quotes[0], req, "-")

	if cmp := quotes[0].QuoteCompareList; len(cmp) > 0 {
		fmt.Println("  Compared against:")
		for _, c := range cmp {
			fmt.Printf("    %-20s %s (fee %s)\n", c.DexName, c.AmountOut, c.TradeFee)
		}
		fmt.Println()
	}
}
