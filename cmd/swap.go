package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/history"
	"okx-dex/pkg/network"
	"okx-dex/pkg/parser"
	"okx-dex/pkg/swap"
	"okx-dex/pkg/types"
)

var (
	swapChain       string
	slippage        string
	autoSlippage    bool
	maxAutoSlippage string
	noConfirm       bool
	useInstructions bool
	receiver        string
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <from-token> to <to-token>",
	Short: "Quote, sign and execute a swap",
	Long: `Swap tokens on a single chain through the OKX DEX aggregator.

Tokens may be symbols or contract addresses. The swap is signed with the
wallet configured for the chain's family (OKX_EVM_*, OKX_SOLANA_* or OKX_SUI_*).

Examples:
  okx-dex swap 0.1 ETH to USDC --chain 1
  okx-dex swap 1 SOL to USDC --chain 501 --auto-slippage --max-auto-slippage 0.01
  okx-dex swap 1 SOL to USDC --chain 501 --instructions
  okx-dex swap 5 SUI to USDC --chain 784 --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVarP(&swapChain, "chain", "c", "", "Chain ID, e.g. 1, 8453, 501, 784 (required)")
	swapCmd.Flags().StringVar(&slippage, "slippage", "0.005", "Fixed slippage between 0 and 1")
	swapCmd.Flags().BoolVar(&autoSlippage, "auto-slippage", false, "Let the aggregator pick slippage")
	swapCmd.Flags().StringVar(&maxAutoSlippage, "max-auto-slippage", "", "Ceiling for automatic slippage")
	swapCmd.Flags().StringVar(&receiver, "receiver", "", "Send the output token to this address instead of the wallet")
	swapCmd.Flags().BoolVar(&useInstructions, "instructions", false, "Build the Solana transaction from swap instructions")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	_ = swapCmd.MarkFlagRequired("chain")
}

func runSwap(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	req, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		fail(err)
	}
	req.ChainID = swapChain
	if err := parser.ValidateSwapRequest(req); err != nil {
		fail(err)
	}
	if useInstructions && network.FamilyOf(req.ChainID) != network.FamilySolana {
		fail(fmt.Errorf("--instructions is only available on Solana (chain %s)", network.SolanaChainID))
	}

	a, err := newApp(ctx, req.ChainID)
	if err != nil {
		fail(err)
	}
	defer a.close()

	user, err := a.walletAddress(req.ChainID)
	if err != nil {
		fail(err)
	}

	stop := spin(jsonOutput, "Resolving tokens...")
	params, from, to, err := swapParams(ctx, a, req, user)
	stop()
	if err != nil {
		fail(err)
	}

	stop = spin(jsonOutput, "Fetching quote...")
	quotes, err := a.api.GetQuote(ctx, types.QuoteParams{
		ChainID:           params.ChainID,
		FromTokenAddress:  params.FromTokenAddress,
		ToTokenAddress:    params.ToTokenAddress,
		Amount:            params.Amount,
		UserWalletAddress: user,
		Slippage:          params.Slippage,
	})
	stop()
	if err != nil {
		fail(err)
	}
	if len(quotes) == 0 {
		fail(fmt.Errorf("no route found for %s to %s", from.TokenSymbol, to.TokenSymbol))
	}

	if !jsonOutput {
		displayQuote(&quotes[0], req, user)
	}

	if !noConfirm && !jsonOutput {
		if !confirm("Proceed with swap?") {
			fmt.Println("\nSwap cancelled.")
			return
		}
	}

	stop = spin(jsonOutput, "Executing swap...")
	var result *types.SwapResult
	if useInstructions {
		result, err = a.api.ExecuteSolanaSwapInstructions(ctx, params)
	} else {
		result, err = a.api.ExecuteSwap(ctx, params)
	}
	stop()
	if err != nil {
		fail(err)
	}

	recordSwap(a, req.ChainID, result)

	if jsonOutput {
		printJSON(result)
		return
	}
	displaySwapResult(result)
}

// recordSwap journals a successful swap. The swap already happened, so a
// journal failure is only logged.
func recordSwap(a *app, chainID string, result *types.SwapResult) {
	store, err := history.Open(a.cfg.HistoryFile)
	if err == nil {
		_, err = store.Add(history.NewRecord(chainID, result))
	}
	if err != nil {
		log.Warn().Err(err).Str("tx", result.TransactionID).Msg("failed to record swap history")
	}
}

// swapParams resolves both tokens on the chain and converts the amount to base units
func swapParams(ctx context.Context, a *app, req *types.SwapRequest, user string) (types.SwapParams, *types.TokenData, *types.TokenData, error) {
	tokens, err := a.api.GetTokens(ctx, req.ChainID)
	if err != nil {
		return types.SwapParams{}, nil, nil, err
	}
	from, err := parser.ResolveToken(tokens, req.FromSymbol)
	if err != nil {
		return types.SwapParams{}, nil, nil, err
	}
	to, err := parser.ResolveToken(tokens, req.ToSymbol)
	if err != nil {
		return types.SwapParams{}, nil, nil, err
	}
	amount, err := parser.ToBaseUnits(req.Amount, from.Decimals.String())
	if err != nil {
		return types.SwapParams{}, nil, nil, err
	}

	params := types.SwapParams{
		ChainID:             req.ChainID,
		FromTokenAddress:    from.TokenContractAddress,
		ToTokenAddress:      to.TokenContractAddress,
		Amount:              amount,
		UserWalletAddress:   user,
		SwapReceiverAddress: receiver,
	}
	if autoSlippage {
		params.AutoSlippage = true
		params.MaxAutoSlippage = maxAutoSlippage
	} else {
		params.Slippage = slippage
	}
	return params, from, to, nil
}

func displayQuote(q *types.QuoteData, req *types.SwapRequest, user string) {
	fmt.Println("\n" + banner(60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(banner(60))

	fmt.Printf("\n  Wallet:            %s\n", color.CyanString(user))
	fmt.Printf("  From:              %s %s\n", req.Amount, color.YellowString(q.FromToken.TokenSymbol))
	out, err := swap.FormatAmount(q.ToTokenAmount, q.ToToken.Decimal)
	if err != nil {
		out = q.ToTokenAmount
	}
	fmt.Printf("  To:                ~%s %s\n", out, color.YellowString(q.ToToken.TokenSymbol))
	if q.PriceImpactPercentage != "" {
		fmt.Printf("  Price Impact:      %s%%\n", q.PriceImpactPercentage)
	}
	if q.EstimateGasFee != "" {
		fmt.Printf("  Estimated Gas:     %s\n", q.EstimateGasFee)
	}
	fmt.Printf("  Chain:             %s\n", req.ChainID)

	for _, r := range q.DexRouterList {
		for _, sub := range r.SubRouterList {
			for _, p := range sub.DexProtocol {
				fmt.Printf("  Route:             %s %s -> %s (%s%%)\n",
					p.DexName, sub.FromToken.TokenSymbol, sub.ToToken.TokenSymbol, p.Percent)
			}
		}
	}

	fmt.Println("\n" + banner(60) + "\n")
}

func displaySwapResult(r *types.SwapResult) {
	fmt.Println("\n" + banner(60))
	color.Green("                   SWAP SUBMITTED")
	fmt.Println(banner(60))

	fmt.Printf("\n  Transaction: %s\n", color.CyanString(r.TransactionID))
	if r.ExplorerURL != "" {
		fmt.Printf("  Explorer:    %s\n", r.ExplorerURL)
	}
	if d := r.Details; d != nil {
		fmt.Printf("  Sold:        %s %s\n", d.FromToken.Amount, color.YellowString(d.FromToken.Symbol))
		fmt.Printf("  Bought:      %s %s\n", d.ToToken.Amount, color.YellowString(d.ToToken.Symbol))
		if d.PriceImpact != "" {
			fmt.Printf("  Price Impact: %s%%\n", d.PriceImpact)
		}
	}

	fmt.Println("\n" + banner(60) + "\n")
}
