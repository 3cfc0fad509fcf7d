package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"okx-dex/pkg/logging"
	"okx-dex/pkg/metrics"
	"okx-dex/pkg/tracing"
)

var rootCmd = &cobra.Command{
	Use:   "okx-dex",
	Short: "A CLI for quoting and executing swaps through the OKX DEX aggregator",
	Long: `okx-dex quotes and executes token swaps through the OKX DEX aggregation API
on EVM chains, Solana and Sui. The aggregator finds the route; okx-dex signs,
broadcasts and confirms the transaction with your own keys.

Examples:
  okx-dex quote 1 ETH to USDC --chain 1
  okx-dex swap 0.5 SOL to USDC --chain 501 --slippage 0.005
  okx-dex approve 0xA0b8...eB48 1000000 --chain 1
  okx-dex tokens --chain 8453 --symbol USD
  okx-dex status --chain 1 --address 0x123... --watch`,
	Version:           "0.1.0",
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	SilenceUsage:      true,
}

var (
	log           = zerolog.Nop()
	logConfigured bool
	traceShutdown func(context.Context) error
)

// Execute runs the root command until it finishes or the process is interrupted
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); defaults to config")
	rootCmd.PersistentFlags().Bool("trace", false, "Print tracing spans to stderr")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}

func setup(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if level == "" && verbose {
		level = "debug"
	}
	if level != "" {
		log = logging.New(level, true)
		logConfigured = true
	}

	if on, _ := cmd.Flags().GetBool("trace"); on {
		shutdown, err := tracing.Init(os.Stderr)
		if err != nil {
			return err
		}
		traceShutdown = shutdown
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		metrics.Serve(addr)
		log.Info().Str("addr", addr).Msg("serving metrics")
	}
	return nil
}

func teardown(*cobra.Command, []string) {
	if traceShutdown != nil {
		_ = traceShutdown(context.Background())
	}
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
