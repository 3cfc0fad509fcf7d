package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"okx-dex/pkg/dex"
	"okx-dex/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
	statusChain   string
	statusAddress string
	statusOrderID string
	statusLimit   string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check broadcast orders for an address",
	Long: `List transactions broadcast through the OKX gateway and their status.

Examples:
  okx-dex status --chain 1 --address 0x1234...abcd
  okx-dex status --chain 1 --address 0x1234...abcd --order 123 --watch
  okx-dex status --chain 501 --address 7xKX... --watch --interval 10`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusChain, "chain", "c", "", "Chain ID (required)")
	statusCmd.Flags().StringVar(&statusAddress, "address", "", "Wallet address (required)")
	statusCmd.Flags().StringVar(&statusOrderID, "order", "", "Only show this order")
	statusCmd.Flags().StringVar(&statusLimit, "limit", "", "Maximum number of orders")
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
	_ = statusCmd.MarkFlagRequired("chain")
	_ = statusCmd.MarkFlagRequired("address")
}

func runStatus(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	jsonOutput := jsonMode(cmd)

	a, err := newApp(ctx, "")
	if err != nil {
		fail(err)
	}

	params := types.OrderParams{
		Address:    statusAddress,
		ChainIndex: statusChain,
		OrderID:    statusOrderID,
		Limit:      statusLimit,
	}

	if watchStatus {
		watchOrders(ctx, a.api, params, jsonOutput)
	} else {
		checkOrders(ctx, a.api, params, jsonOutput)
	}
}

func checkOrders(ctx context.Context, api *dex.API, params types.OrderParams, jsonOutput bool) {
	stop := spin(jsonOutput, "Checking order status...")
	orders, err := api.GetTransactionOrders(ctx, params)
	stop()
	if err != nil {
		fail(err)
	}

	if jsonOutput {
		printJSON(orders)
	} else {
		displayOrders(orders)
	}
}

func watchOrders(ctx context.Context, api *dex.API, params types.OrderParams, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		teardown(nil, nil)
		return
	}

	fmt.Printf("\nWatching orders for %s\n", color.CyanString(params.Address))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	for {
		orders, err := api.GetTransactionOrders(ctx, params)
		if err != nil {
			color.Red("Error: %v", err)
		} else {
			displayOrders(orders)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func displayOrders(data []types.OrdersData) {
	fmt.Println("\n" + banner(70))
	color.Green("                        ORDER STATUS")
	fmt.Println(banner(70))

	count := 0
	for _, page := range data {
		for _, o := range page.Orders {
			count++
			fmt.Printf("\n  Order:   %s\n", color.CyanString(o.OrderID))
			fmt.Printf("  Status:  %s\n", getColoredStatus(o.TxStatus))
			if o.TxHash != "" {
				fmt.Printf("  Tx:      %s\n", color.HiBlackString(o.TxHash))
			}
			if o.FailReason != "" {
				fmt.Printf("  Reason:  %s\n", color.RedString(o.FailReason))
			}
		}
	}
	if count == 0 {
		fmt.Println("\n  No orders found.")
	}

	fmt.Println("\n" + banner(70) + "\n")
}

func getColoredStatus(status string) string {
	switch status {
	case types.OrderStatusSuccess:
		return color.GreenString("SUCCESS")
	case types.OrderStatusSubmitted:
		return color.YellowString("SUBMITTED")
	case types.OrderStatusPending:
		return color.YellowString("PENDING")
	case types.OrderStatusFailed:
		return color.RedString("FAILED")
	default:
		return status
	}
}
