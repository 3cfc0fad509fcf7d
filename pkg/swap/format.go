package swap

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"okx-dex/pkg/network"
	"okx-dex/pkg/types"
)

// displayPlaces is the fixed precision of human-readable amounts
const displayPlaces = 6

// FormatAmount divides a raw integer amount by 10^decimals and fixes it to six places
func FormatAmount(raw, decimals string) (string, error) {
	places, err := strconv.Atoi(decimals)
	if err != nil || places < 0 {
		return "", fmt.Errorf("invalid token decimals %q", decimals)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return "", fmt.Errorf("invalid token amount %q: %w", raw, err)
	}
	return amount.Shift(-int32(places)).StringFixed(displayPlaces), nil
}

func validateRouterResult(rr *types.RouterResult) error {
	if rr.FromToken.Decimal == "" || rr.ToToken.Decimal == "" {
		return fmt.Errorf("%w: missing decimal information for tokens: %s -> %s",
			ErrInvalidPayload, rr.FromToken.TokenSymbol, rr.ToToken.TokenSymbol)
	}
	return nil
}

// formatResult builds the SwapResult shared by every executor
func formatResult(net network.ChainConfig, txID string, rr *types.RouterResult) (*types.SwapResult, error) {
	fromAmount, err := FormatAmount(rr.FromTokenAmount, rr.FromToken.Decimal)
	if err != nil {
		return nil, err
	}
	toAmount, err := FormatAmount(rr.ToTokenAmount, rr.ToToken.Decimal)
	if err != nil {
		return nil, err
	}

	return &types.SwapResult{
		Success:       true,
		TransactionID: txID,
		ExplorerURL:   net.ExplorerURL(txID),
		Details: &types.SwapDetails{
			FromToken: types.TokenDetail{
				Symbol:  rr.FromToken.TokenSymbol,
				Amount:  fromAmount,
				Decimal: rr.FromToken.Decimal,
			},
			ToToken: types.TokenDetail{
				Symbol:  rr.ToToken.TokenSymbol,
				Amount:  toAmount,
				Decimal: rr.ToToken.Decimal,
			},
			PriceImpact: rr.PriceImpactPercentage,
		},
	}, nil
}
