package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"okx-dex/pkg/types"
)

// Pattern: [swap] <amount> <token> to <token>. Tokens are symbols or addresses,
// so their case is preserved.
var swapPattern = regexp.MustCompile(`(?i)^(?:swap\s+)?(\d+\.?\d*)\s+([A-Za-z0-9]+)\s+to\s+([A-Za-z0-9]+)$`)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 SOL to USDC"
//   - "1.5 ETH to USDT"
//   - "100 USDC to 0xdAC17F958D2ee523a2206206994597C13D831ec7"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	matches := swapPattern.FindStringSubmatch(strings.TrimSpace(command))
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token> to <token>' (e.g., 'swap 1 ETH to USDC')")
	}

	return &types.SwapRequest{
		Amount:     matches[1],
		FromSymbol: matches[2],
		ToSymbol:   matches[3],
	}, nil
}

// ValidateSwapRequest validates that a swap request has all required fields
func ValidateSwapRequest(req *types.SwapRequest) error {
	if req.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if req.FromSymbol == "" {
		return fmt.Errorf("source token is required")
	}
	if req.ToSymbol == "" {
		return fmt.Errorf("destination token is required")
	}
	if req.ChainID == "" {
		return fmt.Errorf("chain is required")
	}
	return nil
}

// ResolveToken finds a token by exact symbol, then by partial symbol. A value
// that matches a contract address is returned as that token.
func ResolveToken(tokens []types.TokenData, symbol string) (*types.TokenData, error) {
	for i := range tokens {
		if strings.EqualFold(tokens[i].TokenContractAddress, symbol) {
			return &tokens[i], nil
		}
	}

	upper := strings.ToUpper(symbol)

	// Try exact match first
	for i := range tokens {
		if strings.ToUpper(tokens[i].TokenSymbol) == upper {
			return &tokens[i], nil
		}
	}

	// Try partial match
	for i := range tokens {
		if strings.Contains(strings.ToUpper(tokens[i].TokenSymbol), upper) {
			return &tokens[i], nil
		}
	}

	return nil, fmt.Errorf("token '%s' not found", symbol)
}

// ToBaseUnits converts a human amount to the token's integer base units
func ToBaseUnits(amount string, decimals string) (string, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q", amount)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("amount must be positive")
	}
	places, err := decimal.NewFromString(decimals)
	if err != nil || !places.IsInteger() || places.IsNegative() {
		return "", fmt.Errorf("invalid token decimals %q", decimals)
	}

	base := d.Shift(int32(places.IntPart()))
	if !base.IsInteger() {
		return "", fmt.Errorf("amount %s has more than %s decimal places", amount, decimals)
	}
	return base.String(), nil
}
