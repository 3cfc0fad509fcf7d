package swap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okx-dex/pkg/types"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		raw, decimals, want string
	}{
		{"1234560", "6", "1.234560"},
		{"1000000000000000000", "18", "1.000000"},
		{"1", "9", "0.000000"},
		{"42", "0", "42.000000"},
	}
	for _, tt := range tests {
		got, err := FormatAmount(tt.raw, tt.decimals)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.raw, tt.decimals)
	}

	_, err := FormatAmount("1", "")
	assert.Error(t, err)
	_, err = FormatAmount("abc", "6")
	assert.Error(t, err)
}

func TestFirstSwapRejectsIncompletePayloads(t *testing.T) {
	_, err := firstSwap(nil)
	assert.True(t, errors.Is(err, ErrInvalidPayload))
	assert.Contains(t, err.Error(), "missing router result")

	_, err = firstSwap([]types.SwapData{{RouterResult: testRouterResult()}})
	assert.True(t, errors.Is(err, ErrInvalidPayload))
	assert.Contains(t, err.Error(), "missing transaction data")

	rr := testRouterResult()
	rr.ToToken.Decimal = ""
	_, err = firstSwap([]types.SwapData{{RouterResult: rr, Tx: &types.TransactionData{}}})
	assert.True(t, errors.Is(err, ErrInvalidPayload))
}

func TestFormatResult(t *testing.T) {
	res, err := formatResult(testNetwork("1"), "0xabc", testRouterResult())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "0xabc", res.TransactionID)
	assert.Equal(t, "https://explorer.test/tx/0xabc", res.ExplorerURL)
	assert.Equal(t, "1.000000", res.Details.FromToken.Amount)
	assert.Equal(t, "2.500000", res.Details.ToToken.Amount)
	assert.Equal(t, "USDC", res.Details.ToToken.Symbol)
	assert.Equal(t, "0.01", res.Details.PriceImpact)
}
