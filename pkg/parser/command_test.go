package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okx-dex/pkg/types"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		in               string
		amount, from, to string
	}{
		{"swap 1 SOL to USDC", "1", "SOL", "USDC"},
		{"1.5 eth TO usdt", "1.5", "eth", "usdt"},
		{"  SWAP 100 USDC to 0xdAC17F958D2ee523a2206206994597C13D831ec7 ", "100", "USDC", "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
	}
	for _, tt := range tests {
		req, err := ParseSwapCommand(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.amount, req.Amount)
		assert.Equal(t, tt.from, req.FromSymbol)
		assert.Equal(t, tt.to, req.ToSymbol)
	}

	for _, bad := range []string{"", "swap SOL to USDC", "swap 1 SOL USDC", "swap -1 SOL to USDC"} {
		_, err := ParseSwapCommand(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateSwapRequest(t *testing.T) {
	req := &types.SwapRequest{Amount: "1", FromSymbol: "ETH", ToSymbol: "USDC"}
	assert.Error(t, ValidateSwapRequest(req))

	req.ChainID = "1"
	assert.NoError(t, ValidateSwapRequest(req))
}

func TestResolveToken(t *testing.T) {
	tokens := []types.TokenData{
		{TokenSymbol: "USDC.e", TokenContractAddress: "0x2"},
		{TokenSymbol: "USDC", TokenContractAddress: "0x1"},
		{TokenSymbol: "WETH", TokenContractAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
	}

	tok, err := ResolveToken(tokens, "usdc")
	require.NoError(t, err)
	assert.Equal(t, "0x1", tok.TokenContractAddress)

	tok, err = ResolveToken(tokens, "ETH")
	require.NoError(t, err)
	assert.Equal(t, "WETH", tok.TokenSymbol)

	tok, err = ResolveToken(tokens, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	require.NoError(t, err)
	assert.Equal(t, "WETH", tok.TokenSymbol)

	_, err = ResolveToken(tokens, "DOGE")
	assert.EqualError(t, err, "token 'DOGE' not found")
}

func TestToBaseUnits(t *testing.T) {
	got, err := ToBaseUnits("1.5", "18")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", got)

	got, err = ToBaseUnits("100", "6")
	require.NoError(t, err)
	assert.Equal(t, "100000000", got)

	_, err = ToBaseUnits("0.0000001", "6")
	assert.Error(t, err)
	_, err = ToBaseUnits("0", "6")
	assert.Error(t, err)
	_, err = ToBaseUnits("1", "x")
	assert.Error(t, err)
}
