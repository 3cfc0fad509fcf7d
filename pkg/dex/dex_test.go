package dex

import (
	"context"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okx-dex/pkg/client"
	"okx-dex/pkg/network"
	"okx-dex/pkg/swap"
	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

const testEVMKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type testServer struct {
	hits  atomic.Int32
	paths []string
	query []string
}

func newTestAPI(t *testing.T, opts swap.Options, handler func(w http.ResponseWriter, r *http.Request)) (*API, *testServer) {
	t.Helper()
	return newTestAPIWithConfig(t, Config{Executors: opts}, handler)
}

func newTestAPIWithConfig(t *testing.T, cfg Config, handler func(w http.ResponseWriter, r *http.Request)) (*API, *testServer) {
	t.Helper()
	ts := &testServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		ts.paths = append(ts.paths, r.URL.Path)
		ts.query = append(ts.query, r.URL.RawQuery)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := client.New(client.Config{
		APIKey:     "key",
		SecretKey:  "secret",
		Passphrase: "pass",
		BaseURL:    srv.URL,
		MaxRetries: 1,
	}, zerolog.Nop())
	return New(c, cfg, zerolog.Nop()), ts
}

func reply(body string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, body) }
}

// stubEVM never mines anything and reports a fixed allowance
type stubEVM struct {
	allowance *big.Int
	sent      int
}

func (s *stubEVM) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }
func (s *stubEVM) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	return 0, nil
}
func (s *stubEVM) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(1), nil }
func (s *stubEVM) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}
func (s *stubEVM) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return common.LeftPadBytes(s.allowance.Bytes(), 32), nil
}
func (s *stubEVM) SendTransaction(context.Context, *ethtypes.Transaction) error {
	s.sent++
	return nil
}
func (s *stubEVM) TransactionReceipt(context.Context, common.Hash) (*ethtypes.Receipt, error) {
	return nil, ethereum.NotFound
}

func evmOptions(t *testing.T, stub *stubEVM) swap.Options {
	t.Helper()
	w, err := wallet.NewEVMWallet(context.Background(), stub, testEVMKey)
	require.NoError(t, err)
	return swap.Options{EVM: w}
}

func TestValidateSlippage(t *testing.T) {
	tests := []struct {
		name   string
		params types.SwapParams
		ok     bool
	}{
		{"fixed zero", types.SwapParams{Slippage: "0"}, true},
		{"fixed half percent", types.SwapParams{Slippage: "0.005"}, true},
		{"fixed one", types.SwapParams{Slippage: "1"}, true},
		{"negative", types.SwapParams{Slippage: "-0.1"}, false},
		{"above one", types.SwapParams{Slippage: "1.5"}, false},
		{"not a number", types.SwapParams{Slippage: "abc"}, false},
		{"NaN", types.SwapParams{Slippage: "NaN"}, false},
		{"missing policy", types.SwapParams{}, false},
		{"auto without ceiling", types.SwapParams{AutoSlippage: true}, false},
		{"auto with ceiling", types.SwapParams{AutoSlippage: true, MaxAutoSlippage: "0.05"}, true},
		{"auto ignores fixed", types.SwapParams{AutoSlippage: true, MaxAutoSlippage: "0.05", Slippage: "2"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlippage(tt.params)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestGetSwapDataValidationMakesNoRequest(t *testing.T) {
	api, ts := newTestAPI(t, swap.Options{}, reply(`{"code":"0","data":[{}]}`))

	_, err := api.GetSwapData(context.Background(), types.SwapParams{ChainID: "1", Slippage: "5"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Slippage must be between 0 and 1")

	_, err = api.GetSwapData(context.Background(), types.SwapParams{ChainID: "1"})
	require.Error(t, err)

	assert.Zero(t, ts.hits.Load())
}

func TestGetSwapDataSerializesParams(t *testing.T) {
	api, ts := newTestAPI(t, swap.Options{}, reply(`{"code":"0","data":[{"routerResult":{"chainId":"1"},"tx":{"to":"0x1"}}]}`))

	data, err := api.GetSwapData(context.Background(), types.SwapParams{
		ChainID:          "1",
		FromTokenAddress: "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee",
		Amount:           "100",
		Slippage:         "0.005",
	})
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "/api/v5/dex/aggregator/swap", ts.paths[0])
	assert.Contains(t, ts.query[0], "autoSlippage=false")
	assert.Contains(t, ts.query[0], "slippage=0.005")
	assert.NotContains(t, ts.query[0], "directRoute")
}

func TestGetChainDataRejectsUnknownChain(t *testing.T) {
	api, _ := newTestAPI(t, swap.Options{}, reply(`{"code":"51000","msg":"Parameter chainId error","data":[]}`))

	_, err := api.GetChainData(context.Background(), "999999")
	require.Error(t, err)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "51000", apiErr.Code)
}

func TestExecuteSwapConfigurationErrorsPrecedeRequests(t *testing.T) {
	// TON has no built-in entry, so configure one to reach the executor factory
	api, ts := newTestAPIWithConfig(t, Config{Networks: map[string]network.ChainConfig{
		network.TONChainID: {Explorer: "https://tonscan.org/tx", DefaultSlippage: "0.005", MaxSlippage: "1", MaxRetries: 3},
	}}, reply(`{"code":"0","data":[{}]}`))
	params := types.SwapParams{Slippage: "0.01"}

	params.ChainID = network.TONChainID
	_, err := api.ExecuteSwap(context.Background(), params)
	assert.True(t, errors.Is(err, swap.ErrUnsupportedChain))

	params.ChainID = "999999"
	_, err = api.ExecuteSwap(context.Background(), params)
	assert.True(t, errors.Is(err, network.ErrUnknownNetwork))

	params.ChainID = "1"
	_, err = api.ExecuteSwap(context.Background(), params)
	assert.True(t, errors.Is(err, swap.ErrConfiguration))

	assert.Zero(t, ts.hits.Load())
}

func TestExecuteSwapWithoutTxDataSignsNothing(t *testing.T) {
	stub := &stubEVM{allowance: new(big.Int)}
	api, ts := newTestAPI(t, evmOptions(t, stub), reply(`{"code":"0","data":[{"routerResult":{
		"chainId":"1",
		"fromToken":{"tokenSymbol":"ETH","decimal":"18"},
		"toToken":{"tokenSymbol":"USDC","decimal":"6"},
		"fromTokenAmount":"1000000000000000000",
		"toTokenAmount":"2500000"}}]}`))

	_, err := api.ExecuteSwap(context.Background(), types.SwapParams{ChainID: "1", Slippage: "0.01"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, swap.ErrInvalidPayload))
	assert.Contains(t, err.Error(), "missing transaction data")
	assert.Equal(t, int32(1), ts.hits.Load())
	assert.Zero(t, stub.sent)
}

func TestExecuteApprovalAlreadyApproved(t *testing.T) {
	stub := &stubEVM{allowance: big.NewInt(1_000_000_000)}
	api, ts := newTestAPI(t, evmOptions(t, stub), reply(`{"code":"0","data":[{"chainId":"1","chainName":"Ethereum","dexTokenApproveAddress":"0x40aA958dd87FC8305b97f2BA922CDdCa374bcD7f"}]}`))

	res, err := api.ExecuteApproval(context.Background(), types.ApproveTokenParams{
		ChainID:              "1",
		TokenContractAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		ApproveAmount:        "1000000",
	})
	require.NoError(t, err)
	assert.True(t, res.AlreadyApproved)
	assert.Empty(t, res.TransactionHash)
	assert.Equal(t, "Token already approved for the requested amount", res.Message)
	assert.Equal(t, "/api/v5/dex/aggregator/supported/chain", ts.paths[0])
	assert.Zero(t, stub.sent)
}

func TestExecuteApprovalWithoutSpender(t *testing.T) {
	stub := &stubEVM{allowance: new(big.Int)}
	api, _ := newTestAPI(t, evmOptions(t, stub), reply(`{"code":"0","data":[{"chainId":"1","dexTokenApproveAddress":""}]}`))

	_, err := api.ExecuteApproval(context.Background(), types.ApproveTokenParams{
		ChainID:              "1",
		TokenContractAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		ApproveAmount:        "1",
	})
	require.Error(t, err)
	assert.Equal(t, "No dex contract address found for chain 1", err.Error())
	assert.Zero(t, stub.sent)
}

func TestExecuteSolanaInstructionsIsSolanaOnly(t *testing.T) {
	api, ts := newTestAPI(t, swap.Options{}, reply(`{"code":"0","data":[{}]}`))

	_, err := api.ExecuteSolanaSwapInstructions(context.Background(), types.SwapParams{ChainID: "1", Slippage: "0.01"})
	assert.True(t, errors.Is(err, swap.ErrUnsupportedChain))
	assert.Zero(t, ts.hits.Load())
}
