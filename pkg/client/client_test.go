package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okx-dex/pkg/types"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(Config{
		APIKey:     "key",
		SecretKey:  "secret",
		Passphrase: "pass",
		ProjectID:  "project",
		BaseURL:    srv.URL,
		MaxRetries: 1,
	}, zerolog.Nop())
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func expectedSign(payload string) string {
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestGetSignsQueryString(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v5/dex/aggregator/supported/chain", r.URL.Path)
		assert.Equal(t, "chainId=1", r.URL.RawQuery)

		assert.Equal(t, "key", r.Header.Get("OK-ACCESS-KEY"))
		assert.Equal(t, "pass", r.Header.Get("OK-ACCESS-PASSPHRASE"))
		assert.Equal(t, "project", r.Header.Get("OK-ACCESS-PROJECT"))
		assert.Equal(t, "2024-05-01T12:00:00.000Z", r.Header.Get("OK-ACCESS-TIMESTAMP"))
		assert.Equal(t,
			expectedSign("2024-05-01T12:00:00.000ZGET/api/v5/dex/aggregator/supported/chain?chainId=1"),
			r.Header.Get("OK-ACCESS-SIGN"))

		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[{"chainId":1,"chainName":"Ethereum","dexTokenApproveAddress":"0x40aA958dd87FC8305b97f2BA922CDdCa374bcD7f"}]}`)
	})

	chains, err := Get[types.ChainData](context.Background(), c, "/api/v5/dex/aggregator/supported/chain", map[string]string{"chainId": "1"})
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "0x40aA958dd87FC8305b97f2BA922CDdCa374bcD7f", chains[0].DexTokenApproveAddress)
}

func TestPostSignsBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t,
			expectedSign("2024-05-01T12:00:00.000ZPOST/api/v5/dex/pre-transaction/broadcast-transaction"+string(body)),
			r.Header.Get("OK-ACCESS-SIGN"))

		var req types.BroadcastParams
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "0xsigned", req.SignedTx)

		_, _ = io.WriteString(w, `{"code":"0","data":[{"orderId":"o-1","txHash":"0xhash"}]}`)
	})

	out, err := Post[types.BroadcastData](context.Background(), c, "/api/v5/dex/pre-transaction/broadcast-transaction",
		types.BroadcastParams{SignedTx: "0xsigned", ChainIndex: "1", Address: "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, "o-1", out[0].OrderID)
}

func TestNonZeroCodeIsAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"51000","msg":"Parameter chainId error","data":[]}`)
	})

	_, err := Get[types.ChainData](context.Background(), c, "/api/v5/dex/aggregator/supported/chain", map[string]string{"chainId": "999999"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "51000", apiErr.Code)
	assert.Contains(t, err.Error(), "Parameter chainId error")
}

func TestEmptyDataIsAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[]}`)
	})

	_, err := Get[types.LiquidityData](context.Background(), c, "/api/v5/dex/aggregator/get-liquidity", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "empty response data", apiErr.Msg)
}

func TestHTTPErrorExtractsEnvelopeMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"code":"50113","msg":"Invalid Sign"}`)
	})

	_, err := Get[types.TokenData](context.Background(), c, "/api/v5/dex/aggregator/all-tokens", map[string]string{"chainId": "1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "50113", apiErr.Code)
	assert.Equal(t, "Invalid Sign", apiErr.Msg)
}

func TestServerErrorsAreRetried(t *testing.T) {
	hits := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"code":"0","data":[{"id":"1","name":"Uniswap V3"}]}`)
	})

	out, err := Get[types.LiquidityData](context.Background(), c, "/api/v5/dex/aggregator/get-liquidity", map[string]string{"chainId": "1"})
	require.NoError(t, err)
	assert.Equal(t, "Uniswap V3", out[0].Name)
	assert.Equal(t, 2, hits)
}

func TestSignMatchesKnownVector(t *testing.T) {
	got := Sign("secret", "2024-05-01T12:00:00.000Z", "GET", "/api/v5/dex/aggregator/quote?amount=1", "")
	assert.Equal(t, expectedSign("2024-05-01T12:00:00.000ZGET/api/v5/dex/aggregator/quote?amount=1"), got)
}
