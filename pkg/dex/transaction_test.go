package dex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"okx-dex/pkg/swap"
	"okx-dex/pkg/types"
)

func TestGetGasPrice(t *testing.T) {
	api, ts := newTestAPI(t, swap.Options{}, reply(`{"code":"0","data":[{"normal":"21","min":"20","max":"30","supporteip1559":true,"eip1559Protocol":{"suggestBaseFee":"19"}}]}`))

	data, err := api.GetGasPrice(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.True(t, data[0].SupportEIP1559)
	assert.Equal(t, "19", data[0].EIP1559Protocol.SuggestBaseFee)
	assert.Equal(t, "chainIndex=1", ts.query[0])

	_, err = api.GetGasPrice(context.Background(), "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestGetGasLimitPostsBody(t *testing.T) {
	var got types.GasLimitParams
	api, _ := newTestAPI(t, swap.Options{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, `{"code":"0","data":[{"gasLimit":"65000"}]}`)
	})

	data, err := api.GetGasLimit(context.Background(), types.GasLimitParams{
		ChainIndex:  "1",
		FromAddress: "0x1",
		ToAddress:   "0x2",
		ExtJSON:     &types.GasLimitExt{InputData: "0xabcd"},
	})
	require.NoError(t, err)
	assert.Equal(t, "65000", data[0].GasLimit)
	assert.Equal(t, "0xabcd", got.ExtJSON.InputData)
}

func TestBroadcastAndTrackOrder(t *testing.T) {
	api, ts := newTestAPI(t, swap.Options{}, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v5/dex/pre-transaction/broadcast-transaction":
			_, _ = io.WriteString(w, `{"code":"0","data":[{"orderId":"ord-1","txHash":"0xfeed"}]}`)
		case "/api/v5/dex/post-transaction/orders":
			_, _ = io.WriteString(w, `{"code":"0","data":[{"cursor":"1","orders":[{"chainIndex":"1","orderId":"ord-1","txHash":"0xfeed","txStatus":"2"}]}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	sent, err := api.BroadcastTransaction(context.Background(), types.BroadcastParams{SignedTx: "0x02f8", ChainIndex: "1", Address: "0x1"})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", sent[0].OrderID)

	orders, err := api.GetTransactionOrders(context.Background(), types.OrderParams{Address: "0x1", ChainIndex: "1", OrderID: "ord-1"})
	require.NoError(t, err)
	require.Len(t, orders[0].Orders, 1)
	assert.Equal(t, types.OrderStatusSuccess, orders[0].Orders[0].TxStatus)
	assert.Contains(t, ts.query[1], "orderId=ord-1")
}

func TestPreTransactionValidation(t *testing.T) {
	api, ts := newTestAPI(t, swap.Options{}, reply(`{"code":"0","data":[{}]}`))
	ctx := context.Background()

	_, err := api.BroadcastTransaction(ctx, types.BroadcastParams{ChainIndex: "1"})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = api.SimulateTransaction(ctx, types.SimulateParams{ChainIndex: "1"})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = api.GetTransactionOrders(ctx, types.OrderParams{})
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Zero(t, ts.hits.Load())
}
