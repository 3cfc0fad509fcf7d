package dex

import (
	"context"
	"fmt"

	"okx-dex/pkg/client"
	"okx-dex/pkg/types"
)

const (
	pathGasPrice  = "/api/v5/dex/pre-transaction/gas-price"
	pathGasLimit  = "/api/v5/dex/pre-transaction/gas-limit"
	pathSimulate  = "/api/v5/dex/pre-transaction/simulate"
	pathBroadcast = "/api/v5/dex/pre-transaction/broadcast-transaction"
	pathOrders    = "/api/v5/dex/post-transaction/orders"
)

// GetGasPrice returns the current gas price levels for a chain
func (d *API) GetGasPrice(ctx context.Context, chainIndex string) ([]types.GasPriceData, error) {
	if chainIndex == "" {
		return nil, fmt.Errorf("%w: chainIndex is required", ErrValidation)
	}
	return client.Get[types.GasPriceData](ctx, d.client, pathGasPrice, map[string]string{"chainIndex": chainIndex})
}

// GetGasLimit estimates the gas a transaction will consume
func (d *API) GetGasLimit(ctx context.Context, params types.GasLimitParams) ([]types.GasLimitData, error) {
	if params.ChainIndex == "" || params.FromAddress == "" || params.ToAddress == "" {
		return nil, fmt.Errorf("%w: chainIndex, fromAddress and toAddress are required", ErrValidation)
	}
	return client.Post[types.GasLimitData](ctx, d.client, pathGasLimit, params)
}

// SimulateTransaction dry-runs a transaction and reports asset changes and risks
func (d *API) SimulateTransaction(ctx context.Context, params types.SimulateParams) ([]types.SimulationData, error) {
	if params.ChainIndex == "" || params.FromAddress == "" || params.ToAddress == "" {
		return nil, fmt.Errorf("%w: chainIndex, fromAddress and toAddress are required", ErrValidation)
	}
	return client.Post[types.SimulationData](ctx, d.client, pathSimulate, params)
}

// BroadcastTransaction submits an already signed transaction through the aggregator
func (d *API) BroadcastTransaction(ctx context.Context, params types.BroadcastParams) ([]types.BroadcastData, error) {
	if params.SignedTx == "" || params.ChainIndex == "" || params.Address == "" {
		return nil, fmt.Errorf("%w: signedTx, chainIndex and address are required", ErrValidation)
	}
	return client.Post[types.BroadcastData](ctx, d.client, pathBroadcast, params)
}

// GetTransactionOrders lists broadcast orders for an address
func (d *API) GetTransactionOrders(ctx context.Context, params types.OrderParams) ([]types.OrdersData, error) {
	if params.Address == "" || params.ChainIndex == "" {
		return nil, fmt.Errorf("%w: address and chainIndex are required", ErrValidation)
	}
	return client.Get[types.OrdersData](ctx, d.client, pathOrders, params.Values())
}
