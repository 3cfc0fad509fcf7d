package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EVMClient is the subset of an EVM JSON-RPC connection the executors use.
// *ethclient.Client satisfies it.
type EVMClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// EVMWallet signs and submits transactions for a single EVM account
type EVMWallet struct {
	client     EVMClient
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// DialEVM connects to an RPC endpoint and loads the signing key
func DialEVM(ctx context.Context, rpcURL, hexKey string) (*EVMWallet, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("EVM RPC URL not configured")
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	w, err := NewEVMWallet(ctx, client, hexKey)
	if err != nil {
		client.Close()
		return nil, err
	}
	return w, nil
}

// NewEVMWallet wraps an existing client. The chain id is read once here.
func NewEVMWallet(ctx context.Context, client EVMClient, hexKey string) (*EVMWallet, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("EVM private key not configured")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	return &EVMWallet{
		client:     client,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    chainID,
	}, nil
}

// Address returns the account address
func (w *EVMWallet) Address() common.Address { return w.address }

// ChainID returns the chain id reported by the RPC endpoint
func (w *EVMWallet) ChainID() *big.Int { return new(big.Int).Set(w.chainID) }

// Client returns the underlying RPC connection
func (w *EVMWallet) Client() EVMClient { return w.client }

// SignTx signs tx for the wallet's chain
func (w *EVMWallet) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Send submits an already signed transaction
func (w *EVMWallet) Send(ctx context.Context, tx *types.Transaction) error {
	if err := w.client.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	return nil
}

// SignAndSend signs tx and submits it
func (w *EVMWallet) SignAndSend(ctx context.Context, tx *types.Transaction) (*types.Transaction, error) {
	signed, err := w.SignTx(tx)
	if err != nil {
		return nil, err
	}
	if err := w.Send(ctx, signed); err != nil {
		return nil, err
	}
	return signed, nil
}

// Close closes the client connection when it owns one
func (w *EVMWallet) Close() {
	if c, ok := w.client.(*ethclient.Client); ok {
		c.Close()
	}
}
