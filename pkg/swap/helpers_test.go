package swap

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"okx-dex/pkg/network"
	"okx-dex/pkg/types"
	"okx-dex/pkg/wallet"
)

const testEVMKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testNetwork(id string) network.ChainConfig {
	return network.ChainConfig{
		ID:                  id,
		Explorer:            "https://explorer.test/tx",
		MaxRetries:          3,
		ConfirmationTimeout: time.Second,
	}
}

func testRouterResult() *types.RouterResult {
	return &types.RouterResult{
		ChainID:               "1",
		FromToken:             types.TokenInfo{TokenSymbol: "ETH", Decimal: "18"},
		ToToken:               types.TokenInfo{TokenSymbol: "USDC", Decimal: "6"},
		FromTokenAmount:       "1000000000000000000",
		ToTokenAmount:         "2500000",
		PriceImpactPercentage: "0.01",
	}
}

// fakeEVM records broadcast transactions and mines them with receiptStatus
type fakeEVM struct {
	mu sync.Mutex

	chainID       *big.Int
	nonce         uint64
	gasPrice      *big.Int
	estimate      uint64
	allowance     *big.Int
	receiptStatus uint64
	sendErr       error

	sent      []*ethtypes.Transaction
	estimates []ethereum.CallMsg
}

func newFakeEVM(chainID int64) *fakeEVM {
	return &fakeEVM{
		chainID:       big.NewInt(chainID),
		gasPrice:      big.NewInt(1_000_000_000),
		estimate:      50_000,
		allowance:     new(big.Int),
		receiptStatus: ethtypes.ReceiptStatusSuccessful,
	}
}

func (f *fakeEVM) ChainID(context.Context) (*big.Int, error) { return f.chainID, nil }

func (f *fakeEVM) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nonce, nil
}

func (f *fakeEVM) SuggestGasPrice(context.Context) (*big.Int, error) { return f.gasPrice, nil }

func (f *fakeEVM) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.estimates = append(f.estimates, msg)
	return f.estimate, nil
}

func (f *fakeEVM) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return erc20.Methods["allowance"].Outputs.Pack(f.allowance)
}

func (f *fakeEVM) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeEVM) TransactionReceipt(_ context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.sent {
		if tx.Hash() == hash {
			return &ethtypes.Receipt{Status: f.receiptStatus, TxHash: hash, BlockNumber: big.NewInt(1)}, nil
		}
	}
	return nil, ethereum.NotFound
}

func newTestEVMWallet(t *testing.T, client *fakeEVM) *wallet.EVMWallet {
	t.Helper()
	w, err := wallet.NewEVMWallet(context.Background(), client, testEVMKey)
	require.NoError(t, err)
	return w
}

// fakeSolanaRPC confirms every submitted signature with statusErr
type fakeSolanaRPC struct {
	mu sync.Mutex

	blockhash   solana.Hash
	lastValid   uint64
	blockHeight uint64
	status      rpc.ConfirmationStatusType
	statusErr   interface{}
	accounts    map[solana.PublicKey]*rpc.GetAccountInfoResult

	sent []*solana.Transaction
	opts []rpc.TransactionOpts
}

func newFakeSolanaRPC() *fakeSolanaRPC {
	return &fakeSolanaRPC{
		blockhash:   solana.Hash{7, 7, 7},
		lastValid:   1000,
		blockHeight: 10,
		status:      rpc.ConfirmationStatusConfirmed,
	}
}

func (f *fakeSolanaRPC) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: f.blockhash, LastValidBlockHeight: f.lastValid},
	}, nil
}

func (f *fakeSolanaRPC) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	f.opts = append(f.opts, opts)
	return tx.Signatures[0], nil
}

func (f *fakeSolanaRPC) GetSignatureStatuses(context.Context, bool, ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{ConfirmationStatus: f.status, Err: f.statusErr}},
	}, nil
}

func (f *fakeSolanaRPC) GetBlockHeight(context.Context, rpc.CommitmentType) (uint64, error) {
	return f.blockHeight, nil
}

func (f *fakeSolanaRPC) GetAccountInfo(_ context.Context, key solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if res, ok := f.accounts[key]; ok {
		return res, nil
	}
	return nil, rpc.ErrNotFound
}

func newTestSolanaWallet(client *fakeSolanaRPC) (*wallet.SolanaWallet, solana.PrivateKey) {
	key := solana.NewWallet().PrivateKey
	return wallet.NewSolanaWallet(client, wallet.NewKeypair(key), "confirmed", false), key
}

// fakeSuiRPC executes every transaction with the configured status
type fakeSuiRPC struct {
	gasPrice uint64
	coins    []wallet.SuiCoin
	status   string
	errMsg   string

	executed   []string
	signatures []string
}

func (f *fakeSuiRPC) ReferenceGasPrice(context.Context) (uint64, error) { return f.gasPrice, nil }

func (f *fakeSuiRPC) GasCoins(context.Context, string) ([]wallet.SuiCoin, error) { return f.coins, nil }

func (f *fakeSuiRPC) ExecuteTransaction(_ context.Context, txBytes, signature string) (string, error) {
	f.executed = append(f.executed, txBytes)
	f.signatures = append(f.signatures, signature)
	return "Digest111", nil
}

func (f *fakeSuiRPC) TransactionStatus(context.Context, string) (string, string, error) {
	return f.status, f.errMsg, nil
}

func mustInt64(t *testing.T, s string) int64 {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return n.Int64()
}
