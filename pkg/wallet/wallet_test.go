package wallet

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEVMKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

type stubEVMClient struct {
	chainID *big.Int
	sent    []*types.Transaction
}

func (s *stubEVMClient) ChainID(context.Context) (*big.Int, error) { return s.chainID, nil }
func (s *stubEVMClient) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	return 0, nil
}
func (s *stubEVMClient) SuggestGasPrice(context.Context) (*big.Int, error) { return big.NewInt(1), nil }
func (s *stubEVMClient) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 21000, nil
}
func (s *stubEVMClient) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}
func (s *stubEVMClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	s.sent = append(s.sent, tx)
	return nil
}
func (s *stubEVMClient) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

func TestNewEVMWalletDerivesAddress(t *testing.T) {
	client := &stubEVMClient{chainID: big.NewInt(8453)}
	w, err := NewEVMWallet(context.Background(), client, "0x"+testEVMKey)
	require.NoError(t, err)

	key, _ := crypto.HexToECDSA(testEVMKey)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), w.Address())
	assert.Equal(t, int64(8453), w.ChainID().Int64())
}

func TestNewEVMWalletRejectsMissingKey(t *testing.T) {
	_, err := NewEVMWallet(context.Background(), &stubEVMClient{chainID: big.NewInt(1)}, "")
	require.Error(t, err)

	_, err = NewEVMWallet(context.Background(), &stubEVMClient{chainID: big.NewInt(1)}, "zz")
	require.Error(t, err)
}

func TestEVMSignAndSendRecoversSender(t *testing.T) {
	client := &stubEVMClient{chainID: big.NewInt(1)}
	w, err := NewEVMWallet(context.Background(), client, testEVMKey)
	require.NoError(t, err)

	to := common.HexToAddress("0x40aA958dd87FC8305b97f2BA922CDdCa374bcD7f")
	tx := types.NewTx(&types.LegacyTx{Nonce: 7, To: &to, Gas: 21000, GasPrice: big.NewInt(10), Value: big.NewInt(0)})

	signed, err := w.SignAndSend(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), signed)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), sender)
	assert.Equal(t, uint64(7), signed.Nonce())
}

func TestKeypairSignOverwritesOwnSlot(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	kp := NewKeypair(key)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, kp.PublicKey(), solana.NewWallet().PublicKey()).Build()},
		solana.Hash{1},
		solana.TransactionPayer(kp.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, kp.SignTransaction(context.Background(), tx))
	require.NoError(t, kp.SignTransaction(context.Background(), tx))
	require.Len(t, tx.Signatures, 1)
	require.NoError(t, tx.VerifySignatures())
}

func TestKeypairRejectsForeignTransaction(t *testing.T) {
	kp := NewKeypair(solana.NewWallet().PrivateKey)
	payer := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build()},
		solana.Hash{1},
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)

	err = kp.SignTransaction(context.Background(), tx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a required signer")
}

func TestNewKeypairFromBase58(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	kp, err := NewKeypairFromBase58(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), kp.PublicKey())

	_, err = NewKeypairFromBase58("")
	require.Error(t, err)
}

func TestParseCommitment(t *testing.T) {
	assert.Equal(t, rpc.CommitmentFinalized, ParseCommitment("Finalized"))
	assert.Equal(t, rpc.CommitmentProcessed, ParseCommitment("processed"))
	assert.Equal(t, rpc.CommitmentConfirmed, ParseCommitment(""))
}

func TestDecodeSuiKeyBech32(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	conv, err := bech32.ConvertBits(append([]byte{0x00}, seed...), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode("suiprivkey", conv)
	require.NoError(t, err)

	got, err := DecodeSuiKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, seed, got)
}

func TestDecodeSuiKeyHex(t *testing.T) {
	seed := strings.Repeat("ab", 32)
	got, err := DecodeSuiKey("0x" + seed)
	require.NoError(t, err)
	assert.Equal(t, seed, hex.EncodeToString(got))

	_, err = DecodeSuiKey("abcd")
	require.Error(t, err)
}

func TestDecodeSuiKeyRejectsSecp256k1(t *testing.T) {
	conv, err := bech32.ConvertBits(append([]byte{0x01}, make([]byte, 32)...), 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode("suiprivkey", conv)
	require.NoError(t, err)

	_, err = DecodeSuiKey(encoded)
	require.ErrorContains(t, err, "unsupported Sui key scheme")
}

func TestSuiWalletAddress(t *testing.T) {
	w, err := NewSuiWallet(nil, strings.Repeat("01", 32))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.Address(), "0x"))
	assert.Len(t, w.Address(), 66)

	sig, err := w.Sign([]byte{0, 1, 2})
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}
