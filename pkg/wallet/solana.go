package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// SolanaRPC is the subset of the Solana JSON-RPC API the executors use.
// *rpc.Client satisfies it.
type SolanaRPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// SolanaSigner signs transactions on behalf of one account. A raw keypair
// and external wallet adapters both implement it.
type SolanaSigner interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Keypair is a SolanaSigner backed by an in-memory private key
type Keypair struct {
	privateKey solana.PrivateKey
}

// NewKeypairFromBase58 parses a base58 encoded 64-byte secret key
func NewKeypairFromBase58(secret string) (*Keypair, error) {
	if secret == "" {
		return nil, fmt.Errorf("Solana private key not configured")
	}
	privateKey, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Keypair{privateKey: privateKey}, nil
}

// NewKeypair wraps an existing private key
func NewKeypair(privateKey solana.PrivateKey) *Keypair {
	return &Keypair{privateKey: privateKey}
}

func (k *Keypair) PublicKey() solana.PublicKey { return k.privateKey.PublicKey() }

// SignTransaction fills the keypair's signature slot, keeping any other
// signatures already present
func (k *Keypair) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	pub := k.privateKey.PublicKey()
	if !tx.Message.IsSigner(pub) {
		return fmt.Errorf("failed to sign transaction: %s is not a required signer", pub)
	}
	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		tx.Signatures = nil
	}
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &k.privateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// SolanaWallet pairs a signer with the connection used to submit transactions
type SolanaWallet struct {
	Signer        SolanaSigner
	Client        SolanaRPC
	Commitment    rpc.CommitmentType
	SkipPreflight bool
}

// NewSolanaWallet builds a wallet. Unknown commitments default to confirmed.
func NewSolanaWallet(client SolanaRPC, signer SolanaSigner, commitment string, skipPreflight bool) *SolanaWallet {
	return &SolanaWallet{
		Signer:        signer,
		Client:        client,
		Commitment:    ParseCommitment(commitment),
		SkipPreflight: skipPreflight,
	}
}

// DialSolana connects to rpcURL and loads a base58 keypair
func DialSolana(rpcURL, secret, commitment string, skipPreflight bool) (*SolanaWallet, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("Solana RPC URL not configured")
	}
	kp, err := NewKeypairFromBase58(secret)
	if err != nil {
		return nil, err
	}
	return NewSolanaWallet(rpc.New(rpcURL), kp, commitment, skipPreflight), nil
}

// PublicKey returns the fee payer
func (w *SolanaWallet) PublicKey() solana.PublicKey { return w.Signer.PublicKey() }

// Send submits a signed transaction
func (w *SolanaWallet) Send(ctx context.Context, tx *solana.Transaction, maxRetries uint) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		SkipPreflight:       w.SkipPreflight,
		PreflightCommitment: w.Commitment,
	}
	if maxRetries > 0 {
		opts.MaxRetries = &maxRetries
	}

	sig, err := w.Client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// SignAndSend signs tx with the wallet's signer and submits it
func (w *SolanaWallet) SignAndSend(ctx context.Context, tx *solana.Transaction, maxRetries uint) (solana.Signature, error) {
	if err := w.Signer.SignTransaction(ctx, tx); err != nil {
		return solana.Signature{}, err
	}
	return w.Send(ctx, tx, maxRetries)
}

// ParseCommitment maps a config string to a commitment level
func ParseCommitment(s string) rpc.CommitmentType {
	switch strings.ToLower(s) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
