package wallet

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/block-vision/sui-go-sdk/models"
	"github.com/block-vision/sui-go-sdk/signer"
	"github.com/block-vision/sui-go-sdk/sui"
	"github.com/btcsuite/btcutil/bech32"
)

const (
	SuiMainnetURL = "https://fullnode.mainnet.sui.io:443"
	SuiCoinType   = "0x2::sui::SUI"

	suiKeyPrefix    = "suiprivkey"
	suiEd25519Flag  = 0x00
	maxSuiGasCoins  = 256
	suiCoinPageSize = 50
)

// SuiCoin is a gas coin object reference with its balance
type SuiCoin struct {
	ObjectID string
	Version  uint64
	Digest   string
	Balance  uint64
}

// SuiRPC is the subset of the Sui JSON-RPC API the executor uses
type SuiRPC interface {
	ReferenceGasPrice(ctx context.Context) (uint64, error)
	GasCoins(ctx context.Context, owner string) ([]SuiCoin, error)
	ExecuteTransaction(ctx context.Context, txBytes, signature string) (string, error)
	TransactionStatus(ctx context.Context, digest string) (status string, errMsg string, err error)
}

type suiClient struct {
	api sui.ISuiAPI
}

// NewSuiRPC adapts a block-vision client to SuiRPC
func NewSuiRPC(api sui.ISuiAPI) SuiRPC {
	return &suiClient{api: api}
}

func (c *suiClient) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	price, err := c.api.SuiXGetReferenceGasPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get reference gas price: %w", err)
	}
	return price, nil
}

func (c *suiClient) GasCoins(ctx context.Context, owner string) ([]SuiCoin, error) {
	var (
		coins  []SuiCoin
		cursor interface{}
	)
	for len(coins) < maxSuiGasCoins {
		page, err := c.api.SuiXGetCoins(ctx, models.SuiXGetCoinsRequest{
			Owner:    owner,
			CoinType: SuiCoinType,
			Cursor:   cursor,
			Limit:    suiCoinPageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get gas coins: %w", err)
		}

		for _, coin := range page.Data {
			version, err := strconv.ParseUint(coin.Version, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid version for coin %s: %w", coin.CoinObjectId, err)
			}
			balance, err := strconv.ParseUint(coin.Balance, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid balance for coin %s: %w", coin.CoinObjectId, err)
			}
			coins = append(coins, SuiCoin{
				ObjectID: coin.CoinObjectId,
				Version:  version,
				Digest:   coin.Digest,
				Balance:  balance,
			})
		}

		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return coins, nil
}

func (c *suiClient) ExecuteTransaction(ctx context.Context, txBytes, signature string) (string, error) {
	resp, err := c.api.SuiExecuteTransactionBlock(ctx, models.SuiExecuteTransactionBlockRequest{
		TxBytes:   txBytes,
		Signature: []string{signature},
		Options: models.SuiTransactionBlockOptions{
			ShowEffects: true,
			ShowEvents:  true,
		},
		RequestType: "WaitForLocalExecution",
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute transaction: %w", err)
	}
	return resp.Digest, nil
}

func (c *suiClient) TransactionStatus(ctx context.Context, digest string) (string, string, error) {
	resp, err := c.api.SuiGetTransactionBlock(ctx, models.SuiGetTransactionBlockRequest{
		Digest: digest,
		Options: models.SuiTransactionBlockOptions{
			ShowEffects: true,
		},
	})
	if err != nil {
		return "", "", err
	}
	return resp.Effects.Status.Status, resp.Effects.Status.Error, nil
}

// SuiWallet signs transaction bytes for one ed25519 Sui account
type SuiWallet struct {
	signer *signer.Signer
	Client SuiRPC
}

// DialSui connects to rpcURL (mainnet when empty) and loads the key
func DialSui(rpcURL, key string) (*SuiWallet, error) {
	if rpcURL == "" {
		rpcURL = SuiMainnetURL
	}
	return NewSuiWallet(NewSuiRPC(sui.NewSuiClient(rpcURL)), key)
}

// NewSuiWallet accepts a bech32 "suiprivkey1..." key or a hex ed25519 seed
func NewSuiWallet(client SuiRPC, key string) (*SuiWallet, error) {
	if key == "" {
		return nil, fmt.Errorf("Sui private key not configured")
	}
	seed, err := DecodeSuiKey(key)
	if err != nil {
		return nil, err
	}
	return &SuiWallet{signer: signer.NewSigner(seed), Client: client}, nil
}

// Address returns the 0x-prefixed account address
func (w *SuiWallet) Address() string { return w.signer.Address }

// Sign returns the serialized signature for BCS transaction bytes
func (w *SuiWallet) Sign(txBytes []byte) (string, error) {
	signed, err := w.signer.SignTransaction(base64.StdEncoding.EncodeToString(txBytes))
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if signed == nil || signed.Signature == "" {
		return "", fmt.Errorf("failed to sign transaction: empty signature")
	}
	return signed.Signature, nil
}

// DecodeSuiKey returns the 32-byte ed25519 seed of a Sui private key
func DecodeSuiKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)

	if strings.HasPrefix(key, suiKeyPrefix) {
		hrp, data, err := bech32.Decode(key)
		if err != nil {
			return nil, fmt.Errorf("invalid Sui private key: %w", err)
		}
		if hrp != suiKeyPrefix {
			return nil, fmt.Errorf("invalid Sui private key prefix %q", hrp)
		}
		raw, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return nil, fmt.Errorf("invalid Sui private key: %w", err)
		}
		if len(raw) != 33 {
			return nil, fmt.Errorf("invalid Sui private key length %d", len(raw))
		}
		if raw[0] != suiEd25519Flag {
			return nil, fmt.Errorf("unsupported Sui key scheme 0x%02x", raw[0])
		}
		return raw[1:], nil
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid Sui private key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid Sui private key length %d", len(raw))
	}
	return raw, nil
}
