package swap

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/mr-tron/base58"

	"okx-dex/pkg/wallet"
)

const (
	suiAddressLength = 32
	suiDigestLength  = 32
	// maxGasObjects is the protocol limit on coins in one gas payment
	maxGasObjects = 256
)

// bcsWriter appends Binary Canonical Serialization primitives
type bcsWriter struct {
	buf bytes.Buffer
}

func (w *bcsWriter) uleb128(v uint64) {
	for v >= 0x80 {
		w.buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	w.buf.WriteByte(byte(v))
}

func (w *bcsWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *bcsWriter) raw(b []byte) { w.buf.Write(b) }

func (w *bcsWriter) bytesVec(b []byte) {
	w.uleb128(uint64(len(b)))
	w.buf.Write(b)
}

type suiObjectRef struct {
	id      [suiAddressLength]byte
	version uint64
	digest  []byte
}

// encodeTransactionData serializes TransactionData::V1 around a
// TransactionKind. An empty expiration encodes TransactionExpiration::None.
func encodeTransactionData(kind []byte, sender [suiAddressLength]byte, payment []suiObjectRef, price, budget uint64, expiration []byte) []byte {
	w := &bcsWriter{}
	w.uleb128(0) // TransactionData::V1
	w.raw(kind)
	w.raw(sender[:])

	w.uleb128(uint64(len(payment)))
	for _, ref := range payment {
		w.raw(ref.id[:])
		w.u64(ref.version)
		w.bytesVec(ref.digest)
	}
	w.raw(sender[:]) // gas owner
	w.u64(price)
	w.u64(budget)

	if len(expiration) == 0 {
		w.uleb128(0)
	} else {
		w.raw(expiration)
	}
	return w.buf.Bytes()
}

// suiTransactionData is a decoded TransactionData::V1. kind and expiration
// keep their original encoding.
type suiTransactionData struct {
	kind         []byte
	inputObjects map[[suiAddressLength]byte]struct{}
	sender       [suiAddressLength]byte
	payment      []suiObjectRef
	gasOwner     [suiAddressLength]byte
	gasPrice     uint64
	gasBudget    uint64
	expiration   []byte
}

// decodeTransactionData parses a complete TransactionData::V1 whose kind is a
// programmable transaction
func decodeTransactionData(raw []byte) (*suiTransactionData, error) {
	r := &bcsReader{buf: raw}
	if v := r.uleb128(); r.err == nil && v != 0 {
		r.fail("unsupported TransactionData version %d", v)
	}

	tx := &suiTransactionData{inputObjects: make(map[[suiAddressLength]byte]struct{})}
	kindStart := r.off
	r.transactionKind(tx.inputObjects)
	kindEnd := r.off

	tx.sender = r.address()
	n := r.length()
	for i := 0; i < n && r.err == nil; i++ {
		tx.payment = append(tx.payment, r.objectRef())
	}
	tx.gasOwner = r.address()
	tx.gasPrice = r.u64()
	tx.gasBudget = r.u64()

	expStart := r.off
	switch tag := r.uleb128(); tag {
	case 0: // None
	case 1: // Epoch
		r.u64()
	default:
		r.fail("unsupported transaction expiration %d", tag)
	}

	if r.err == nil && r.off != len(raw) {
		r.fail("%d trailing bytes", len(raw)-r.off)
	}
	if r.err != nil {
		return nil, r.err
	}

	tx.kind = raw[kindStart:kindEnd]
	tx.expiration = raw[expStart:]
	return tx, nil
}

// parseSuiAddress decodes a 0x-prefixed, possibly shortened, hex address
func parseSuiAddress(s string) ([suiAddressLength]byte, error) {
	var out [suiAddressLength]byte
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if h == "" || len(h) > suiAddressLength*2 {
		return out, fmt.Errorf("invalid Sui address %q", s)
	}
	h = strings.Repeat("0", suiAddressLength*2-len(h)) + h
	b, err := hex.DecodeString(h)
	if err != nil {
		return out, fmt.Errorf("invalid Sui address %q: %w", s, err)
	}
	copy(out[:], b)
	return out, nil
}

func toObjectRef(c wallet.SuiCoin) (suiObjectRef, error) {
	id, err := parseSuiAddress(c.ObjectID)
	if err != nil {
		return suiObjectRef{}, err
	}
	digest, err := base58.Decode(c.Digest)
	if err != nil || len(digest) != suiDigestLength {
		return suiObjectRef{}, fmt.Errorf("invalid digest %q for object %s", c.Digest, c.ObjectID)
	}
	return suiObjectRef{id: id, version: c.Version, digest: digest}, nil
}

// selectGasCoins picks the largest coins until their balance covers budget.
// Coins in exclude are inputs of the transaction and cannot pay for gas.
func selectGasCoins(coins []wallet.SuiCoin, budget uint64, exclude map[[suiAddressLength]byte]struct{}) ([]suiObjectRef, error) {
	if len(coins) == 0 {
		return nil, fmt.Errorf("%w: account holds no SUI coins", ErrInsufficientGasObjects)
	}

	sorted := append([]wallet.SuiCoin(nil), coins...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Balance > sorted[j].Balance })

	var (
		total    uint64
		selected []suiObjectRef
	)
	for _, coin := range sorted {
		if total >= budget || len(selected) == maxGasObjects {
			break
		}
		ref, err := toObjectRef(coin)
		if err != nil {
			return nil, err
		}
		if _, used := exclude[ref.id]; used {
			continue
		}
		selected = append(selected, ref)
		total += coin.Balance
	}

	if total < budget {
		return nil, fmt.Errorf("%w: balance %d is below gas budget %d", ErrInsufficientGasObjects, total, budget)
	}
	return selected, nil
}
