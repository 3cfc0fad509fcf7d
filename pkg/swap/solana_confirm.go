package swap

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"okx-dex/pkg/wallet"
)

const defaultSignaturePollInterval = 500 * time.Millisecond

// confirmSignature waits until sig reaches the wallet commitment, the chain
// reports an error for it, or its blockhash stops being valid
func confirmSignature(ctx context.Context, w *wallet.SolanaWallet, sig solana.Signature, lastValidBlockHeight uint64, interval time.Duration, log zerolog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := w.Client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			log.Debug().Err(err).Str("signature", sig.String()).Msg("signature status unavailable")
		} else if res != nil && len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %s", ErrOnChainRejected, sig, describeTxError(status.Err))
			}
			if reachedCommitment(status.ConfirmationStatus, w.Commitment) {
				return nil
			}
		}

		height, err := w.Client.GetBlockHeight(ctx, w.Commitment)
		if err == nil && lastValidBlockHeight > 0 && height > lastValidBlockHeight {
			return fmt.Errorf("transaction %s expired: block height %d exceeded %d", sig, height, lastValidBlockHeight)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation of %s interrupted: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func reachedCommitment(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return want != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return want == rpc.CommitmentProcessed
	}
	return false
}

func describeTxError(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
