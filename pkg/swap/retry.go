package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"okx-dex/pkg/metrics"
	"okx-dex/pkg/network"
)

const defaultRetryDelay = 2 * time.Second

// permanentError stops the retry loop immediately
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// permanent marks err as not worth retrying
func permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// retrier re-runs a broadcast attempt with linear backoff (attempt * delay)
type retrier struct {
	chainID  string
	attempts int
	delay    time.Duration
	log      zerolog.Logger
}

func newRetrier(net network.ChainConfig, log zerolog.Logger) retrier {
	attempts := net.MaxRetries
	if attempts <= 0 {
		attempts = network.DefaultMaxRetries
	}
	return retrier{chainID: net.ID, attempts: attempts, delay: defaultRetryDelay, log: log}
}

func (r retrier) run(ctx context.Context, op string, fn func(ctx context.Context, attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= r.attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", op, attempt, err)
		}

		wait := time.Duration(attempt) * r.delay
		metrics.ExecutionRetriesTotal.WithLabelValues(r.chainID).Inc()
		r.log.Warn().
			Err(err).
			Str("chain", r.chainID).
			Int("attempt", attempt).
			Dur("delay", wait).
			Msgf("%s attempt failed, retrying", op)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled after %d attempts: %w", op, attempt, errors.Join(ctx.Err(), err))
		case <-timer.C:
		}
	}
}
