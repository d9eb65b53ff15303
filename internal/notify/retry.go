package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Retrying bounds every Send with a timeout and retries failed attempts
// with a constant backoff.
type Retrying struct {
	next    Notifier
	timeout time.Duration
	retries uint64
	delay   time.Duration
	logger  zerolog.Logger
}

// NewRetrying wraps next. retries is the number of extra attempts after the first.
func NewRetrying(next Notifier, timeout time.Duration, retries uint64, delay time.Duration, logger zerolog.Logger) *Retrying {
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	return &Retrying{next: next, timeout: timeout, retries: retries, delay: delay, logger: logger}
}

func (r *Retrying) Send(ctx context.Context, to, subject, body string) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	attempt := 0
	backoff := retry.WithMaxRetries(r.retries, retry.NewConstant(r.delay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := r.next.Send(ctx, to, subject, body); err != nil {
			r.logger.Warn().Err(err).Int("attempt", attempt).Str("subject", subject).Msg("notification attempt failed")
			return retry.RetryableError(err)
		}
		return nil
	})
}
