// Package notify delivers account messages (recovery codes, status changes)
// to a user's registered email address.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier sends a single plain-text message.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogNotifier writes messages to the log instead of delivering them.
// Meant for local development only.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that logs through logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "log_notifier").Logger()}
}

// Send logs the recipient and subject at info and the body at debug.
func (n *LogNotifier) Send(_ context.Context, to, subject, body string) error {
	n.logger.Info().Str("to", to).Str("subject", subject).Msg("notification queued to log")
	n.logger.Debug().Str("to", to).Str("body", body).Msg("notification body")
	return nil
}
