package notify

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSettings configures the outgoing mail server.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPSettings) validate() error {
	switch {
	case s.Host == "":
		return errors.New("missing SMTP host")
	case s.Port == 0:
		return errors.New("missing SMTP port")
	case s.From == "":
		return errors.New("missing SMTP sender address")
	}
	return nil
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain-text email through an SMTP relay.
type SMTPNotifier struct {
	dialer dialer
	from   string
}

// NewSMTPNotifier validates settings and prepares a dialer.
func NewSMTPNotifier(settings SMTPSettings) (*SMTPNotifier, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password),
		from:   settings.From,
	}, nil
}

// Send delivers the message or returns when ctx is done, whichever comes first.
// gomail has no context support, so an abandoned dial finishes in the background.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return errors.New("no recipient specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
