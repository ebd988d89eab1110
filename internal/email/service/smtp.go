package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/lom3e/Formingo/internal/config"
	edomain "github.com/lom3e/Formingo/internal/email/domain"
)

// Ensure SMTP implements domain.Sender
var _ edomain.Sender = (*SMTP)(nil)

// SMTP sends through an authenticated SMTP relay (Gmail by default). A new
// dialer is built per message from the sending identity.
type SMTP struct {
	host string
	port int
	dial func(d *gomail.Dialer) (gomail.SendCloser, error)
}

func NewSMTP(cfg config.Config) *SMTP {
	return &SMTP{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		dial: func(d *gomail.Dialer) (gomail.SendCloser, error) { return d.Dial() },
	}
}

func (s *SMTP) Send(ctx context.Context, from edomain.Identity, msg edomain.Message) error {
	if from.Address == "" || from.Secret == "" {
		return edomain.ErrNotConfigured
	}
	m := buildMessage(from, msg)
	d := gomail.NewDialer(s.host, s.port, from.Address, from.Secret)

	// gomail has no context support; the buffered channel lets a late delivery finish without blocking.
	done := make(chan error, 1)
	go func() { done <- s.deliver(d, m) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", edomain.ErrProviderUnreachable, ctx.Err())
	}
}

func (s *SMTP) deliver(d *gomail.Dialer, m *gomail.Message) error {
	sc, err := s.dial(d)
	if err != nil {
		return fmt.Errorf("%w: %v", edomain.ErrProviderUnreachable, err)
	}
	defer func() { _ = sc.Close() }()
	if err := gomail.Send(sc, m); err != nil {
		return fmt.Errorf("%w: %v", edomain.ErrRejected, err)
	}
	return nil
}

func buildMessage(from edomain.Identity, msg edomain.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from.Address, from.Name)
	m.SetHeader("To", msg.To)
	if msg.BlindCopyToSender() {
		m.SetHeader("Bcc", from.Address)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if html, ok := msg.HTML(); ok {
		m.AddAlternative("text/html", html)
	}
	return m
}
