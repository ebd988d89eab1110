package domain

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnreachable means the delivery provider could not be reached in time.
	ErrProviderUnreachable = errors.New("email provider unreachable")
	// ErrRejected means the provider answered and refused the message.
	ErrRejected = errors.New("email rejected by provider")
	// ErrNotConfigured means the sending identity lacks an address or secret.
	ErrNotConfigured = errors.New("email identity not configured")
)

// Identity is who a message is sent as. Every tenant sends as itself, so an
// Identity is resolved per request and never shared process-wide.
type Identity struct {
	Address string
	Secret  string // SMTP password or provider API key
	Name    string // display name in From
}

// Message is one outbound notification. Build it with NewMessage and the With* options.
type Message struct {
	To      string
	Subject string
	Text    string // always present and complete on its own

	html      string
	hasHTML   bool
	blindCopy bool
}

// NewMessage returns a plain-text message.
func NewMessage(to, subject, text string) Message {
	return Message{To: to, Subject: subject, Text: text}
}

// WithHTML attaches an HTML alternative of the same content.
func (m Message) WithHTML(html string) Message {
	m.html, m.hasHTML = html, true
	return m
}

// WithBlindCopyToSender requests a hidden copy to the sending identity.
func (m Message) WithBlindCopyToSender() Message {
	m.blindCopy = true
	return m
}

// HTML returns the HTML alternative, if any.
func (m Message) HTML() (string, bool) { return m.html, m.hasHTML }

// BlindCopyToSender reports whether the sender gets a hidden copy.
func (m Message) BlindCopyToSender() bool { return m.blindCopy }

// Sender delivers one message as the given identity.
type Sender interface {
	Send(ctx context.Context, from Identity, msg Message) error
}
