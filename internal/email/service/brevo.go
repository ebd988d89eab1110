package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/lom3e/Formingo/internal/config"
	edomain "github.com/lom3e/Formingo/internal/email/domain"
)

// Ensure Brevo implements domain.Sender
var _ edomain.Sender = (*Brevo)(nil)

// Brevo sends through the Brevo transactional API. The identity's secret is the API key.
type Brevo struct {
	url  string
	http *resty.Client
}

func NewBrevo(cfg config.Config) *Brevo {
	c := resty.New().
		SetTimeout(cfg.DispatchTimeout).
		SetHeader("Accept", "application/json")
	return &Brevo{url: cfg.BrevoAPIURL, http: c}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoEmail struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Bcc         []brevoAddress `json:"bcc,omitempty"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
	HTMLContent string         `json:"htmlContent,omitempty"`
}

func (b *Brevo) Send(ctx context.Context, from edomain.Identity, msg edomain.Message) error {
	if from.Address == "" || from.Secret == "" {
		return edomain.ErrNotConfigured
	}
	payload := brevoEmail{
		Sender:      brevoAddress{Email: from.Address, Name: from.Name},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		TextContent: msg.Text,
	}
	if msg.BlindCopyToSender() {
		payload.Bcc = []brevoAddress{{Email: from.Address}}
	}
	if html, ok := msg.HTML(); ok {
		payload.HTMLContent = html
	}

	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("api-key", from.Secret).
		SetBody(payload).
		Post(b.url)
	if err != nil {
		return fmt.Errorf("%w: %v", edomain.ErrProviderUnreachable, err)
	}
	if resp.StatusCode() >= 500 {
		return fmt.Errorf("%w: brevo %s", edomain.ErrProviderUnreachable, resp.Status())
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("%w: brevo %s", edomain.ErrRejected, resp.Status())
	}
	return nil
}
