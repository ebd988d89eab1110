package service

import (
	"context"

	"github.com/lom3e/Formingo/internal/config"
	edomain "github.com/lom3e/Formingo/internal/email/domain"
)

// Ensure Router implements domain.Sender
var _ edomain.Sender = (*Router)(nil)

// Router hands each message to the configured provider.
type Router struct {
	provider string
	smtp     edomain.Sender
	brevo    edomain.Sender
}

func NewRouter(cfg config.Config) *Router {
	return &Router{provider: cfg.EmailProvider, smtp: NewSMTP(cfg), brevo: NewBrevo(cfg)}
}

func (r *Router) Send(ctx context.Context, from edomain.Identity, msg edomain.Message) error {
	switch r.provider {
	case config.ProviderBrevo:
		return r.brevo.Send(ctx, from, msg)
	default:
		return r.smtp.Send(ctx, from, msg)
	}
}
