package service

import (
	"context"

	domain "github.com/lom3e/Formingo/internal/clients/domain"
	"github.com/lom3e/Formingo/internal/config"
)

// multiTenant resolves the client from the API key against the credential table.
type multiTenant struct {
	repo domain.Repository
}

// NewMultiTenant returns a resolver backed by the credential table.
func NewMultiTenant(repo domain.Repository) domain.Resolver {
	return &multiTenant{repo: repo}
}

func (m *multiTenant) Resolve(ctx context.Context, apiKey string) (domain.Client, error) {
	if apiKey == "" {
		return domain.Client{}, domain.ErrMissingCredential
	}
	c, ok := m.repo.Lookup(apiKey)
	if !ok {
		return domain.Client{}, domain.ErrInvalidCredential
	}
	return c, nil
}

func (m *multiTenant) RequiresCredential() bool { return true }

// singleTenant always acts as the deployment's own identity and ignores API keys.
type singleTenant struct {
	client domain.Client
}

// NewSingleTenant builds the environment client from deployment configuration.
func NewSingleTenant(cfg config.Config) domain.Resolver {
	return &singleTenant{client: EnvironmentClient(cfg)}
}

// EnvironmentClient is the fallback tenant assembled from configuration.
func EnvironmentClient(cfg config.Config) domain.Client {
	return domain.Client{
		ClientID:        "default",
		RecaptchaSecret: cfg.RecaptchaSecret,
		Email:           cfg.SMTPUsername,
		GmailPass:       cfg.SMTPPassword,
		AdminEmail:      cfg.AdminEmail,
	}
}

func (s *singleTenant) Resolve(ctx context.Context, apiKey string) (domain.Client, error) {
	return s.client, nil
}

func (s *singleTenant) RequiresCredential() bool { return false }

// NewResolver picks the resolver for the configured tenant mode.
func NewResolver(cfg config.Config, repo domain.Repository) domain.Resolver {
	if cfg.MultiTenant() {
		return NewMultiTenant(repo)
	}
	return NewSingleTenant(cfg)
}
