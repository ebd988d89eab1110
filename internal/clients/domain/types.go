package domain

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential is returned when a request carries no API key.
	ErrMissingCredential = errors.New("missing api key")
	// ErrInvalidCredential is returned when the API key is not in the credential table.
	ErrInvalidCredential = errors.New("invalid api key")
)

// Client is one tenant of the service. JSON tags follow the clients.json document.
type Client struct {
	ClientID        string `json:"clientId"`
	RecaptchaSecret string `json:"recaptchaSecret"`
	Email           string `json:"email"`
	GmailPass       string `json:"gmailPass"`
	// AdminEmail receives admin alerts; Email is used when empty.
	AdminEmail string `json:"adminEmail,omitempty"`
}

// AdminAddress returns where admin alerts for this client are delivered.
func (c Client) AdminAddress() string {
	if c.AdminEmail != "" {
		return c.AdminEmail
	}
	return c.Email
}

// Repository is the read-only credential table.
type Repository interface {
	// Lookup is an exact, case-sensitive match. Empty keys never match.
	Lookup(apiKey string) (Client, bool)
	Len() int
}

// Resolver decides which client a request acts as.
type Resolver interface {
	// Resolve returns ErrMissingCredential or ErrInvalidCredential when no client applies.
	Resolve(ctx context.Context, apiKey string) (Client, error)
	// RequiresCredential reports whether the API key header is consulted at all.
	RequiresCredential() bool
}
