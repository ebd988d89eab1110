package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	cdomain "github.com/lom3e/Formingo/internal/clients/domain"
	vdomain "github.com/lom3e/Formingo/internal/verification/domain"
)

var (
	ErrInvalidBody        = errors.New("invalid request body")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrPrivacyNotAccepted = errors.New("privacy policy not accepted")
	ErrDispatchFailed     = errors.New("notification dispatch failed")
)

// Submission is one contact-form payload. PrivacyAccepted keeps the decoded JSON
// value as-is so that only a literal boolean true is accepted.
type Submission struct {
	Name            string
	Email           string
	Message         string
	PrivacyAccepted any
	Token           string
	RemoteIP        string
}

// Receipt is an accepted submission together with the tenant it belongs to.
type Receipt struct {
	ID           uuid.UUID
	Client       cdomain.Client
	Submission   Submission
	ReceivedAt   time.Time
	Verification vdomain.Outcome
}

// Error is a pipeline failure with the response it maps to.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Reason is a short label for metrics and audit events.
func (e *Error) Reason() string {
	switch {
	case errors.Is(e.Err, ErrInvalidBody):
		return "invalid_body"
	case errors.Is(e.Err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(e.Err, ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(e.Err, ErrPrivacyNotAccepted):
		return "privacy_not_accepted"
	case errors.Is(e.Err, vdomain.ErrTokenMissing):
		return "token_missing"
	case errors.Is(e.Err, vdomain.ErrProviderRejected):
		return "verification_rejected"
	case errors.Is(e.Err, vdomain.ErrProviderUnreachable):
		return "verification_unreachable"
	case errors.Is(e.Err, ErrDispatchFailed):
		return "dispatch_failed"
	default:
		return "unknown"
	}
}

// NewError maps a pipeline error to its status and caller-facing text.
func NewError(err error) *Error {
	switch {
	case errors.Is(err, ErrInvalidBody):
		return &Error{Status: http.StatusBadRequest, Message: "Invalid request body.", Err: err}
	case errors.Is(err, ErrMissingFields):
		return &Error{Status: http.StatusBadRequest, Message: "Missing required fields.", Err: err}
	case errors.Is(err, ErrInvalidEmail):
		return &Error{Status: http.StatusBadRequest, Message: "Invalid email format.", Err: err}
	case errors.Is(err, ErrPrivacyNotAccepted):
		return &Error{Status: http.StatusBadRequest, Message: "Privacy Policy must be accepted.", Err: err}
	case errors.Is(err, vdomain.ErrTokenMissing):
		return &Error{Status: http.StatusBadRequest, Message: "reCAPTCHA token missing.", Err: err}
	case errors.Is(err, vdomain.ErrProviderRejected):
		return &Error{Status: http.StatusForbidden, Message: "Failed reCAPTCHA verification.", Err: err}
	case errors.Is(err, ErrDispatchFailed):
		return &Error{Status: http.StatusInternalServerError, Message: "Failed to send notification emails.", Err: err}
	default:
		return &Error{Status: http.StatusInternalServerError, Message: "Internal server error.", Err: err}
	}
}

// Gate is the verification step as seen by the pipeline.
type Gate interface {
	Check(ctx context.Context, secret, token, remoteIP string) vdomain.Result
}

// Service runs the contact pipeline.
type Service interface {
	// Accept validates and verifies a submission for the given client.
	Accept(ctx context.Context, client cdomain.Client, sub Submission) (Receipt, error)
	// Notify sends the admin alert and the acknowledgment and waits for both.
	Notify(ctx context.Context, r Receipt) error
	// NotifyDetached runs Notify in the background; failures are only logged.
	NotifyDetached(ctx context.Context, r Receipt)
	// Blocking reports whether notifications are part of the success response.
	Blocking() bool
	// Drain waits for background notifications to finish or ctx to end.
	Drain(ctx context.Context) error
}
