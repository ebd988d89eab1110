package domain

import (
	"context"
	"errors"
)

var (
	// ErrTokenMissing is a caller fault: verification is on and no token was sent.
	ErrTokenMissing = errors.New("verification token missing")
	// ErrProviderRejected is a caller fault: the provider judged the token invalid.
	ErrProviderRejected = errors.New("verification rejected by provider")
	// ErrProviderUnreachable is a server fault: transport error or malformed provider reply.
	ErrProviderUnreachable = errors.New("verification provider unreachable")
)

// Outcome of the verification gate.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeErrored Outcome = "errored"
)

// Result is what the gate reports. Err is nil for Skipped and Passed.
type Result struct {
	Outcome Outcome
	Err     error
}

// Proceed reports whether the pipeline may continue.
func (r Result) Proceed() bool {
	return r.Outcome == OutcomeSkipped || r.Outcome == OutcomePassed
}

// Verifier talks to the external verification provider.
type Verifier interface {
	// Verify returns the provider's success flag. Any transport failure or
	// unusable reply is reported as an error wrapping ErrProviderUnreachable.
	Verify(ctx context.Context, secret, token, remoteIP string) (bool, error)
}
