package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lom3e/Formingo/internal/config"
	"github.com/lom3e/Formingo/internal/metrics"
	vdomain "github.com/lom3e/Formingo/internal/verification/domain"
)

// Gate applies the deployment-wide verification toggle in front of a Verifier.
type Gate struct {
	enabled  bool
	verifier vdomain.Verifier
	log      zerolog.Logger
}

func NewGate(cfg config.Config, verifier vdomain.Verifier, log zerolog.Logger) *Gate {
	return &Gate{enabled: !cfg.RecaptchaDisabled, verifier: verifier, log: log}
}

// Enabled reports whether tokens are checked.
func (g *Gate) Enabled() bool { return g.enabled }

// Check runs the gate. When disabled it always yields Skipped; an absent token
// fails before any network call.
func (g *Gate) Check(ctx context.Context, secret, token, remoteIP string) vdomain.Result {
	res := g.check(ctx, secret, token, remoteIP)
	metrics.IncVerificationOutcome(string(res.Outcome))
	return res
}

func (g *Gate) check(ctx context.Context, secret, token, remoteIP string) vdomain.Result {
	if !g.enabled {
		g.log.Info().Msg("recaptcha verification disabled, skipping")
		return vdomain.Result{Outcome: vdomain.OutcomeSkipped}
	}
	if token == "" {
		return vdomain.Result{Outcome: vdomain.OutcomeFailed, Err: vdomain.ErrTokenMissing}
	}

	start := time.Now()
	ok, err := g.verifier.Verify(ctx, secret, token, remoteIP)
	metrics.ObserveVerification(time.Since(start).Seconds())
	if err != nil {
		g.log.Error().Err(err).Msg("recaptcha verification failed")
		if !errors.Is(err, vdomain.ErrProviderUnreachable) {
			err = errors.Join(vdomain.ErrProviderUnreachable, err)
		}
		return vdomain.Result{Outcome: vdomain.OutcomeErrored, Err: err}
	}
	if !ok {
		return vdomain.Result{Outcome: vdomain.OutcomeFailed, Err: vdomain.ErrProviderRejected}
	}
	return vdomain.Result{Outcome: vdomain.OutcomePassed}
}
