package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	cdomain "github.com/lom3e/Formingo/internal/clients/domain"
	"github.com/lom3e/Formingo/internal/config"
	"github.com/lom3e/Formingo/internal/contact/domain"
	edomain "github.com/lom3e/Formingo/internal/email/domain"
	evdomain "github.com/lom3e/Formingo/internal/events/domain"
	"github.com/lom3e/Formingo/internal/metrics"
	"github.com/lom3e/Formingo/internal/notification"
	vdomain "github.com/lom3e/Formingo/internal/verification/domain"
)

type service struct {
	gate      domain.Gate
	sender    edomain.Sender
	publisher evdomain.Publisher
	log       zerolog.Logger

	brand    string
	blocking bool
	timeout  time.Duration
	now      func() time.Time

	inflight sync.WaitGroup
}

// New builds the contact pipeline.
func New(cfg config.Config, gate domain.Gate, sender edomain.Sender, pub evdomain.Publisher, log zerolog.Logger) domain.Service {
	timeout := cfg.DispatchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &service{
		gate:      gate,
		sender:    sender,
		publisher: pub,
		log:       log.With().Str("component", "contact").Logger(),
		brand:     cfg.MailFromName,
		blocking:  cfg.Blocking(),
		timeout:   timeout,
		now:       time.Now,
	}
}

func (s *service) Blocking() bool { return s.blocking }

func (s *service) Accept(ctx context.Context, client cdomain.Client, sub domain.Submission) (domain.Receipt, error) {
	if err := Validate(sub); err != nil {
		return domain.Receipt{}, s.reject(ctx, client, sub, err)
	}

	res := s.gate.Check(ctx, client.RecaptchaSecret, sub.Token, sub.RemoteIP)
	if !res.Proceed() {
		return domain.Receipt{}, s.reject(ctx, client, sub, res.Err)
	}

	r := domain.Receipt{
		ID:           uuid.New(),
		Client:       client,
		Submission:   sub,
		ReceivedAt:   s.now().UTC(),
		Verification: res.Outcome,
	}
	if res.Outcome == vdomain.OutcomeSkipped {
		s.publish(ctx, evdomain.Event{
			Type:         evdomain.TypeVerificationSkipped,
			ClientID:     client.ClientID,
			SubmissionID: r.ID.String(),
		})
	}
	s.log.Info().
		Str("submission_id", r.ID.String()).
		Str("client_id", client.ClientID).
		Str("from", sub.Email).
		Str("verification", string(res.Outcome)).
		Msg("submission accepted")
	metrics.IncSubmission("accepted")
	s.publish(ctx, evdomain.Event{
		Type:         evdomain.TypeSubmissionAccepted,
		ClientID:     client.ClientID,
		SubmissionID: r.ID.String(),
		Meta:         map[string]string{"ip": sub.RemoteIP, "verification": string(res.Outcome)},
	})
	return r, nil
}

func (s *service) reject(ctx context.Context, client cdomain.Client, sub domain.Submission, err error) error {
	e := domain.NewError(err)
	ev := s.log.Info()
	if e.Status >= 500 {
		ev = s.log.Error()
	}
	ev.Err(err).Str("client_id", client.ClientID).Str("reason", e.Reason()).Msg("submission rejected")
	metrics.IncSubmission(e.Reason())
	s.publish(ctx, evdomain.Event{
		Type:     evdomain.TypeSubmissionRejected,
		ClientID: client.ClientID,
		Meta:     map[string]string{"ip": sub.RemoteIP, "reason": e.Reason()},
	})
	return e
}

func (s *service) Notify(ctx context.Context, r domain.Receipt) error {
	from := edomain.Identity{Address: r.Client.Email, Secret: r.Client.GmailPass, Name: s.brand}
	admin, user := notification.Compose(
		notification.Submission{
			Name:       r.Submission.Name,
			Email:      r.Submission.Email,
			Message:    r.Submission.Message,
			ReceivedAt: r.ReceivedAt,
		},
		notification.Sender{Brand: s.brand, AdminAddress: r.Client.AdminAddress(), ReplyAddress: r.Client.Email},
	)

	// Plain errgroup.Group: one failed send never cancels the other.
	var g errgroup.Group
	errs := make([]error, 2)
	g.Go(func() error {
		errs[0] = s.send(ctx, r, "admin", from, admin)
		return errs[0]
	})
	g.Go(func() error {
		errs[1] = s.send(ctx, r, "user", from, user)
		return errs[1]
	})
	if g.Wait() == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrDispatchFailed, errors.Join(errs...))
}

func (s *service) send(ctx context.Context, r domain.Receipt, kind string, from edomain.Identity, msg edomain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.sender.Send(ctx, from, msg)
	meta := map[string]string{"kind": kind, "to": msg.To}
	if err != nil {
		s.log.Error().Err(err).
			Str("submission_id", r.ID.String()).
			Str("client_id", r.Client.ClientID).
			Str("kind", kind).
			Str("to", msg.To).
			Msg("notification failed")
		metrics.IncNotification(kind, "failed")
		meta["error"] = err.Error()
		s.publish(ctx, evdomain.Event{Type: evdomain.TypeNotificationFailed, ClientID: r.Client.ClientID, SubmissionID: r.ID.String(), Meta: meta})
		return fmt.Errorf("%s notification to %s: %w", kind, msg.To, err)
	}
	ev := s.log.Info().
		Str("submission_id", r.ID.String()).
		Str("client_id", r.Client.ClientID).
		Str("kind", kind).
		Str("to", msg.To)
	if msg.BlindCopyToSender() {
		ev = ev.Str("bcc", from.Address)
	}
	ev.Msg("notification sent")
	metrics.IncNotification(kind, "sent")
	s.publish(ctx, evdomain.Event{Type: evdomain.TypeNotificationSent, ClientID: r.Client.ClientID, SubmissionID: r.ID.String(), Meta: meta})
	return nil
}

func (s *service) NotifyDetached(ctx context.Context, r domain.Receipt) {
	// The request context ends with the response; keep its values, drop its cancellation.
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.Notify(ctx, r); err != nil {
			s.log.Warn().Err(err).Str("submission_id", r.ID.String()).Msg("notifications incomplete after response")
		}
	}()
}

func (s *service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *service) publish(ctx context.Context, e evdomain.Event) {
	if s.publisher == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("type", e.Type).Msg("publish event failed")
	}
}
