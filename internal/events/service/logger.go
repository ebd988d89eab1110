package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lom3e/Formingo/internal/events/domain"
)

// Logger is a Publisher that writes events as structured log lines.
type Logger struct {
	log zerolog.Logger
}

func NewLogger(log zerolog.Logger) *Logger {
	return &Logger{log: log.With().Str("component", "audit").Logger()}
}

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	ev := l.log.Info()
	if e.Type == domain.TypeAuthRejected || e.Type == domain.TypeNotificationFailed {
		ev = l.log.Warn()
	}
	ev.Str("type", e.Type).
		Str("client_id", e.ClientID).
		Str("submission_id", e.SubmissionID).
		Fields(map[string]any{"meta": e.Meta}).
		Time("ts", e.Time).
		Msg("event")
	return nil
}
